package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/finanzcord/finanzcord/internal/config"
	"github.com/finanzcord/finanzcord/internal/http/handlers"
	"github.com/finanzcord/finanzcord/internal/http/middlewares"
	"github.com/finanzcord/finanzcord/internal/observability"
)

// Deps carries everything the router wires into handlers. Prom, Registry,
// Limiter and DB may be nil.
type Deps struct {
	Config config.Config

	Users          handlers.UserStore
	Categories     handlers.CategoryStore
	PaymentMethods handlers.PaymentMethodStore
	Expenses       handlers.ExpenseStore

	Tokens handlers.TokenIssuer
	Auth   *middlewares.AuthMiddleware

	Limiter  middlewares.Limiter
	Prom     *observability.Prom
	Registry prometheus.Gatherer
	DB       handlers.Pinger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"messenge": "Ruta no encontrada."})
	})

	// health
	h := handlers.NewHealthHandler(d.DB)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	timeout := d.Config.QueryTimeout()

	usersHandler := handlers.NewUsersHandler(d.Users, d.Tokens, d.Auth, d.Prom, timeout)
	categoriesHandler := handlers.NewCategoriesHandler(d.Categories, timeout, d.Config.LegacyCategoryRead)
	paymentMethodsHandler := handlers.NewPaymentMethodsHandler(d.PaymentMethods, timeout)
	expensesHandler := handlers.NewExpensesHandler(d.Expenses, timeout)

	// anonymous
	login := []gin.HandlerFunc{usersHandler.Login}
	if d.Limiter != nil {
		throttled := func(*gin.Context) { d.Prom.ObserveLogin("throttled") }
		login = append([]gin.HandlerFunc{middlewares.RateLimit(d.Limiter, middlewares.KeyByIP, throttled)}, login...)
	}
	r.POST("/user/login", login...)
	r.POST("/user/", usersHandler.Register)

	authed := r.Group("/")
	authed.Use(d.Auth.RequireAuth(), d.Auth.ResolveUser())

	users := authed.Group("/user")
	users.GET("/", usersHandler.List)
	users.GET("/:id", usersHandler.Get)
	users.PUT("/:id", usersHandler.Update)
	users.DELETE("/:id", usersHandler.Delete)

	categories := authed.Group("/category")
	categories.GET("/", categoriesHandler.List)
	categories.GET("/catalog/", categoriesHandler.Catalog)
	categories.GET("/:id", categoriesHandler.Get)
	categories.POST("/", categoriesHandler.Create)
	categories.PUT("/:id", categoriesHandler.Update)
	categories.DELETE("/:id", categoriesHandler.Delete)

	paymentMethods := authed.Group("/payment_method")
	paymentMethods.GET("/", paymentMethodsHandler.List)
	paymentMethods.GET("/catalog/", paymentMethodsHandler.Catalog)
	paymentMethods.GET("/:id", paymentMethodsHandler.Get)
	paymentMethods.POST("/", paymentMethodsHandler.Create)
	paymentMethods.PUT("/:id", paymentMethodsHandler.Update)
	paymentMethods.DELETE("/:id", paymentMethodsHandler.Delete)

	expenses := authed.Group("/expense")
	expenses.GET("/page/:page", expensesHandler.ListPage)
	expenses.GET("/page/:page/last-page/:lastpage", expensesHandler.ListRange)
	expenses.GET("/:id", expensesHandler.Get)
	expenses.POST("/", expensesHandler.Create)
	expenses.PUT("/:id", expensesHandler.Update)
	expenses.DELETE("/:id", expensesHandler.Delete)

	return r
}
