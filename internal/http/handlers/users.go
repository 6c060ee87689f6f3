package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/finanzcord/finanzcord/internal/auth"
	"github.com/finanzcord/finanzcord/internal/domain/user"
	"github.com/finanzcord/finanzcord/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (int64, error)
	GetActiveByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id int64, callerEmail string, ch user.Changes) (string, error)
	Delete(ctx context.Context, id int64, callerEmail string) error
	SetPasswordHash(ctx context.Context, id int64, hash string) error
}

type TokenIssuer interface {
	Issue(identity auth.Identity) (string, error)
}

// IdentityCache drops cached email resolutions after a user row changes.
type IdentityCache interface {
	Forget(email string)
}

type LoginObserver interface {
	ObserveLogin(result string)
}

type UsersHandler struct {
	users   UserStore
	tokens  TokenIssuer
	cache   IdentityCache
	logins  LoginObserver
	timeout time.Duration
}

func NewUsersHandler(users UserStore, tokens TokenIssuer, cache IdentityCache, logins LoginObserver, timeout time.Duration) *UsersHandler {
	return &UsersHandler{users: users, tokens: tokens, cache: cache, logins: logins, timeout: timeout}
}

var userMessages = ownedMessages{
	notFound:  "Usuario no encontrado",
	forbidden: "Este no es su usuario.",
}

func (h *UsersHandler) observeLogin(result string) {
	if h.logins != nil {
		h.logins.ObserveLogin(result)
	}
}

func (h *UsersHandler) forget(emails ...string) {
	if h.cache == nil {
		return
	}
	for _, e := range emails {
		h.cache.Forget(e)
	}
}

// Register creates an account. It is reachable without a token.
func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest
	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		respondPasswordTooLong(ctx)
		return
	}
	if err != nil {
		logStoreError(ctx, err, "hash password")
		RespondInternal(ctx, "Could not create user")
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	id, err := h.users.Create(cctx, req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "El correo ya está registrado")
			return
		}
		logStoreError(ctx, err, "create user")
		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Usuario registrado exitosamente",
		"user_id": id,
	})
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	u, err := h.users.GetActiveByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			h.observeLogin("invalid")
			RespondUnauthorized(ctx, "invalid_credentials", "Credenciales inválidas")
			return
		}
		logStoreError(ctx, err, "load user")
		RespondInternal(ctx, "Could not log in")
		return
	}

	if err := security.CheckPassword(u.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, security.ErrPasswordMismatch) {
			slog.WarnContext(ctx.Request.Context(), "unreadable password hash", "user_id", u.ID, "err", err)
		}
		h.observeLogin("invalid")
		RespondUnauthorized(ctx, "invalid_credentials", "Credenciales inválidas")
		return
	}

	if security.IsLegacyHash(u.PasswordHash) {
		h.upgradeHash(cctx, u.ID, req.Password)
	}

	token, err := h.tokens.Issue(auth.Identity{Email: u.Email})
	if err != nil {
		logStoreError(ctx, err, "issue token")
		RespondInternal(ctx, "Could not log in")
		return
	}

	h.observeLogin("ok")
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Inicio de sesión exitoso",
		"user_id": u.ID,
		"name":    u.Name,
		"token":   token,
		"email":   u.Email,
	})
}

// respondPasswordTooLong reports the bcrypt byte limit the same way the
// binding validator reports a max rule.
func respondPasswordTooLong(ctx *gin.Context) {
	limit := strconv.Itoa(security.MaxPasswordBytes)
	RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{{
		Field:   "password",
		Rule:    "max_bytes",
		Param:   limit,
		Message: "must be at most " + limit + " bytes",
	}}})
}

// upgradeHash swaps a legacy pbkdf2 hash for bcrypt. Failure only costs a
// retry on the next login. Passwords past the bcrypt limit keep the legacy
// hash for good.
func (h *UsersHandler) upgradeHash(ctx context.Context, id int64, plain string) {
	if len(plain) > security.MaxPasswordBytes {
		slog.InfoContext(ctx, "legacy password hash kept, password exceeds bcrypt limit", "user_id", id)
		return
	}

	hash, err := security.HashPassword(plain)
	if err == nil {
		err = h.users.SetPasswordHash(ctx, id, hash)
	}
	if err != nil {
		slog.WarnContext(ctx, "legacy password rehash failed", "user_id", id, "err", err)
		return
	}
	slog.InfoContext(ctx, "legacy password hash upgraded", "user_id", id)
}

func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	users, err := h.users.List(cctx)
	if err != nil {
		logStoreError(ctx, err, "list users")
		RespondInternal(ctx, "Could not list users")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, users)
}

func (h *UsersHandler) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		respondStoreError(ctx, err, userMessages, "fetch user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// Update lets a user edit only their own row.
func (h *UsersHandler) Update(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req user.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	ch := user.Changes{Name: req.Name, Email: req.Email}
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)
		if errors.Is(err, security.ErrPasswordTooLong) {
			respondPasswordTooLong(ctx)
			return
		}
		if err != nil {
			logStoreError(ctx, err, "hash password")
			RespondInternal(ctx, "Could not update user")
			return
		}
		ch.PasswordHash = &hash
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	previous, err := h.users.Update(cctx, id, me.Email, ch)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "El correo ya está registrado")
			return
		}
		respondStoreError(ctx, err, userMessages, "update user")
		return
	}

	h.forget(previous)
	if ch.Email != nil {
		h.forget(*ch.Email)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Información del usuario actualizada exitosamente",
		"id":      id,
	})
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.users.Delete(cctx, id, me.Email); err != nil {
		if errors.Is(err, user.ErrAdminProtected) {
			RespondForbidden(ctx, "No se permite eliminar al admin")
			return
		}
		respondStoreError(ctx, err, userMessages, "delete user")
		return
	}

	h.forget(me.Email)
	ctx.JSON(http.StatusOK, gin.H{"message": "Usuario eliminado exitosamente"})
}
