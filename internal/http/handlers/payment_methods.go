package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/finanzcord/finanzcord/internal/domain/payment"
	"github.com/gin-gonic/gin"
)

type PaymentMethodStore interface {
	List(ctx context.Context, userID int64) ([]payment.Method, error)
	Catalog(ctx context.Context, userID int64) ([]payment.CatalogItem, error)
	Get(ctx context.Context, id, callerID int64) (payment.Method, error)
	Create(ctx context.Context, userID int64, req payment.CreateRequest) (int64, error)
	Update(ctx context.Context, id, callerID int64, req payment.UpdateRequest) error
	Delete(ctx context.Context, id, callerID int64) error
}

type PaymentMethodsHandler struct {
	store   PaymentMethodStore
	timeout time.Duration
}

func NewPaymentMethodsHandler(store PaymentMethodStore, timeout time.Duration) *PaymentMethodsHandler {
	return &PaymentMethodsHandler{store: store, timeout: timeout}
}

var paymentMethodMessages = ownedMessages{
	notFound:  "Payment method not found",
	forbidden: "Metodo de pago ajeno",
}

func (h *PaymentMethodsHandler) List(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	items, err := h.store.List(cctx, me.UserID)
	if err != nil {
		respondStoreError(ctx, err, paymentMethodMessages, "list payment methods")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *PaymentMethodsHandler) Catalog(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	items, err := h.store.Catalog(cctx, me.UserID)
	if err != nil {
		respondStoreError(ctx, err, paymentMethodMessages, "list payment methods")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

// Get always enforces ownership.
func (h *PaymentMethodsHandler) Get(ctx *gin.Context) {
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

	m, err := h.store.Get(cctx, id, me.UserID)
	if err != nil {
		respondStoreError(ctx, err, paymentMethodMessages, "fetch payment method")
		return
	}

	ctx.JSON(http.StatusOK, m)
}

func (h *PaymentMethodsHandler) Create(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}

	var req payment.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	id, err := h.store.Create(cctx, me.UserID, req)
	if err != nil {
		respondStoreError(ctx, err, paymentMethodMessages, "create payment method")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Payment method created successfully", "id": id})
}

func (h *PaymentMethodsHandler) Update(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req payment.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.store.Update(cctx, id, me.UserID, req); err != nil {
		respondStoreError(ctx, err, paymentMethodMessages, "update payment method")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Payment method updated successfully", "id": id})
}

func (h *PaymentMethodsHandler) Delete(ctx *gin.Context) {
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

	if err := h.store.Delete(cctx, id, me.UserID); err != nil {
		respondStoreError(ctx, err, paymentMethodMessages, "delete payment method")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Payment method deleted successfully"})
}
