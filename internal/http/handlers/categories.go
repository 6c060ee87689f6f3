package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/finanzcord/finanzcord/internal/domain/category"
	"github.com/gin-gonic/gin"
)

type CategoryStore interface {
	List(ctx context.Context, userID int64) ([]category.Category, error)
	Catalog(ctx context.Context, userID int64) ([]category.CatalogItem, error)
	Get(ctx context.Context, id, callerID int64, enforceOwner bool) (category.Category, error)
	Create(ctx context.Context, userID int64, req category.CreateRequest) (int64, error)
	Update(ctx context.Context, id, callerID int64, req category.UpdateRequest) error
	Delete(ctx context.Context, id, callerID int64) error
}

type CategoriesHandler struct {
	store   CategoryStore
	timeout time.Duration
	// legacyRead lets any user fetch any category by id
	legacyRead bool
}

func NewCategoriesHandler(store CategoryStore, timeout time.Duration, legacyRead bool) *CategoriesHandler {
	return &CategoriesHandler{store: store, timeout: timeout, legacyRead: legacyRead}
}

var categoryMessages = ownedMessages{
	notFound:  "Category not found",
	forbidden: "Category ajena",
}

func (h *CategoriesHandler) List(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	items, err := h.store.List(cctx, me.UserID)
	if err != nil {
		respondStoreError(ctx, err, categoryMessages, "list categories")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *CategoriesHandler) Catalog(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	items, err := h.store.Catalog(cctx, me.UserID)
	if err != nil {
		respondStoreError(ctx, err, categoryMessages, "list categories")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *CategoriesHandler) Get(ctx *gin.Context) {
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

	c, err := h.store.Get(cctx, id, me.UserID, !h.legacyRead)
	if err != nil {
		respondStoreError(ctx, err, categoryMessages, "fetch category")
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CategoriesHandler) Create(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}

	var req category.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	id, err := h.store.Create(cctx, me.UserID, req)
	if err != nil {
		respondStoreError(ctx, err, categoryMessages, "create category")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Category created successfully", "id": id})
}

func (h *CategoriesHandler) Update(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req category.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.store.Update(cctx, id, me.UserID, req); err != nil {
		respondStoreError(ctx, err, categoryMessages, "update category")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Category updated successfully", "id": id})
}

func (h *CategoriesHandler) Delete(ctx *gin.Context) {
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
		respondStoreError(ctx, err, categoryMessages, "delete category")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
