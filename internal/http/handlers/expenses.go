package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/finanzcord/finanzcord/internal/domain/expense"
	"github.com/gin-gonic/gin"
)

type ExpenseStore interface {
	List(ctx context.Context, userID int64, w expense.Window) ([]expense.Expense, error)
	ListDetailed(ctx context.Context, userID int64, w expense.Window) ([]expense.Detailed, error)
	Get(ctx context.Context, id, callerID int64) (expense.Expense, error)
	Create(ctx context.Context, userID int64, req expense.CreateRequest) (int64, error)
	Update(ctx context.Context, id, callerID int64, req expense.UpdateRequest) error
	Delete(ctx context.Context, id, callerID int64) error
}

type ExpensesHandler struct {
	store   ExpenseStore
	timeout time.Duration
}

func NewExpensesHandler(store ExpenseStore, timeout time.Duration) *ExpensesHandler {
	return &ExpensesHandler{store: store, timeout: timeout}
}

var expenseMessages = ownedMessages{
	notFound:  "Expense not found",
	forbidden: "Gasto ajeno",
}

// ListPage returns page :page of 100 expenses, newest date first.
func (h *ExpensesHandler) ListPage(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}
	page, ok := pathInt(ctx, "page", expense.MaxPage)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	items, err := h.store.List(cctx, me.UserID, expense.PageWindow(page, expense.PageSize))
	if err != nil {
		respondStoreError(ctx, err, expenseMessages, "list expenses")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

// ListRange returns expenses with their category and payment method attached.
// The page size comes from expense.RangePageSize.
func (h *ExpensesHandler) ListRange(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}
	page, ok := pathInt(ctx, "page", expense.MaxPage)
	if !ok {
		return
	}
	lastPage, ok := pathInt(ctx, "lastpage", expense.MaxPage)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	w := expense.PageWindow(page, expense.RangePageSize(page, lastPage))
	items, err := h.store.ListDetailed(cctx, me.UserID, w)
	if err != nil {
		respondStoreError(ctx, err, expenseMessages, "list expenses")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *ExpensesHandler) Get(ctx *gin.Context) {
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

	e, err := h.store.Get(cctx, id, me.UserID)
	if err != nil {
		respondStoreError(ctx, err, expenseMessages, "fetch expense")
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *ExpensesHandler) Create(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}

	var req expense.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	id, err := h.store.Create(cctx, me.UserID, req)
	if err != nil {
		respondStoreError(ctx, err, expenseMessages, "create expense")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Expense created successfully", "id": id})
}

func (h *ExpensesHandler) Update(ctx *gin.Context) {
	me, ok := caller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req expense.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.store.Update(cctx, id, me.UserID, req); err != nil {
		respondStoreError(ctx, err, expenseMessages, "update expense")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Expense updated successfully", "id": id})
}

// Delete removes the expense row for good.
func (h *ExpensesHandler) Delete(ctx *gin.Context) {
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
		respondStoreError(ctx, err, expenseMessages, "delete expense")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
