package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/finanzcord/finanzcord/internal/domain/payment"
	"github.com/finanzcord/finanzcord/internal/http/handlers"
)

type fakePaymentMethodStore struct {
	listFn    func(ctx context.Context, userID int64) ([]payment.Method, error)
	catalogFn func(ctx context.Context, userID int64) ([]payment.CatalogItem, error)
	getFn     func(ctx context.Context, id, callerID int64) (payment.Method, error)
	createFn  func(ctx context.Context, userID int64, req payment.CreateRequest) (int64, error)
	updateFn  func(ctx context.Context, id, callerID int64, req payment.UpdateRequest) error
	deleteFn  func(ctx context.Context, id, callerID int64) error
}

func (f *fakePaymentMethodStore) List(ctx context.Context, userID int64) ([]payment.Method, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return []payment.Method{}, nil
}

func (f *fakePaymentMethodStore) Catalog(ctx context.Context, userID int64) ([]payment.CatalogItem, error) {
	if f.catalogFn != nil {
		return f.catalogFn(ctx, userID)
	}
	return []payment.CatalogItem{}, nil
}

func (f *fakePaymentMethodStore) Get(ctx context.Context, id, callerID int64) (payment.Method, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id, callerID)
	}
	return payment.Method{}, access.ErrNotFound
}

func (f *fakePaymentMethodStore) Create(ctx context.Context, userID int64, req payment.CreateRequest) (int64, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID, req)
	}
	return 1, nil
}

func (f *fakePaymentMethodStore) Update(ctx context.Context, id, callerID int64, req payment.UpdateRequest) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, callerID, req)
	}
	return nil
}

func (f *fakePaymentMethodStore) Delete(ctx context.Context, id, callerID int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, callerID)
	}
	return nil
}

func TestPaymentMethodHandlers_Ownership(t *testing.T) {
	store := &fakePaymentMethodStore{
		getFn: func(_ context.Context, id, callerID int64) (payment.Method, error) {
			if callerID != bob.UserID {
				return payment.Method{}, access.ErrForbidden
			}
			return payment.Method{ID: id, Name: "cash"}, nil
		},
		deleteFn: func(_ context.Context, id, _ int64) error {
			if id == 404 {
				return access.ErrNotFound
			}
			return nil
		},
	}
	h := handlers.NewPaymentMethodsHandler(store, time.Second)

	r := setupRouter(http.MethodGet, "/payment_method/:id", h.Get, &alice)
	w := doRequest(r, http.MethodGet, "/payment_method/2", "")
	assertError(t, w, http.StatusForbidden, "forbidden", "Metodo de pago ajeno")

	r = setupRouter(http.MethodGet, "/payment_method/:id", h.Get, &bob)
	w = doRequest(r, http.MethodGet, "/payment_method/2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	r = setupRouter(http.MethodDelete, "/payment_method/:id", h.Delete, &bob)
	w = doRequest(r, http.MethodDelete, "/payment_method/404", "")
	assertError(t, w, http.StatusNotFound, "not_found", "Payment method not found")
}

func TestCatalogPaymentMethodsHandler(t *testing.T) {
	store := &fakePaymentMethodStore{
		catalogFn: func(_ context.Context, userID int64) ([]payment.CatalogItem, error) {
			return []payment.CatalogItem{{ID: userID, Name: "card"}}, nil
		},
	}
	h := handlers.NewPaymentMethodsHandler(store, time.Second)
	r := setupRouter(http.MethodGet, "/payment_method/catalog/", h.Catalog, &alice)

	w := doRequest(r, http.MethodGet, "/payment_method/catalog/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	var got []payment.CatalogItem
	mustReadJSON(t, w, &got)
	if len(got) != 1 || got[0].ID != alice.UserID || got[0].Name != "card" {
		t.Fatalf("unexpected catalog: %+v", got)
	}
}
