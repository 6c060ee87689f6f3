// Package memory is an in-process store with the same ownership and deletion
// rules as the Postgres repositories. It backs STORE=memory and router tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/finanzcord/finanzcord/internal/domain/category"
	"github.com/finanzcord/finanzcord/internal/domain/expense"
	"github.com/finanzcord/finanzcord/internal/domain/payment"
	"github.com/finanzcord/finanzcord/internal/domain/user"
)

type state struct {
	mu  sync.RWMutex
	now func() time.Time

	users      map[int64]user.User
	categories map[int64]categoryRow
	methods    map[int64]methodRow
	expenses   map[int64]expense.Expense

	nextUser, nextCategory, nextMethod, nextExpense int64
}

type categoryRow struct {
	category.Category
	deleted bool
}

type methodRow struct {
	payment.Method
	deleted bool
}

// Store groups the four repositories over one shared state.
type Store struct {
	Users          *UsersRepo
	Categories     *CategoriesRepo
	PaymentMethods *PaymentMethodsRepo
	Expenses       *ExpensesRepo
}

func New() *Store {
	s := &state{
		now:        func() time.Time { return time.Now().UTC() },
		users:      make(map[int64]user.User),
		categories: make(map[int64]categoryRow),
		methods:    make(map[int64]methodRow),
		expenses:   make(map[int64]expense.Expense),
	}
	return &Store{
		Users:          &UsersRepo{s},
		Categories:     &CategoriesRepo{s},
		PaymentMethods: &PaymentMethodsRepo{s},
		Expenses:       &ExpensesRepo{s},
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func ptr[T any](v T) *T { return &v }
