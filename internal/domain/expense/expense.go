package expense

import (
	"time"

	"github.com/finanzcord/finanzcord/internal/domain/category"
	"github.com/finanzcord/finanzcord/internal/domain/payment"
)

type Expense struct {
	ID          int64     `json:"id"`
	Concept     string    `json:"concept"`
	CategoryID  *int64    `json:"idcategory"`
	Amount      Amount    `json:"amount"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Date        *Date     `json:"date"`
	PaymentID   *int64    `json:"idpayment"`
	Priority    *int      `json:"priority"`
	UserID      int64     `json:"-"`
}

// Detailed is an expense with its category and payment method resolved.
// Dangling references leave Category or Payment nil.
type Detailed struct {
	ID          int64              `json:"id"`
	Concept     string             `json:"concept"`
	CategoryID  *int64             `json:"idcategory"`
	Category    *category.Category `json:"category"`
	Amount      Amount             `json:"amount"`
	Description *string            `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Date        *Date              `json:"date"`
	PaymentID   *int64             `json:"idpayment"`
	Payment     *payment.Method    `json:"payment"`
	Priority    *int               `json:"priority"`
}

// Join attaches categories and payment methods to expenses by id.
func Join(expenses []Expense, categories []category.Category, methods []payment.Method) []Detailed {
	cats := make(map[int64]*category.Category, len(categories))
	for i := range categories {
		cats[categories[i].ID] = &categories[i]
	}
	pms := make(map[int64]*payment.Method, len(methods))
	for i := range methods {
		pms[methods[i].ID] = &methods[i]
	}

	out := make([]Detailed, 0, len(expenses))
	for _, e := range expenses {
		d := Detailed{
			ID:          e.ID,
			Concept:     e.Concept,
			CategoryID:  e.CategoryID,
			Amount:      e.Amount,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.UpdatedAt,
			Date:        e.Date,
			PaymentID:   e.PaymentID,
			Priority:    e.Priority,
		}
		if e.CategoryID != nil {
			d.Category = cats[*e.CategoryID]
		}
		if e.PaymentID != nil {
			d.Payment = pms[*e.PaymentID]
		}
		out = append(out, d)
	}
	return out
}

type CreateRequest struct {
	Concept     string  `json:"concept" binding:"required,max=255"`
	CategoryID  *int64  `json:"idcategory"`
	Amount      *Amount `json:"amount" binding:"required"`
	Description *string `json:"description"`
	Date        *Date   `json:"date"`
	PaymentID   *int64  `json:"idpayment"`
	Priority    *int    `json:"priority"`
}

// UpdateRequest is partial: absent or null fields keep their stored value.
type UpdateRequest struct {
	Concept     *string `json:"concept" binding:"omitempty,min=1,max=255"`
	CategoryID  *int64  `json:"idcategory"`
	Amount      *Amount `json:"amount"`
	Description *string `json:"description"`
	Date        *Date   `json:"date"`
	PaymentID   *int64  `json:"idpayment"`
	Priority    *int    `json:"priority"`
}

func (r UpdateRequest) IsEmpty() bool {
	return r.Concept == nil && r.CategoryID == nil && r.Amount == nil &&
		r.Description == nil && r.Date == nil && r.PaymentID == nil && r.Priority == nil
}
