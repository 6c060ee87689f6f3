package category

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Relevance   *string   `json:"relevance"`
	Meta        *string   `json:"meta"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      int64     `json:"-"`
}

// CatalogItem is the reduced listing used to fill selectors.
type CatalogItem struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

type CreateRequest struct {
	Description string  `json:"description" binding:"required,max=255"`
	Relevance   *string `json:"relevance" binding:"omitempty,max=255"`
	Meta        *string `json:"meta" binding:"omitempty,max=255"`
}

// UpdateRequest applies only the fields present and non-null in the body.
type UpdateRequest struct {
	Description *string `json:"description" binding:"omitempty,min=1,max=255"`
	Relevance   *string `json:"relevance" binding:"omitempty,max=255"`
	Meta        *string `json:"meta" binding:"omitempty,max=255"`
}

func (r UpdateRequest) IsEmpty() bool {
	return r.Description == nil && r.Relevance == nil && r.Meta == nil
}
