package payment

import "time"

type Method struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      int64     `json:"-"`
}

type CatalogItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CreateRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

type UpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

func (r UpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil
}
