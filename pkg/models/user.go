package models

import (
	"time"
)

// User is the canonical representation of a user record. UserID is server
// generated and immutable; CreatedAt and UpdatedAt are server set with
// UpdatedAt >= CreatedAt.
type User struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest deliberately has no user_id field: ids are server
// generated, and a caller-supplied id is rejected by the closed-schema body
// decoding.
type CreateUserRequest struct {
	Name    string `json:"name"              validate:"required,max=256"`
	Email   string `json:"email"             validate:"required,email,max=320"`
	Age     *int   `json:"age,omitempty"     validate:"omitempty,gte=0,lte=150"`
	Phone   string `json:"phone,omitempty"   validate:"omitempty,phone"`
	Address string `json:"address,omitempty" validate:"omitempty,max=512"`
}

// UpdateUserRequest merges flat fields only. Nil means "leave unchanged".
type UpdateUserRequest struct {
	Name    *string `json:"name,omitempty"    validate:"omitempty,min=1,max=256"`
	Email   *string `json:"email,omitempty"   validate:"omitempty,email,max=320"`
	Age     *int    `json:"age,omitempty"     validate:"omitempty,gte=0,lte=150"`
	Phone   *string `json:"phone,omitempty"   validate:"omitempty,phone"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=512"`
}

// IsEmpty reports whether the request carries no mutable fields.
func (r *UpdateUserRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Age == nil && r.Phone == nil &&
		r.Address == nil
}

// UserListResponse is one page of users. NextCursor is present iff the store
// reported more rows beyond this page; its absence is the only end-of-list
// signal.
type UserListResponse struct {
	Users      []*User `json:"users"`
	Count      int     `json:"count"`
	NextCursor string  `json:"next_cursor,omitempty"`
}
