package models

import (
	"context"
)

// UserStore is the narrow contract the handlers hold over the key-value
// store. Implementations own all persisted state; the core keeps no cache.
//
// Create writes conditionally on the record not existing, Update and Delete
// on it existing, so a record that vanished between read and write surfaces
// as ErrNotFound rather than a lost update. List resumes from an opaque
// cursor token issued by a previous call; a malformed token yields
// ErrInvalidCursor. An expired or canceled context yields
// ErrStoreUnavailable without any partial mutation.
type UserStore interface {
	Create(ctx context.Context, user *CreateUserRequest) (*User, error)
	Get(ctx context.Context, userID string) (*User, error)
	Update(ctx context.Context, userID string, user *UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context, cursor string, limit int) (*UserListResponse, error)
	Close() error
}
