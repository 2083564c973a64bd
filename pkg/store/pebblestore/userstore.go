package pebblestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/google/uuid"

	"github.com/userhub/userhub/pkg/models"
)

var _ models.UserStore = &UserStoreDAO{}

// UserStoreDAO persists user records in an embedded pebble store. All writes
// are conditional on the current existence of the record and serialized
// through a single writer lock, so an update and a delete racing on the same
// id cannot interleave between check and write.
type UserStoreDAO struct {
	db *pebble.DB

	// guards check-then-write sequences
	writeMu sync.Mutex
}

// NewUserStoreDAO opens the pebble store at path. Opening retries with
// exponential backoff: a store left behind by an unclean shutdown can hold a
// stale LOCK file for a short while.
func NewUserStoreDAO(path string) (*UserStoreDAO, error) {
	openRetryPolicy := retrypolicy.Builder[*pebble.DB]().
		WithBackoff(200*time.Millisecond, 5*time.Second).
		WithMaxRetries(5).
		Build()

	db, err := failsafe.Get(func() (*pebble.DB, error) {
		return pebble.Open(path, &pebble.Options{})
	}, openRetryPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble store at %s: %w", path, err)
	}

	return &UserStoreDAO{db: db}, nil
}

// Create assigns a fresh id and timestamps and writes the record with a
// must-not-exist condition.
func (dao *UserStoreDAO) Create(
	ctx context.Context,
	user *models.CreateUserRequest,
) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := &models.User{
		UserID:    uuid.New().String(),
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		Phone:     user.Phone,
		Address:   user.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	value, err := toItem(created)
	if err != nil {
		return nil, err
	}

	dao.writeMu.Lock()
	defer dao.writeMu.Unlock()

	key := userKey(created.UserID)
	if _, err := dao.get(key); err == nil {
		return nil, models.NewConflictError("user " + created.UserID)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if err := dao.db.Set(key, value, pebble.Sync); err != nil {
		return nil, storeError("set", err)
	}

	return created, nil
}

// Get gets a user by UserID.
func (dao *UserStoreDAO) Get(ctx context.Context, userID string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	return dao.get(userKey(userID))
}

// Update merges the changed fields into the stored record and bumps
// updated_at. The write is conditional on the record still existing: a
// record deleted since the caller read it surfaces as not found, never as a
// partial write.
func (dao *UserStoreDAO) Update(
	ctx context.Context,
	userID string,
	user *models.UpdateUserRequest,
) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	dao.writeMu.Lock()
	defer dao.writeMu.Unlock()

	key := userKey(userID)
	current, err := dao.get(key)
	if err != nil {
		return nil, err
	}

	if user.Name != nil {
		current.Name = *user.Name
	}
	if user.Email != nil {
		current.Email = *user.Email
	}
	if user.Age != nil {
		current.Age = user.Age
	}
	if user.Phone != nil {
		current.Phone = *user.Phone
	}
	if user.Address != nil {
		current.Address = *user.Address
	}

	// updated_at must move strictly forward even on coarse clocks
	now := time.Now().UTC()
	if !now.After(current.UpdatedAt) {
		now = current.UpdatedAt.Add(time.Nanosecond)
	}
	current.UpdatedAt = now

	value, err := toItem(current)
	if err != nil {
		return nil, err
	}

	if err := dao.db.Set(key, value, pebble.Sync); err != nil {
		return nil, storeError("set", err)
	}

	return current, nil
}

// Delete hard-deletes a user. Deleting an id that does not exist yields not
// found, regardless of prior calls.
func (dao *UserStoreDAO) Delete(ctx context.Context, userID string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	dao.writeMu.Lock()
	defer dao.writeMu.Unlock()

	key := userKey(userID)
	if _, err := dao.get(key); err != nil {
		return err
	}

	if err := dao.db.Delete(key, pebble.Sync); err != nil {
		return storeError("delete", err)
	}

	return nil
}

// List returns one page of users in key order, resuming just past the cursor
// key when a cursor is given. It reads one row past the page to learn whether
// more rows exist; a short page alone is not an end-of-list signal.
func (dao *UserStoreDAO) List(
	ctx context.Context,
	cursor string,
	limit int,
) (*models.UserListResponse, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	lower := []byte(userKeyPrefix)
	if cursor != "" {
		lastKey, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		lower = append(lastKey, 0x00)
	}

	iter, err := dao.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: keyUpperBound([]byte(userKeyPrefix)),
	})
	if err != nil {
		return nil, storeError("iter", err)
	}
	defer iter.Close()

	users := make([]*models.User, 0, limit)
	var lastKey []byte
	more := false

	for valid := iter.First(); valid; valid = iter.Next() {
		if len(users) == limit {
			more = true
			break
		}
		value, err := iter.ValueAndErr()
		if err != nil {
			return nil, storeError("iter", err)
		}
		user, err := fromItem(iter.Key(), value)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
		lastKey = append(lastKey[:0], iter.Key()...)
	}
	if err := iter.Error(); err != nil {
		return nil, storeError("iter", err)
	}

	resp := &models.UserListResponse{
		Users: users,
		Count: len(users),
	}
	if more {
		resp.NextCursor = encodeCursor(lastKey)
	}

	return resp, nil
}

// Close closes the underlying pebble store.
func (dao *UserStoreDAO) Close() error {
	return dao.db.Close()
}

func (dao *UserStoreDAO) get(key []byte) (*models.User, error) {
	value, closer, err := dao.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, models.NewNotFoundError(
				"user " + strings.TrimPrefix(string(key), userKeyPrefix),
			)
		}
		return nil, storeError("get", err)
	}
	defer closer.Close()

	return fromItem(key, value)
}

// ctxErr maps an expired or canceled request context onto the retryable
// store-unavailable outcome before any store call is made. Retry policy
// belongs to the caller, not here.
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("store call aborted: %v: %w", err, models.ErrStoreUnavailable)
	}
	return nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("pebble %s failed: %v: %w", op, err, models.ErrStoreUnavailable)
}

// keyUpperBound returns the smallest key greater than every key with the
// given prefix.
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
