package pebblestore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub/userhub/pkg/models"
	"github.com/userhub/userhub/pkg/testutils"
)

func newTestDAO(t *testing.T) *UserStoreDAO {
	t.Helper()
	dao, err := NewUserStoreDAO(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = dao.Close()
	})
	return dao
}

func TestUserStoreCreate(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()

	req := testutils.NewFakeCreateUserRequest()
	created, err := dao.Create(ctx, req)
	require.NoError(t, err)

	_, err = uuid.Parse(created.UserID)
	assert.NoError(t, err, "user id must be a server-generated uuid")
	assert.Equal(t, req.Name, created.Name)
	assert.Equal(t, req.Email, created.Email)
	assert.Equal(t, req.Age, created.Age)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))
	assert.False(t, created.CreatedAt.IsZero())
}

func TestUserStoreGet(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()

	created, err := dao.Create(ctx, testutils.NewFakeCreateUserRequest())
	require.NoError(t, err)

	got, err := dao.Get(ctx, created.UserID)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, got.UserID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Email, got.Email)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestUserStoreGetNotFound(t *testing.T) {
	dao := newTestDAO(t)

	_, err := dao.Get(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserStoreUpdate(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()

	created, err := dao.Create(ctx, testutils.NewFakeCreateUserRequest())
	require.NoError(t, err)

	newName := "Anne"
	updated, err := dao.Update(ctx, created.UserID, &models.UpdateUserRequest{
		Name: &newName,
	})
	require.NoError(t, err)

	assert.Equal(t, newName, updated.Name)
	// untouched fields carry over
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.Age, updated.Age)
	assert.Equal(t, created.Phone, updated.Phone)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	// the merge is persisted, not just returned
	got, err := dao.Get(ctx, created.UserID)
	require.NoError(t, err)
	assert.Equal(t, newName, got.Name)
	assert.Equal(t, created.Email, got.Email)
}

func TestUserStoreUpdateNotFound(t *testing.T) {
	dao := newTestDAO(t)

	newName := "Anne"
	_, err := dao.Update(context.Background(), uuid.New().String(), &models.UpdateUserRequest{
		Name: &newName,
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserStoreDelete(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()

	created, err := dao.Create(ctx, testutils.NewFakeCreateUserRequest())
	require.NoError(t, err)

	require.NoError(t, dao.Delete(ctx, created.UserID))

	_, err = dao.Get(ctx, created.UserID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// double delete signals not found, same as deleting an unknown id
	err = dao.Delete(ctx, created.UserID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserStoreListPagination(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()

	const total = 25
	const pageSize = 10

	createdIDs := make(map[string]bool, total)
	for i := 0; i < total; i++ {
		created, err := dao.Create(ctx, testutils.NewFakeCreateUserRequest())
		require.NoError(t, err)
		createdIDs[created.UserID] = true
	}

	// following cursors from the start must yield every record exactly once,
	// with no cursor on the final page
	seen := make(map[string]bool, total)
	cursor := ""
	pages := 0
	for {
		page, err := dao.List(ctx, cursor, pageSize)
		require.NoError(t, err)
		assert.Equal(t, len(page.Users), page.Count)

		for _, user := range page.Users {
			assert.False(t, seen[user.UserID], "user %s returned twice", user.UserID)
			seen[user.UserID] = true
		}

		pages++
		if page.NextCursor == "" {
			break
		}
		assert.Len(t, page.Users, pageSize, "a cursor was issued on a non-full page")
		cursor = page.NextCursor
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, createdIDs, seen)
}

func TestUserStoreListNoCursorOnExactFit(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := dao.Create(ctx, testutils.NewFakeCreateUserRequest())
		require.NoError(t, err)
	}

	// first page holds everything; no more rows exist, so no cursor
	page, err := dao.List(ctx, "", 5)
	require.NoError(t, err)
	assert.Len(t, page.Users, 5)
	assert.Empty(t, page.NextCursor)
}

func TestUserStoreListInvalidCursor(t *testing.T) {
	dao := newTestDAO(t)

	_, err := dao.List(context.Background(), "not-a-cursor", 10)
	assert.ErrorIs(t, err, models.ErrInvalidCursor)
}

func TestUserStoreUpdateAfterDelete(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()

	created, err := dao.Create(ctx, testutils.NewFakeCreateUserRequest())
	require.NoError(t, err)

	require.NoError(t, dao.Delete(ctx, created.UserID))

	newName := "Anne"
	_, err = dao.Update(ctx, created.UserID, &models.UpdateUserRequest{Name: &newName})
	assert.ErrorIs(t, err, models.ErrNotFound,
		"an update racing a delete must observe not found, not a partial write")
}

func TestUserStoreConcurrentUpdateDelete(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()

	created, err := dao.Create(ctx, testutils.NewFakeCreateUserRequest())
	require.NoError(t, err)

	const updaters = 8
	var wg sync.WaitGroup
	updateErrs := make([]error, updaters)

	for i := 0; i < updaters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			newName := "Anne"
			_, err := dao.Update(ctx, created.UserID, &models.UpdateUserRequest{
				Name: &newName,
			})
			updateErrs[i] = err
		}(i)
	}

	var deleteErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		deleteErr = dao.Delete(ctx, created.UserID)
	}()

	wg.Wait()
	assert.NoError(t, deleteErr)

	// every update either landed before the delete or observed not found;
	// nothing else is possible with conditional writes
	for _, err := range updateErrs {
		if err != nil {
			assert.ErrorIs(t, err, models.ErrNotFound)
		}
	}

	_, err = dao.Get(ctx, created.UserID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserStoreExpiredContext(t *testing.T) {
	dao := newTestDAO(t)

	created, err := dao.Create(context.Background(), testutils.NewFakeCreateUserRequest())
	require.NoError(t, err)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err = dao.Get(ctx, created.UserID)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	_, err = dao.Create(ctx, testutils.NewFakeCreateUserRequest())
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	err = dao.Delete(ctx, created.UserID)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	// nothing was mutated under the expired context
	got, err := dao.Get(context.Background(), created.UserID)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, got.UserID)
}
