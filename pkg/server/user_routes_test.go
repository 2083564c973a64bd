package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub/userhub/pkg/models"
)

func doRequest(t *testing.T, method, url string, body []byte) *http.Response {
	t.Helper()

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, url, bytes.NewBuffer(body))
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	require.NoError(t, err)

	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func TestUserCRUDScenario(t *testing.T) {
	usersURL := testServer.URL + "/api/v1/users"

	// create
	resp := doRequest(t, "POST", usersURL, []byte(`{"name":"Ann","email":"a@x.com"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := new(models.User)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(created))
	resp.Body.Close()

	assert.NotEmpty(t, created.UserID)
	assert.Equal(t, "Ann", created.Name)
	assert.Equal(t, "a@x.com", created.Email)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	userURL := usersURL + "/" + created.UserID

	// get returns the same record
	resp = doRequest(t, "GET", userURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := new(models.User)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(got))
	resp.Body.Close()
	assert.Equal(t, created.UserID, got.UserID)
	assert.Equal(t, created.Name, got.Name)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	// update bumps updated_at strictly forward
	resp = doRequest(t, "PUT", userURL, []byte(`{"name":"Anne"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := new(models.User)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(updated))
	resp.Body.Close()
	assert.Equal(t, "Anne", updated.Name)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	// delete
	resp = doRequest(t, "DELETE", userURL, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// subsequent get is a 404
	resp = doRequest(t, "GET", userURL, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestListUsersRoutePagination(t *testing.T) {
	usersURL := testServer.URL + "/api/v1/users"

	createdIDs := make(map[string]bool, 2)
	for i := 0; i < 2; i++ {
		resp := doRequest(t, "POST", usersURL, []byte(`{"name":"Ann","email":"a@x.com"}`))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		created := new(models.User)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(created))
		resp.Body.Close()
		createdIDs[created.UserID] = true
	}

	// walk every page with limit=1; the store is shared across tests, so
	// only count the ids created here
	seen := make(map[string]int)
	cursor := ""
	for {
		url := usersURL + "?limit=1"
		if cursor != "" {
			url += "&cursor=" + cursor
		}
		resp := doRequest(t, "GET", url, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		page := new(models.UserListResponse)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(page))
		resp.Body.Close()

		require.LessOrEqual(t, len(page.Users), 1)
		assert.Equal(t, len(page.Users), page.Count)

		for _, user := range page.Users {
			if createdIDs[user.UserID] {
				seen[user.UserID]++
			}
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	require.Len(t, seen, len(createdIDs))
	for id, count := range seen {
		assert.Equal(t, 1, count, "user %s returned more than once", id)
	}
}
