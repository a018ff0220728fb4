package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectoryServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return NewClient(server.URL, "service-key", 5*time.Second)
}

func TestLookupUserIDMatchesExactEmail(t *testing.T) {
	// The admin endpoint does fuzzy matching; a query for "an@example.com"
	// can also return "joan@example.com".
	client := newDirectoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		assert.Equal(t, "an@example.com", r.URL.Query().Get("query"))
		json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]string{
				{"id": "user-joan", "email": "joan@example.com"},
				{"id": "user-an", "email": "an@example.com"},
			},
		})
	})

	id, err := client.LookupUserID(context.Background(), "an@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-an", id)
}

func TestLookupUserIDNotFound(t *testing.T) {
	client := newDirectoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"users": []map[string]string{}})
	})

	_, err := client.LookupUserID(context.Background(), "ghost@example.com")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestLookupUserIDServerError(t *testing.T) {
	client := newDirectoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := client.LookupUserID(context.Background(), "pat@example.com")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUserNotFound))
}

func TestListUserEmailsPaginates(t *testing.T) {
	pages := map[string][]map[string]string{
		"1": {{"id": "u1", "email": "a@example.com"}, {"id": "u2", "email": "b@example.com"}},
		"2": {{"id": "u3", "email": "c@example.com"}, {"id": "u4", "email": ""}},
		"3": {},
	}
	client := newDirectoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		assert.Equal(t, fmt.Sprintf("%d", listPageSize), r.URL.Query().Get("per_page"))
		json.NewEncoder(w).Encode(map[string]any{"users": pages[page]})
	})

	emails, err := client.ListUserEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, emails)
}
