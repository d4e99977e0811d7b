package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/AnshRaj112/dailymoji-backend/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntries_RequireAuthentication(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/entries"},
		{http.MethodPost, "/api/entries"},
		{http.MethodDelete, "/api/entries/1760000000"},
	}
	for _, tt := range tests {
		var resp handlers.MessageResponse
		status := env.do(t, tt.method, tt.path, "not-a-session", map[string]string{"emoji": "😀"}, &resp)
		assert.Equal(t, http.StatusUnauthorized, status, tt.method+" "+tt.path)
		assert.False(t, resp.Success)
	}
}

func TestEntries_CreateListDelete(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var created handlers.EntryResponse
	status := env.do(t, http.MethodPost, "/api/entries", env.token, handlers.CreateEntryRequest{Emoji: "🎉", Context: "shipped it"}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.True(t, created.Success)
	require.NotNil(t, created.Entry)
	assert.Equal(t, "🎉", created.Entry.Emoji)
	assert.Equal(t, "shipped it", created.Entry.Context)

	var list handlers.EntriesResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/entries", env.token, nil, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, created.Entry.ID, list.Entries[0].ID)

	var deleted handlers.MessageResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/entries/"+created.Entry.ID, env.token, nil, &deleted))
	assert.True(t, deleted.Success)

	// Second delete is a no-op.
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/entries/"+created.Entry.ID, env.token, nil, &deleted))

	list = handlers.EntriesResponse{}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/entries", env.token, nil, &list))
	assert.Equal(t, 0, list.Total)
	assert.NotNil(t, list.Entries)
}

func TestEntries_CreateRejectsInvalidEmoji(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var resp handlers.MessageResponse
	status := env.do(t, http.MethodPost, "/api/entries", env.token, handlers.CreateEntryRequest{Emoji: ""}, &resp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Pick a single emoji", resp.Message)
}

func TestEntries_DeleteRejectsGlyphAsID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var resp handlers.MessageResponse
	status := env.do(t, http.MethodDelete, "/api/entries/"+url.PathEscape("🎉"), env.token, nil, &resp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Unknown entry id", resp.Message)
}

func TestEntries_BadBody(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var resp handlers.MessageResponse
	status := env.do(t, http.MethodPost, "/api/entries", env.token, "not an object", &resp)
	assert.Equal(t, http.StatusBadRequest, status)
}
