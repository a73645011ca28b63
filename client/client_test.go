package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooklet/nooklet/client"
	"github.com/nooklet/nooklet/client/autosave"
	"github.com/nooklet/nooklet/internal/api"
	"github.com/nooklet/nooklet/internal/auth"
	"github.com/nooklet/nooklet/internal/model"
	"github.com/nooklet/nooklet/internal/store/sqlite"
)

func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sqlite.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(context.Background(), db))

	st := sqlite.NewWithDB(db)
	srv := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Store:      st,
		Authorizer: auth.NewSessionAuthorizer(st),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func loggedInClient(t *testing.T, srv *httptest.Server, email string) *client.Client {
	t.Helper()
	ctx := context.Background()
	c := client.New(srv.URL)
	require.NoError(t, c.Register(ctx, email, "hunter22pass", nil, nil))
	token, err := c.Login(ctx, email, "hunter22pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return c
}

func TestClientRoundTrip(t *testing.T) {
	srv := newTestBackend(t)
	c := loggedInClient(t, srv, "rt@example.com")
	ctx := context.Background()

	created, err := c.CreateNooklet(ctx, client.CreateNookletRequest{Content: "hello from the sdk"})
	require.NoError(t, err)
	assert.Equal(t, model.TypeJournal, created.Type)
	require.NotNil(t, created.WordCount)
	assert.Equal(t, 4, *created.WordCount)

	updated, err := c.UpdateNooklet(ctx, created.ID, map[string]interface{}{"content": "two words"})
	require.NoError(t, err)
	require.NotNil(t, updated.WordCount)
	assert.Equal(t, 2, *updated.WordCount)

	list, err := c.ListNooklets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	_, err = c.ArchiveNooklet(ctx, created.ID)
	require.NoError(t, err)
	list, err = c.ListNooklets(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = c.RestoreNooklet(ctx, created.ID)
	require.NoError(t, err)
	list, err = c.ListNooklets(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestClientNotFound(t *testing.T) {
	srv := newTestBackend(t)
	c := loggedInClient(t, srv, "nf@example.com")

	_, err := c.UpdateNooklet(context.Background(), "does-not-exist", map[string]interface{}{"content": "x"})
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOOKLET_NOT_FOUND", apiErr.Tag)
}

func TestClientExplicitNullClearsField(t *testing.T) {
	srv := newTestBackend(t)
	c := loggedInClient(t, srv, "null@example.com")
	ctx := context.Background()

	summary := "a summary"
	created, err := c.CreateNooklet(ctx, client.CreateNookletRequest{Content: "text", Summary: &summary})
	require.NoError(t, err)
	require.NotNil(t, created.Summary)

	// nil in the patch map serializes as JSON null, which clears the field;
	// omitting the key leaves it untouched.
	updated, err := c.UpdateNooklet(ctx, created.ID, map[string]interface{}{"summary": nil})
	require.NoError(t, err)
	assert.Nil(t, updated.Summary)
}

// The full editing loop: debounced auto-save through the SDK, then
// archive-on-empty removing the entry from the list.
func TestAutosaveThroughRealServer(t *testing.T) {
	srv := newTestBackend(t)
	c := loggedInClient(t, srv, "edit@example.com")
	ctx := context.Background()

	created, err := c.CreateNooklet(ctx, client.CreateNookletRequest{Content: "first draft"})
	require.NoError(t, err)

	ed := autosave.NewEditor(c.Saver(), autosave.WithDebounce(20*time.Millisecond))
	t.Cleanup(func() { _ = ed.Close() })

	require.NoError(t, ed.BeginEdit(created.ID, created.Content, 0))
	require.NoError(t, ed.SetContent("first draft, revised tonight"))

	assert.Eventually(t, func() bool {
		list, err := c.ListNooklets(ctx)
		return err == nil && len(list) == 1 && list[0].Content == "first draft, revised tonight"
	}, 2*time.Second, 10*time.Millisecond, "debounced save should reach the server")

	// Clearing the buffer archives instead of saving empty content.
	require.NoError(t, ed.SetContent("  "))
	require.NoError(t, ed.FinishEdit(ctx))

	list, err := c.ListNooklets(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "emptied entry should be archived away")
	assert.Equal(t, autosave.StateIdle, ed.Snapshot().State)
}
