// Package storetest provides a driver-agnostic compliance suite for
// store.Store implementations. Each driver's test package calls RunSuite
// against a freshly provisioned store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooklet/nooklet/internal/model"
	"github.com/nooklet/nooklet/internal/store"
)

// Factory provisions an empty store for one subtest. Cleanup should be
// registered on t.
type Factory func(t *testing.T) store.Store

// RunSuite exercises the Store contract against the given factory.
func RunSuite(t *testing.T, newStore Factory) {
	t.Run("AuthUsersCreateWithProfile", func(t *testing.T) { testCreateWithProfile(t, newStore(t)) })
	t.Run("AuthUsersLookup", func(t *testing.T) { testAuthUserLookup(t, newStore(t)) })
	t.Run("ProfilesLookup", func(t *testing.T) { testProfileLookup(t, newStore(t)) })
	t.Run("NookletsRoundTrip", func(t *testing.T) { testNookletRoundTrip(t, newStore(t)) })
	t.Run("NookletsOwnerScoping", func(t *testing.T) { testNookletOwnerScoping(t, newStore(t)) })
	t.Run("NookletsListActive", func(t *testing.T) { testNookletListActive(t, newStore(t)) })
	t.Run("NookletsSave", func(t *testing.T) { testNookletSave(t, newStore(t)) })
	t.Run("NookletsNullableFields", func(t *testing.T) { testNookletNullableFields(t, newStore(t)) })
	t.Run("Sessions", func(t *testing.T) { testSessions(t, newStore(t)) })
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

// seedOwner registers an auth user + profile pair and returns both ids.
func seedOwner(t *testing.T, s store.Store, email string) (authUserID, profileID string) {
	t.Helper()
	u, p, err := s.AuthUsers().CreateWithProfile(context.Background(),
		&model.AuthUser{Email: email, PasswordHash: "x"},
		&model.Profile{Username: strp("user-" + email)})
	require.NoError(t, err)
	return u.ID, p.ID
}

func testCreateWithProfile(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, p, err := s.AuthUsers().CreateWithProfile(ctx,
		&model.AuthUser{Email: "a@example.com", PasswordHash: "hash"},
		&model.Profile{Username: strp("alpha"), DisplayName: strp("Alpha")})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsArchived)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, u.ID, p.AuthUserID)
	assert.False(t, u.CreatedAt.IsZero())
}

func testAuthUserLookup(t *testing.T, s store.Store) {
	ctx := context.Background()
	authID, _ := seedOwner(t, s, "b@example.com")

	byEmail, err := s.AuthUsers().GetByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, authID, byEmail.ID)
	assert.Equal(t, "x", byEmail.PasswordHash)

	byID, err := s.AuthUsers().GetByID(ctx, authID)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", byID.Email)

	_, err = s.AuthUsers().GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.AuthUsers().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testProfileLookup(t *testing.T, s store.Store) {
	ctx := context.Background()
	authID, profileID := seedOwner(t, s, "c@example.com")

	byAuth, err := s.Profiles().GetByAuthUser(ctx, authID)
	require.NoError(t, err)
	assert.Equal(t, profileID, byAuth.ID)

	byID, err := s.Profiles().GetByID(ctx, profileID)
	require.NoError(t, err)
	assert.Equal(t, authID, byID.AuthUserID)

	byName, err := s.Profiles().GetByUsername(ctx, "user-c@example.com")
	require.NoError(t, err)
	assert.Equal(t, profileID, byName.ID)

	_, err = s.Profiles().GetByAuthUser(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testNookletRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, profileID := seedOwner(t, s, "d@example.com")

	published := time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)
	created, err := s.Nooklets().Create(ctx, &model.Nooklet{
		ProfileID:   profileID,
		Type:        model.TypeJournal,
		Content:     "Slept well, wrote a bit",
		RawContent:  strp("# Slept well\nwrote a bit"),
		Summary:     strp("good day"),
		Metadata:    map[string]interface{}{"mood": "calm", "stars": float64(4)},
		WordCount:   intp(5),
		PublishedAt: &published,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Nooklets().GetByID(ctx, profileID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, model.TypeJournal, got.Type)
	assert.Equal(t, "Slept well, wrote a bit", got.Content)
	require.NotNil(t, got.RawContent)
	assert.Equal(t, "# Slept well\nwrote a bit", *got.RawContent)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "good day", *got.Summary)
	assert.Equal(t, map[string]interface{}{"mood": "calm", "stars": float64(4)}, got.Metadata)
	require.NotNil(t, got.WordCount)
	assert.Equal(t, 5, *got.WordCount)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, got.PublishedAt.Equal(published))
}

func testNookletOwnerScoping(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, owner := seedOwner(t, s, "e1@example.com")
	_, intruder := seedOwner(t, s, "e2@example.com")

	created, err := s.Nooklets().Create(ctx, &model.Nooklet{
		ProfileID: owner, Type: model.TypeJournal, Content: "private",
		Metadata: map[string]interface{}{},
	})
	require.NoError(t, err)

	_, errWrongOwner := s.Nooklets().GetByID(ctx, intruder, created.ID)
	_, errMissing := s.Nooklets().GetByID(ctx, owner, "no-such-id")
	assert.ErrorIs(t, errWrongOwner, model.ErrNotFound)
	assert.ErrorIs(t, errMissing, model.ErrNotFound)
	// Indistinguishable failure modes.
	assert.Equal(t, errWrongOwner, errMissing)

	stolen := *created
	stolen.ProfileID = intruder
	stolen.Content = "stolen"
	_, err = s.Nooklets().Save(ctx, &stolen)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// The original row is untouched.
	got, err := s.Nooklets().GetByID(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Content)
}

func testNookletListActive(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, profileID := seedOwner(t, s, "f@example.com")
	_, otherID := seedOwner(t, s, "f2@example.com")

	mk := func(content string) *model.Nooklet {
		n, err := s.Nooklets().Create(ctx, &model.Nooklet{
			ProfileID: profileID, Type: model.TypeJournal, Content: content,
			Metadata: map[string]interface{}{},
		})
		require.NoError(t, err)
		// Keep creation timestamps strictly increasing for the order check.
		time.Sleep(2 * time.Millisecond)
		return n
	}
	first := mk("first")
	second := mk("second")
	archived := mk("archived")

	archived.IsArchived = true
	_, err := s.Nooklets().Save(ctx, archived)
	require.NoError(t, err)

	_, err = s.Nooklets().Create(ctx, &model.Nooklet{
		ProfileID: otherID, Type: model.TypeJournal, Content: "theirs",
		Metadata: map[string]interface{}{},
	})
	require.NoError(t, err)

	list, err := s.Nooklets().ListActive(ctx, profileID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	empty, err := s.Nooklets().ListActive(ctx, "no-such-profile")
	require.NoError(t, err)
	assert.Len(t, empty, 0)
}

func testNookletSave(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, profileID := seedOwner(t, s, "g@example.com")

	created, err := s.Nooklets().Create(ctx, &model.Nooklet{
		ProfileID: profileID, Type: model.TypeJournal, Content: "v1",
		Metadata: map[string]interface{}{}, WordCount: intp(1),
	})
	require.NoError(t, err)

	created.Content = "v2 longer"
	created.WordCount = intp(2)
	created.IsFavorite = true
	created.IsDraft = true
	created.Metadata = map[string]interface{}{"rev": float64(2)}
	saved, err := s.Nooklets().Save(ctx, created)
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.Before(created.CreatedAt))

	got, err := s.Nooklets().GetByID(ctx, profileID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2 longer", got.Content)
	assert.Equal(t, 2, *got.WordCount)
	assert.True(t, got.IsFavorite)
	assert.True(t, got.IsDraft)
	assert.Equal(t, map[string]interface{}{"rev": float64(2)}, got.Metadata)
}

func testNookletNullableFields(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, profileID := seedOwner(t, s, "h@example.com")

	created, err := s.Nooklets().Create(ctx, &model.Nooklet{
		ProfileID: profileID, Type: model.TypeQuickCapture, Content: "bare",
		Metadata: map[string]interface{}{},
	})
	require.NoError(t, err)

	got, err := s.Nooklets().GetByID(ctx, profileID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RawContent)
	assert.Nil(t, got.Summary)
	assert.Nil(t, got.WordCount)
	assert.Nil(t, got.PublishedAt)
	assert.NotNil(t, got.Metadata)

	// Set then clear.
	got.RawContent = strp("raw")
	got.PublishedAt = func() *time.Time { ts := time.Now().UTC().Truncate(time.Second); return &ts }()
	_, err = s.Nooklets().Save(ctx, got)
	require.NoError(t, err)

	got.RawContent = nil
	got.PublishedAt = nil
	_, err = s.Nooklets().Save(ctx, got)
	require.NoError(t, err)

	final, err := s.Nooklets().GetByID(ctx, profileID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, final.RawContent)
	assert.Nil(t, final.PublishedAt)
}

func testSessions(t *testing.T, s store.Store) {
	ctx := context.Background()
	authID, _ := seedOwner(t, s, "i@example.com")

	sess, err := s.Sessions().Create(ctx, &model.Session{AuthUserID: authID})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)

	got, err := s.Sessions().GetByToken(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, authID, got.AuthUserID)

	require.NoError(t, s.Sessions().Delete(ctx, sess.Token))
	_, err = s.Sessions().GetByToken(ctx, sess.Token)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Deleting an unknown token is not an error.
	assert.NoError(t, s.Sessions().Delete(ctx, "never-issued"))
}
