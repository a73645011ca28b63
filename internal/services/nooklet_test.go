package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooklet/nooklet/internal/model"
)

func strptr(s string) *string                        { return &s }
func boolptr(b bool) *bool                           { return &b }
func typeptr(t model.NookletType) *model.NookletType { return &t }

func TestComputeWordCount(t *testing.T) {
	cases := []struct {
		name    string
		content *string
		want    *int
	}{
		{"nil content", nil, nil},
		{"empty string", strptr(""), intptr(0)},
		{"whitespace only", strptr("  \t\n  "), intptr(0)},
		{"two words", strptr("Hello world"), intptr(2)},
		{"mixed whitespace runs", strptr("  one\ttwo\n\nthree  "), intptr(3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeWordCount(tc.content)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func intptr(i int) *int { return &i }

func TestSanitizeMetadata(t *testing.T) {
	assert.Equal(t, map[string]interface{}{}, SanitizeMetadata(nil))
	assert.Equal(t, map[string]interface{}{}, SanitizeMetadata([]interface{}{1, 2, 3}))
	assert.Equal(t, map[string]interface{}{}, SanitizeMetadata("scalar"))

	obj := map[string]interface{}{"mood": "calm"}
	assert.Equal(t, obj, SanitizeMetadata(obj))
}

func TestCreateAppliesDefaults(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	profileID := fs.addProfile("auth-1")

	n, err := svc.Create(context.Background(), CreateNookletRequest{
		ProfileID: profileID,
		Content:   "Hello world",
	})
	require.NoError(t, err)

	assert.Equal(t, model.TypeJournal, n.Type)
	assert.False(t, n.IsDraft)
	assert.False(t, n.IsFavorite)
	assert.False(t, n.IsArchived)
	assert.Nil(t, n.PublishedAt)
	assert.Equal(t, map[string]interface{}{}, n.Metadata)
	require.NotNil(t, n.WordCount)
	assert.Equal(t, 2, *n.WordCount)
}

func TestCreateCoercesArrayMetadata(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	profileID := fs.addProfile("auth-1")

	n, err := svc.Create(context.Background(), CreateNookletRequest{
		ProfileID: profileID,
		Content:   "x",
		Metadata:  []interface{}{1, 2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, n.Metadata)
}

func TestUpdateContentRecomputesWordCount(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	profileID := fs.addProfile("auth-1")
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateNookletRequest{ProfileID: profileID, Content: "one two three"})
	require.NoError(t, err)
	require.Equal(t, 3, *n.WordCount)

	upd, err := svc.Update(ctx, n.ID, profileID, UpdateNookletRequest{Content: strptr("")})
	require.NoError(t, err)
	require.NotNil(t, upd.WordCount)
	assert.Equal(t, 0, *upd.WordCount)
}

func TestUpdateOtherFieldsLeaveWordCount(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	profileID := fs.addProfile("auth-1")
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateNookletRequest{ProfileID: profileID, Content: "one two"})
	require.NoError(t, err)

	upd, err := svc.Update(ctx, n.ID, profileID, UpdateNookletRequest{
		IsFavorite: boolptr(true),
		Summary:    strptr("short"),
		SummarySet: true,
		Type:       typeptr(model.TypeVoice),
	})
	require.NoError(t, err)
	require.NotNil(t, upd.WordCount)
	assert.Equal(t, 2, *upd.WordCount)
	assert.True(t, upd.IsFavorite)
	assert.Equal(t, model.TypeVoice, upd.Type)
	require.NotNil(t, upd.Summary)
	assert.Equal(t, "short", *upd.Summary)
}

func TestUpdateDraftForcesPublishedAtNull(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	profileID := fs.addProfile("auth-1")
	ctx := context.Background()

	published := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n, err := svc.Create(ctx, CreateNookletRequest{
		ProfileID:   profileID,
		Content:     "x",
		PublishedAt: &published,
	})
	require.NoError(t, err)
	require.NotNil(t, n.PublishedAt)

	upd, err := svc.Update(ctx, n.ID, profileID, UpdateNookletRequest{IsDraft: boolptr(true)})
	require.NoError(t, err)
	assert.True(t, upd.IsDraft)
	assert.Nil(t, upd.PublishedAt)
}

func TestUpdateDraftWinsOverPublishedAtPatch(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	profileID := fs.addProfile("auth-1")
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateNookletRequest{ProfileID: profileID, Content: "x"})
	require.NoError(t, err)

	published := time.Now().UTC()
	upd, err := svc.Update(ctx, n.ID, profileID, UpdateNookletRequest{
		IsDraft:        boolptr(true),
		PublishedAt:    &published,
		PublishedAtSet: true,
	})
	require.NoError(t, err)
	assert.Nil(t, upd.PublishedAt)
}

func TestUpdateNullClearsNullableFields(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	profileID := fs.addProfile("auth-1")
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateNookletRequest{
		ProfileID:  profileID,
		Content:    "x",
		RawContent: strptr("raw"),
		Summary:    strptr("sum"),
	})
	require.NoError(t, err)

	upd, err := svc.Update(ctx, n.ID, profileID, UpdateNookletRequest{
		RawContentSet: true, // explicit null
		SummarySet:    true,
	})
	require.NoError(t, err)
	assert.Nil(t, upd.RawContent)
	assert.Nil(t, upd.Summary)

	// Absent fields stay untouched.
	upd2, err := svc.Update(ctx, n.ID, profileID, UpdateNookletRequest{IsFavorite: boolptr(true)})
	require.NoError(t, err)
	assert.Nil(t, upd2.RawContent)
	assert.Equal(t, "x", upd2.Content)
}

func TestUpdateWrongOwnerIsNotFound(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	owner := fs.addProfile("auth-1")
	other := fs.addProfile("auth-2")
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateNookletRequest{ProfileID: owner, Content: "mine"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, n.ID, other, UpdateNookletRequest{Content: strptr("stolen")})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.Update(ctx, "no-such-id", owner, UpdateNookletRequest{Content: strptr("x")})
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Wrong owner and missing id are indistinguishable.
	_, errOwner := svc.Archive(ctx, n.ID, other)
	_, errMissing := svc.Archive(ctx, "no-such-id", owner)
	assert.Equal(t, errOwner, errMissing)
}

func TestArchiveIsIdempotent(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	profileID := fs.addProfile("auth-1")
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateNookletRequest{ProfileID: profileID, Content: "bye"})
	require.NoError(t, err)

	first, err := svc.Archive(ctx, n.ID, profileID)
	require.NoError(t, err)
	assert.True(t, first.IsArchived)
	savesAfterFirst := fs.nookletSaves

	second, err := svc.Archive(ctx, n.ID, profileID)
	require.NoError(t, err)
	assert.True(t, second.IsArchived)
	assert.Equal(t, savesAfterFirst, fs.nookletSaves, "second archive must not write")
}

func TestRestoreMirrorsArchive(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	profileID := fs.addProfile("auth-1")
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateNookletRequest{ProfileID: profileID, Content: "back"})
	require.NoError(t, err)

	_, err = svc.Archive(ctx, n.ID, profileID)
	require.NoError(t, err)

	restored, err := svc.Restore(ctx, n.ID, profileID)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)

	saves := fs.nookletSaves
	again, err := svc.Restore(ctx, n.ID, profileID)
	require.NoError(t, err)
	assert.False(t, again.IsArchived)
	assert.Equal(t, saves, fs.nookletSaves)
}

func TestListExcludesArchived(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	profileID := fs.addProfile("auth-1")
	ctx := context.Background()

	keep, err := svc.Create(ctx, CreateNookletRequest{ProfileID: profileID, Content: "keep"})
	require.NoError(t, err)
	gone, err := svc.Create(ctx, CreateNookletRequest{ProfileID: profileID, Content: "gone"})
	require.NoError(t, err)

	_, err = svc.Archive(ctx, gone.ID, profileID)
	require.NoError(t, err)

	list, err := svc.ListForProfile(ctx, profileID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}

func TestListForProfileNeverNil(t *testing.T) {
	fs := newFakeStore()
	svc := NewNookletService(fs)
	list, err := svc.ListForProfile(context.Background(), "empty-profile")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Len(t, list, 0)
}
