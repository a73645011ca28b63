package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nooklet/nooklet/internal/model"
	"github.com/nooklet/nooklet/internal/store"
)

// fakeStore is an in-memory store.Store used by service tests.
type fakeStore struct {
	authUsers map[string]*model.AuthUser // by id
	profiles  map[string]*model.Profile  // by id
	nooklets  map[string]*model.Nooklet  // by id
	sessions  map[string]*model.Session  // by token

	nookletSaves int // counts Save calls, to assert no-op paths
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		authUsers: map[string]*model.AuthUser{},
		profiles:  map[string]*model.Profile{},
		nooklets:  map[string]*model.Nooklet{},
		sessions:  map[string]*model.Session{},
	}
}

func (f *fakeStore) AuthUsers() store.AuthUsers { return &fakeAuthUsers{f} }
func (f *fakeStore) Profiles() store.Profiles   { return &fakeProfiles{f} }
func (f *fakeStore) Nooklets() store.Nooklets   { return &fakeNooklets{f} }
func (f *fakeStore) Sessions() store.Sessions   { return &fakeSessions{f} }

// addProfile seeds a profile and returns its id.
func (f *fakeStore) addProfile(authUserID string) string {
	id := uuid.New().String()
	f.profiles[id] = &model.Profile{ID: id, AuthUserID: authUserID}
	return id
}

type fakeAuthUsers struct{ p *fakeStore }

func (a *fakeAuthUsers) CreateWithProfile(_ context.Context, u *model.AuthUser, pr *model.Profile) (*model.AuthUser, *model.Profile, error) {
	now := time.Now().UTC()
	outU := *u
	outU.ID = uuid.New().String()
	outU.IsActive = true
	outU.CreatedAt = now
	outU.UpdatedAt = now
	a.p.authUsers[outU.ID] = &outU

	outP := *pr
	outP.ID = uuid.New().String()
	outP.AuthUserID = outU.ID
	outP.CreatedAt = now
	outP.UpdatedAt = now
	a.p.profiles[outP.ID] = &outP
	return &outU, &outP, nil
}

func (a *fakeAuthUsers) GetByEmail(_ context.Context, email string) (*model.AuthUser, error) {
	for _, u := range a.p.authUsers {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, model.ErrNotFound
}

func (a *fakeAuthUsers) GetByID(_ context.Context, id string) (*model.AuthUser, error) {
	if u, ok := a.p.authUsers[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, model.ErrNotFound
}

type fakeProfiles struct{ p *fakeStore }

func (f *fakeProfiles) GetByAuthUser(_ context.Context, authUserID string) (*model.Profile, error) {
	for _, pr := range f.p.profiles {
		if pr.AuthUserID == authUserID {
			out := *pr
			return &out, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (*model.Profile, error) {
	if pr, ok := f.p.profiles[id]; ok {
		out := *pr
		return &out, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeProfiles) GetByUsername(_ context.Context, username string) (*model.Profile, error) {
	for _, pr := range f.p.profiles {
		if pr.Username != nil && *pr.Username == username {
			out := *pr
			return &out, nil
		}
	}
	return nil, model.ErrNotFound
}

type fakeNooklets struct{ p *fakeStore }

func (f *fakeNooklets) Create(_ context.Context, n *model.Nooklet) (*model.Nooklet, error) {
	out := *n
	out.ID = uuid.New().String()
	now := time.Now().UTC()
	out.CreatedAt = now
	out.UpdatedAt = now
	f.p.nooklets[out.ID] = &out
	cp := out
	return &cp, nil
}

func (f *fakeNooklets) GetByID(_ context.Context, profileID, id string) (*model.Nooklet, error) {
	n, ok := f.p.nooklets[id]
	if !ok || n.ProfileID != profileID {
		return nil, model.ErrNotFound
	}
	out := *n
	return &out, nil
}

func (f *fakeNooklets) ListActive(_ context.Context, profileID string) ([]*model.Nooklet, error) {
	var out []*model.Nooklet
	for _, n := range f.p.nooklets {
		if n.ProfileID == profileID && !n.IsArchived {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNooklets) Save(_ context.Context, n *model.Nooklet) (*model.Nooklet, error) {
	cur, ok := f.p.nooklets[n.ID]
	if !ok || cur.ProfileID != n.ProfileID {
		return nil, model.ErrNotFound
	}
	f.p.nookletSaves++
	out := *n
	out.UpdatedAt = time.Now().UTC()
	f.p.nooklets[out.ID] = &out
	cp := out
	return &cp, nil
}

type fakeSessions struct{ p *fakeStore }

func (f *fakeSessions) Create(_ context.Context, s *model.Session) (*model.Session, error) {
	out := *s
	if out.Token == "" {
		out.Token = uuid.New().String()
	}
	out.CreatedAt = time.Now().UTC()
	f.p.sessions[out.Token] = &out
	cp := out
	return &cp, nil
}

func (f *fakeSessions) GetByToken(_ context.Context, token string) (*model.Session, error) {
	if s, ok := f.p.sessions[token]; ok {
		out := *s
		return &out, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	delete(f.p.sessions, token)
	return nil
}
