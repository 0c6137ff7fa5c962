package facade

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/letterdesk/internal/client/models"
	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	user       *models.User
	token      string
	next       string
	refreshErr error
	refreshes  int
}

func (s *fakeSessions) Current() (models.User, bool) {
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *fakeSessions) Token() string { return s.token }

func (s *fakeSessions) Refresh(context.Context) (string, error) {
	s.refreshes++
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	s.token = s.next
	return s.next, nil
}

// fakeAPI accepts only validToken and reports expiry for expiredToken.
type fakeAPI struct {
	validToken   string
	expiredToken string
	calls        []string
	letters      []models.Letter
	users        []models.User
	deleted      string
	failWith     error
}

func (a *fakeAPI) check(method, tok string) error {
	a.calls = append(a.calls, method+":"+tok)
	if a.failWith != nil {
		return a.failWith
	}
	switch tok {
	case a.validToken:
		return nil
	case a.expiredToken:
		return common.ErrTokenExpired
	}
	return common.ErrInvalidToken
}

func (a *fakeAPI) FetchLetters(_ context.Context, tok string) ([]models.Letter, error) {
	if err := a.check("FetchLetters", tok); err != nil {
		return nil, err
	}
	return a.letters, nil
}

func (a *fakeAPI) CreateLetter(_ context.Context, tok string, in models.LetterInput) (models.Letter, error) {
	if err := a.check("CreateLetter", tok); err != nil {
		return models.Letter{}, err
	}
	return models.Letter{ID: "new", Title: in.Title}, nil
}

func (a *fakeAPI) UpdateLetter(_ context.Context, tok string, l models.Letter) (models.Letter, error) {
	if err := a.check("UpdateLetter", tok); err != nil {
		return models.Letter{}, err
	}
	return l, nil
}

func (a *fakeAPI) DeleteLetter(_ context.Context, tok, id string) error {
	if err := a.check("DeleteLetter", tok); err != nil {
		return err
	}
	a.deleted = id
	return nil
}

func (a *fakeAPI) FetchAllLetters(_ context.Context, tok string) ([]models.Letter, error) {
	if err := a.check("FetchAllLetters", tok); err != nil {
		return nil, err
	}
	return a.letters, nil
}

func (a *fakeAPI) FetchAllUsers(_ context.Context, tok string) ([]models.User, error) {
	if err := a.check("FetchAllUsers", tok); err != nil {
		return nil, err
	}
	return a.users, nil
}

func (a *fakeAPI) GenerateDraft(_ context.Context, tok string, r models.DraftRequest) (string, error) {
	if err := a.check("GenerateDraft", tok); err != nil {
		return "", err
	}
	return "draft for " + r.Title, nil
}

func (a *fakeAPI) AffiliateStats(_ context.Context, tok string) (models.AffiliateStats, error) {
	if err := a.check("AffiliateStats", tok); err != nil {
		return models.AffiliateStats{}, err
	}
	return models.AffiliateStats{Code: "EMP001", TotalSignups: 1}, nil
}

func signedIn(role models.Role) *fakeSessions {
	return &fakeSessions{user: &models.User{ID: "u1", Email: "a@example.com", Role: role}, token: "good"}
}

func TestUnauthenticated(t *testing.T) {
	api := &fakeAPI{validToken: "good"}
	f := NewLetters(&fakeSessions{}, api)
	ctx := context.Background()

	_, err := f.FetchLetters(ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	_, err = f.CreateLetter(ctx, models.LetterInput{Title: "x"})
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	err = f.DeleteLetter(ctx, "l1")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	_, err = f.GenerateDraft(ctx, models.DraftRequest{})
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	assert.Empty(t, api.calls)
}

func TestOwnLetters(t *testing.T) {
	api := &fakeAPI{validToken: "good", letters: []models.Letter{{ID: "l1"}}}
	f := NewLetters(signedIn(models.RoleUser), api)
	ctx := context.Background()

	got, err := f.FetchLetters(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Letter{{ID: "l1"}}, got)

	created, err := f.CreateLetter(ctx, models.LetterInput{Title: "Breach"})
	require.NoError(t, err)
	assert.Equal(t, "Breach", created.Title)

	updated, err := f.UpdateLetter(ctx, models.Letter{ID: "l1", Status: "submitted"})
	require.NoError(t, err)
	assert.Equal(t, "submitted", updated.Status)

	require.NoError(t, f.DeleteLetter(ctx, "l1"))
	assert.Equal(t, "l1", api.deleted)

	text, err := f.GenerateDraft(ctx, models.DraftRequest{Title: "Demand"})
	require.NoError(t, err)
	assert.Equal(t, "draft for Demand", text)
}

func TestMissingID(t *testing.T) {
	api := &fakeAPI{validToken: "good"}
	f := NewLetters(signedIn(models.RoleAdmin), api)

	_, err := f.UpdateLetter(context.Background(), models.Letter{})
	require.ErrorIs(t, err, common.ErrValidation)
	require.ErrorIs(t, f.DeleteLetter(context.Background(), ""), common.ErrValidation)
	assert.Empty(t, api.calls)
}

func TestRoleScopedCalls(t *testing.T) {
	tests := []struct {
		role                models.Role
		letters, users, aff bool
	}{
		{models.RoleUser, false, false, false},
		{models.RoleEmployee, true, false, true},
		{models.RoleAdmin, true, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			api := &fakeAPI{validToken: "good"}
			f := NewLetters(signedIn(tt.role), api)
			ctx := context.Background()

			check := func(allowed bool, err error) {
				t.Helper()
				if allowed {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, common.ErrPermissionDenied)
				}
			}

			_, err := f.FetchAllLetters(ctx)
			check(tt.letters, err)
			_, err = f.FetchAllUsers(ctx)
			check(tt.users, err)
			_, err = f.AffiliateStats(ctx)
			check(tt.aff, err)
		})
	}
}

func TestDeniedCallsNeverReachServer(t *testing.T) {
	api := &fakeAPI{validToken: "good"}
	f := NewLetters(signedIn(models.RoleUser), api)

	_, err := f.FetchAllUsers(context.Background())
	require.ErrorIs(t, err, common.ErrPermissionDenied)
	assert.Empty(t, api.calls)
}

func TestExpiredTokenRefreshesOnce(t *testing.T) {
	s := signedIn(models.RoleUser)
	s.token, s.next = "stale", "good"
	api := &fakeAPI{validToken: "good", expiredToken: "stale"}
	f := NewLetters(s, api)

	_, err := f.FetchLetters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, s.refreshes)
	assert.Equal(t, []string{"FetchLetters:stale", "FetchLetters:good"}, api.calls)
}

func TestExpiredTokenRefreshFails(t *testing.T) {
	s := signedIn(models.RoleUser)
	s.token = "stale"
	s.refreshErr = common.ErrNotAuthenticated
	api := &fakeAPI{validToken: "good", expiredToken: "stale"}
	f := NewLetters(s, api)

	_, err := f.FetchLetters(context.Background())
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Len(t, api.calls, 1)
}

func TestServerErrorsPassThrough(t *testing.T) {
	boom := &common.RemoteServiceError{Kind: common.RemoteUnavailable, Err: errors.New("down")}
	api := &fakeAPI{validToken: "good", failWith: boom}
	s := signedIn(models.RoleAdmin)
	f := NewLetters(s, api)

	_, err := f.FetchAllUsers(context.Background())
	assert.True(t, common.IsRemoteKind(err, common.RemoteUnavailable))
	assert.Zero(t, s.refreshes)

	api.failWith = common.ErrPermissionDenied
	_, err = f.FetchAllLetters(context.Background())
	assert.ErrorIs(t, err, common.ErrPermissionDenied)
}
