package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/client/models"
	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/rpc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLogin_ConvertsSession(t *testing.T) {
	f := &fakeServer{session: rpc.SessionResponse{
		User:         rpc.User{ID: "u1", Role: "employee", AffiliateCode: "EMP001"},
		AccessToken:  "a",
		RefreshToken: "r",
	}}
	c := newTestClient(t, f, time.Second)

	s, err := c.Login(context.Background(), "e@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, Session{
		User:         models.User{ID: "u1", Email: "e@example.com", Role: models.RoleEmployee, AffiliateCode: "EMP001"},
		AccessToken:  "a",
		RefreshToken: "r",
	}, s)
}

func TestCalls_RecoverTaxonomySentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"duplicate", common.ErrDuplicateAccount},
		{"not found", common.ErrUserNotFound},
		{"bad password", common.ErrInvalidCredentials},
		{"expired token", common.ErrTokenExpired},
		{"permission", common.ErrPermissionDenied},
		{"throttled", common.ErrTooManyRequests},
		{"generation", common.ErrGenerationService},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, &fakeServer{err: tt.err}, time.Second)
			_, err := c.Login(context.Background(), "a@example.com", "pw")
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCalls_WrappedSentinelKeepsDetail(t *testing.T) {
	f := &fakeServer{err: errWrap{common.ErrValidation, "validation error: title is required"}}
	c := newTestClient(t, f, time.Second)

	_, err := c.UpdateLetter(context.Background(), "tok", models.Letter{ID: "l1"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "validation error: title is required", err.Error())
}

type errWrap struct {
	inner error
	msg   string
}

func (e errWrap) Error() string { return e.msg }
func (e errWrap) Unwrap() error { return e.inner }

func TestMapError_RemoteKinds(t *testing.T) {
	tests := []struct {
		code codes.Code
		kind common.RemoteKind
	}{
		{codes.Unavailable, common.RemoteUnavailable},
		{codes.DeadlineExceeded, common.RemoteUnavailable},
		{codes.AlreadyExists, common.RemoteConflict},
		{codes.NotFound, common.RemoteNotFound},
		{codes.PermissionDenied, common.RemotePermissionDenied},
		{codes.Internal, common.RemoteUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := mapError(status.Error(tt.code, "something odd"))
			assert.True(t, common.IsRemoteKind(err, tt.kind), "got %v", err)
		})
	}

	assert.NoError(t, mapError(nil))
	assert.True(t, common.IsRemoteKind(mapError(errors.New("plain")), common.RemoteUnknown))
}

func TestPing_TimeoutIsUnavailable(t *testing.T) {
	c := newTestClient(t, &fakeServer{block: time.Second}, 50*time.Millisecond)

	err := c.Ping(context.Background())
	assert.True(t, common.IsRemoteKind(err, common.RemoteUnavailable), "got %v", err)
}

func TestProtectedCalls_CarryAccessToken(t *testing.T) {
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f := &fakeServer{
		user:    rpc.User{ID: "u1", Email: "a@example.com", Role: "admin"},
		letters: []rpc.Letter{{ID: "l1", Title: "Breach", DueDate: &due, TemplateData: map[string]string{"k": "v"}}},
		users:   []rpc.User{{ID: "u1", Role: "admin"}, {ID: "u2", Role: "user"}},
		draft:   "Dear Sir",
		stats:   rpc.AffiliateStatsResponse{Code: "EMP001", TotalSignups: 2, TotalEarnings: 9.95, TotalPoints: 2},
	}
	c := newTestClient(t, f, time.Second)
	ctx := context.Background()

	u, err := c.WhoAmI(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "tok-1", f.lastToken())

	letters, err := c.FetchLetters(ctx, "tok-2")
	require.NoError(t, err)
	want := []models.Letter{{ID: "l1", Title: "Breach", DueDate: &due, TemplateData: map[string]string{"k": "v"}}}
	if diff := cmp.Diff(want, letters); diff != "" {
		t.Fatalf("letters mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "tok-2", f.lastToken())

	all, err := c.FetchAllLetters(ctx, "tok-3")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	users, err := c.FetchAllUsers(ctx, "tok-4")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.RoleUser, users[1].Role)

	created, err := c.CreateLetter(ctx, "tok-5", models.LetterInput{Title: "New", LetterType: "other"})
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)
	assert.Equal(t, "other", f.created.LetterType)

	updated, err := c.UpdateLetter(ctx, "tok-6", models.Letter{ID: "l1", Status: "submitted"})
	require.NoError(t, err)
	assert.Equal(t, "submitted", updated.Status)

	require.NoError(t, c.DeleteLetter(ctx, "tok-7", "l1"))
	assert.Equal(t, "l1", f.deleted)

	text, err := c.GenerateDraft(ctx, "tok-8", models.DraftRequest{Title: "t", Tone: "Formal"})
	require.NoError(t, err)
	assert.Equal(t, "Dear Sir Formal", text)

	stats, err := c.AffiliateStats(ctx, "tok-9")
	require.NoError(t, err)
	assert.Equal(t, models.AffiliateStats{Code: "EMP001", TotalSignups: 2, TotalEarnings: 9.95, TotalPoints: 2}, stats)
	assert.Equal(t, "tok-9", f.lastToken())
}

func TestPublicCalls(t *testing.T) {
	f := &fakeServer{
		session: rpc.SessionResponse{User: rpc.User{ID: "u9", Role: "user"}, AccessToken: "a", RefreshToken: "r2"},
		tpls:    []rpc.Template{{Key: "demand_letter", Label: "Demand Letter", RequiredFields: []string{"Amount Owed"}}},
	}
	c := newTestClient(t, f, 0)
	ctx := context.Background()

	s, err := c.Signup(ctx, "n@example.com", "pw", models.RoleUser, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, "n@example.com", s.User.Email)

	s, err = c.Refresh(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r2", s.RefreshToken)

	require.NoError(t, c.Logout(ctx, "r2"))
	require.NoError(t, c.RequestPasswordReset(ctx, "n@example.com"))
	require.NoError(t, c.ResetPassword(ctx, "tok", "newpw"))
	assert.Equal(t, "newpw", f.resetReq.NewPassword)

	tpls, err := c.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Template{{Key: "demand_letter", Label: "Demand Letter", RequiredFields: []string{"Amount Owed"}}}, tpls)

	require.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}
