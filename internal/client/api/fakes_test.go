package api

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/rpc"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

// fakeServer answers every method from canned values and records the access
// token each call carried.
type fakeServer struct {
	mu     sync.Mutex
	tokens []string
	err    error

	session  rpc.SessionResponse
	user     rpc.User
	letters  []rpc.Letter
	users    []rpc.User
	draft    string
	stats    rpc.AffiliateStatsResponse
	tpls     []rpc.Template
	created  *rpc.CreateLetterRequest
	updated  *rpc.Letter
	deleted  string
	resetReq *rpc.ResetPasswordRequest
	block    time.Duration
}

func (f *fakeServer) record(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
		f.tokens = append(f.tokens, v[0])
	}
}

func (f *fakeServer) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}

func (f *fakeServer) Ping(ctx context.Context, _ *rpc.Empty) (*rpc.PingResponse, error) {
	if f.block > 0 {
		select {
		case <-time.After(f.block):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, rpc.StatusFromError(f.err)
	}
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (f *fakeServer) Signup(_ context.Context, in *rpc.SignupRequest) (*rpc.SessionResponse, error) {
	if f.err != nil {
		return nil, rpc.StatusFromError(f.err)
	}
	s := f.session
	s.User.Email = in.Email
	return &s, nil
}

func (f *fakeServer) Login(_ context.Context, in *rpc.LoginRequest) (*rpc.SessionResponse, error) {
	if f.err != nil {
		return nil, rpc.StatusFromError(f.err)
	}
	s := f.session
	s.User.Email = in.Email
	return &s, nil
}

func (f *fakeServer) Logout(context.Context, *rpc.RefreshTokenRequest) (*rpc.Empty, error) {
	return &rpc.Empty{}, rpc.StatusFromError(f.err)
}

func (f *fakeServer) RefreshToken(context.Context, *rpc.RefreshTokenRequest) (*rpc.SessionResponse, error) {
	if f.err != nil {
		return nil, rpc.StatusFromError(f.err)
	}
	s := f.session
	return &s, nil
}

func (f *fakeServer) RequestPasswordReset(context.Context, *rpc.PasswordResetRequest) (*rpc.Empty, error) {
	return &rpc.Empty{}, nil
}

func (f *fakeServer) ResetPassword(_ context.Context, in *rpc.ResetPasswordRequest) (*rpc.Empty, error) {
	f.resetReq = in
	if f.err != nil {
		return nil, rpc.StatusFromError(f.err)
	}
	return &rpc.Empty{}, nil
}

func (f *fakeServer) WhoAmI(ctx context.Context, _ *rpc.Empty) (*rpc.User, error) {
	f.record(ctx)
	if f.err != nil {
		return nil, rpc.StatusFromError(f.err)
	}
	u := f.user
	return &u, nil
}

func (f *fakeServer) FetchLetters(ctx context.Context, _ *rpc.Empty) (*rpc.LettersResponse, error) {
	f.record(ctx)
	if f.err != nil {
		return nil, rpc.StatusFromError(f.err)
	}
	return &rpc.LettersResponse{Letters: f.letters}, nil
}

func (f *fakeServer) CreateLetter(ctx context.Context, in *rpc.CreateLetterRequest) (*rpc.LetterResponse, error) {
	f.record(ctx)
	f.created = in
	return &rpc.LetterResponse{Letter: rpc.Letter{ID: "new", Title: in.Title, Status: "draft"}}, nil
}

func (f *fakeServer) UpdateLetter(ctx context.Context, in *rpc.Letter) (*rpc.LetterResponse, error) {
	f.record(ctx)
	f.updated = in
	if f.err != nil {
		return nil, rpc.StatusFromError(f.err)
	}
	return &rpc.LetterResponse{Letter: *in}, nil
}

func (f *fakeServer) DeleteLetter(ctx context.Context, in *rpc.DeleteLetterRequest) (*rpc.Empty, error) {
	f.record(ctx)
	f.deleted = in.ID
	return &rpc.Empty{}, nil
}

func (f *fakeServer) FetchAllLetters(ctx context.Context, _ *rpc.Empty) (*rpc.LettersResponse, error) {
	f.record(ctx)
	return &rpc.LettersResponse{Letters: f.letters}, nil
}

func (f *fakeServer) FetchAllUsers(ctx context.Context, _ *rpc.Empty) (*rpc.UsersResponse, error) {
	f.record(ctx)
	if f.err != nil {
		return nil, rpc.StatusFromError(f.err)
	}
	return &rpc.UsersResponse{Users: f.users}, nil
}

func (f *fakeServer) GenerateDraft(ctx context.Context, in *rpc.GenerateDraftRequest) (*rpc.GenerateDraftResponse, error) {
	f.record(ctx)
	if f.err != nil {
		return nil, rpc.StatusFromError(f.err)
	}
	return &rpc.GenerateDraftResponse{Text: f.draft + " " + in.Tone}, nil
}

func (f *fakeServer) AffiliateStats(ctx context.Context, _ *rpc.Empty) (*rpc.AffiliateStatsResponse, error) {
	f.record(ctx)
	s := f.stats
	return &s, nil
}

func (f *fakeServer) ListTemplates(context.Context, *rpc.Empty) (*rpc.TemplatesResponse, error) {
	return &rpc.TemplatesResponse{Templates: f.tpls}, nil
}

// newTestClient serves f over bufconn and returns a Client bound to it.
func newTestClient(t *testing.T, f *fakeServer, timeout time.Duration) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	rpc.RegisterServer(s, f)
	go func() { _ = s.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		s.Stop()
	})
	return NewWithConn(conn, timeout)
}
