package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/client/api"
	"github.com/dmitrijs2005/letterdesk/internal/client/config"
	"github.com/dmitrijs2005/letterdesk/internal/client/facade"
	"github.com/dmitrijs2005/letterdesk/internal/client/models"
	"github.com/dmitrijs2005/letterdesk/internal/client/session"
	"github.com/dmitrijs2005/letterdesk/internal/client/storage"
	"github.com/dmitrijs2005/letterdesk/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// sessionService is the part of session.Manager used by the commands.
type sessionService interface {
	Signup(ctx context.Context, email, password string, role models.Role, affiliateCode string) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Restore(ctx context.Context) error
	Current() (models.User, bool)
}

// letterService is the part of facade.Letters used by the commands.
type letterService interface {
	FetchLetters(ctx context.Context) ([]models.Letter, error)
	CreateLetter(ctx context.Context, in models.LetterInput) (models.Letter, error)
	UpdateLetter(ctx context.Context, l models.Letter) (models.Letter, error)
	DeleteLetter(ctx context.Context, id string) error
	FetchAllLetters(ctx context.Context) ([]models.Letter, error)
	FetchAllUsers(ctx context.Context) ([]models.User, error)
	GenerateDraft(ctx context.Context, r models.DraftRequest) (string, error)
	AffiliateStats(ctx context.Context) (models.AffiliateStats, error)
}

// remote covers the unauthenticated calls.
type remote interface {
	Ping(ctx context.Context) error
	ListTemplates(ctx context.Context) ([]models.Template, error)
}

type App struct {
	config   *config.Config
	sessions sessionService
	letters  letterService
	remote   remote
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	closers  []func() error

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the local cache, dials the server and restores the persisted
// session according to the configured policy. A server that cannot be
// reached during restore is reported but not fatal.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer, l logging.Logger) (*App, error) {
	policy, err := session.ParsePolicy(c.RestorePolicy)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}

	client, err := api.Dial(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("dial %s: %w", c.ServerEndpointAddr, err)
	}

	sm := session.NewManager(storage.NewSessionStore(db), client, policy, l)
	a := newApp(c, sm, facade.NewLetters(sm, client), client, in, out, l)
	a.closers = []func() error{client.Close, db.Close}

	if err := sm.Restore(ctx); err != nil {
		l.Warn(ctx, "session restore failed", "error", err)
		a.setMode(ModeOffline)
	}
	return a, nil
}

func newApp(c *config.Config, s sessionService, ls letterService, r remote, in io.Reader, out io.Writer, l logging.Logger) *App {
	if l == nil {
		l = logging.Nop{}
	}
	return &App{
		config:   c,
		sessions: s,
		letters:  ls,
		remote:   r,
		logger:   l,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	_, ok := a.sessions.Current()
	return ok
}

// getStatus renders "(email role mode)" for the prompt, skipping empty parts.
func (a *App) getStatus() string {
	s := ""
	if u, ok := a.sessions.Current(); ok {
		s = u.Email + " " + string(u.Role) + " "
	}
	if m := a.currentMode(); m != "" {
		s += string(m)
	}
	if s == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", s)
}

// StartOnlineStatusWatcher pings the server every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.remote.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
