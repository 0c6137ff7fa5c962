package grpc

import (
	"context"

	"github.com/dmitrijs2005/letterdesk/internal/server/auth"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
	"github.com/dmitrijs2005/letterdesk/internal/server/services"
	"github.com/dmitrijs2005/letterdesk/internal/server/templates"
)

type fakeUsers struct {
	session *services.Session
	err     error
	user    *models.User

	gotEmail string
	gotRole  models.Role
	gotCode  string
	gotToken string
}

func (f *fakeUsers) Signup(_ context.Context, email, _ string, role models.Role, code string) (*services.Session, error) {
	f.gotEmail, f.gotRole, f.gotCode = email, role, code
	return f.session, f.err
}

func (f *fakeUsers) Login(_ context.Context, email, _ string) (*services.Session, error) {
	f.gotEmail = email
	return f.session, f.err
}

func (f *fakeUsers) Logout(_ context.Context, token string) error {
	f.gotToken = token
	return f.err
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*services.Session, error) {
	f.gotToken = token
	return f.session, f.err
}

func (f *fakeUsers) RequestPasswordReset(_ context.Context, email string) error {
	f.gotEmail = email
	return f.err
}

func (f *fakeUsers) ResetPassword(_ context.Context, token, _ string) error {
	f.gotToken = token
	return f.err
}

func (f *fakeUsers) WhoAmI(context.Context, string) (*models.User, error) {
	return f.user, f.err
}

type fakeLetters struct {
	letters []*models.Letter
	letter  *models.Letter
	users   []*models.User
	text    string
	stats   models.AffiliateStats
	err     error

	gotPrincipal auth.Principal
	gotInput     services.LetterInput
	gotDraft     services.DraftRequest
	gotID        string
}

func (f *fakeLetters) FetchLetters(_ context.Context, p auth.Principal) ([]*models.Letter, error) {
	f.gotPrincipal = p
	return f.letters, f.err
}

func (f *fakeLetters) CreateLetter(_ context.Context, p auth.Principal, in services.LetterInput) (*models.Letter, error) {
	f.gotPrincipal, f.gotInput = p, in
	return f.letter, f.err
}

func (f *fakeLetters) UpdateLetter(_ context.Context, p auth.Principal, l *models.Letter) (*models.Letter, error) {
	f.gotPrincipal, f.gotID = p, l.ID
	return f.letter, f.err
}

func (f *fakeLetters) DeleteLetter(_ context.Context, p auth.Principal, id string) error {
	f.gotPrincipal, f.gotID = p, id
	return f.err
}

func (f *fakeLetters) FetchAllLetters(_ context.Context, p auth.Principal) ([]*models.Letter, error) {
	f.gotPrincipal = p
	return f.letters, f.err
}

func (f *fakeLetters) FetchAllUsers(_ context.Context, p auth.Principal) ([]*models.User, error) {
	f.gotPrincipal = p
	return f.users, f.err
}

func (f *fakeLetters) GenerateDraft(_ context.Context, p auth.Principal, in services.DraftRequest) (string, error) {
	f.gotPrincipal, f.gotDraft = p, in
	return f.text, f.err
}

func (f *fakeLetters) AffiliateStats(_ context.Context, p auth.Principal) (models.AffiliateStats, error) {
	f.gotPrincipal = p
	return f.stats, f.err
}

func (f *fakeLetters) ListTemplates(context.Context) []templates.Template {
	return templates.NewBuiltin().List()
}
