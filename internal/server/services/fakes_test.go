package services

import (
	"context"
	"database/sql"
	"slices"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/dbx"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/affiliates"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/letters"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/seeds"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	byID      map[string]*models.User
	seq       int
	createErr error
	getErr    error
	listErr   error
}

func newFakeUsers() *fakeUsersRepo { return &fakeUsersRepo{byID: map[string]*models.User{}} }

func (f *fakeUsersRepo) add(u models.User) *models.User {
	if u.ID == "" {
		f.seq++
		u.ID = "u" + strconv.Itoa(f.seq)
	}
	u.Email = models.NormalizeEmail(u.Email)
	f.byID[u.ID] = &u
	return &u
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, x := range f.byID {
		if x.Email == models.NormalizeEmail(u.Email) {
			return nil, common.ErrConflict
		}
	}
	out := f.add(*u)
	cp := *out
	return &cp, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == models.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsersRepo) List(context.Context) ([]*models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.User, 0, len(f.byID))
	for _, u := range f.byID {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsersRepo) FindByAffiliateCode(_ context.Context, code string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.AffiliateCode != "" && strings.EqualFold(u.AffiliateCode, code) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) SetAffiliateCode(_ context.Context, id, code string) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.AffiliateCode = code
	return nil
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	tokens    map[string]*models.RefreshToken
	findErr   error
	delErr    error
	createErr error
}

func newFakeRefresh() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteByUser(_ context.Context, userID string) error {
	for k, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, k)
		}
	}
	return nil
}

// --- reset tokens ---

type fakeResetRepo struct {
	tokens    map[string]*models.PasswordResetToken
	createErr error
	deleteErr error
}

func newFakeReset() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*models.PasswordResetToken{}}
}

func (f *fakeResetRepo) Create(_ context.Context, t *models.PasswordResetToken) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *t
	f.tokens[t.Token] = &cp
	return nil
}

func (f *fakeResetRepo) Find(_ context.Context, token string) (*models.PasswordResetToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeResetRepo) Delete(_ context.Context, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.tokens[token]; !ok {
		return common.ErrorNotFound
	}
	delete(f.tokens, token)
	return nil
}

// --- letters ---

type fakeLettersRepo struct {
	byID      map[string]*models.Letter
	createErr error
	listErr   error
}

func newFakeLetters() *fakeLettersRepo { return &fakeLettersRepo{byID: map[string]*models.Letter{}} }

func (f *fakeLettersRepo) Create(_ context.Context, l *models.Letter) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}

func (f *fakeLettersRepo) Get(_ context.Context, id string) (*models.Letter, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLettersRepo) Update(_ context.Context, l *models.Letter) error {
	if _, ok := f.byID[l.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}

func (f *fakeLettersRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeLettersRepo) sorted(keep func(*models.Letter) bool) []*models.Letter {
	out := []*models.Letter{}
	for _, l := range f.byID {
		if keep(l) {
			cp := *l
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Letter) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (f *fakeLettersRepo) ListByUser(_ context.Context, userID string) ([]*models.Letter, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sorted(func(l *models.Letter) bool { return l.UserID == userID }), nil
}

func (f *fakeLettersRepo) ListAll(context.Context) ([]*models.Letter, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sorted(func(*models.Letter) bool { return true }), nil
}

// --- affiliates ---

type fakeAffiliatesRepo struct {
	entries   []*models.AffiliateEntry
	appendErr error
}

func (f *fakeAffiliatesRepo) Append(_ context.Context, e *models.AffiliateEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	e.ID = int64(len(f.entries) + 1)
	e.CreatedAt = time.Now()
	cp := *e
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *fakeAffiliatesRepo) ListByEmployee(_ context.Context, email string) ([]*models.AffiliateEntry, error) {
	out := []*models.AffiliateEntry{}
	for _, e := range f.entries {
		if e.EmployeeEmail == email {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- seeds ---

type fakeSeedsRepo struct {
	applied map[string]bool
	err     error
}

func (f *fakeSeedsRepo) IsApplied(_ context.Context, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.applied[name], nil
}

func (f *fakeSeedsRepo) MarkApplied(_ context.Context, name string) error {
	f.applied[name] = true
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	users   *fakeUsersRepo
	refresh *fakeRefreshRepo
	reset   *fakeResetRepo
	letters *fakeLettersRepo
	aff     *fakeAffiliatesRepo
	seeds   *fakeSeedsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:   newFakeUsers(),
		refresh: newFakeRefresh(),
		reset:   newFakeReset(),
		letters: newFakeLetters(),
		aff:     &fakeAffiliatesRepo{},
		seeds:   &fakeSeedsRepo{applied: map[string]bool{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) ResetTokens(dbx.DBTX) resettokens.Repository     { return m.reset }
func (m *fakeRepoManager) Letters(dbx.DBTX) letters.Repository             { return m.letters }
func (m *fakeRepoManager) Affiliates(dbx.DBTX) affiliates.Repository       { return m.aff }
func (m *fakeRepoManager) Seeds(dbx.DBTX) seeds.Repository                 { return m.seeds }
