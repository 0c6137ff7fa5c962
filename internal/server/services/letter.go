package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"github.com/dmitrijs2005/letterdesk/internal/server/auth"
	"github.com/dmitrijs2005/letterdesk/internal/server/generation"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/letterdesk/internal/server/templates"
	"github.com/google/uuid"
)

// LetterInput carries the caller-supplied fields of a new letter.
type LetterInput struct {
	Title         string
	LetterType    string
	Description   string
	TemplateData  map[string]string
	RecipientInfo map[string]string
	SenderInfo    map[string]string
	Status        models.LetterStatus
	Priority      models.Priority
	DueDate       *time.Time
}

// DraftRequest asks for a generated letter body. Either TemplateKey names a
// catalog template or TemplateBody is given verbatim.
type DraftRequest struct {
	Title             string
	TemplateKey       string
	TemplateBody      string
	TemplateFields    map[string]string
	AdditionalContext string
	Tone              generation.Tone
	Length            generation.Length
}

// AffiliateReader is the read side of the affiliate ledger.
type AffiliateReader interface {
	GetAffiliateData(ctx context.Context, employeeEmail string) (models.AffiliateStats, error)
}

// LetterService exposes letter and user data scoped to the caller's role.
type LetterService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	catalog     *templates.Catalog
	generator   generation.Generator
	affiliates  AffiliateReader
	log         logging.Logger
	now         func() time.Time
}

func NewLetterService(db *sql.DB, m repomanager.RepositoryManager, catalog *templates.Catalog,
	gen generation.Generator, aff AffiliateReader, l logging.Logger) *LetterService {
	if catalog == nil {
		catalog = templates.NewBuiltin()
	}
	return &LetterService{
		db:          db,
		repomanager: m,
		catalog:     catalog,
		generator:   gen,
		affiliates:  aff,
		log:         l.With("module", "letters"),
		now:         time.Now,
	}
}

func (s *LetterService) FetchLetters(ctx context.Context, p auth.Principal) ([]*models.Letter, error) {
	letters, err := s.repomanager.Letters(s.db).ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, s.internal(ctx, "list letters", err)
	}
	return letters, nil
}

func (s *LetterService) CreateLetter(ctx context.Context, p auth.Principal, in LetterInput) (*models.Letter, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if !s.knownLetterType(in.LetterType) {
		return nil, fmt.Errorf("%w: unknown letter type %q", common.ErrValidation, in.LetterType)
	}
	if in.Status == "" {
		in.Status = models.StatusDraft
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", common.ErrValidation, in.Status)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", common.ErrValidation, in.Priority)
	}

	now := s.timestamp()
	letter := &models.Letter{
		ID:            uuid.NewString(),
		UserID:        p.UserID,
		Title:         in.Title,
		LetterType:    in.LetterType,
		Description:   in.Description,
		TemplateData:  nonNil(in.TemplateData),
		RecipientInfo: nonNil(in.RecipientInfo),
		SenderInfo:    nonNil(in.SenderInfo),
		Status:        in.Status,
		Priority:      in.Priority,
		DueDate:       in.DueDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repomanager.Letters(s.db).Create(ctx, letter); err != nil {
		return nil, s.internal(ctx, "create letter", err)
	}
	return letter, nil
}

// UpdateLetter overwrites the mutable fields of an existing letter. Owner,
// id and createdAt are taken from storage.
func (s *LetterService) UpdateLetter(ctx context.Context, p auth.Principal, upd *models.Letter) (*models.Letter, error) {
	if upd == nil || upd.ID == "" {
		return nil, fmt.Errorf("%w: letter id is required", common.ErrValidation)
	}
	repo := s.repomanager.Letters(s.db)
	stored, err := s.ownedLetter(ctx, p, upd.ID)
	if err != nil {
		return nil, err
	}

	if upd.Status == "" {
		upd.Status = stored.Status
	}
	if err := models.CheckTransition(stored.Status, upd.Status); err != nil {
		return nil, err
	}
	if upd.Priority == "" {
		upd.Priority = stored.Priority
	}
	if !upd.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", common.ErrValidation, upd.Priority)
	}
	if upd.LetterType == "" {
		upd.LetterType = stored.LetterType
	}
	// a stored type stays valid after its template leaves the catalog
	if upd.LetterType != stored.LetterType && !s.knownLetterType(upd.LetterType) {
		return nil, fmt.Errorf("%w: unknown letter type %q", common.ErrValidation, upd.LetterType)
	}
	if strings.TrimSpace(upd.Title) == "" {
		upd.Title = stored.Title
	}

	next := *upd
	next.UserID = stored.UserID
	next.CreatedAt = stored.CreatedAt
	next.TemplateData = nonNil(next.TemplateData)
	next.RecipientInfo = nonNil(next.RecipientInfo)
	next.SenderInfo = nonNil(next.SenderInfo)
	next.UpdatedAt = s.timestamp()
	if !next.UpdatedAt.After(stored.UpdatedAt) {
		next.UpdatedAt = stored.UpdatedAt.Add(time.Microsecond)
	}

	if err := repo.Update(ctx, &next); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "update letter", err)
	}
	return &next, nil
}

func (s *LetterService) DeleteLetter(ctx context.Context, p auth.Principal, id string) error {
	if id == "" {
		return fmt.Errorf("%w: letter id is required", common.ErrValidation)
	}
	if _, err := s.ownedLetter(ctx, p, id); err != nil {
		return err
	}
	if err := s.repomanager.Letters(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.internal(ctx, "delete letter", err)
	}
	return nil
}

// FetchAllLetters is the review queue: admins and employees only.
func (s *LetterService) FetchAllLetters(ctx context.Context, p auth.Principal) ([]*models.Letter, error) {
	if !p.HasRole(models.RoleAdmin, models.RoleEmployee) {
		return nil, common.ErrPermissionDenied
	}
	letters, err := s.repomanager.Letters(s.db).ListAll(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list all letters", err)
	}
	return letters, nil
}

func (s *LetterService) FetchAllUsers(ctx context.Context, p auth.Principal) ([]*models.User, error) {
	if !p.IsAdmin() {
		return nil, common.ErrPermissionDenied
	}
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list users", err)
	}
	return users, nil
}

// GenerateDraft fills a letter template through the generation service.
func (s *LetterService) GenerateDraft(ctx context.Context, p auth.Principal, in DraftRequest) (string, error) {
	body := in.TemplateBody
	if in.TemplateKey != "" {
		tpl, ok := s.catalog.Get(in.TemplateKey)
		if !ok {
			return "", fmt.Errorf("%w: unknown template %q", common.ErrValidation, in.TemplateKey)
		}
		body = tpl.Body
	}
	req := generation.Request{
		Title:             in.Title,
		TemplateBody:      body,
		TemplateFields:    in.TemplateFields,
		AdditionalContext: in.AdditionalContext,
		Tone:              in.Tone,
		Length:            in.Length,
	}
	if err := req.Validate(); err != nil {
		return "", err
	}
	if s.generator == nil {
		return "", common.ErrGenerationService
	}

	text, err := s.generator.Generate(ctx, req)
	if err != nil {
		s.log.Error(ctx, "draft generation failed", "user", p.UserID, "error", err)
		if errors.Is(err, common.ErrGenerationService) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", common.ErrGenerationService, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", common.ErrGenerationService
	}
	return text, nil
}

func (s *LetterService) AffiliateStats(ctx context.Context, p auth.Principal) (models.AffiliateStats, error) {
	if !p.HasRole(models.RoleAdmin, models.RoleEmployee) {
		return models.AffiliateStats{}, common.ErrPermissionDenied
	}
	stats, err := s.affiliates.GetAffiliateData(ctx, p.Email)
	if err != nil {
		return models.AffiliateStats{}, s.internal(ctx, "affiliate stats", err)
	}
	return stats, nil
}

func (s *LetterService) ListTemplates(ctx context.Context) []templates.Template {
	return s.catalog.List()
}

func (s *LetterService) ownedLetter(ctx context.Context, p auth.Principal, id string) (*models.Letter, error) {
	letter, err := s.repomanager.Letters(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "get letter", err)
	}
	if letter.UserID != p.UserID && !p.IsAdmin() {
		return nil, common.ErrPermissionDenied
	}
	return letter, nil
}

func (s *LetterService) knownLetterType(t string) bool {
	if slices.Contains(models.LetterTypes, t) {
		return true
	}
	_, ok := s.catalog.Get(t)
	return ok
}

// timestamp is truncated to the precision postgres stores.
func (s *LetterService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *LetterService) internal(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
