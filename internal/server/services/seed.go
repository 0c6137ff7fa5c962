package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/cryptox"
	"github.com/dmitrijs2005/letterdesk/internal/dbx"
	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	seedDemoAccounts = "demo_accounts"
	seedDemoLetters  = "demo_letters"

	DemoUserEmail = "user@example.com"
)

type demoAccount struct {
	email    string
	password string
	role     models.Role
}

var demoAccounts = []demoAccount{
	{"admin@example.com", "admin123", models.RoleAdmin},
	{MockAffiliateEmployee, "employee123", models.RoleEmployee},
	{DemoUserEmail, "user123", models.RoleUser},
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func demoLetters() []*models.Letter {
	return []*models.Letter{
		{
			Title:       "Demand for Payment - Invoice #123",
			LetterType:  "general_demand_letter",
			Description: "Outstanding payment for consulting services.",
			TemplateData: map[string]string{
				"Recipient's Full Name": "Client Corp",
				"Amount Owed":           "5,000",
				"Reason":                "Unpaid invoice #123 for consulting services.",
				"Deadline":              "November 15, 2023",
			},
			RecipientInfo: map[string]string{"name": "Client Corp"},
			SenderInfo:    map[string]string{"name": "My Company"},
			Status:        models.StatusInReview,
			Priority:      models.PriorityMedium,
			CreatedAt:     ts("2023-10-26T10:00:00Z"),
			UpdatedAt:     ts("2023-10-26T12:30:00Z"),
		},
		{
			Title:         "Cease and Desist - Trademark Infringement",
			LetterType:    "cease_and_desist",
			Description:   "Unauthorized use of our registered trademark.",
			TemplateData:  map[string]string{},
			RecipientInfo: map[string]string{"name": "Competitor Inc."},
			SenderInfo:    map[string]string{"name": "My Company"},
			Status:        models.StatusCompleted,
			Priority:      models.PriorityHigh,
			CreatedAt:     ts("2023-10-25T14:00:00Z"),
			UpdatedAt:     ts("2023-10-27T09:00:00Z"),
		},
		{
			Title:         "Notice of Breach of Contract",
			LetterType:    "breach_of_contract",
			Description:   "Late delivery of goods under the supply agreement.",
			TemplateData:  map[string]string{},
			RecipientInfo: map[string]string{"name": "Supplier LLC"},
			SenderInfo:    map[string]string{"name": "My Company"},
			Status:        models.StatusDraft,
			Priority:      models.PriorityMedium,
			CreatedAt:     ts("2023-10-27T11:00:00Z"),
			UpdatedAt:     ts("2023-10-27T11:00:00Z"),
		},
	}
}

// Seeder populates a fresh database with demo accounts, demo letters and
// the mock affiliate. Each step is guarded by a seed flag and runs once.
type Seeder struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      cryptox.Hasher
	affiliates  *AffiliateService
	log         logging.Logger
}

func NewSeeder(db *sql.DB, m repomanager.RepositoryManager, h cryptox.Hasher, aff *AffiliateService, l logging.Logger) *Seeder {
	return &Seeder{db: db, repomanager: m, hasher: h, affiliates: aff, log: l.With("module", "seed")}
}

func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedAccounts(ctx); err != nil {
		return fmt.Errorf("seed demo accounts: %w", err)
	}
	if err := s.seedLetters(ctx); err != nil {
		return fmt.Errorf("seed demo letters: %w", err)
	}
	if s.affiliates != nil {
		if err := s.affiliates.InitializeMockAffiliates(ctx); err != nil {
			return fmt.Errorf("seed mock affiliates: %w", err)
		}
	}
	return nil
}

func (s *Seeder) seedAccounts(ctx context.Context) error {
	return s.once(ctx, seedDemoAccounts, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		for _, a := range demoAccounts {
			hash, err := s.hasher.Hash(a.password)
			if err != nil {
				return err
			}
			_, err = users.Create(ctx, &models.User{Email: a.email, PasswordHash: hash, Role: a.role})
			if err != nil && !errors.Is(err, common.ErrConflict) {
				return err
			}
		}
		s.log.Info(ctx, "demo accounts created", "count", len(demoAccounts))
		return nil
	})
}

func (s *Seeder) seedLetters(ctx context.Context) error {
	return s.once(ctx, seedDemoLetters, func(ctx context.Context, tx dbx.DBTX) error {
		owner, err := s.repomanager.Users(tx).GetByEmail(ctx, DemoUserEmail)
		if err != nil {
			return err
		}
		repo := s.repomanager.Letters(tx)
		for _, l := range demoLetters() {
			l.ID = uuid.NewString()
			l.UserID = owner.ID
			if err := repo.Create(ctx, l); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Seeder) once(ctx context.Context, name string, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		seeds := s.repomanager.Seeds(tx)
		applied, err := seeds.IsApplied(ctx, name)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return seeds.MarkApplied(ctx, name)
	})
}
