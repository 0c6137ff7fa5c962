package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/dbx"
	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"github.com/dmitrijs2005/letterdesk/internal/server/metrics"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/repomanager"
)

const (
	MockAffiliateEmployee = "employee@example.com"
	MockAffiliateCode     = "EMP123XYZ"

	seedMockAffiliates = "mock_affiliates"
)

// AffiliateService maintains the referral ledger of employees.
type AffiliateService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewAffiliateService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *AffiliateService {
	return &AffiliateService{db: db, repomanager: m, log: l.With("module", "affiliates")}
}

// CreditAffiliate appends a referral to the employee owning code. Unknown or
// empty codes are logged and ignored; only storage failures are returned.
func (s *AffiliateService) CreditAffiliate(ctx context.Context, code string, ref models.Referral) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	owner, err := s.repomanager.Users(s.db).FindByAffiliateCode(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "affiliate code not found", "code", code)
			metrics.ObserveAffiliateCredit("unknown_code")
			return nil
		}
		metrics.ObserveAffiliateCredit("error")
		return fmt.Errorf("find affiliate: %w", err)
	}

	entry := &models.AffiliateEntry{EmployeeEmail: owner.Email, Referral: ref}
	if err := s.repomanager.Affiliates(s.db).Append(ctx, entry); err != nil {
		metrics.ObserveAffiliateCredit("error")
		return fmt.Errorf("append affiliate entry: %w", err)
	}

	metrics.ObserveAffiliateCredit("ok")
	s.log.Info(ctx, "credited referral", "referred", entry.ReferredUserEmail, "employee", owner.Email)
	return nil
}

// GetAffiliateData aggregates the ledger of one employee. Unknown employees,
// missing codes and empty ledgers all yield zeroed stats.
func (s *AffiliateService) GetAffiliateData(ctx context.Context, employeeEmail string) (models.AffiliateStats, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, employeeEmail)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Aggregate("", nil), nil
		}
		return models.AffiliateStats{}, fmt.Errorf("get employee: %w", err)
	}

	entries, err := s.repomanager.Affiliates(s.db).ListByEmployee(ctx, user.Email)
	if err != nil {
		return models.AffiliateStats{}, fmt.Errorf("list affiliate entries: %w", err)
	}
	return models.Aggregate(user.AffiliateCode, entries), nil
}

// InitializeMockAffiliates assigns the demo code to the demo employee and
// appends two demo referrals. It runs at most once per database.
func (s *AffiliateService) InitializeMockAffiliates(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		seeds := s.repomanager.Seeds(tx)
		applied, err := seeds.IsApplied(ctx, seedMockAffiliates)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}

		users := s.repomanager.Users(tx)
		employee, err := users.GetByEmail(ctx, MockAffiliateEmployee)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				s.log.Warn(ctx, "mock affiliate employee missing, skipping", "email", MockAffiliateEmployee)
				return nil
			}
			return err
		}
		if employee.AffiliateCode == "" {
			if err := users.SetAffiliateCode(ctx, employee.ID, MockAffiliateCode); err != nil {
				return err
			}
		}

		ledger := s.repomanager.Affiliates(tx)
		for _, ref := range []models.Referral{
			{ReferredUserEmail: "referred1@example.com", SubscriptionAmount: 50, UsedDiscount: true},
			{ReferredUserEmail: "referred2@example.com", SubscriptionAmount: 50, UsedDiscount: false},
		} {
			if err := ledger.Append(ctx, &models.AffiliateEntry{EmployeeEmail: employee.Email, Referral: ref}); err != nil {
				return err
			}
		}

		return seeds.MarkApplied(ctx, seedMockAffiliates)
	})
}
