package affiliates

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestAppend(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+affiliate_entries\b.*RETURNING\s+id,\s*created_at$`).
		WithArgs("employee@example.com", "new@x.com", 50.0, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	e := &models.AffiliateEntry{
		EmployeeEmail: "Employee@Example.com",
		Referral:      models.Referral{ReferredUserEmail: "NEW@x.com", SubscriptionAmount: 50, UsedDiscount: true},
	}
	require.NoError(t, repo.Append(context.Background(), e))
	assert.Equal(t, int64(7), e.ID)
	assert.Equal(t, "employee@example.com", e.EmployeeEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByEmployee(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)FROM\s+affiliate_entries\s+WHERE\s+employee_email\s*=\s*\$1\s+ORDER\s+BY\s+id$`).
		WithArgs("employee@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_email", "referred_user_email", "subscription_amount", "used_discount", "created_at"}).
			AddRow(int64(1), "employee@example.com", "a@x.com", 50.0, true, now).
			AddRow(int64(2), "employee@example.com", "b@x.com", 50.0, false, now))

	got, err := repo.ListByEmployee(context.Background(), "employee@example.com")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a@x.com", got[0].ReferredUserEmail)
	assert.False(t, got[1].UsedDiscount)
}

func TestListByEmployee_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+affiliate_entries`).WillReturnError(errors.New("db down"))

	_, err := repo.ListByEmployee(context.Background(), "x@y.com")
	assert.ErrorContains(t, err, "db down")
}
