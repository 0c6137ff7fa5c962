package letters

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/dbx"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const letterColumns = `id, user_id, title, letter_type, description,
	template_data, recipient_info, sender_info,
	status, priority, due_date, ai_generated_content, final_content,
	created_at, updated_at`

// encodeMap renders a field map as a JSONB literal. A nil map is stored as {}.
func encodeMap(m map[string]string) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeMap never fails: malformed or non-object JSON yields an empty map.
func decodeMap(raw []byte) map[string]string {
	out := map[string]string{}
	if len(raw) == 0 {
		return out
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return out
	}
	for k, v := range generic {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			b, _ := json.Marshal(val)
			out[k] = string(b)
		}
	}
	return out
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanLetter(row interface{ Scan(...any) error }) (*models.Letter, error) {
	l := &models.Letter{}
	var (
		templateData, recipient, sender []byte
		status, priority                string
		due                             sql.NullTime
		aiContent, finalContent         sql.NullString
	)
	err := row.Scan(&l.ID, &l.UserID, &l.Title, &l.LetterType, &l.Description,
		&templateData, &recipient, &sender,
		&status, &priority, &due, &aiContent, &finalContent,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.TemplateData = decodeMap(templateData)
	l.RecipientInfo = decodeMap(recipient)
	l.SenderInfo = decodeMap(sender)
	l.Status = models.LetterStatus(status)
	l.Priority = models.Priority(priority)
	if due.Valid {
		d := due.Time
		l.DueDate = &d
	}
	if aiContent.Valid {
		s := aiContent.String
		l.AIGeneratedContent = &s
	}
	if finalContent.Valid {
		s := finalContent.String
		l.FinalContent = &s
	}
	return l, nil
}

func encodeMaps(l *models.Letter) (string, string, string, error) {
	td, err := encodeMap(l.TemplateData)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: template data: %v", common.ErrValidation, err)
	}
	ri, err := encodeMap(l.RecipientInfo)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: recipient info: %v", common.ErrValidation, err)
	}
	si, err := encodeMap(l.SenderInfo)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: sender info: %v", common.ErrValidation, err)
	}
	return td, ri, si, nil
}

func (r *PostgresRepository) Create(ctx context.Context, l *models.Letter) error {
	query :=
		`INSERT INTO letters (` + letterColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	td, ri, si, err := encodeMaps(l)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query,
		l.ID, l.UserID, l.Title, l.LetterType, l.Description,
		td, ri, si,
		string(l.Status), string(l.Priority), nullTime(l.DueDate),
		nullString(l.AIGeneratedContent), nullString(l.FinalContent),
		l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return dbx.Classify(err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Letter, error) {
	query := `SELECT ` + letterColumns + ` FROM letters WHERE id = $1`

	l, err := scanLetter(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return l, nil
}

func (r *PostgresRepository) Update(ctx context.Context, l *models.Letter) error {
	query :=
		`UPDATE letters SET
			title = $2, letter_type = $3, description = $4,
			template_data = $5, recipient_info = $6, sender_info = $7,
			status = $8, priority = $9, due_date = $10,
			ai_generated_content = $11, final_content = $12, updated_at = $13
		 WHERE id = $1`

	td, ri, si, err := encodeMaps(l)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query,
		l.ID, l.Title, l.LetterType, l.Description,
		td, ri, si,
		string(l.Status), string(l.Priority), nullTime(l.DueDate),
		nullString(l.AIGeneratedContent), nullString(l.FinalContent), l.UpdatedAt)
	if err != nil {
		return dbx.Classify(err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM letters WHERE id = $1`, id)
	if err != nil {
		return dbx.Classify(err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Letter, error) {
	query := `SELECT ` + letterColumns + ` FROM letters WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Letter, error) {
	query := `SELECT ` + letterColumns + ` FROM letters ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Letter, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	defer rows.Close()

	result := []*models.Letter{}
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
