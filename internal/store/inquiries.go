package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/podiumreach/speaker-directory-go/internal/util"
	dirErrors "github.com/podiumreach/speaker-directory-go/pkg/errors"
)

// Inquiry statuses. An inquiry starts as "new" and moves forward only.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusClosed    = "closed"
)

type Inquiry struct {
	ID           int64      `json:"id"`
	SpeakerSlug  string     `json:"speakerSlug"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Organization string     `json:"organization,omitempty"`
	Message      string     `json:"message"`
	EventDate    *time.Time `json:"eventDate,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// DaysUntilEvent reports calendar days until the event, or 0 when no event
// date was given.
func (i *Inquiry) DaysUntilEvent() int {
	if i.EventDate == nil {
		return 0
	}
	return util.DaysUntil(*i.EventDate)
}

// InquiryStore persists booking inquiries against speakers. It is optional;
// without Postgres the inquiry endpoints report unavailable.
type InquiryStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewInquiryStore(pg *PostgresService, logger *zap.Logger) *InquiryStore {
	return &InquiryStore{
		db:     pg.GetDB(),
		logger: logger,
	}
}

const inquirySchema = `
CREATE TABLE IF NOT EXISTS booking_inquiries (
	id           BIGSERIAL PRIMARY KEY,
	speaker_slug TEXT NOT NULL,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL,
	organization TEXT NOT NULL DEFAULT '',
	message      TEXT NOT NULL DEFAULT '',
	event_date   DATE,
	status       TEXT NOT NULL DEFAULT 'new',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_booking_inquiries_slug ON booking_inquiries (speaker_slug);
CREATE INDEX IF NOT EXISTS idx_booking_inquiries_status ON booking_inquiries (status);
`

// EnsureSchema creates the inquiry table if it does not exist yet.
func (s *InquiryStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, inquirySchema); err != nil {
		return dirErrors.NewStoreError("failed to ensure inquiry schema", "ensure_schema", err)
	}
	return nil
}

// ValidateInquiry checks the caller-supplied fields before insertion.
func ValidateInquiry(inq *Inquiry) error {
	if strings.TrimSpace(inq.SpeakerSlug) == "" {
		return dirErrors.NewValidationError("speaker slug is required", "speakerSlug", inq.SpeakerSlug)
	}
	if strings.TrimSpace(inq.Name) == "" {
		return dirErrors.NewValidationError("name is required", "name", inq.Name)
	}
	email := strings.TrimSpace(inq.Email)
	if email == "" || !strings.Contains(email, "@") {
		return dirErrors.NewValidationError("a valid email is required", "email", inq.Email)
	}
	return nil
}

// ValidStatus reports whether s is one of the known inquiry statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusClosed:
		return true
	}
	return false
}

// Create inserts a new inquiry and fills its ID, status and creation time.
func (s *InquiryStore) Create(ctx context.Context, inq *Inquiry) error {
	if err := ValidateInquiry(inq); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO booking_inquiries (speaker_slug, name, email, organization, message, event_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, status, created_at`,
		inq.SpeakerSlug, inq.Name, inq.Email, inq.Organization, inq.Message, inq.EventDate,
	).Scan(&inq.ID, &inq.Status, &inq.CreatedAt)
	if err != nil {
		s.logger.Error("Failed to insert inquiry",
			zap.String("speaker_slug", inq.SpeakerSlug),
			zap.Error(err),
		)
		return dirErrors.NewStoreError("failed to insert inquiry", "create", err)
	}

	s.logger.Info("Booking inquiry recorded",
		zap.Int64("id", inq.ID),
		zap.String("speaker_slug", inq.SpeakerSlug),
	)
	return nil
}

// GetByID loads a single inquiry, reporting found via the second return.
func (s *InquiryStore) GetByID(ctx context.Context, id int64) (*Inquiry, bool, error) {
	inq := &Inquiry{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, speaker_slug, name, email, organization, message, event_date, status, created_at
		 FROM booking_inquiries WHERE id = $1`,
		id,
	).Scan(&inq.ID, &inq.SpeakerSlug, &inq.Name, &inq.Email, &inq.Organization,
		&inq.Message, &inq.EventDate, &inq.Status, &inq.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, dirErrors.NewStoreError("failed to load inquiry", "get_by_id", err)
	}
	return inq, true, nil
}

// ListRecent returns the newest inquiries, optionally filtered by speaker.
func (s *InquiryStore) ListRecent(ctx context.Context, speakerSlug string, limit int) ([]*Inquiry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT id, speaker_slug, name, email, organization, message, event_date, status, created_at
		 FROM booking_inquiries`
	args := []any{}
	if speakerSlug != "" {
		query += ` WHERE speaker_slug = $1`
		args = append(args, speakerSlug)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dirErrors.NewStoreError("failed to list inquiries", "list_recent", err)
	}
	defer rows.Close()

	inquiries := make([]*Inquiry, 0)
	for rows.Next() {
		inq := &Inquiry{}
		if err := rows.Scan(&inq.ID, &inq.SpeakerSlug, &inq.Name, &inq.Email, &inq.Organization,
			&inq.Message, &inq.EventDate, &inq.Status, &inq.CreatedAt); err != nil {
			return nil, dirErrors.NewStoreError("failed to scan inquiry", "list_recent", err)
		}
		inquiries = append(inquiries, inq)
	}
	if err := rows.Err(); err != nil {
		return nil, dirErrors.NewStoreError("failed to iterate inquiries", "list_recent", err)
	}
	return inquiries, nil
}

// UpdateStatus moves an inquiry to a new status. Unknown statuses are
// rejected; unknown ids report not found.
func (s *InquiryStore) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	if !ValidStatus(status) {
		return false, dirErrors.NewValidationError("unknown inquiry status", "status", status)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE booking_inquiries SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return false, dirErrors.NewStoreError("failed to update inquiry status", "update_status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, dirErrors.NewStoreError("failed to read update result", "update_status", err)
	}
	return affected > 0, nil
}
