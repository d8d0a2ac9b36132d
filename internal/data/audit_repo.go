package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/target/control-panel-ui/internal/data/pgxutil"
	"github.com/target/control-panel-ui/internal/domain/model"
	apperrors "github.com/target/control-panel-ui/internal/errors"
)

const (
	defaultAuditListLimit = 20
	maxAuditListLimit     = 200
)

// AuditRepo persists operator actions in Postgres.
type AuditRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{DB: db, Now: time.Now}
}

// Record inserts one audit entry and returns it as stored.
func (r *AuditRepo) Record(ctx context.Context, req model.CreateAuditEntryRequest) (*model.AuditEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid audit entry")
	}

	var detail []byte
	if len(req.Detail) > 0 {
		b, err := json.Marshal(req.Detail)
		if err != nil {
			return nil, fmt.Errorf("marshal audit detail: %w", err)
		}
		detail = b
	}

	entry := &model.AuditEntry{
		ID:         uuid.NewString(),
		ActorID:    req.ActorID,
		ActorEmail: req.ActorEmail,
		Action:     req.Action,
		Outcome:    req.Outcome,
		Detail:     detail,
		CreatedAt:  r.now().UTC(),
	}

	const q = `
		INSERT INTO audit_log (id, actor_id, actor_email, action, outcome, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.DB.ExecContext(ctx, q,
		entry.ID, entry.ActorID, entry.ActorEmail, string(entry.Action), entry.Outcome, nullableJSON(detail), entry.CreatedAt,
	); err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("insert audit entry: %w", err))
	}
	return entry, nil
}

// ListRecent returns the newest entries first. A non-positive limit uses the default.
func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	switch {
	case limit <= 0:
		limit = defaultAuditListLimit
	case limit > maxAuditListLimit:
		limit = maxAuditListLimit
	}

	const q = `
		SELECT id::text AS id, actor_id, actor_email, action, outcome, detail, created_at
		FROM audit_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	entries, err := pgxutil.CollectStructs[model.AuditEntry](ctx, r.DB, q, limit)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list audit entries: %w", err))
	}
	return entries, nil
}

func (r *AuditRepo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
