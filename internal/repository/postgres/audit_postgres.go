package postgres

import (
	"context"
	"database/sql"

	"invoiceapi/internal/model"
	"invoiceapi/internal/repository"
)

// AuditPostgres is a PostgreSQL implementation of repository.AuditRepository.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Insert appends an audit row.
func (r *AuditPostgres) Insert(ctx context.Context, e model.AuditEntry) error {
	const q = `
		INSERT INTO audit_entries (id, ts, severity, actor, action, message)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.Timestamp,
		string(e.Severity),
		e.Actor,
		e.Action,
		e.Message,
	)
	return err
}

// List returns the newest entries first. Rows whose message is empty or only
// ASCII whitespace are skipped in SQL, before LIMIT;
// missing severity, actor and action columns come back as their defaults.
func (r *AuditPostgres) List(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	const q = `
		SELECT id, ts, severity, actor, action, message
		FROM audit_entries
		WHERE btrim(message, E' \t\n\r\x0B\f') <> ''
		ORDER BY ts DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AuditEntry, 0)
	for rows.Next() {
		var (
			e                       model.AuditEntry
			severity, actor, action sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &severity, &actor, &action, &e.Message); err != nil {
			return nil, err
		}
		e.Severity = model.Severity(orDefault(severity, string(model.SeverityDefault)))
		e.Actor = orDefault(actor, model.DefaultActor)
		e.Action = orDefault(action, model.DefaultAction)
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func orDefault(s sql.NullString, def string) string {
	if !s.Valid || s.String == "" {
		return def
	}
	return s.String
}
