package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"invoiceapi/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var auditColumns = []string{"id", "ts", "severity", "actor", "action", "message"}

func TestAuditPostgres_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAuditPostgres(db)
	now := time.Now().UTC()
	entry := model.AuditEntry{
		ID:        "entry-1",
		Timestamp: now,
		Severity:  model.SeverityInfo,
		Actor:     "alice",
		Action:    "invoice.upload",
		Message:   "Invoice processed",
	}

	mock.ExpectExec("INSERT INTO audit_entries").
		WithArgs("entry-1", now, "INFO", "alice", "invoice.upload", "Invoice processed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Insert(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditPostgres_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_entries").WillReturnError(errors.New("disk full"))

	err = NewAuditPostgres(db).Insert(context.Background(), model.AuditEntry{ID: "x", Message: "m"})
	assert.EqualError(t, err, "disk full")
}

func TestAuditPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAuditPostgres(db)
	ctx := context.Background()
	newer := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	t.Run("defaults for missing columns", func(t *testing.T) {
		rows := sqlmock.NewRows(auditColumns).
			AddRow("b", newer, "WARNING", "bob", "invoice.upload", "Extraction failed").
			AddRow("a", older, nil, nil, "", "legacy row")

		mock.ExpectQuery("SELECT (.+) FROM audit_entries WHERE btrim\\(message, E'.+'\\) <> '' ORDER BY ts DESC").
			WithArgs(100).
			WillReturnRows(rows)

		got, err := repo.List(ctx, 100)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, model.SeverityWarning, got[0].Severity)
		assert.Equal(t, "bob", got[0].Actor)
		assert.Equal(t, model.SeverityDefault, got[1].Severity)
		assert.Equal(t, model.DefaultActor, got[1].Actor)
		assert.Equal(t, model.DefaultAction, got[1].Action)
		assert.Equal(t, "legacy row", got[1].Message)
	})

	t.Run("whitespace-only messages are filtered before the limit", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE btrim(message, E' \t\n\r\x0B\f') <> '' ORDER BY ts DESC, id DESC LIMIT $1`)).
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows(auditColumns).
				AddRow("d", newer, "INFO", "amy", "client.log", "kept").
				AddRow("c", older, "INFO", "amy", "client.log", "also kept"))

		got, err := repo.List(ctx, 2)

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("empty table", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM audit_entries").
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows(auditColumns))

		got, err := repo.List(ctx, 5)

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM audit_entries").
			WithArgs(5).
			WillReturnError(errors.New("timeout"))

		got, err := repo.List(ctx, 5)

		assert.Error(t, err)
		assert.Nil(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
