package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Repository provides database operations for the invocation log
type Repository struct {
	db     *sqlx.DB
	driver string
}

// NewRepository opens the database and creates the schema
func NewRepository(driver, dsn string) (*Repository, error) {
	slog.Info("database_init", "driver", driver)

	var schema []string
	switch driver {
	case DriverSQLite:
		schema = sqliteSchema
	case DriverMySQL:
		schema = mysqlSchema
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		slog.Error("database_open_failed", "driver", driver, "error", err)
		return nil, errors.Wrap(err, "failed to open database")
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	slog.Info("database_create_schema", "driver", driver)
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			slog.Error("database_schema_failed", "driver", driver, "error", err)
			return nil, errors.Wrap(err, "failed to create schema")
		}
	}

	slog.Info("database_ready", "driver", driver)
	return &Repository{db: db, driver: driver}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create inserts a new invocation, filling ID and CreatedAt when unset
func (r *Repository) Create(ctx context.Context, inv *Invocation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.CreatedAt == 0 {
		inv.CreatedAt = time.Now().UnixMilli()
	}

	query := `
		INSERT INTO invocations (id, tool, model, status, http_status, error_message, output, duration_ms, created_at)
		VALUES (:id, :tool, :model, :status, :http_status, :error_message, :output, :duration_ms, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		slog.Error("database_insert_failed", "invocation_id", inv.ID, "tool", inv.Tool, "error", err)
		return errors.Wrap(err, "failed to insert invocation")
	}

	slog.Debug("database_invocation_created", "invocation_id", inv.ID, "tool", inv.Tool, "status", inv.Status)
	return nil
}

// GetByID retrieves an invocation. A missing row returns nil, nil.
func (r *Repository) GetByID(ctx context.Context, id string) (*Invocation, error) {
	var inv Invocation
	err := r.db.GetContext(ctx, &inv, `SELECT * FROM invocations WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("database_query_failed", "invocation_id", id, "error", err)
		return nil, errors.Wrap(err, "failed to query invocation")
	}
	return &inv, nil
}

// List returns invocations newest first
func (r *Repository) List(ctx context.Context, f ListFilter) ([]*Invocation, error) {
	var (
		where []string
		args  []any
	)
	if f.Tool != "" {
		where = append(where, "tool = ?")
		args = append(args, f.Tool)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	query := "SELECT * FROM invocations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, limit)

	var invocations []*Invocation
	if err := r.db.SelectContext(ctx, &invocations, query, args...); err != nil {
		slog.Error("database_list_query_failed", "error", err)
		return nil, errors.Wrap(err, "failed to list invocations")
	}

	slog.Debug("database_list_complete", "invocation_count", len(invocations))
	return invocations, nil
}

// Summary counts invocations per tool and status
func (r *Repository) Summary(ctx context.Context) ([]ToolSummary, error) {
	query := `
		SELECT tool, status, COUNT(*) AS count, AVG(duration_ms) AS avg_duration_ms
		FROM invocations GROUP BY tool, status ORDER BY tool, status
	`
	var rows []ToolSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		slog.Error("database_summary_failed", "error", err)
		return nil, errors.Wrap(err, "failed to summarize invocations")
	}
	return rows, nil
}

// DeleteOlderThan removes invocations created before t
func (r *Repository) DeleteOlderThan(ctx context.Context, t time.Time) (int64, error) {
	return r.delete(ctx, "DELETE FROM invocations WHERE created_at < ?", t.UnixMilli())
}

// DeleteByTool removes every invocation of a tool
func (r *Repository) DeleteByTool(ctx context.Context, tool string) (int64, error) {
	return r.delete(ctx, "DELETE FROM invocations WHERE tool = ?", tool)
}

// DeleteAll empties the log
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	return r.delete(ctx, "DELETE FROM invocations")
}

func (r *Repository) delete(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Error("database_delete_failed", "error", err)
		return 0, errors.Wrap(err, "failed to delete invocations")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get rows affected")
	}

	slog.Info("database_invocations_deleted", "count", rows)
	return rows, nil
}
