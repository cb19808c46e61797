package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"stayfind/internal/model"
)

// PostgresRepository persists search and feedback activity
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// SaveSearch records one executed search. The query parameters are stored
// as JSONB so the schema survives new extraction fields.
func (r *PostgresRepository) SaveSearch(ctx context.Context, rec model.SearchRecord) error {
	params, err := json.Marshal(rec.Query)
	if err != nil {
		return fmt.Errorf("failed to marshal search params: %w", err)
	}
	query := `
		INSERT INTO search_logs (search_id, message, params, action, listing_count, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query, rec.SearchID, rec.Message, params, rec.Action, rec.ListingCount, rec.TookMs); err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// SaveFeedback records a user action on a presented listing
func (r *PostgresRepository) SaveFeedback(ctx context.Context, searchID, listingURL, action string) error {
	query := `
		INSERT INTO feedback_logs (search_id, listing_url, action)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, searchID, listingURL, action); err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}
