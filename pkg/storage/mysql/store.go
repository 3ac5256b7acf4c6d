// Package mysql provides a MySQL implementation of the storage.Store interface.
//
// It also works against MySQL-protocol compatible databases such as OceanBase.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/agentmem-labs/agentmem-go/pkg/storage"
)

// Store implements storage.Store using MySQL as the backend.
type Store struct {
	db    *sql.DB
	table string
}

// Config contains MySQL configuration.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	TableName string
}

// NewStore creates a new MySQL store, creating the table if it does not exist.
func NewStore(cfg *Config) (*Store, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	table := cfg.TableName
	if table == "" {
		table = "memories"
	}

	s := &Store{db: db, table: table}
	if err := s.initTables(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// initTables initializes the database table.
func (s *Store) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			content TEXT NOT NULL,
			memory_type VARCHAR(32) NOT NULL,
			importance INT NOT NULL,
			embedding JSON,
			metadata JSON,
			created_at DATETIME(6) NOT NULL,
			last_accessed_at DATETIME(6),
			access_count INT NOT NULL DEFAULT 0
		)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("mysql: init tables: %w", err)
	}
	return nil
}

// Save inserts or overwrites a memory keyed by its ID.
func (s *Store) Save(ctx context.Context, m *storage.Memory) error {
	embeddingJSON, metadataJSON, err := encodeColumns(m)
	if err != nil {
		return fmt.Errorf("mysql: save: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, content, memory_type, importance, embedding, metadata, created_at, last_accessed_at, access_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			content = VALUES(content),
			memory_type = VALUES(memory_type),
			importance = VALUES(importance),
			embedding = VALUES(embedding),
			metadata = VALUES(metadata),
			last_accessed_at = VALUES(last_accessed_at),
			access_count = VALUES(access_count)
	`, s.table)

	_, err = s.db.ExecContext(ctx, query,
		m.ID,
		m.Content,
		m.MemoryType,
		m.Importance,
		embeddingJSON,
		metadataJSON,
		m.CreatedAt,
		nullableTime(m.LastAccessedAt),
		m.AccessCount,
	)
	if err != nil {
		return fmt.Errorf("mysql: save: %w", err)
	}
	return nil
}

// Get returns the memory with the given ID, or storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (*storage.Memory, error) {
	query := fmt.Sprintf(`
		SELECT id, content, memory_type, importance, embedding, metadata,
		       created_at, last_accessed_at, access_count
		FROM %s WHERE id = ?
	`, s.table)

	m, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mysql: get: %w", err)
	}
	return m, nil
}

// Delete removes the memory if present and reports whether a removal occurred.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.table)

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("mysql: delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mysql: delete: %w", err)
	}
	return affected > 0, nil
}

// ListAll returns every stored memory.
func (s *Store) ListAll(ctx context.Context) ([]*storage.Memory, error) {
	query := fmt.Sprintf(`
		SELECT id, content, memory_type, importance, embedding, metadata,
		       created_at, last_accessed_at, access_count
		FROM %s
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("mysql: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var memories []*storage.Memory
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("mysql: list: %w", err)
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: list: %w", err)
	}
	return memories, nil
}

// Count returns the number of stored memories.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("mysql: count: %w", err)
	}
	return count, nil
}

// DeleteAll removes every stored memory.
func (s *Store) DeleteAll(ctx context.Context) error {
	query := fmt.Sprintf("DELETE FROM %s", s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("mysql: delete all: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanRecord.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a memory from a database row.
func scanRecord(row rowScanner) (*storage.Memory, error) {
	var (
		m              storage.Memory
		embeddingJSON  sql.NullString
		metadataJSON   sql.NullString
		lastAccessedAt sql.NullTime
	)

	err := row.Scan(
		&m.ID,
		&m.Content,
		&m.MemoryType,
		&m.Importance,
		&embeddingJSON,
		&metadataJSON,
		&m.CreatedAt,
		&lastAccessedAt,
		&m.AccessCount,
	)
	if err != nil {
		return nil, err
	}

	if embeddingJSON.Valid && embeddingJSON.String != "" {
		if err := json.Unmarshal([]byte(embeddingJSON.String), &m.Embedding); err != nil {
			return nil, fmt.Errorf("parse embedding: %w", err)
		}
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &m.Metadata); err != nil {
			return nil, fmt.Errorf("parse metadata: %w", err)
		}
	}
	if lastAccessedAt.Valid {
		t := lastAccessedAt.Time
		m.LastAccessedAt = &t
	}
	return &m, nil
}

// encodeColumns serializes the embedding and metadata columns.
func encodeColumns(m *storage.Memory) (embedding, metadata sql.NullString, err error) {
	if m.Embedding != nil {
		data, err := json.Marshal(m.Embedding)
		if err != nil {
			return embedding, metadata, err
		}
		embedding = sql.NullString{String: string(data), Valid: true}
	}
	if m.Metadata != nil {
		data, err := json.Marshal(m.Metadata)
		if err != nil {
			return embedding, metadata, err
		}
		metadata = sql.NullString{String: string(data), Valid: true}
	}
	return embedding, metadata, nil
}

// nullableTime converts an optional time into its SQL form.
func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
