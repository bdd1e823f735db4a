package publish

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the page table of a published site.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (creating if needed) the page database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS web_page (
		idx INTEGER NOT NULL,
		parent_route TEXT NOT NULL,
		page_name TEXT NOT NULL,
		PRIMARY KEY (parent_route, page_name)
	);
	CREATE INDEX IF NOT EXISTS idx_web_page_order ON web_page(idx);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplacePages replaces the page table with pages, keeping their order.
func (s *SQLiteStore) ReplacePages(ctx context.Context, pages []Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM web_page"); err != nil {
		return fmt.Errorf("clear pages: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO web_page (idx, parent_route, page_name) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, p := range pages {
		if _, err := stmt.ExecContext(ctx, i, p.ParentRoute, p.PageName); err != nil {
			return fmt.Errorf("insert page %s: %w", p.Route(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pages: %w", err)
	}
	return nil
}

// SyncPages loads the page table from src and returns the number of pages.
func (s *SQLiteStore) SyncPages(ctx context.Context, src PageLister) (int, error) {
	pages, err := src.ListPages(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.ReplacePages(ctx, pages); err != nil {
		return 0, err
	}
	return len(pages), nil
}

// ListPages implements PageLister.
func (s *SQLiteStore) ListPages(ctx context.Context) ([]Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT parent_route, page_name FROM web_page ORDER BY idx")
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ParentRoute, &p.PageName); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return pages, nil
}
