// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package policy

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// Storage defines the interface for rule persistence
type Storage interface {
	// SaveRule saves a rule to persistent storage
	SaveRule(r *Rule) error

	// LoadRules loads all rules from persistent storage
	LoadRules() ([]Rule, error)

	// Close closes the storage connection
	Close() error
}

// SQLiteStorage implements Storage using SQLite database
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Infof("Rule storage initialized: %s", dbPath)
	return storage, nil
}

// initSchema creates the rules table if it doesn't exist. Rules are
// keyed by their normalized 4-tuple, giving storage the same upsert
// semantics as the serving table.
func (s *SQLiteStorage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rules (
		src_cidr TEXT NOT NULL,
		src_port INTEGER NOT NULL,
		dst_cidr TEXT NOT NULL,
		dst_port INTEGER NOT NULL,
		action TEXT NOT NULL,
		target TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (src_cidr, src_port, dst_cidr, dst_port)
	);

	CREATE INDEX IF NOT EXISTS idx_rules_action ON rules(action);
	CREATE INDEX IF NOT EXISTS idx_rules_target ON rules(target);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveRule saves a rule to the database, overwriting the action of an
// existing rule with the same tuple (last write wins)
func (s *SQLiteStorage) SaveRule(r *Rule) error {
	query := `
	INSERT INTO rules (src_cidr, src_port, dst_cidr, dst_port, action, target)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(src_cidr, src_port, dst_cidr, dst_port) DO UPDATE SET
		action = excluded.action,
		target = excluded.target,
		updated_at = CURRENT_TIMESTAMP
	`

	_, err := s.db.Exec(query,
		r.SrcCIDR,
		r.SrcPort,
		r.DstCIDR,
		r.DstPort,
		r.Action,
		r.Target,
	)

	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}

	log.Debugf("Rule saved to storage: %s:%d -> %s:%d", r.SrcCIDR, r.SrcPort, r.DstCIDR, r.DstPort)
	return nil
}

// LoadRules loads all rules from the database
func (s *SQLiteStorage) LoadRules() ([]Rule, error) {
	query := `
	SELECT src_cidr, src_port, dst_cidr, dst_port, action, target
	FROM rules
	ORDER BY created_at ASC, src_cidr ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var r Rule
		err := rows.Scan(
			&r.SrcCIDR,
			&r.SrcPort,
			&r.DstCIDR,
			&r.DstPort,
			&r.Action,
			&r.Target,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	log.Infof("Loaded %d rules from storage", len(rules))
	return rules, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RuleCount returns the total number of rules in storage
func (s *SQLiteStorage) RuleCount() (int, error) {
	query := `SELECT COUNT(*) FROM rules`

	var count int
	err := s.db.QueryRow(query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get rule count: %w", err)
	}

	return count, nil
}

// ClearAll removes all rules from storage (useful for testing)
func (s *SQLiteStorage) ClearAll() error {
	query := `DELETE FROM rules`

	_, err := s.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}

	log.Info("All rules cleared from storage")
	return nil
}
