package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"yunion.io/x/pkg/errors"

	"github.com/zexi/garage-status/pkg/store"
)

const (
	busyTimeoutMs = 5000
	pingTimeout   = 5 * time.Second
)

const createRecords = `CREATE TABLE IF NOT EXISTS records (
	tbl       TEXT NOT NULL,
	key_name  TEXT NOT NULL,
	key_value TEXT NOT NULL,
	item      TEXT NOT NULL,
	PRIMARY KEY (tbl, key_name, key_value)
)`

const upsertRecord = `INSERT INTO records (tbl, key_name, key_value, item) VALUES (?, ?, ?, ?)
ON CONFLICT (tbl, key_name, key_value) DO UPDATE SET item = excluded.item`

// Store keeps each row as a JSON document in a single SQLite table, for
// deployments without DynamoDB.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", path, busyTimeoutMs))
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	// one writer at a time keeps SQLite from returning "database is locked"
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping sqlite database")
	}
	if _, err := db.ExecContext(ctx, createRecords); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create records table")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetItem(ctx context.Context, table string, key store.Key) (store.Item, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT item FROM records WHERE tbl = ? AND key_name = ? AND key_value = ?`,
		table, key.Name, key.Value,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", table)
	}

	item := store.Item{}
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return nil, errors.Wrapf(err, "decode row in %s", table)
	}
	return item, nil
}

func (s *Store) PutItem(ctx context.Context, table string, key store.Key, attrs store.Item) error {
	doc, err := json.Marshal(store.WithKey(key, attrs))
	if err != nil {
		return errors.Wrap(err, "encode row")
	}
	if _, err := s.db.ExecContext(ctx, upsertRecord, table, key.Name, key.Value, string(doc)); err != nil {
		return errors.Wrapf(err, "upsert %s", table)
	}
	return nil
}
