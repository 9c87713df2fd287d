// Package store defines the key-value record store the status service reads
// and writes. Every operation addresses exactly one row by its full key.
package store

import (
	"context"
)

// Key is the partition key of a row: the attribute name and its value.
type Key struct {
	Name  string
	Value string
}

// Item holds the string attributes of a row, including the key attribute.
type Item map[string]string

// RecordStore is implemented by every storage backend.
type RecordStore interface {
	// GetItem returns the row stored under key, or a nil Item when no such
	// row exists. A missing row is not an error.
	GetItem(ctx context.Context, table string, key Key) (Item, error)
	// PutItem unconditionally creates or overwrites the row under key.
	PutItem(ctx context.Context, table string, key Key, attrs Item) error
}

// Backend names accepted in configuration.
const (
	BackendDynamoDB = "dynamodb"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// WithKey returns a copy of attrs with the key attribute set.
func WithKey(key Key, attrs Item) Item {
	item := make(Item, len(attrs)+1)
	for k, v := range attrs {
		item[k] = v
	}
	item[key.Name] = key.Value
	return item
}
