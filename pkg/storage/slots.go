// Package storage holds the key-value slots the application persists into and
// the snapshot codec for the document forest.
package storage

import (
	"context"
	"errors"
)

// Slot keys. Every snapshot is written to StateKey; writing statistics live
// in their own slot so a corrupt history never costs the documents.
const (
	StateKey = "betterwriter_state"
	StatsKey = "betterwriter_stats"
)

// ErrSlotEmpty is returned by Get when nothing was stored under a key.
var ErrSlotEmpty = errors.New("slot empty")

// Slots is a durable key-value store of opaque blobs.
type Slots interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
