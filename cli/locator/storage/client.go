package storage

import (
	"context"
	"time"
)

var now = time.Now // For mocking time.Now() in tests

// PhysicalType is the on-disk representation of a stored record as reported
// by the key-value store's type probe.
type PhysicalType string

const (
	// TypeString holds the whole record as one serialized JSON blob.
	TypeString PhysicalType = "string"
	// TypeHash holds each attribute as a separate field.
	TypeHash PhysicalType = "hash"
	// TypeList is an append log; the last element is current.
	TypeList PhysicalType = "list"
	// TypeZSet is a ranked set; the highest-scored member is current.
	TypeZSet PhysicalType = "zset"
	// TypeNone is reported for keys that do not exist.
	TypeNone PhysicalType = "none"
)

// Client is the set of key-value operations the namespace stores issue.
// The engine is read-only: there is no write surface here.
type Client interface {
	Exists(ctx context.Context, key string) (bool, error)
	Type(ctx context.Context, key string) (string, error)
	Get(ctx context.Context, key string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HLen(ctx context.Context, key string) (int64, error)
	LLen(ctx context.Context, key string) (int64, error)
	LIndex(ctx context.Context, key string, index int64) (string, error)
	ZCard(ctx context.Context, key string) (int64, error)
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	MemoryUsage(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// RawValue is a stored value fetched from the key-value store before
// decoding. Exactly one of Blob or Fields is populated depending on Type.
type RawValue struct {
	Type   PhysicalType
	Blob   string
	Fields map[string]string
}
