package storage

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/daniil11ru/lastseen/cli/locator/errs"
	"github.com/daniil11ru/lastseen/cli/locator/model"
)

// Outcome classifies a per-identifier lookup inside a batch.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	OutcomeError    Outcome = "error"
)

// LookupResult is the explicit per-identifier result collected by GetMany.
// One identifier's failure never affects another's entry.
type LookupResult struct {
	ID      string
	Outcome Outcome
	Record  *model.Position
	Err     error
}

// Stats is a best-effort accounting of a namespace's keys.
type Stats struct {
	Count       int64 `json:"count"`
	MemoryBytes int64 `json:"memory_bytes"`
}

// NamespaceStore reads position records stored under a fixed key prefix.
// Records under different prefixes are unrelated even when the identifier
// strings coincide.
type NamespaceStore struct {
	Namespace string
	Prefix    string
	Client    Client
	Decoder   Decoder
}

func NewNamespaceStore(namespace, prefix string, client Client, decoder Decoder) *NamespaceStore {
	return &NamespaceStore{Namespace: namespace, Prefix: prefix, Client: client, Decoder: decoder}
}

func (s *NamespaceStore) key(id string) string {
	return s.Prefix + id
}

func (s *NamespaceStore) idFromKey(key string) string {
	return strings.TrimPrefix(key, s.Prefix)
}

// Get reads one record. It returns (nil, nil) when the key is absent or has
// no decodable content; the returned record's EntityID always equals id even
// when the stored payload omitted or mismatched it.
func (s *NamespaceStore) Get(ctx context.Context, id string) (*model.Position, error) {
	key := s.key(id)

	ok, err := s.Client.Exists(ctx, key)
	if err != nil {
		return nil, errs.Newf(errs.StoreUnavailable, "existence check for %s failed: %v", key, err)
	}
	if !ok {
		return nil, nil
	}

	typ, err := s.Client.Type(ctx, key)
	if err != nil {
		return nil, errs.Newf(errs.StoreUnavailable, "type probe for %s failed: %v", key, err)
	}

	raw, err := s.fetch(ctx, key, PhysicalType(typ))
	if err != nil {
		return nil, err
	}

	record, err := s.Decoder.Decode(raw, id)
	if err != nil || record == nil {
		return nil, err
	}

	record.EntityID = id
	return record, nil
}

func (s *NamespaceStore) fetch(ctx context.Context, key string, typ PhysicalType) (RawValue, error) {
	raw := RawValue{Type: typ}
	var err error

	switch typ {
	case TypeString:
		raw.Blob, err = s.Client.Get(ctx, key)
	case TypeHash:
		raw.Fields, err = s.Client.HGetAll(ctx, key)
	case TypeList:
		raw.Blob, err = s.Client.LIndex(ctx, key, -1)
	case TypeZSet:
		var members []string
		if members, err = s.Client.ZRevRange(ctx, key, 0, 0); err == nil && len(members) > 0 {
			raw.Blob = members[0]
		}
	default:
		// Unsupported encoding; the decoder reports it as not found.
	}

	if err != nil {
		return raw, errs.Newf(errs.StoreUnavailable, "read of %s (%s) failed: %v", key, typ, err)
	}
	return raw, nil
}

// GetMany resolves each identifier independently; duplicates resolve once.
// Failed lookups are logged and recorded as error outcomes; they never
// abort the batch. When the
// caller abandons the context the accumulated results are returned as-is and
// the remaining identifiers are not retried.
func (s *NamespaceStore) GetMany(ctx context.Context, ids []string) []LookupResult {
	results := make([]LookupResult, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		record, err := s.Get(ctx, id)
		switch {
		case err != nil:
			log.Warnf("%s lookup of %q failed: %v", s.Namespace, id, err)
			results = append(results, LookupResult{ID: id, Outcome: OutcomeError, Err: err})
		case record == nil:
			results = append(results, LookupResult{ID: id, Outcome: OutcomeNotFound})
		default:
			results = append(results, LookupResult{ID: id, Outcome: OutcomeFound, Record: record})
		}
	}
	return results
}

// GetAll enumerates every key under the namespace prefix and resolves each
// one through Get. The snapshot is point-in-time-approximate: keys written
// or deleted during the scan may or may not appear.
func (s *NamespaceStore) GetAll(ctx context.Context) ([]*model.Position, error) {
	keys, err := s.Client.ScanKeys(ctx, s.Prefix+"*")
	if err != nil {
		return nil, errs.Newf(errs.StoreUnavailable, "scan of %s* failed: %v", s.Prefix, err)
	}

	records := make([]*model.Position, 0, len(keys))
	for _, key := range keys {
		if ctx.Err() != nil {
			break
		}

		id := s.idFromKey(key)
		record, err := s.Get(ctx, id)
		if err != nil {
			log.Warnf("%s listing skipped %q: %v", s.Namespace, id, err)
			continue
		}
		if record == nil {
			// Deleted between scan and read.
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Exists reports whether the key is present and carries non-empty content
// for its physical type. An empty field map or empty append log counts as
// not existing even though the key itself does. When the content probe
// fails, the bare key existence is the answer.
func (s *NamespaceStore) Exists(ctx context.Context, id string) (bool, error) {
	key := s.key(id)

	ok, err := s.Client.Exists(ctx, key)
	if err != nil {
		return false, errs.Newf(errs.StoreUnavailable, "existence check for %s failed: %v", key, err)
	}
	if !ok {
		return false, nil
	}

	typ, err := s.Client.Type(ctx, key)
	if err != nil {
		log.Warnf("type probe for %s failed, falling back to key existence: %v", key, err)
		return true, nil
	}

	var n int64
	switch PhysicalType(typ) {
	case TypeString:
		return true, nil
	case TypeHash:
		n, err = s.Client.HLen(ctx, key)
	case TypeList:
		n, err = s.Client.LLen(ctx, key)
	case TypeZSet:
		n, err = s.Client.ZCard(ctx, key)
	default:
		return false, nil
	}

	if err != nil {
		log.Warnf("content probe for %s failed, falling back to key existence: %v", key, err)
		return true, nil
	}
	return n > 0, nil
}

// Stats counts keys under the prefix and sums per-key memory usage.
// Individual accounting failures are skipped rather than failing the call.
func (s *NamespaceStore) Stats(ctx context.Context) (Stats, error) {
	keys, err := s.Client.ScanKeys(ctx, s.Prefix+"*")
	if err != nil {
		return Stats{}, errs.Newf(errs.StoreUnavailable, "scan of %s* failed: %v", s.Prefix, err)
	}

	stats := Stats{Count: int64(len(keys))}
	for _, key := range keys {
		bytes, err := s.Client.MemoryUsage(ctx, key)
		if err != nil {
			continue
		}
		stats.MemoryBytes += bytes
	}
	return stats, nil
}

// Ping probes the liveness of the underlying connection.
func (s *NamespaceStore) Ping(ctx context.Context) error {
	if err := s.Client.Ping(ctx); err != nil {
		return errs.Newf(errs.StoreUnavailable, "%s store is unreachable: %v", s.Namespace, err)
	}
	return nil
}
