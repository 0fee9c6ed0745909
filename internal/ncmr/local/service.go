// Package local keeps the NCMR collection in a key-value string store as a
// single JSON document. It is the offline backend: ids are generated here and
// records can be deleted.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"ncmr/internal/ncmr/models"
	"ncmr/pkg/platform/sentinel"
	"ncmr/pkg/requestcontext"
)

// Key is the key the serialized collection lives under.
const Key = "ncmrs"

// KV is a string key-value store. Get returns sentinel.ErrNotFound for a
// missing key.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Service implements the controller's RecordService and Deleter. Every
// mutation rewrites the whole collection.
type Service struct {
	kv         KV
	numberRule models.NumberRule
	mu         sync.Mutex
	lastID     int64
}

type Option func(*Service)

// WithNumberRule sets how display numbers are derived for drafts that arrive
// without one.
func WithNumberRule(rule models.NumberRule) Option {
	return func(s *Service) {
		if rule != "" {
			s.numberRule = rule
		}
	}
}

func New(kv KV, opts ...Option) (*Service, error) {
	if kv == nil {
		return nil, errors.New("key-value store is required")
	}
	s := &Service{kv: kv, numberRule: models.NumberRuleSequence}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// List reads the collection. A missing key is an empty collection.
func (s *Service) List(ctx context.Context) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Create stores a new open record at the front of the collection.
func (s *Service) Create(ctx context.Context, draft models.Draft) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	record := models.NewRecord(s.nextID(now.UnixMilli(), records), draft, now)
	if record.NCMRNumber == "" {
		record.NCMRNumber = s.numberRule.Derive(record, len(records)+1)
	}
	records = append([]models.Record{record}, records...)
	if err := s.write(ctx, records); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(records, func(r models.Record) bool { return r.ID == id })
	if idx < 0 {
		return fmt.Errorf("ncmr %s: %w", id, sentinel.ErrNotFound)
	}
	records[idx].Status = status
	return s.write(ctx, records)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(records, func(r models.Record) bool { return r.ID == id })
	if idx < 0 {
		return fmt.Errorf("ncmr %s: %w", id, sentinel.ErrNotFound)
	}
	records = slices.Delete(records, idx, idx+1)
	return s.write(ctx, records)
}

// nextID returns a millisecond timestamp, bumped past the last issued id and
// any id already stored.
func (s *Service) nextID(candidate int64, existing []models.Record) string {
	if candidate <= s.lastID {
		candidate = s.lastID + 1
	}
	taken := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		taken[r.ID] = struct{}{}
	}
	for {
		id := strconv.FormatInt(candidate, 10)
		if _, ok := taken[id]; !ok {
			s.lastID = candidate
			return id
		}
		candidate++
	}
}

func (s *Service) read(ctx context.Context) ([]models.Record, error) {
	raw, err := s.kv.Get(ctx, Key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return []models.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", Key, err)
	}
	if raw == "" {
		return []models.Record{}, nil
	}
	var records []models.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", Key, err)
	}
	return records, nil
}

func (s *Service) write(ctx context.Context, records []models.Record) error {
	encoded, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", Key, err)
	}
	if err := s.kv.Set(ctx, Key, string(encoded)); err != nil {
		return fmt.Errorf("write %s: %w", Key, err)
	}
	return nil
}
