// Package snapshot persists named batch snapshots as one JSON array under a single key.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"work-advisor/internal/common/database"
	apperrors "work-advisor/internal/common/errors"
	"work-advisor/internal/common/logger"
	"work-advisor/internal/common/metrics"
	"work-advisor/internal/models"

	"github.com/google/uuid"
)

// DefaultKey is the entry the collection lives under.
const DefaultKey = "predictionSnapshots"

// snapshotNamespace seeds the name-based snapshot ids.
var snapshotNamespace = uuid.MustParse("5b0f3c8e-6a51-4f0e-9d6c-2f4a8f7c1e93")

// KeyValueStore is the durable port the collection is written to. Get returns
// database.ErrKeyNotFound when the key was never written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Config struct {
	Key   string
	Clock func() time.Time
}

type Store struct {
	kv     KeyValueStore
	key    string
	clock  func() time.Time
	logger logger.Logger

	mu sync.Mutex
}

func NewStore(kv KeyValueStore, config *Config, log logger.Logger) *Store {
	if config == nil {
		config = &Config{}
	}
	key := config.Key
	if key == "" {
		key = DefaultKey
	}
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		kv:     kv,
		key:    key,
		clock:  clock,
		logger: logger.ForComponent(log, "snapshot-store"),
	}
}

// SnapshotID derives the id from the snapshot's name and creation time.
func SnapshotID(name string, createdAt time.Time) string {
	return uuid.NewSHA1(snapshotNamespace, []byte(name+"|"+createdAt.UTC().Format(time.RFC3339Nano))).String()
}

// Save appends a snapshot of the given batch and persists the whole collection.
func (s *Store) Save(ctx context.Context, name string, payload models.FormPayload, results map[string]models.Outcome) (id string, err error) {
	defer func() { s.observe("save", err) }()

	if strings.TrimSpace(name) == "" {
		return "", apperrors.NewValidationError("snapshot name must not be blank")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll(ctx)
	if err != nil {
		return "", err
	}

	createdAt := s.clock().UTC()
	id = SnapshotID(name, createdAt)
	for containsID(all, id) {
		createdAt = createdAt.Add(time.Nanosecond)
		id = SnapshotID(name, createdAt)
	}

	copied := make(map[string]models.Outcome, len(results))
	for k, v := range results {
		copied[k] = v
	}

	all = append(all, models.BatchSnapshot{
		ID:          id,
		Name:        name,
		CreatedAt:   createdAt,
		FormPayload: payload,
		Results:     copied,
	})
	if err := s.writeAll(ctx, all); err != nil {
		return "", err
	}

	s.logger.Info("snapshot saved", map[string]interface{}{
		"id":      id,
		"name":    name,
		"results": len(copied),
	})
	return id, nil
}

// List returns every snapshot, newest first.
func (s *Store) List(ctx context.Context) (list []models.BatchSnapshot, err error) {
	defer func() { s.observe("list", err) }()

	s.mu.Lock()
	all, err := s.readAll(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func (s *Store) Load(ctx context.Context, id string) (snap models.BatchSnapshot, err error) {
	defer func() { s.observe("load", err) }()

	s.mu.Lock()
	all, err := s.readAll(ctx)
	s.mu.Unlock()
	if err != nil {
		return models.BatchSnapshot{}, err
	}

	for _, candidate := range all {
		if candidate.ID == id {
			return candidate, nil
		}
	}
	return models.BatchSnapshot{}, apperrors.NewNotFoundError("snapshot", id)
}

// Delete removes the snapshot. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	defer func() { s.observe("delete", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll(ctx)
	if err != nil {
		return err
	}

	kept := all[:0]
	for _, snap := range all {
		if snap.ID != id {
			kept = append(kept, snap)
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	return s.writeAll(ctx, kept)
}

// Clear removes every snapshot.
func (s *Store) Clear(ctx context.Context) (err error) {
	defer func() { s.observe("clear", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeAll(ctx, []models.BatchSnapshot{}); err != nil {
		return err
	}
	s.logger.Info("snapshots cleared", nil)
	return nil
}

// readAll loads the collection. A value that does not parse is logged and read as empty.
func (s *Store) readAll(ctx context.Context) ([]models.BatchSnapshot, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return []models.BatchSnapshot{}, nil
		}
		return nil, apperrors.NewStorageFailureError("read "+s.key, err)
	}
	if strings.TrimSpace(raw) == "" {
		return []models.BatchSnapshot{}, nil
	}

	var all []models.BatchSnapshot
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		corrupt := apperrors.NewCorruptDataError(s.key, err)
		s.logger.Warn("stored snapshots are unreadable, treating as empty", map[string]interface{}{
			"key":       s.key,
			"errorCode": string(corrupt.Code),
			"details":   corrupt.Details,
		})
		metrics.SnapshotOperations.WithLabelValues("read", "corrupt").Inc()
		return []models.BatchSnapshot{}, nil
	}
	if all == nil {
		all = []models.BatchSnapshot{}
	}
	return all, nil
}

func (s *Store) writeAll(ctx context.Context, all []models.BatchSnapshot) error {
	data, err := json.Marshal(all)
	if err != nil {
		return apperrors.NewStorageFailureError("encode "+s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return apperrors.NewStorageFailureError("write "+s.key, err)
	}
	return nil
}

func (s *Store) observe(operation string, err error) {
	metrics.SnapshotOperations.WithLabelValues(operation, metrics.ResultLabel(err)).Inc()
}

func containsID(all []models.BatchSnapshot, id string) bool {
	for _, snap := range all {
		if snap.ID == id {
			return true
		}
	}
	return false
}
