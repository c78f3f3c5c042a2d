package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizbox/internal/models"
	"quizbox/internal/storage"
)

// ErrNoResult is returned by Result for an unknown id.
var ErrNoResult = errors.New("history: result not found")

const historyKeyPrefix = "quiz_history_"

const recordVersion = 1

// historyEnvelope is the persisted shape of a user's result list.
type historyEnvelope struct {
	Version int                 `json:"version"`
	Results []models.QuizResult `json:"results"`
}

// Store owns the past quiz results for the active user, one persisted
// list per user id. Persistence is best-effort: a failed write is
// logged and the in-memory list stands.
type Store struct {
	mu      sync.Mutex
	store   storage.Store
	userID  string
	gen     uint64
	results []models.QuizResult
	loading bool
}

func New(st storage.Store) *Store {
	return &Store{store: st}
}

func key(userID string) string {
	return historyKeyPrefix + userID
}

// SetUser switches the active user and reloads their list
// asynchronously. An empty id empties the list. Each call invalidates
// any load still in flight for a previous user, so a slow stale load
// can never overwrite a newer user's results.
func (s *Store) SetUser(userID string) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.userID = userID
	s.results = nil
	if userID == "" {
		s.loading = false
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()

	go s.load(gen, userID)
}

func (s *Store) load(gen uint64, userID string) {
	results, err := s.readResults(context.Background(), userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("Error loading quiz history for %s: %v", userID, err)
	}

	// Newest first.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Date.After(results[j].Date)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// A newer user became active while we were reading.
		return
	}
	s.results = results
	s.loading = false
}

func (s *Store) readResults(ctx context.Context, userID string) ([]models.QuizResult, error) {
	raw, err := s.store.Get(ctx, key(userID))
	if err != nil {
		return nil, err
	}

	var env historyEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err == nil && env.Version > 0 {
		return env.Results, nil
	}
	// Pre-versioning records stored the bare array.
	var legacy []models.QuizResult
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		return nil, fmt.Errorf("error decoding history record: %w", err)
	}
	return legacy, nil
}

func (s *Store) writeResults(ctx context.Context, userID string, results []models.QuizResult) error {
	raw, err := json.Marshal(historyEnvelope{Version: recordVersion, Results: results})
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key(userID), string(raw))
}

// AddResult assigns a fresh id and timestamp to the partial result,
// prepends it to the list and persists the whole list. Insertion at the
// head keeps new results first regardless of wall-clock skew. No-op
// when no user is active.
func (s *Store) AddResult(partial models.QuizResult) *models.QuizResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		return nil
	}

	// The in-memory list is now authoritative; an in-flight load must
	// not clobber it.
	s.gen++
	s.loading = false

	partial.ID = uuid.NewString()
	partial.Date = time.Now()
	s.results = append([]models.QuizResult{partial}, s.results...)

	if err := s.writeResults(context.Background(), s.userID, s.results); err != nil {
		log.Printf("Error saving quiz result: %v", err)
	}
	return &partial
}

// ClearHistory deletes the persisted list for the active user and
// empties the in-memory list. Calling it twice is the same as once.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		return
	}
	s.gen++
	s.loading = false

	if err := s.store.Delete(context.Background(), key(s.userID)); err != nil {
		log.Printf("Error clearing history: %v", err)
	}
	s.results = nil
}

// Results returns a copy of the active user's list, newest first.
func (s *Store) Results() []models.QuizResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.QuizResult, len(s.results))
	copy(out, s.results)
	return out
}

// Result looks up one persisted attempt by id.
func (s *Store) Result(id string) (*models.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.results {
		if s.results[i].ID == id {
			r := s.results[i]
			return &r, nil
		}
	}
	return nil, ErrNoResult
}

// Loading reports whether a list load is still in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}
