package documents

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/dgnsrekt/propdash/internal/apperr"
)

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Store keeps processed results as one JSON file per result.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store and ensures the directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("result store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

func validateID(id string) error {
	if !uuidRe.MatchString(id) {
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("invalid result id: %q", id), nil)
	}
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes res, replacing any earlier result with the same id.
func (s *Store) Save(res Result) error {
	if err := validateID(res.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("result store: marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(res.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("result store: write: %w", err)
	}
	if err := os.Rename(tmp, s.path(res.ID)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("result store: rename: %w", err)
	}
	return nil
}

// Get reads one result by id.
func (s *Store) Get(id string) (Result, error) {
	if err := validateID(id); err != nil {
		return Result{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, apperr.New(apperr.CodeDocumentNotFound, fmt.Sprintf("result not found: %s", id), nil)
		}
		return Result{}, fmt.Errorf("result store: read: %w", err)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Result{}, fmt.Errorf("result store: unmarshal: %w", err)
	}
	return res, nil
}

// List returns all results sorted by processing time (newest first).
func (s *Store) List() ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("result store: glob: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Debug("skipping unreadable result", "path", path, "error", err)
			continue
		}
		var res Result
		if err := json.Unmarshal(data, &res); err != nil || !uuidRe.MatchString(res.ID) {
			slog.Debug("skipping malformed result", "path", path)
			continue
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ProcessedAt.After(results[j].ProcessedAt)
	})
	return results, nil
}

// Delete removes one result.
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return apperr.New(apperr.CodeDocumentNotFound, fmt.Sprintf("result not found: %s", id), nil)
		}
		return fmt.Errorf("result store: delete: %w", err)
	}
	return nil
}

// Export writes every stored result into one all_results_<timestamp>.json
// file under dir and returns its path and the number of results.
func (s *Store) Export(dir string, now time.Time) (string, int, error) {
	results, err := s.List()
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("result export: mkdir %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("result export: marshal: %w", err)
	}
	path := filepath.Join(dir, "all_results_"+now.Format("20060102_150405")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("result export: write: %w", err)
	}
	return path, len(results), nil
}
