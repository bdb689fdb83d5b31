package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

const maxSuggestions = 3

// Store reads the contract mapping file, a JSON object keyed by canonical
// contract name. The file is maintained by hand next to the address books,
// so it is parsed strictly; a malformed mapping should stop the run rather
// than silently skip contracts.
type Store struct {
	path string

	mu      sync.RWMutex
	entries map[string]*models.MappingEntry
}

// NewStore creates a mapping store for the configured mapping file.
// The file is read lazily on first use.
func NewStore(cfg *config.RuntimeConfig) *Store {
	path := cfg.MappingFile
	if !filepath.IsAbs(path) && cfg.ProjectRoot != "" {
		path = filepath.Join(cfg.ProjectRoot, path)
	}
	return &Store{path: path}
}

// Load returns all mapping entries keyed by canonical name.
func (s *Store) Load(ctx context.Context) (map[string]*models.MappingEntry, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries, nil
}

// Lookup finds the entry for a canonical contract name. A miss returns a
// NoMappingError carrying the closest known names.
func (s *Store) Lookup(ctx context.Context, canonicalName string) (*models.MappingEntry, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if entry, ok := s.entries[canonicalName]; ok {
		return entry, nil
	}
	return nil, &domain.NoMappingError{
		Name:        canonicalName,
		Suggestions: s.suggest(canonicalName),
	}
}

// suggest returns up to maxSuggestions known names close to the given one.
// Caller must hold at least a read lock.
func (s *Store) suggest(name string) []string {
	names := make([]string, 0, len(s.entries))
	for known := range s.entries {
		names = append(names, known)
	}
	sort.Strings(names)

	matches := fuzzy.Find(name, names)
	var suggestions []string
	for _, match := range matches {
		suggestions = append(suggestions, match.Str)
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}

func (s *Store) ensureLoaded() error {
	s.mu.RLock()
	loaded := s.entries != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries != nil {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read contract mapping %s: %w", s.path, err)
	}

	entries := make(map[string]*models.MappingEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse contract mapping %s: %w", s.path, err)
	}

	// The map key is the canonical name; copy it onto each entry so they
	// stay self-describing once handed out.
	for name, entry := range entries {
		entry.Name = name
	}

	s.entries = entries
	return nil
}

// Ensure the adapter implements the interface
var _ usecase.MappingStore = (*Store)(nil)
