package addresses

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// Loader reads candidate (name, address) pairs from the address book files
// kept next to the deployment scripts. Flat JSON or YAML objects mapping a
// display name to an address; zero addresses are placeholders for contracts
// not deployed yet and are dropped here so they never reach the engine.
type Loader struct {
	cfg *config.RuntimeConfig
	log *slog.Logger
}

// NewLoader creates an address book loader.
func NewLoader(cfg *config.RuntimeConfig, log *slog.Logger) *Loader {
	return &Loader{cfg: cfg, log: log.With("component", "addresses")}
}

// All loads every configured address file. When no explicit file list is
// configured the address directory is scanned recursively instead.
func (l *Loader) All(ctx context.Context) ([]models.ContractRequest, error) {
	files, err := l.addressFiles()
	if err != nil {
		return nil, err
	}

	var requests []models.ContractRequest
	for _, file := range files {
		fromFile, err := l.FromFile(ctx, file)
		if err != nil {
			return nil, err
		}
		requests = append(requests, fromFile...)
	}
	return requests, nil
}

// FromFile loads a single address file, JSON or YAML by extension.
func (l *Loader) FromFile(ctx context.Context, path string) ([]models.ContractRequest, error) {
	path = l.resolve(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read address file: %w", err)
	}

	book := make(map[string]string)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &book)
	default:
		err = json.Unmarshal(data, &book)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse address file %s: %w", path, err)
	}

	// JSON objects come back in map order; sort by name so runs over the
	// same book always enumerate candidates identically.
	names := make([]string, 0, len(book))
	for name := range book {
		names = append(names, name)
	}
	sort.Strings(names)

	var requests []models.ContractRequest
	for _, name := range names {
		req, ok, err := l.candidate(name, book[name], path)
		if err != nil {
			return nil, err
		}
		if ok {
			requests = append(requests, req)
		}
	}
	l.log.Debug("loaded address file", "path", path, "contracts", len(requests))
	return requests, nil
}

// FromChangedFile loads the CI changed-set file, a JSON array of changed
// contracts. Only the name and address fields are consumed.
func (l *Loader) FromChangedFile(ctx context.Context, path string) ([]models.ContractRequest, error) {
	path = l.resolve(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read changed-set file: %w", err)
	}

	var changed []models.ChangedContract
	if err := json.Unmarshal(data, &changed); err != nil {
		return nil, fmt.Errorf("failed to parse changed-set file %s: %w", path, err)
	}

	var requests []models.ContractRequest
	for i, entry := range changed {
		if entry.Name == "" || entry.Address == "" {
			return nil, fmt.Errorf("changed-set entry %d in %s is missing name or address", i, path)
		}
		req, ok, err := l.candidate(entry.Name, entry.Address, path)
		if err != nil {
			return nil, err
		}
		if ok {
			requests = append(requests, req)
		}
	}
	return requests, nil
}

// candidate validates one (name, address) pair. Zero addresses are dropped
// without error; anything else unparseable aborts the load so a typo in the
// book is not silently skipped.
func (l *Loader) candidate(name, address, path string) (models.ContractRequest, bool, error) {
	if !common.IsHexAddress(address) {
		return models.ContractRequest{}, false, fmt.Errorf("invalid address %q for %s in %s", address, name, path)
	}
	addr := common.HexToAddress(address)
	if addr == (common.Address{}) {
		l.log.Debug("skipping zero address", "name", name, "path", path)
		return models.ContractRequest{}, false, nil
	}
	return models.ContractRequest{Alias: name, Address: addr}, true, nil
}

// addressFiles returns the configured file list, or scans the address
// directory when none is configured.
func (l *Loader) addressFiles() ([]string, error) {
	if len(l.cfg.AddressFiles) > 0 {
		return l.cfg.AddressFiles, nil
	}

	dir := l.resolve(l.cfg.AddressDir)
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan address directory %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no address files found under %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

func (l *Loader) resolve(path string) string {
	if filepath.IsAbs(path) || l.cfg.ProjectRoot == "" {
		return path
	}
	return filepath.Join(l.cfg.ProjectRoot, path)
}

// Ensure the adapter implements the interface
var _ usecase.AddressSource = (*Loader)(nil)
