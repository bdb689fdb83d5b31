package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytematch-org/bytematch-cli/internal/domain"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

const findWorkers = 4

// Artifacts locates compiled bytecode in a workspace's out directory.
type Artifacts struct {
	log *slog.Logger
}

// NewArtifacts creates an artifact repository over forge build output.
func NewArtifacts(log *slog.Logger) *Artifacts {
	return &Artifacts{log: log.With("component", "artifacts")}
}

// FindArtifact walks out/ for an artifact whose contract name or file stem
// matches, case-insensitively, and which carries non-empty bytecode for the
// wanted role. Ties are broken by path so repeated runs pick the same file.
func (a *Artifacts) FindArtifact(ctx context.Context, root string, name string, role models.BytecodeRole) (*models.Artifact, error) {
	outDir := filepath.Join(root, "out")
	if _, err := os.Stat(outDir); err != nil {
		return nil, fmt.Errorf("%w for %s: no build output at %s", domain.ErrArtifactNotFound, name, outDir)
	}

	type match struct {
		path     string
		artifact *models.Artifact
	}

	fileChan := make(chan string, 100)
	matchChan := make(chan match, 10)

	var wg sync.WaitGroup
	for w := 0; w < findWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range fileChan {
				if artifact := parseMatch(path, name, role); artifact != nil {
					matchChan <- match{path: path, artifact: artifact}
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(matchChan)
	}()

	go func() {
		defer close(fileChan)
		_ = filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if d.Name() == "build-info" {
					return fs.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".dbg.json") {
				return nil
			}
			fileChan <- path
			return nil
		})
	}()

	var best *match
	for m := range matchChan {
		m := m
		if best == nil || m.path < best.path {
			best = &m
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if best == nil {
		return nil, fmt.Errorf("%w for %s (%s bytecode) under %s", domain.ErrArtifactNotFound, name, role, outDir)
	}

	a.log.Debug("artifact located", "contract", name, "path", best.path)
	return best.artifact, nil
}

// parseMatch decodes one candidate file and keeps it when name and role both
// fit. out/ trees carry JSON that is not an artifact at all; those fail the
// bytecode check and are skipped without noise.
func parseMatch(path, name string, role models.BytecodeRole) *models.Artifact {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil
	}

	stem := strings.TrimSuffix(filepath.Base(path), ".json")
	if !strings.EqualFold(artifact.ContractName, name) && !strings.EqualFold(stem, name) {
		return nil
	}
	if _, ok := artifact.ObjectFor(role); !ok {
		return nil
	}
	return &artifact
}

// Ensure the adapter implements the interface
var _ usecase.ArtifactRepository = (*Artifacts)(nil)
