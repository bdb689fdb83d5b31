package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

const githubBase = "https://github.com/"

// Manager provisions one pinned checkout per (repository, ref) for the
// lifetime of a run. Checkouts are shallow fetches of a single commit with
// submodules pinned the same way; an existing local submodule checkout is
// reused in place when it already sits at the wanted commit.
//
// The engine serializes calls for the same (repository, ref) via its
// per-workspace locks, so Provision only guards its own bookkeeping.
type Manager struct {
	cfg *config.RuntimeConfig
	log *slog.Logger

	mu      sync.Mutex
	runRoot string
	ownRoot bool
	cache   map[string]*usecase.Workspace
	cloned  map[string]string
}

// NewManager creates a workspace manager rooted at the configured
// workspace directory, or a fresh temp directory when none is set.
func NewManager(cfg *config.RuntimeConfig, log *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		log:    log.With("component", "workspace"),
		cache:  make(map[string]*usecase.Workspace),
		cloned: make(map[string]string),
	}
}

// Provision returns a checkout of the mapped source pinned at its ref,
// creating it on first use and caching it for the rest of the run.
func (m *Manager) Provision(ctx context.Context, mapping models.SourceMapping) (*usecase.Workspace, error) {
	key := mapping.Repository + "@" + mapping.Ref

	m.mu.Lock()
	if ws, ok := m.cache[key]; ok {
		m.mu.Unlock()
		return ws, nil
	}
	m.mu.Unlock()

	ws, temp, err := m.checkout(ctx, key, mapping)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache[key] = ws
	if temp != "" {
		m.cloned[key] = temp
	}
	m.mu.Unlock()
	return ws, nil
}

// Cleanup removes every cloned checkout. Locally reused checkouts are never
// touched. With keep-workspaces set the clones are left behind and logged so
// a failed build can be inspected.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.KeepWorkspaces {
		for key, dir := range m.cloned {
			m.log.Info("keeping workspace", "checkout", key, "dir", dir)
		}
		return nil
	}

	var lastErr error
	if m.ownRoot && m.runRoot != "" {
		if err := os.RemoveAll(m.runRoot); err != nil {
			lastErr = fmt.Errorf("failed to remove workspace root %s: %w", m.runRoot, err)
		}
	} else {
		for key, dir := range m.cloned {
			if err := os.RemoveAll(dir); err != nil {
				m.log.Warn("failed to remove workspace", "checkout", key, "error", err)
				lastErr = err
			}
		}
	}

	m.runRoot = ""
	m.ownRoot = false
	m.cache = make(map[string]*usecase.Workspace)
	m.cloned = make(map[string]string)
	return lastErr
}

// checkout picks a local reuse candidate or clones fresh. The second return
// is the temp directory to delete at cleanup, empty for local reuse.
func (m *Manager) checkout(ctx context.Context, key string, mapping models.SourceMapping) (*usecase.Workspace, string, error) {
	repoName := path.Base(mapping.Repository)

	if local := m.localCheckout(ctx, repoName, mapping.Ref); local != "" {
		m.log.Debug("reusing local checkout", "checkout", key, "dir", local)
		return &usecase.Workspace{Key: key, Root: local}, "", nil
	}

	dir, err := m.workspaceDir(repoName)
	if err != nil {
		return nil, "", err
	}

	m.log.Debug("cloning repository", "checkout", key, "dir", dir)
	if err := m.fetchAt(ctx, dir, githubBase+mapping.Repository+".git", mapping.Ref); err != nil {
		_ = os.RemoveAll(dir)
		return nil, "", err
	}
	if err := m.initSubmodules(ctx, dir, 0); err != nil {
		_ = os.RemoveAll(dir)
		return nil, "", err
	}

	return &usecase.Workspace{Key: key, Root: dir}, dir, nil
}

// localCheckout returns the path of an existing lib/<repo> checkout already
// at the wanted ref, or empty when there is none.
func (m *Manager) localCheckout(ctx context.Context, repoName, ref string) string {
	if m.cfg.ProjectRoot == "" {
		return ""
	}
	local := filepath.Join(m.cfg.ProjectRoot, "lib", repoName)
	if info, err := os.Stat(local); err != nil || !info.IsDir() {
		return ""
	}
	head, err := m.git(ctx, local, "rev-parse", "HEAD")
	if err != nil || !strings.EqualFold(head, ref) {
		return ""
	}
	return local
}

// fetchAt materializes a single commit of a remote into dir. A full clone
// of these repositories pulls years of history for nothing; fetching the
// pinned commit at depth 1 is what keeps provisioning fast.
func (m *Manager) fetchAt(ctx context.Context, dir, url, ref string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create checkout directory: %w", err)
	}
	steps := [][]string{
		{"init", "-q"},
		{"remote", "add", "origin", url},
		{"fetch", "--depth", "1", "origin", ref},
		{"checkout", "FETCH_HEAD"},
	}
	for _, args := range steps {
		if _, err := m.git(ctx, dir, args...); err != nil {
			return err
		}
	}
	return nil
}

// initSubmodules pins every registered submodule at the commit recorded in
// the superproject, one nested level deep. forge remappings resolve through
// lib/, so a missing submodule surfaces later as an unrelated-looking
// import error; failing here keeps the cause attached to the clone.
func (m *Manager) initSubmodules(ctx context.Context, dir string, depth int) error {
	status, err := m.git(ctx, dir, "submodule", "status")
	if err != nil {
		return err
	}
	if status == "" {
		return nil
	}
	if _, err := m.git(ctx, dir, "submodule", "init"); err != nil {
		return err
	}

	for _, line := range strings.Split(status, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		sha := strings.TrimLeft(fields[0], "-+U")
		sub := fields[1]

		url, err := m.git(ctx, dir, "config", "--get", "submodule."+sub+".url")
		if err != nil {
			return err
		}

		subDir := filepath.Join(dir, sub)
		if err := m.fetchAt(ctx, subDir, url, sha); err != nil {
			return err
		}

		if depth < 1 {
			if _, err := os.Stat(filepath.Join(subDir, ".gitmodules")); err == nil {
				if err := m.initSubmodules(ctx, subDir, depth+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// workspaceDir creates a fresh directory for one checkout under the
// run-scoped root.
func (m *Manager) workspaceDir(repoName string) (string, error) {
	root, err := m.ensureRunRoot()
	if err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp(root, repoName+"-")
	if err != nil {
		return "", fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return dir, nil
}

func (m *Manager) ensureRunRoot() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runRoot != "" {
		return m.runRoot, nil
	}

	if m.cfg.WorkspaceRoot != "" {
		if err := os.MkdirAll(m.cfg.WorkspaceRoot, 0755); err != nil {
			return "", fmt.Errorf("failed to create workspace root: %w", err)
		}
		m.runRoot = m.cfg.WorkspaceRoot
		return m.runRoot, nil
	}

	root, err := os.MkdirTemp("", "bytematch-")
	if err != nil {
		return "", fmt.Errorf("failed to create workspace root: %w", err)
	}
	m.runRoot = root
	m.ownRoot = true
	return root, nil
}

// git runs one git command in dir and returns its trimmed output.
// GIT_TERMINAL_PROMPT is disabled so a bad or private remote fails the
// group instead of hanging a build worker on a credential prompt.
func (m *Manager) git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w\nOutput: %s",
			strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return strings.TrimSpace(string(output)), nil
}

// Ensure the adapter implements the interface
var _ usecase.WorkspaceManager = (*Manager)(nil)
