package foundry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// Patcher pins a workspace's foundry.toml to the compiler settings a
// contract was deployed with. Edits are line-scoped to [profile.default]
// so every other key and comment in the file survives byte for byte; a
// full decode/re-encode round trip would silently drop whatever our
// schema does not model.
type Patcher struct {
	log *slog.Logger
}

// NewPatcher creates a foundry.toml patcher.
func NewPatcher(log *slog.Logger) *Patcher {
	return &Patcher{log: log.With("component", "foundry")}
}

// Patch rewrites the workspace's foundry.toml for the given settings and
// returns a restore function that puts the original back. A workspace
// without a foundry.toml gets a minimal one; restore then removes it.
func (p *Patcher) Patch(ctx context.Context, root string, settings models.CompilerSettings) (usecase.RestoreFunc, error) {
	path := filepath.Join(root, "foundry.toml")

	original, err := os.ReadFile(path)
	existed := err == nil
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read foundry.toml: %w", err)
	}

	patched := applyProfile(string(original), profilePairs(settings))
	var doc map[string]any
	if err := toml.Unmarshal([]byte(patched), &doc); err != nil {
		return nil, fmt.Errorf("patched foundry.toml does not parse: %w", err)
	}

	if err := os.WriteFile(path, []byte(patched), 0644); err != nil {
		return nil, fmt.Errorf("failed to write foundry.toml: %w", err)
	}
	p.log.Debug("patched foundry.toml",
		"root", root,
		"solc", settings.SolcVersion(),
		"optimizer_runs", settings.OptimizerRuns,
		"via_ir", settings.ViaIR)

	restore := func() error {
		if !existed {
			return os.Remove(path)
		}
		return os.WriteFile(path, original, 0644)
	}
	return restore, nil
}

// profilePairs lists the keys to pin, in written order. Script and test
// trees are pointed at directories that do not exist: they frequently fail
// to compile against the pinned dependency set, and they contribute nothing
// to the artifacts being checked.
func profilePairs(s models.CompilerSettings) [][2]string {
	pairs := [][2]string{
		{"script", `"disabled_script"`},
		{"test", `"disabled_test"`},
		{"optimizer", strconv.FormatBool(s.OptimizerEnabled)},
		{"optimizer_runs", strconv.Itoa(s.OptimizerRuns)},
		{"via_ir", strconv.FormatBool(s.ViaIR)},
	}
	// An unparseable compiler version or an absent EVM version leaves the
	// workspace's own choice in place.
	if v := s.SolcVersion(); v != "" {
		pairs = append(pairs, [2]string{"solc", strconv.Quote(v)})
	}
	if s.EVMVersion != "" {
		pairs = append(pairs, [2]string{"evm_version", strconv.Quote(s.EVMVersion)})
	}
	return pairs
}

// applyProfile updates or inserts each key within the [profile.default]
// section, appending the section itself when the file lacks one.
func applyProfile(content string, pairs [][2]string) string {
	content = ensureProfile(content)
	lines := strings.Split(content, "\n")
	start, end := profileSpan(lines)

	for _, pair := range pairs {
		key, value := pair[0], pair[1]
		replaced := false
		for i := start; i < end; i++ {
			if isKeyLine(lines[i], key) {
				lines[i] = key + " = " + value
				replaced = true
				break
			}
		}
		if !replaced {
			lines = slices.Insert(lines, start, key+" = "+value)
			end++
		}
	}
	return strings.Join(lines, "\n")
}

// ensureProfile guarantees a [profile.default] header exists.
func ensureProfile(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "[profile.default]" {
			return content
		}
	}
	content = strings.TrimRight(content, "\n")
	if content != "" {
		content += "\n\n"
	}
	return content + "[profile.default]\n"
}

// profileSpan returns the line range (exclusive end) of keys belonging to
// the default profile: from just past its header to the next table header.
// Keys past any later header belong to that table, so edits never cross it.
func profileSpan(lines []string) (int, int) {
	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "[profile.default]" {
			start = i + 1
			break
		}
	}
	if start == -1 {
		return -1, -1
	}
	for i := start; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "[") {
			return start, i
		}
	}
	return start, len(lines)
}

// isKeyLine reports whether a line assigns exactly the given key. A prefix
// test alone would let "optimizer" claim the "optimizer_runs" line.
func isKeyLine(line, key string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, key) {
		return false
	}
	rest := strings.TrimSpace(trimmed[len(key):])
	return strings.HasPrefix(rest, "=")
}

// Ensure the adapter implements the interface
var _ usecase.ConfigPatcher = (*Patcher)(nil)
