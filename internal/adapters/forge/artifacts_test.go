package forge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytematch-org/bytematch-cli/internal/domain"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

func newTestArtifacts() *Artifacts {
	return NewArtifacts(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// writeArtifact drops a forge-style artifact at rel under the workspace's
// out directory.
func writeArtifact(t *testing.T, root, rel, contractName, creation, runtime string) {
	t.Helper()
	path := filepath.Join(root, "out", rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	body := fmt.Sprintf(
		`{"contractName": %q, "bytecode": {"object": %q}, "deployedBytecode": {"object": %q}}`,
		contractName, creation, runtime,
	)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestFindArtifactByFileStem(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "Token.sol/Token.json", "", "0x6080creation", "0x6080runtime")
	writeArtifact(t, root, "Vault.sol/Vault.json", "", "0xaa", "0xbb")

	artifact, err := newTestArtifacts().FindArtifact(context.Background(), root, "Token", models.RoleRuntime)

	require.NoError(t, err)
	assert.Equal(t, "0x6080runtime", artifact.DeployedBytecode.Object)
}

func TestFindArtifactByContractName(t *testing.T) {
	root := t.TempDir()
	// Versioned artifact files carry the contract name in the JSON body
	// rather than the file stem.
	writeArtifact(t, root, "Impl.sol/Impl.0.8.19.json", "Impl", "0x11", "0x22")

	artifact, err := newTestArtifacts().FindArtifact(context.Background(), root, "Impl", models.RoleCreation)

	require.NoError(t, err)
	assert.Equal(t, "0x11", artifact.Bytecode.Object)
}

func TestFindArtifactIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "Token.sol/Token.json", "", "0x11", "0x22")

	artifact, err := newTestArtifacts().FindArtifact(context.Background(), root, "tOKEN", models.RoleRuntime)

	require.NoError(t, err)
	assert.Equal(t, "0x22", artifact.DeployedBytecode.Object)
}

func TestFindArtifactSkipsDebugFiles(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "Token.sol/Token.dbg.json", "Token", "0x11", "0x22")

	_, err := newTestArtifacts().FindArtifact(context.Background(), root, "Token", models.RoleRuntime)

	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestFindArtifactSkipsBuildInfo(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "build-info/Token.json", "Token", "0x11", "0x22")

	_, err := newTestArtifacts().FindArtifact(context.Background(), root, "Token", models.RoleRuntime)

	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestFindArtifactRequiresBytecodeForRole(t *testing.T) {
	root := t.TempDir()
	// Interfaces and abstract contracts compile to placeholder runtime
	// bytecode. The lookup must treat those as misses so a targeted
	// rebuild gets its chance.
	writeArtifact(t, root, "IToken.sol/IToken.json", "", "0x6080", "0x")

	finder := newTestArtifacts()

	_, err := finder.FindArtifact(context.Background(), root, "IToken", models.RoleRuntime)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)

	artifact, err := finder.FindArtifact(context.Background(), root, "IToken", models.RoleCreation)
	require.NoError(t, err)
	assert.Equal(t, "0x6080", artifact.Bytecode.Object)
}

func TestFindArtifactWithoutBuildOutput(t *testing.T) {
	_, err := newTestArtifacts().FindArtifact(context.Background(), t.TempDir(), "Token", models.RoleRuntime)

	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	assert.Contains(t, err.Error(), "no build output")
}

func TestFindArtifactPicksDeterministically(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "a/Token.json", "", "0x11", "0xfirst")
	writeArtifact(t, root, "b/Token.json", "", "0x11", "0xsecond")

	// Workers race over the files; the first path in lexical order must
	// win no matter which match lands first.
	for i := 0; i < 5; i++ {
		artifact, err := newTestArtifacts().FindArtifact(context.Background(), root, "Token", models.RoleRuntime)
		require.NoError(t, err)
		assert.Equal(t, "0xfirst", artifact.DeployedBytecode.Object)
	}
}

func TestFindArtifactIgnoresMalformedFiles(t *testing.T) {
	root := t.TempDir()
	broken := filepath.Join(root, "out", "Token.sol", "Token.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(broken), 0o755))
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))
	writeArtifact(t, root, "Token.sol/TokenV2.json", "Token", "0x11", "0x22")

	artifact, err := newTestArtifacts().FindArtifact(context.Background(), root, "Token", models.RoleRuntime)

	require.NoError(t, err)
	assert.Equal(t, "0x22", artifact.DeployedBytecode.Object)
}
