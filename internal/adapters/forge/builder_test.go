package forge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

func TestBuildArgs(t *testing.T) {
	t.Run("full forced build", func(t *testing.T) {
		args := buildArgs(usecase.BuildOptions{Force: true})
		assert.Equal(t, []string{"build", "--force"}, args)
	})

	t.Run("targeted rebuild", func(t *testing.T) {
		args := buildArgs(usecase.BuildOptions{
			Paths: []string{"src/Token.sol", "src/Vault.sol"},
			Force: true,
		})
		assert.Equal(t, []string{"build", "src/Token.sol", "src/Vault.sol", "--force"}, args)
	})

	t.Run("incremental build", func(t *testing.T) {
		args := buildArgs(usecase.BuildOptions{})
		assert.Equal(t, []string{"build"}, args)
	})
}

func TestTailOf(t *testing.T) {
	t.Run("short output passes through", func(t *testing.T) {
		assert.Equal(t, "compiling 3 files", tailOf("compiling 3 files\n", 100))
	})

	t.Run("long output keeps the tail", func(t *testing.T) {
		output := strings.Repeat("x", 500) + "Error: stack too deep"
		got := tailOf(output, 40)

		assert.True(t, strings.HasPrefix(got, "..."))
		assert.True(t, strings.HasSuffix(got, "Error: stack too deep"))
		assert.Len(t, got, 43)
	})

	t.Run("trailing whitespace does not count", func(t *testing.T) {
		output := "short" + strings.Repeat(" ", 300)
		assert.Equal(t, "short", tailOf(output, 40))
	})
}
