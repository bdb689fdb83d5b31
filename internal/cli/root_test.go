package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytematch-org/bytematch-cli/internal/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "clean run",
			err:      nil,
			expected: 0,
		},
		{
			name:     "verification failure",
			err:      domain.ErrVerificationFailed,
			expected: 1,
		},
		{
			name:     "wrapped verification failure",
			err:      fmt.Errorf("run: %w", domain.ErrVerificationFailed),
			expected: 1,
		},
		{
			name:     "infrastructure error",
			err:      fmt.Errorf("connection refused"),
			expected: 2,
		},
		{
			name: "network error",
			err: &domain.NetworkError{
				Op:  "eth_getCode",
				Err: fmt.Errorf("timeout"),
			},
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}

func TestRootCmdWiring(t *testing.T) {
	root := NewRootCmd()

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"verify", "list", "show", "version"} {
		assert.True(t, names[want], "missing %s command", want)
	}

	for _, flag := range []string{"debug", "non-interactive", "json", "mapping-file"} {
		require.NotNil(t, root.PersistentFlags().Lookup(flag), "missing global --%s", flag)
	}

	// Usage noise and duplicate error prints stay off; main owns both
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)
}

func TestVerifyCmdFlags(t *testing.T) {
	cmd := NewVerifyCmd()

	for _, flag := range []string{
		"all", "address", "name", "file", "changed-file",
		"skip-unmapped", "output",
		"fetch-workers", "build-workers", "build-timeout", "keep-workspaces",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing --%s", flag)
	}

	output := cmd.Flags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "o", output.Shorthand)
}
