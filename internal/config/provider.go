package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Provider builds the RuntimeConfig from viper for Wire dependency injection.
func Provider(v *viper.Viper) (*RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &RuntimeConfig{
		ProjectRoot:    projectRoot,
		MappingFile:    resolvePath(projectRoot, v.GetString("mapping_file")),
		AddressFiles:   v.GetStringSlice("address_files"),
		AddressDir:     resolvePath(projectRoot, v.GetString("address_dir")),
		ExplorerAPI:    strings.TrimRight(v.GetString("explorer_api"), "/"),
		RPCURL:         v.GetString("rpc_url"),
		WorkspaceRoot:  v.GetString("workspace_root"),
		KeepWorkspaces: v.GetBool("keep_workspaces"),
		BuildWorkers:   v.GetInt("build_workers"),
		BuildTimeout:   v.GetDuration("build_timeout"),
		FetchWorkers:   v.GetInt("fetch_workers"),
		FetchRetries:   v.GetInt("fetch_retries"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
	}

	for i, f := range cfg.AddressFiles {
		cfg.AddressFiles[i] = resolvePath(projectRoot, f)
	}

	if cfg.BuildWorkers < 1 {
		return nil, fmt.Errorf("build_workers must be >= 1, got %d", cfg.BuildWorkers)
	}
	if cfg.FetchWorkers < 1 {
		return nil, fmt.Errorf("fetch_workers must be >= 1, got %d", cfg.FetchWorkers)
	}

	return cfg, nil
}

// FindProjectRoot walks up from the current directory to the nearest
// directory containing foundry.toml. The address book repo the verifier runs
// against is itself a Foundry project.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		foundryToml := filepath.Join(dir, "foundry.toml")
		if _, err := os.Stat(foundryToml); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Foundry project (foundry.toml not found)")
		}
		dir = parent
	}
}

// SetupViper creates the viper instance backing Provider: env with the
// BYTEMATCH prefix, .env files from the project root, defaults, and the
// command's flags bound by name.
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	for _, envFile := range []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	} {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}

	v.SetEnvPrefix("BYTEMATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("project_root", projectRoot)
	v.SetDefault("mapping_file", "contract-mapping.json")
	v.SetDefault("address_dir", "addresses")
	v.SetDefault("explorer_api", "https://www.hyperscan.com/api/v2")
	v.SetDefault("rpc_url", "https://rpc.hyperliquid.xyz/evm")
	v.SetDefault("build_workers", 2)
	v.SetDefault("build_timeout", "10m")
	v.SetDefault("fetch_workers", 8)
	v.SetDefault("fetch_retries", 4)
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("timeout", "0")

	// Flags use dashes, viper keys use underscores.
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			panic(err)
		}
	})

	return v
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
