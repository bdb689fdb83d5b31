package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bytematch-org/bytematch-cli/internal/cli"
	"github.com/bytematch-org/bytematch-cli/internal/domain"
)

func main() {
	rootCmd := cli.NewRootCmd()
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, domain.ErrVerificationFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}
