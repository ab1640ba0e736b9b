// Command gpg-bridge is the single binary implementing both halves of
// the pair: `gpg-bridge inner` runs the subsystem-side daemon, `gpg-
// bridge outer` runs the host-side daemon. Grounded on nupi-ai/nupi's
// cmd/nupid/main.go cobra root command shape.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "gpg-bridge",
		Short:         "Bridges GPG and SSH agent traffic between a subsystem and a native Windows agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	rootCmd.AddCommand(newInnerCmd())
	rootCmd.AddCommand(newOuterCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to the process exit code §6 requires:
// 1 for configuration errors, 2 when the outer side's host executable
// could not be found or launched, 1 for anything else fatal at startup.
func exitCodeFor(err error) int {
	var spawnErr *bridgeerr.SpawnError
	if errors.As(err, &spawnErr) {
		return 2
	}
	return 1
}
