// Command malplay is a small demonstration and diagnostic CLI for the
// mal audio engine: it can generate and play a tone through the real
// backend, watch a config file for live gain/loop changes while doing
// so, and report on what backend this platform would pick. It is not
// part of the engine's public API surface; it exists to exercise the
// engine the way a developer testing the library by hand would.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal("malplay: command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "malplay",
		Short:         "Play tones and inspect audio backend selection for the mal engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
	}

	root.AddCommand(newPlayCmd())
	root.AddCommand(newDoctorCmd())
	return root
}
