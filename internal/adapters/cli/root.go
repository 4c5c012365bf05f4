// Package cli is the operator surface of the war room: campaign
// lifecycle, alliance membership, and generation, all against the shared
// database.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/castlebay/warroom-go/internal/infrastructure/config"
)

var (
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "warroom",
		Short: "War room - alliance war target matching and assignment",
		Long: `The war room scores enemy targets, matches friendly nations against
them, and manages campaign lifecycle.

Examples:
  warroom plan create --name "Operation Ravenna" --war-type ordinary
  warroom plan alliances plan-operation-ravenna-a3f8e2b1 --enemy 1234,5678 --friendly 42
  warroom plan generate plan-operation-ravenna-a3f8e2b1
  warroom plan activate plan-operation-ravenna-a3f8e2b1
  warroom counter propose --aggressor 9901 --defender 8854
  warroom counter finalize counter-counter-ragnar-55c1ab02`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: config.yaml in search paths)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewCounterCommand())
	rootCmd.AddCommand(NewMetricsCommand())

	return rootCmd
}

// newContainer loads configuration and wires the dependency graph for
// one command invocation.
func newContainer() (*Container, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return NewContainer(cfg)
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
