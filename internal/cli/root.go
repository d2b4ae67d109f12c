package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/benchforge/internal/config"
)

// Version, Commit and BuildDate are set via LDFLAGS at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	verbose    bool
	configFile string
	noColor    bool
	targetsDir string
)

// NewRootCmd builds the benchforge command tree. Running the root command
// without a subcommand starts an interactive session.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "benchforge",
		Short: "Cross-implementation benchmark runner",
		Long: "benchforge builds equivalent programs written in different languages, " +
			"runs them on the same workload and ranks them by wall-clock time.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, defaultRunOptions())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&configFile, "config", config.DefaultFile, "path to config file")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().StringVar(&targetsDir, "targets-dir", ".", "directory containing one subdirectory per target")

	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newVersionCmd())

	return root
}
