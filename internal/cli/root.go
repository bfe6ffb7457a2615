package cli

import (
	"fmt"
	"os"

	"github.com/allenwoods/naive-coreterra/internal/handlers"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "coreterra",
		Short:         "Coreterra productivity backend",
		Long:          "Coreterra serves tasks, projects and the XP, gold and shop mechanics around them.",
		Version:       handlers.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newServeCmd(),
		newHashPasswordCmd(),
		newSeedCmd(),
		newMigrateCmd(),
	)
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// envOrDefault lets commands that run without a full config, such as seed and
// migrate, still follow the environment.
func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
