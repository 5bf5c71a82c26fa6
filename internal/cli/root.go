package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/missionctl/missionctl/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"            _         _                 _   _\n" +
		"  _ __ ___ (_)___ ___(_) ___  _ __   __| |_| |\n" +
		" | '_ ` _ \\| / __/ __| |/ _ \\| '_ \\ / _| __| |\n" +
		" | | | | | | \\__ \\__ \\ | (_) | | | | (_| |_| |\n" +
		" |_| |_| |_|_|___/___/_|\\___/|_| |_|\\__|\\__|_|\n"
)

var rootCmd = &cobra.Command{
	Use:   "missionctl",
	Short: "missionctl - Mission Control operations dashboard",
	Long:  color.CyanString(logo) + "\nTask boards, content pipeline, cron calendar and approvals for the openclaw workspace.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}
