package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/missionctl/missionctl/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ missionctl Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and workspace status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 missionctl Status")
		fmt.Printf("Version: %s\n", version)

		configPath, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Println("Config:    ✓ Found (" + configPath + ")")
			} else {
				fmt.Println("Config:    ✗ Not found (defaults in effect)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config:    ✗ Load error: %v\n", err)
			return
		}

		if _, err := os.Stat(cfg.Store.Path); err == nil {
			fmt.Println("Store:     ✓ " + cfg.Store.Path)
		} else {
			fmt.Println("Store:     ✗ Not created yet (" + cfg.Store.Path + ")")
		}

		if _, err := os.Stat(cfg.Paths.Workspace); err == nil {
			fmt.Println("Workspace: ✓ " + cfg.Paths.Workspace)
		} else {
			fmt.Println("Workspace: ✗ Missing (" + cfg.Paths.Workspace + ")")
		}

		if _, err := os.Stat(cfg.Drafts.Dir); err == nil {
			fmt.Println("Drafts:    ✓ " + cfg.Drafts.Dir)
		} else {
			fmt.Println("Drafts:    ✗ Missing (" + cfg.Drafts.Dir + ")")
		}

		if cfg.Gateway.SyncToken != "" {
			fmt.Println("Sync token: ✓ Configured")
		} else {
			fmt.Println("Sync token: ✗ Not configured (cron sync endpoint disabled)")
		}
		fmt.Println("Gateway:   " + cfg.Gateway.Addr())
	},
}
