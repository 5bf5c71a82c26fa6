package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/missionctl/missionctl/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config and scaffold workspace directories",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🚀 Mission Control Setup")

		path, err := config.ConfigPath()
		if err != nil {
			fmt.Printf("Config path error: %v\n", err)
			os.Exit(1)
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			fmt.Printf("Config already exists at %s (use --force to overwrite)\n", path)
			return
		}

		cfg := config.DefaultConfig()
		if err := config.Save(cfg); err != nil {
			fmt.Printf("Config write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Config written to %s\n", path)

		for _, dir := range []string{filepath.Dir(cfg.Store.Path), cfg.Drafts.Dir, cfg.NoteDir()} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fmt.Printf("⚠️ Could not create %s: %v\n", dir, err)
				continue
			}
			fmt.Printf("✓ %s\n", dir)
		}
		fmt.Println("\nNext: edit the config, then run `missionctl serve`")
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config")
}
