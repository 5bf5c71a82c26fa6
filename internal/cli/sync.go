package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/missionctl/missionctl/internal/bus"
	"github.com/missionctl/missionctl/internal/config"
	"github.com/missionctl/missionctl/internal/cronmirror"
	"github.com/missionctl/missionctl/internal/store"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the external scheduler's job list into the calendar",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🔄 Cron Sync")

		cfg, st, err := openStoreFromConfig()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		mirror := cronmirror.New(st, &cronmirror.ExecFetcher{
			Command: cfg.Cron.Command,
			Timeout: cfg.Cron.Timeout,
		}, cfg.Cron.Timezone)

		res, err := mirror.Sync(context.Background())
		if err != nil {
			fmt.Printf("Sync failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Mirrored %d jobs (%d new, %d updated)\n", res.Total, res.Created, res.Updated)
	},
}

// openStoreFromConfig loads configuration and opens the record store for
// one-shot commands.
func openStoreFromConfig() (*config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return nil, nil, err
	}
	st, err := store.Open(cfg.Store.Path, bus.NewChangeBus())
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}
