package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/missionctl/missionctl/internal/drafts"
	"github.com/missionctl/missionctl/internal/watchdog"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Scan the drafts directory and import into the content pipeline",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📥 Draft Import")

		cfg, st, err := openStoreFromConfig()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		res, err := drafts.Import(st, cfg.Drafts.Dir)
		if err != nil {
			if token, werr := watchdog.ScanFailure(st, "draft-import", err.Error()); werr == nil && token != "" {
				fmt.Printf("⚠️ Approval timeout detected (id: %s), queued for review\n", token)
			}
			fmt.Printf("Import failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Scanned %d drafts: %d imported, %d refreshed\n", res.Scanned, res.Imported, res.Updated)
	},
}
