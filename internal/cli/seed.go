package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the calendar with the default recurring jobs",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🌱 Seed")

		_, st, err := openStoreFromConfig()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		seeded, err := st.SeedEventsIfEmpty()
		if err != nil {
			fmt.Printf("Seed failed: %v\n", err)
			os.Exit(1)
		}
		if seeded == 0 {
			fmt.Println("Calendar already has events; nothing to do")
			return
		}
		fmt.Printf("Seeded %d default jobs\n", seeded)
	},
}
