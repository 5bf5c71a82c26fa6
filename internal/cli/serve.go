package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/missionctl/missionctl/internal/bus"
	"github.com/missionctl/missionctl/internal/config"
	"github.com/missionctl/missionctl/internal/cronmirror"
	"github.com/missionctl/missionctl/internal/notes"
	"github.com/missionctl/missionctl/internal/notify"
	"github.com/missionctl/missionctl/internal/pipeline"
	"github.com/missionctl/missionctl/internal/publish"
	"github.com/missionctl/missionctl/internal/search"
	"github.com/missionctl/missionctl/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Mission Control gateway",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	printHeader("🛰 Mission Control Gateway")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	changes := bus.NewChangeBus()
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		fmt.Printf("Store dir error: %v\n", err)
		os.Exit(1)
	}
	st, err := store.Open(cfg.Store.Path, changes)
	if err != nil {
		fmt.Printf("Store error: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if seeded, err := st.SeedEventsIfEmpty(); err != nil {
		fmt.Printf("⚠️ Calendar seed failed: %v\n", err)
	} else if seeded > 0 {
		fmt.Printf("Calendar: seeded %d default jobs\n", seeded)
	}

	noteSvc := notes.NewService(cfg.NoteRoot(), cfg.NoteDir())
	blog := publish.NewClient(cfg.Publish.FeedURL)
	if cfg.Publish.Timeout > 0 {
		blog.HTTPClient.Timeout = cfg.Publish.Timeout
	}

	srv := &server{
		cfg:     cfg,
		store:   st,
		changes: changes,
		engine:  pipeline.New(st),
		mirror: cronmirror.New(st, &cronmirror.ExecFetcher{
			Command: cfg.Cron.Command,
			Timeout: cfg.Cron.Timeout,
		}, cfg.Cron.Timezone),
		notes:  noteSvc,
		search: &search.Service{Store: st, Notes: noteSvc},
		blog:   blog,
		log:    newLogger(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if n := notify.NewSlackNotifier(cfg.Notify.Slack.Token, cfg.Notify.Slack.Channel, st); n != nil {
		go n.Run(ctx, changes)
		fmt.Println("Slack notify: ✓ enabled")
	}
	if sink := notify.NewKafkaSink(cfg.Notify.Kafka.Brokers, cfg.Notify.Kafka.Topic, st); sink != nil {
		go sink.Run(ctx, changes)
		fmt.Println("Kafka sink:  ✓ enabled")
	}
	if cfg.Gateway.SyncToken == "" {
		fmt.Println("⚠️ No sync token configured; POST /api/v1/cron/sync is disabled")
	}

	httpSrv := &http.Server{
		Addr:    cfg.Gateway.Addr(),
		Handler: srv.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Dashboard: http://%s\n", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		fmt.Printf("\nShutting down (%v)...\n", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Shutdown error: %v\n", err)
		}
	}
}
