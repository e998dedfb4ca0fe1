package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/reviewsense/internal/app"
	"github.com/tsawler/reviewsense/internal/handler"
	"github.com/tsawler/reviewsense/internal/server"
	"github.com/tsawler/reviewsense/internal/watch"
)

var (
	serveAddr   string
	serveEvents bool
	serveInbox  string
	inboxDir    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serves the HTTP API. With --inbox the local inbox watcher runs next to
the server, and both stop on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		var proc *handler.Processor
		if serveEvents {
			var err error
			proc, err = app.NewS3Processor(cmd.Context(), cfg, engine, logger)
			if err != nil {
				return err
			}
		}
		srv := server.New(engine, proc, logger.Named("http"))
		srv.LimitRate(cfg.Server.RateLimit, cfg.Server.Burst)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.ListenAndServe(gctx, addr)
		})
		if serveInbox != "" {
			g.Go(func() error {
				return runWatcher(gctx, serveInbox)
			})
		}
		return g.Wait()
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Score review files dropped into a local inbox",
	Long: `Watches <inbox>/<bucket>/ directories. Every file written there is
scored as if it had been uploaded to an S3 bucket of that name, and the
verdict is written to <inbox>/<bucket><destination_suffix>/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatcher(ctx, inboxDir)
	},
}

// runWatcher watches root until ctx is done.
func runWatcher(ctx context.Context, root string) error {
	proc := app.NewDirProcessor(root, cfg, engine, logger)
	w, err := watch.New(root, proc, logger.Named("watch"))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()

	stats := w.Stats()
	logger.Info("watcher stopped",
		zap.Int("processed", stats.Processed),
		zap.Int("failed", stats.Failed))
	return nil
}

var eventLocal string

var eventCmd = &cobra.Command{
	Use:   "event <event.json>",
	Short: "Process an S3 event notification from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var event events.S3Event
		if err := json.Unmarshal(raw, &event); err != nil {
			return fmt.Errorf("invalid S3 event: %w", err)
		}

		var proc *handler.Processor
		if eventLocal != "" {
			proc = app.NewDirProcessor(eventLocal, cfg, engine, logger)
		} else {
			proc, err = app.NewS3Processor(cmd.Context(), cfg, engine, logger)
			if err != nil {
				return err
			}
		}

		outputs, err := proc.HandleEvent(cmd.Context(), event)
		for _, out := range outputs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: %s\n", out.Bucket, out.Key, out.Result)
		}
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr)")
	serveCmd.Flags().BoolVar(&serveEvents, "events", false, "Accept S3 event notifications on /v1/events")
	serveCmd.Flags().StringVar(&serveInbox, "inbox", "", "Also watch this inbox directory")
	watchCmd.Flags().StringVar(&inboxDir, "inbox", "inbox", "Inbox root directory")
	eventCmd.Flags().StringVar(&eventLocal, "local", "", "Read and write buckets under this directory instead of S3")
}
