package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/imyousuf/stringgraph/internal/metrics"
	"github.com/imyousuf/stringgraph/internal/storage"
	"github.com/imyousuf/stringgraph/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		out         string
		metricsAddr string
		include     []string
		debounce    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <source>...",
		Short: "Rebuild a graph whenever its sources change",
		Long: `Build a graph from the given documents or directories, then rebuild it
each time one of them changes. With --out the rebuilt graph is written
to that location. Directories are watched recursively for files matching
--include.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = a.cfg.Metrics.Addr
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = a.cfg.Watch.Debounce
			}

			var (
				dst       storage.Store
				ownOutput string // rebuilds must not trigger themselves
			)
			if out != "" {
				s, err := a.open(out)
				if err != nil {
					return err
				}
				dst = s
				if fs, ok := s.(*storage.FileStore); ok {
					ownOutput, _ = filepath.Abs(fs.Path())
				}
			}

			// Set up signal handling.
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if metricsAddr != "" {
				stop := a.serveMetrics(ctx, metricsAddr)
				defer stop()
			}

			w, err := watcher.New(watcher.Config{
				Paths:    args,
				Include:  include,
				Debounce: debounce,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}
			defer w.Close()
			sources := a.watchSources(args, w, ownOutput)

			events, err := w.Start(ctx)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}

			reload := func() {
				err := a.rebuild(ctx, sources(), dst)
				metrics.WatcherReloadsTotal.WithLabelValues(metrics.Result(err)).Inc()
				if err != nil {
					a.logger.Error("rebuild failed", "error", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d path(s)...\n", len(args))
			reload()
			for {
				select {
				case <-ctx.Done():
					fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
					return nil
				case evt, ok := <-events:
					if !ok {
						return nil
					}
					if evt.Path == ownOutput {
						continue
					}
					a.logger.Info("source changed", "path", evt.Path, "op", evt.Op.String())
					reload()
				}
			}
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "graph location to write after each rebuild")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (default: metrics.addr)")
	cmd.Flags().StringSliceVar(&include, "include", nil, "glob for files in watched directories (default: "+watcher.DefaultInclude+")")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before a rebuild (default: watch.debounce)")

	return cmd
}

// watchSources returns a function listing the current sources: files given
// directly, plus the files in given directories that w watches, except skip.
func (a *app) watchSources(args []string, w *watcher.Watcher, skip string) func() []string {
	return func() []string {
		var sources []string
		for _, p := range args {
			info, err := os.Stat(p)
			if err != nil {
				a.logger.Warn("source unavailable", "path", p, "error", err)
				continue
			}
			if !info.IsDir() {
				sources = append(sources, p)
				continue
			}
			root, err := filepath.Abs(p)
			if err != nil {
				a.logger.Warn("cannot resolve directory", "path", p, "error", err)
				continue
			}
			_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
				if err == nil && !d.IsDir() && path != skip && w.Match(path) {
					sources = append(sources, path)
				}
				return nil
			})
		}
		return sources
	}
}

func (a *app) rebuild(ctx context.Context, sources []string, dst storage.Store) error {
	start := time.Now()
	g, err := a.build(ctx, sources)
	if err != nil {
		return err
	}
	attrs := []any{"sources", len(sources), "nodes", g.Nodes().Len(), "edges", g.Edges().Len(),
		"labels", g.EdgeLabels().Len(), "took", time.Since(start)}
	if dst != nil {
		if err := dst.Write(ctx, g); err != nil {
			return err
		}
		attrs = append(attrs, "location", dst.Location())
	}
	a.logger.Info("graph rebuilt", attrs...)
	return nil
}

// serveMetrics serves /metrics on addr until ctx ends or stop is called.
func (a *app) serveMetrics(ctx context.Context, addr string) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
