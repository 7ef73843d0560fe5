package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/causeboard/internal/aggregate"
	"github.com/KaramelBytes/causeboard/internal/chart"
	"github.com/KaramelBytes/causeboard/internal/dashboard"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the interactive dashboard over HTTP",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			c.ListenAddr = serveAddr
		}
		// The table is built once and shared read-only by every request.
		t, err := loadTable(c, datasetPath(c, args))
		if err != nil {
			return err
		}
		order, err := aggregate.ParseSortOrder(c.DefaultSort)
		if err != nil {
			return err
		}
		if order == aggregate.SortNone {
			order = aggregate.SortDeaths
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		srv := dashboard.New(logger, t, dashboard.Options{
			DefaultState:  c.DefaultState,
			ExcludeCause:  c.ExcludeCause,
			ExcludeTotals: c.ExcludeTotals,
			Sort:          order,
			Chart:         chart.Options{Width: chart.Pixels(c.ChartWidth), Height: chart.Pixels(c.ChartHeight)},
			Registry:      reg,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serveHTTP(ctx, &http.Server{
			Addr:              c.ListenAddr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: time.Duration(c.ReadTimeoutSec) * time.Second,
			ReadTimeout:       time.Duration(c.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(c.WriteTimeoutSec) * time.Second,
		}, time.Duration(c.ShutdownTimeoutSec)*time.Second)
	},
}

// serveHTTP runs hs until ctx is done, then shuts it down within budget.
func serveHTTP(ctx context.Context, hs *http.Server, budget time.Duration) error {
	ln, err := net.Listen("tcp", hs.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", hs.Addr, err)
	}
	logger.Info("dashboard listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "budget", budget.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("dashboard stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config listen_addr)")
}
