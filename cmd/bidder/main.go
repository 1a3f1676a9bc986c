package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/torosent/rtbload/internal/bidder"
	"github.com/torosent/rtbload/internal/config"
	"github.com/torosent/rtbload/internal/logging"
)

const shutdownTimeout = 5 * time.Second

type serverOptions struct {
	addr      string
	failRate  float64
	delay     time.Duration
	logFormat string
	logLevel  string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := serverOptions{}
	cmd := &cobra.Command{
		Use:           "bidder",
		Short:         "Serve a dummy OpenRTB bidder on POST /bid",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.failRate < 0 || opts.failRate > 1 {
				return fmt.Errorf("fail-rate must be between 0.0 and 1.0, got %g", opts.failRate)
			}
			if opts.delay < 0 {
				return fmt.Errorf("delay must be >= 0, got %s", opts.delay)
			}
			logger, err := logging.NewWithWriter(config.LogConfig{Format: opts.logFormat, Level: opts.logLevel}, out)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ln, err := net.Listen("tcp", opts.addr)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), ln, opts, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", ":8080", "Listen address")
	flags.Float64Var(&opts.failRate, "fail-rate", 0, "Fraction of valid bid requests answered with 500 (0.0 - 1.0)")
	flags.DurationVar(&opts.delay, "delay", 0, "Latency added before every bid response")
	flags.StringVar(&opts.logFormat, "log-format", "console", "Log encoding: 'console' or 'json'")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Minimum log level: debug, info, warn or error")
	return cmd
}

// serve runs the bidder on ln until ctx is cancelled, then drains in-flight
// requests.
func serve(ctx context.Context, ln net.Listener, opts serverOptions, logger *logging.Logger) error {
	handler := bidder.New(bidder.Options{FailRate: opts.failRate, Delay: opts.delay}, logger)
	srv := &http.Server{
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Infof("Server stopped")
	return nil
}
