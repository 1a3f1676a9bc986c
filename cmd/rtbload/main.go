package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/torosent/rtbload/internal/config"
	"github.com/torosent/rtbload/internal/httpclient"
	"github.com/torosent/rtbload/internal/logging"
	"github.com/torosent/rtbload/internal/payload"
	"github.com/torosent/rtbload/internal/runner"
	"github.com/torosent/rtbload/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

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
	cmd := &cobra.Command{
		Use:   "rtbload [target-url]",
		Short: "Send a synthetic OpenRTB bid request to a target at a fixed rate",
		Long: "rtbload POSTs a fixed OpenRTB bid request to the target in batches of\n" +
			"--concurrency requests, waits for each batch to finish, then sleeps\n" +
			"concurrency/rate seconds. It runs until interrupted.",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			return runLoad(cmd.Context(), cfg, out, 0)
		},
	}
	cmd.SetOut(out)
	config.RegisterFlags(cmd)
	cmd.AddCommand(newConfigCommand(out))
	return cmd
}

func newConfigCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "config [target-url]",
		Short:         "Print the resolved configuration as YAML and exit",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			return cfg.WriteYAML(out)
		},
	}
	config.RegisterFlags(cmd)
	return cmd
}

func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg, err := config.NewLoader().FromFlags(cmd.Flags(), args)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return *cfg, nil
}

// runLoad drives traffic until ctx is cancelled, or for maxBatches batches
// when maxBatches is positive.
func runLoad(ctx context.Context, cfg config.Config, out io.Writer, maxBatches int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logging.NewWithWriter(cfg.Log, out)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	for _, warning := range cfg.Warnings() {
		logger.Warnf("%s", warning)
	}
	if cfg.TargetFromArgs {
		logger.Infof("Using target URL from command line: %s", cfg.TargetURL)
	}

	body, err := payload.New().Encode()
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	client, err := httpclient.NewClient(cfg.Timeout, cfg.HTTP2)
	if err != nil {
		return err
	}
	builder, err := httpclient.NewRequestBuilder(cfg.TargetURL, body)
	if err != nil {
		return err
	}

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("tracing shutdown: %v", err)
		}
	}()

	requester := newHTTPRequester(client, builder, cfg.Timeout, logger, provider)

	r := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		RatePerSecond: cfg.Rate,
		Batches:       maxBatches,
		Pacing:        toRunnerPacing(cfg.Pacing),
		Requester:     runner.WithLogging(requester, logger),
	})

	logger.Infof("Sending requests to %s at %v RPS (delay: %.6f seconds)",
		cfg.TargetURL, cfg.Rate, r.Options().Delay().Seconds())

	result := r.Run(ctx)
	logger.Infof("Stopped after %d batches: %d requests, %d failed (%s)",
		result.Batches, result.Total, result.Errors, result.Duration.Round(time.Millisecond))
	return nil
}

func toRunnerPacing(p config.Pacing) runner.Pacing {
	switch p {
	case config.PacingSmooth:
		return runner.PacingSmooth
	default:
		return runner.PacingBatch
	}
}
