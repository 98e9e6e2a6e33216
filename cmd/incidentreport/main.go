// Command incidentreport renders the PHMSA pipeline incident map, word cloud,
// and interactive HTML report from a tab-separated incident export.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/pipeline-incident-report/internal/adapter/echarts"
	httpadapter "github.com/couchcryptid/pipeline-incident-report/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/pipeline-incident-report/internal/adapter/kafka"
	"github.com/couchcryptid/pipeline-incident-report/internal/adapter/localfs"
	"github.com/couchcryptid/pipeline-incident-report/internal/adapter/mapbox"
	s3adapter "github.com/couchcryptid/pipeline-incident-report/internal/adapter/s3"
	"github.com/couchcryptid/pipeline-incident-report/internal/adapter/shapefile"
	"github.com/couchcryptid/pipeline-incident-report/internal/adapter/tsv"
	"github.com/couchcryptid/pipeline-incident-report/internal/config"
	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/couchcryptid/pipeline-incident-report/internal/observability"
	"github.com/couchcryptid/pipeline-incident-report/internal/pipeline"
	"github.com/couchcryptid/pipeline-incident-report/internal/render"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "incidentreport",
		Short:         "Render pipeline incident map and word cloud",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Run the report once and write artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd)
		},
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the report and serve artifacts, health, and metrics over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
	root.AddCommand(renderCmd, serveCmd)
	root.RunE = renderCmd.RunE
	return root
}

// app bundles the wiring shared by both subcommands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	closers  []func() error
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Error("close error", "error", err)
		}
	}
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return nil, err
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	a := &app{cfg: cfg, logger: logger}

	local, err := localfs.NewSink(cfg.OutputDir, logger)
	if err != nil {
		logger.Error("failed to prepare output directory", "dir", cfg.OutputDir, "error", err)
		return nil, err
	}
	deps := pipeline.Deps{
		Rows:       tsv.NewReader(logger),
		Boundaries: pipeline.BoundaryLoaderFunc(shapefile.Load),
		Masks:      pipeline.MaskLoaderFunc(render.LoadMaskImage),
		Sinks:      []pipeline.ArtifactSink{local},
	}

	if cfg.OutputS3Bucket != "" {
		sink, err := s3adapter.NewSink(cfg.AWSRegion, cfg.OutputS3Bucket, cfg.OutputS3Prefix, logger)
		if err != nil {
			logger.Error("failed to create s3 sink", "bucket", cfg.OutputS3Bucket, "error", err)
			return nil, err
		}
		deps.Sinks = append(deps.Sinks, sink)
		logger.Info("s3 upload enabled", "bucket", cfg.OutputS3Bucket, "prefix", cfg.OutputS3Prefix)
	}

	if cfg.HTMLReport {
		o := echarts.DefaultOptions()
		o.MaxWords = cfg.WordCloudMaxWords
		deps.HTML = echarts.NewRenderer(o)
	}

	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		deps.Publisher = writer
		a.closers = append(a.closers, writer.Close)
		logger.Info("kafka incident feed enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	opts := pipeline.Options{
		InputPath:     cfg.InputPath,
		ShapefilePath: cfg.ShapefilePath,
		MaskPath:      cfg.MaskPath,
		WordColumn:    cfg.WordCloudColumn,
		JoinPhrases:   cfg.WordCloudJoinPhrases,
		Map:           render.DefaultMapOptions(),
		WordCloud:     render.DefaultWordCloudOptions(),
	}
	opts.Geocode = domain.DefaultGeocodeOptions()
	opts.Geocode.SkipInvalid = cfg.SkipInvalidCoordinates
	opts.Map.Figure.DPI = cfg.FigureDPI
	opts.Map.Title = cfg.MapTitle
	opts.Map.Legend = cfg.MapLegend
	opts.WordCloud.MaxWords = cfg.WordCloudMaxWords
	opts.WordCloud.Seed = cfg.WordCloudSeed

	// Backfill blank coordinates from city and state (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		opts.Geocode.Backfill = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	a.pipeline = pipeline.New(opts, deps, logger, metrics)
	return a, nil
}

func runRender(cmd *cobra.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, runErr := a.pipeline.Run(ctx)
	if runErr != nil {
		a.logger.Error("report failed", "error", runErr)
	}
	if a.cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
			a.logger.Error("failed to write metrics textfile", "path", a.cfg.MetricsTextfile, "error", err)
		}
	}
	return runErr
}

func runServe(cmd *cobra.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpadapter.NewServer(a.cfg.HTTPAddr, a.pipeline, a.pipeline, a.logger)
	run := func(ctx context.Context) error {
		_, err := a.pipeline.Run(ctx)
		return err
	}
	serveUntilDone(ctx, stop, srv, run, a.cfg.ShutdownTimeout, a.logger)
	return nil
}

// httpServer is the part of the HTTP adapter serve mode drives.
type httpServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serveUntilDone starts srv and a single report run, blocks until ctx is
// cancelled, then shuts srv down and waits for the run to return.
func serveUntilDone(ctx context.Context, stop context.CancelFunc, srv httpServer, run func(context.Context) error, timeout time.Duration, logger *slog.Logger) {
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Render once; /readyz flips once the first report is stored.
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("report failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// ctx is cancelled, so the run stops at its next stage or blocking call.
	// Wait for it before the caller closes the Kafka writer.
	<-runDone
	logger.Info("shutdown complete")
}
