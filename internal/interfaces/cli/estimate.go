package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Su-informatics-lab/llm-drug-effect/internal/config"
	"github.com/Su-informatics-lab/llm-drug-effect/internal/dataset"
	"github.com/Su-informatics-lab/llm-drug-effect/internal/estimation"
	"github.com/Su-informatics-lab/llm-drug-effect/internal/infrastructure/cache/redis"
	"github.com/Su-informatics-lab/llm-drug-effect/internal/infrastructure/monitoring/logging"
	"github.com/Su-informatics-lab/llm-drug-effect/internal/infrastructure/monitoring/prometheus"
	"github.com/Su-informatics-lab/llm-drug-effect/internal/infrastructure/storage/minio"
	"github.com/Su-informatics-lab/llm-drug-effect/internal/serving"
	"github.com/Su-informatics-lab/llm-drug-effect/pkg/errors"
)

// estimateOptions holds the estimate subcommand flags.
type estimateOptions struct {
	model         string
	endpoint      string
	cot           bool
	numGPUs       int
	temperature   float64
	batchSize     int
	input         string
	column        string
	outputDir     string
	keepResponses bool
	noProgress    bool
}

func newEstimateCmd(root *RootOptions) *cobra.Command {
	opts := &estimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Run the probability estimation pipeline over a parquet drug list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			applyEstimateFlags(cmd, opts, cfg)
			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, errors.ErrCodeConfig, "invalid configuration")
			}
			if cfg.Run.InputPath == "" {
				return errors.New(errors.ErrCodeConfig, "an input parquet file is required (--input)")
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			if root.ConfigPath != "" {
				watchLogConfig(root.ConfigPath, log)
			}

			return runEstimate(cmd.Context(), cfg, log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.model, "model", "", "model name passed to the serving endpoint")
	f.StringVar(&opts.endpoint, "endpoint", "", "chat-completion endpoint base URL")
	f.BoolVar(&opts.cot, "cot", false, "invite step-by-step reasoning before the final answer")
	f.IntVar(&opts.numGPUs, "num-gpus", 0, "GPU count recorded for provenance")
	f.Float64Var(&opts.temperature, "temperature", 0, "sampling temperature")
	f.IntVar(&opts.batchSize, "batch-size", 0, "conversations per chunk")
	f.StringVar(&opts.input, "input", "", "input parquet file holding the drug column")
	f.StringVar(&opts.column, "column", "", "name of the drug column in the input file")
	f.StringVar(&opts.outputDir, "output-dir", "", "directory for the result table and manifest")
	f.BoolVar(&opts.keepResponses, "keep-responses", true, "write the raw response column alongside prob")
	f.BoolVar(&opts.noProgress, "no-progress", false, "disable the terminal progress bar")

	return cmd
}

// applyEstimateFlags lays explicitly-set flags over the file/env config.
func applyEstimateFlags(cmd *cobra.Command, opts *estimateOptions, cfg *config.Config) {
	f := cmd.Flags()
	if opts.model != "" {
		cfg.Inference.Model = opts.model
	}
	if opts.endpoint != "" {
		cfg.Inference.Endpoint = opts.endpoint
	}
	if f.Changed("cot") {
		cfg.Run.Reasoning = opts.cot
	}
	if f.Changed("num-gpus") {
		cfg.Inference.NumGPUs = opts.numGPUs
	}
	if f.Changed("temperature") {
		cfg.Inference.Temperature = opts.temperature
	}
	if f.Changed("batch-size") {
		cfg.Run.BatchSize = opts.batchSize
	}
	if opts.input != "" {
		cfg.Run.InputPath = opts.input
	}
	if opts.column != "" {
		cfg.Run.Column = opts.column
	}
	if opts.outputDir != "" {
		cfg.Run.OutputDir = opts.outputDir
	}
	if f.Changed("keep-responses") {
		cfg.Run.KeepResponses = opts.keepResponses
	} else {
		cfg.Run.KeepResponses = true
	}
	cfg.Run.ShowProgress = !opts.noProgress
}

// watchLogConfig hot-reloads the log level while a long run is in flight.
func watchLogConfig(path string, log logging.Logger) {
	config.Watch(path, func(cfg *config.Config) {
		next, err := logging.NewLogger(logging.LogConfig{
			Level:       cfg.Log.Level,
			Format:      cfg.Log.Format,
			OutputPaths: cfg.Log.OutputPaths,
		})
		if err != nil {
			log.Warn("ignoring invalid log config change", logging.Err(err))
			return
		}
		logging.SetDefault(next)
		log.Info("log configuration reloaded", logging.String("level", cfg.Log.Level))
	})
}

// runEstimate wires the pipeline and executes one run.
func runEstimate(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	drugs, err := dataset.ReadDrugColumn(cfg.Run.InputPath, cfg.Run.Column)
	if err != nil {
		return err
	}
	log.Info("input loaded",
		logging.String("path", cfg.Run.InputPath),
		logging.String("column", cfg.Run.Column),
		logging.Int("drugs", len(drugs)))

	metrics, stopMetrics, err := setupMetrics(cfg, log)
	if err != nil {
		return err
	}
	defer stopMetrics()

	cache := setupCache(cfg, log)

	client, err := serving.NewVLLMClient(serving.ClientConfig{
		Endpoint:       cfg.Inference.Endpoint,
		Model:          cfg.Inference.Model,
		APIKey:         cfg.Inference.APIKey,
		RequestTimeout: cfg.Inference.RequestTimeout,
	}, log)
	if err != nil {
		return err
	}
	defer client.Close()

	// Not all OpenAI-compatible servers expose /health, so a failed probe
	// warns instead of aborting.
	if err := client.Healthy(ctx); err != nil {
		log.Warn("serving health check failed", logging.Err(err))
	}

	runner, err := estimation.NewRunner(client, estimation.RunnerConfig{
		Model:     cfg.Inference.Model,
		BatchSize: cfg.Run.BatchSize,
		Reasoning: cfg.Run.Reasoning,
		Sampling: serving.SamplingParams{
			Temperature: cfg.Inference.Temperature,
			TopP:        cfg.Inference.TopP,
			MaxTokens:   cfg.Inference.MaxTokens,
		},
		ShowProgress: cfg.Run.ShowProgress,
	}, cache, metrics, log)
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, drugs)
	if err != nil {
		return err
	}

	outputPath := dataset.OutputName(cfg.Run.OutputDir, cfg.Run.Reasoning)
	var responses []string
	if cfg.Run.KeepResponses {
		responses = result.Responses
	}
	if err := dataset.WriteResults(outputPath, result.Probabilities, responses); err != nil {
		return err
	}

	manifest := dataset.NewManifest()
	manifest.Model = cfg.Inference.Model
	manifest.Reasoning = cfg.Run.Reasoning
	manifest.BatchSize = cfg.Run.BatchSize
	manifest.Temperature = cfg.Inference.Temperature
	manifest.TopP = cfg.Inference.TopP
	manifest.MaxTokens = cfg.Inference.MaxTokens
	manifest.NumGPUs = cfg.Inference.NumGPUs
	manifest.InputPath = cfg.Run.InputPath
	manifest.Column = cfg.Run.Column
	manifest.OutputPath = outputPath
	manifest.Drugs = len(drugs)
	manifest.CacheHits = result.CacheHits
	manifest.ParseFailures = result.ParseFailures
	manifest.OutOfRange = result.OutOfRange
	manifest.Duration = result.Duration.String()

	manifestPath := dataset.ManifestName(outputPath)
	if err := manifest.Write(manifestPath); err != nil {
		return err
	}

	if cfg.Storage.Enabled {
		if err := uploadArtifacts(ctx, cfg, log, manifest.RunID, outputPath, manifestPath); err != nil {
			return err
		}
	}

	log.Info("results written",
		logging.String("output", outputPath),
		logging.String("run_id", manifest.RunID),
		logging.Int("drugs", len(drugs)),
		logging.Int("parse_failures", result.ParseFailures))
	return nil
}

func setupMetrics(cfg *config.Config, log logging.Logger) (*prometheus.PipelineMetrics, func(), error) {
	if !cfg.Metrics.Enabled {
		return prometheus.NewNopPipelineMetrics(), func() {}, nil
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "drugprob",
	}, log)
	if err != nil {
		return nil, nil, err
	}

	srv := prometheus.NewServer(cfg.Metrics.ListenAddr, collector, log)
	srv.Start()
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			log.Warn("metrics listener shutdown failed", logging.Err(err))
		}
	}
	return prometheus.NewPipelineMetrics(collector), stop, nil
}

// setupCache returns nil when the cache is disabled or unreachable; a
// missing cache never blocks a run.
func setupCache(cfg *config.Config, log logging.Logger) estimation.ResponseCache {
	if !cfg.Cache.Enabled {
		return nil
	}

	client, err := redis.NewClient(redis.ClientConfig{
		Addr:         cfg.Cache.Addr,
		Password:     cfg.Cache.Password,
		DB:           cfg.Cache.DB,
		DialTimeout:  cfg.Cache.DialTimeout,
		ReadTimeout:  cfg.Cache.ReadTimeout,
		WriteTimeout: cfg.Cache.WriteTimeout,
	}, log)
	if err != nil {
		log.Warn("response cache unavailable, running uncached", logging.Err(err))
		return nil
	}
	return redis.NewResponseCache(client, cfg.Cache.KeyPrefix, cfg.Inference.Model,
		cfg.Run.Reasoning, cfg.Cache.TTL, log)
}

func uploadArtifacts(ctx context.Context, cfg *config.Config, log logging.Logger, runID, outputPath, manifestPath string) error {
	store, err := minio.NewClient(minio.ClientConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	}, log)
	if err != nil {
		return err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}

	prefix := fmt.Sprintf("runs/%s", runID)
	for _, path := range []string{outputPath, manifestPath} {
		if _, err := store.UploadFile(ctx, path, prefix); err != nil {
			return err
		}
	}
	return nil
}

//Personal.AI order the ending
