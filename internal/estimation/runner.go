package estimation

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Su-informatics-lab/llm-drug-effect/internal/infrastructure/monitoring/logging"
	"github.com/Su-informatics-lab/llm-drug-effect/internal/infrastructure/monitoring/prometheus"
	"github.com/Su-informatics-lab/llm-drug-effect/internal/serving"
	"github.com/Su-informatics-lab/llm-drug-effect/pkg/errors"
)

// ResponseCache stores raw response text per drug name. Implementations
// must treat backend failures as misses; Get and Set never fail the run.
type ResponseCache interface {
	Get(ctx context.Context, drug string) (string, bool)
	Set(ctx context.Context, drug, response string)
}

// RunResult is the order-aligned outcome of one run. Probabilities[i] and
// Responses[i] belong to the i-th input drug; a nil probability means the
// response carried no parsable estimate.
type RunResult struct {
	Probabilities []*float64
	Responses     []string

	ParseFailures int
	CacheHits     int
	OutOfRange    int
	Duration      time.Duration
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Model     string
	BatchSize int
	Reasoning bool
	Sampling  serving.SamplingParams

	// ShowProgress renders a terminal progress bar over the input drugs.
	ShowProgress bool
}

// Runner drives the estimation pipeline: cache lookup, conversation
// templating, chunked sequential submission, and marker-line parsing.
type Runner struct {
	client  serving.ChatClient
	cfg     RunnerConfig
	cache   ResponseCache
	metrics *prometheus.PipelineMetrics
	logger  logging.Logger
}

// NewRunner wires a runner. cache may be nil; metrics and logger fall back
// to no-op implementations.
func NewRunner(client serving.ChatClient, cfg RunnerConfig, cache ResponseCache, metrics *prometheus.PipelineMetrics, logger logging.Logger) (*Runner, error) {
	if client == nil {
		return nil, errors.InvalidParam("serving client is required")
	}
	if metrics == nil {
		metrics = prometheus.NewNopPipelineMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{
		client:  client,
		cfg:     cfg,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Run estimates a probability for every drug, in input order. Chunks are
// submitted strictly one after another; the first serving error aborts the
// run with no partial result. Running the same input twice produces two
// independent, equally valid result sets.
func (r *Runner) Run(ctx context.Context, drugs []string) (*RunResult, error) {
	if r.cfg.BatchSize < 1 {
		return nil, errors.New(errors.ErrCodeInvalidBatchSize,
			fmt.Sprintf("batch size must be at least 1, got %d", r.cfg.BatchSize))
	}

	start := time.Now()
	result := &RunResult{
		Probabilities: make([]*float64, len(drugs)),
		Responses:     make([]string, len(drugs)),
	}
	if len(drugs) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	bar := r.newProgressBar(len(drugs))

	// Cache pass: resolved drugs keep their slot, the rest go to the
	// serving endpoint in original relative order.
	pending := make([]int, 0, len(drugs))
	for i, drug := range drugs {
		if r.cache != nil {
			if resp, ok := r.cache.Get(ctx, drug); ok {
				result.Responses[i] = resp
				result.CacheHits++
				r.metrics.CacheHitsTotal.WithLabelValues(r.cfg.Model).Inc()
				bar.Add(1)
				continue
			}
		}
		pending = append(pending, i)
	}

	for chunkStart := 0; chunkStart < len(pending); chunkStart += r.cfg.BatchSize {
		chunkEnd := chunkStart + r.cfg.BatchSize
		if chunkEnd > len(pending) {
			chunkEnd = len(pending)
		}
		chunk := pending[chunkStart:chunkEnd]

		convs := make([]serving.Conversation, len(chunk))
		for j, idx := range chunk {
			convs[j] = BuildConversation(drugs[idx], r.cfg.Reasoning)
		}

		chunkT0 := time.Now()
		responses, err := r.client.Complete(ctx, convs, r.cfg.Sampling)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInference,
				fmt.Sprintf("chunk of %d conversations failed", len(convs)))
		}
		if len(responses) != len(convs) {
			return nil, errors.New(errors.ErrCodeInference,
				fmt.Sprintf("serving returned %d responses for %d conversations", len(responses), len(convs)))
		}
		elapsed := time.Since(chunkT0)
		r.metrics.ObserveChunk(r.cfg.Model, len(chunk), elapsed)
		r.logger.Debug("chunk completed",
			logging.Int("size", len(chunk)),
			logging.Duration("elapsed", elapsed))

		for j, idx := range chunk {
			result.Responses[idx] = responses[j]
			if r.cache != nil {
				r.cache.Set(ctx, drugs[idx], responses[j])
			}
		}
		bar.Add(len(chunk))
	}

	for i, resp := range result.Responses {
		prob, reason := ParseProbability(resp)
		result.Probabilities[i] = prob
		if prob == nil {
			result.ParseFailures++
			r.metrics.ParseFailuresTotal.WithLabelValues(string(reason)).Inc()
			r.logger.Warn("response yielded no probability",
				logging.String("drug", drugs[i]),
				logging.String("reason", string(reason)))
			continue
		}
		if *prob < 0 || *prob > 1 {
			result.OutOfRange++
			r.metrics.OutOfRangeTotal.WithLabelValues(r.cfg.Model).Inc()
			r.logger.Warn("probability outside [0, 1]",
				logging.String("drug", drugs[i]),
				logging.Float64("value", *prob))
		}
	}

	result.Duration = time.Since(start)
	r.metrics.RunDuration.WithLabelValues(r.cfg.Model).Observe(result.Duration.Seconds())
	r.logger.Info("run completed",
		logging.Int("drugs", len(drugs)),
		logging.Int("cache_hits", result.CacheHits),
		logging.Int("parse_failures", result.ParseFailures),
		logging.Int("out_of_range", result.OutOfRange),
		logging.Duration("duration", result.Duration))
	return result, nil
}

func (r *Runner) newProgressBar(total int) *progressbar.ProgressBar {
	if !r.cfg.ShowProgress {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("estimating"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer: "=", SaucerHead: ">", SaucerPadding: " ", BarStart: "[", BarEnd: "]",
		}),
	)
}

//Personal.AI order the ending
