package prometheus

import "time"

// PipelineMetrics holds the instruments observed during an estimation run.
type PipelineMetrics struct {
	ChunksSubmittedTotal CounterVec
	ResponsesTotal       CounterVec
	ParseFailuresTotal   CounterVec
	CacheHitsTotal       CounterVec
	OutOfRangeTotal      CounterVec
	ChunkDuration        HistogramVec
	RunDuration          HistogramVec
}

// Duration buckets sized for LLM inference rather than request serving.
var (
	DefaultChunkDurationBuckets = []float64{.5, 1, 2, 5, 10, 30, 60, 120, 300}
	DefaultRunDurationBuckets   = []float64{10, 30, 60, 300, 600, 1800, 3600, 7200, 14400}
)

// NewPipelineMetrics registers the pipeline instruments on the collector.
func NewPipelineMetrics(collector MetricsCollector) *PipelineMetrics {
	m := &PipelineMetrics{}
	m.ChunksSubmittedTotal = collector.RegisterCounter("chunks_submitted_total", "Chunks submitted to the serving endpoint", "model")
	m.ResponsesTotal = collector.RegisterCounter("responses_total", "Responses received from the serving endpoint", "model")
	m.ParseFailuresTotal = collector.RegisterCounter("parse_failures_total", "Responses that yielded no probability", "reason")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Responses served from the cache", "model")
	m.OutOfRangeTotal = collector.RegisterCounter("out_of_range_total", "Parsed probabilities outside [0, 1]", "model")
	m.ChunkDuration = collector.RegisterHistogram("chunk_duration_seconds", "Wall time of one chunk completion call", DefaultChunkDurationBuckets, "model")
	m.RunDuration = collector.RegisterHistogram("run_duration_seconds", "Wall time of a whole run", DefaultRunDurationBuckets, "model")
	return m
}

// NewNopPipelineMetrics returns metrics whose instruments discard every
// observation. Used when metrics are disabled and in tests.
func NewNopPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		ChunksSubmittedTotal: &noopCounterVec{},
		ResponsesTotal:       &noopCounterVec{},
		ParseFailuresTotal:   &noopCounterVec{},
		CacheHitsTotal:       &noopCounterVec{},
		OutOfRangeTotal:      &noopCounterVec{},
		ChunkDuration:        &noopHistogramVec{},
		RunDuration:          &noopHistogramVec{},
	}
}

// ObserveChunk records one completed chunk call.
func (m *PipelineMetrics) ObserveChunk(model string, size int, elapsed time.Duration) {
	m.ChunksSubmittedTotal.WithLabelValues(model).Inc()
	m.ResponsesTotal.WithLabelValues(model).Add(float64(size))
	m.ChunkDuration.WithLabelValues(model).Observe(elapsed.Seconds())
}

//Personal.AI order the ending
