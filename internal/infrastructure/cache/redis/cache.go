package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Su-informatics-lab/llm-drug-effect/internal/infrastructure/monitoring/logging"
)

// ResponseCache stores raw model responses keyed by drug name, scoped to
// one model and prompting mode so that differently-produced responses
// never collide. Backend failures degrade to cache misses; the pipeline
// outcome never depends on Redis availability.
type ResponseCache struct {
	client *Client
	prefix string
	model  string
	mode   string
	ttl    time.Duration
	logger logging.Logger
}

// NewResponseCache builds a cache scope. mode distinguishes the reasoning
// prompt variant from the plain one.
func NewResponseCache(client *Client, prefix, model string, reasoning bool, ttl time.Duration, log logging.Logger) *ResponseCache {
	mode := "plain"
	if reasoning {
		mode = "cot"
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ResponseCache{
		client: client,
		prefix: prefix,
		model:  model,
		mode:   mode,
		ttl:    ttl,
		logger: log,
	}
}

func (c *ResponseCache) key(drug string) string {
	return fmt.Sprintf("%s%s|%s|%s", c.prefix, c.model, c.mode, drug)
}

// Get returns the cached response for drug, or ("", false) on a miss or
// any backend failure.
func (c *ResponseCache) Get(ctx context.Context, drug string) (string, bool) {
	val, ok, err := c.client.Get(ctx, c.key(drug))
	if err != nil {
		c.logger.Warn("cache get failed, treating as miss",
			logging.String("drug", drug), logging.Err(err))
		return "", false
	}
	return val, ok
}

// Set stores the response for drug. Failures are logged and discarded.
func (c *ResponseCache) Set(ctx context.Context, drug, response string) {
	if err := c.client.Set(ctx, c.key(drug), response, c.ttl); err != nil {
		c.logger.Warn("cache set failed",
			logging.String("drug", drug), logging.Err(err))
	}
}

//Personal.AI order the ending
