package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Su-informatics-lab/llm-drug-effect/pkg/errors"
)

// Manifest records the provenance of one run: the exact knobs it was
// launched with and the aggregate outcome counts.
type Manifest struct {
	RunID       string    `json:"run_id"`
	CreatedAt   time.Time `json:"created_at"`
	Model       string    `json:"model"`
	Reasoning   bool      `json:"reasoning"`
	BatchSize   int       `json:"batch_size"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	MaxTokens   int       `json:"max_tokens"`
	NumGPUs     int       `json:"num_gpus"`
	InputPath   string    `json:"input_path"`
	Column      string    `json:"column"`
	OutputPath  string    `json:"output_path"`

	Drugs         int    `json:"drugs"`
	CacheHits     int    `json:"cache_hits"`
	ParseFailures int    `json:"parse_failures"`
	OutOfRange    int    `json:"out_of_range"`
	Duration      string `json:"duration"`
}

// NewManifest stamps a fresh run identity.
func NewManifest() *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// ManifestName derives the manifest path from the result path.
func ManifestName(outputPath string) string {
	return outputPath + ".manifest.json"
}

// Write persists the manifest as indented JSON.
func (m *Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetWrite, "failed to encode manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetWrite,
			fmt.Sprintf("failed to write manifest %s", path))
	}
	return nil
}

//Personal.AI order the ending
