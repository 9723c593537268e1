package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/Su-informatics-lab/llm-drug-effect/pkg/errors"
)

const (
	outputNamePlain     = "drug_t2d_probas.parquet"
	outputNameReasoning = "drug_t2d_probas_cot.parquet"
)

// OutputName returns the deterministic result path inside dir. The
// reasoning variant gets its own name so both runs can coexist.
func OutputName(dir string, reasoning bool) string {
	name := outputNamePlain
	if reasoning {
		name = outputNameReasoning
	}
	return filepath.Join(dir, name)
}

type probRow struct {
	Prob *float64 `parquet:"prob,optional"`
}

type probResponseRow struct {
	Prob     *float64 `parquet:"prob,optional"`
	Response string   `parquet:"response"`
}

// WriteResults writes the result table: one row per input, a nullable
// double `prob`, and, when responses is non-nil, a `response` string
// column. probs[i] and responses[i] must describe the same input row.
func WriteResults(path string, probs []*float64, responses []string) error {
	if responses != nil && len(responses) != len(probs) {
		return errors.InvalidParam(fmt.Sprintf(
			"got %d responses for %d probabilities", len(responses), len(probs)))
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetWrite,
			fmt.Sprintf("failed to create %s", path))
	}

	if responses == nil {
		err = writeProbRows(f, probs)
	} else {
		err = writeProbResponseRows(f, probs, responses)
	}
	if err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrap(err, errors.ErrCodeDatasetWrite,
			fmt.Sprintf("failed to write %s", path))
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetWrite,
			fmt.Sprintf("failed to close %s", path))
	}
	return nil
}

func writeProbRows(f *os.File, probs []*float64) error {
	w := parquet.NewGenericWriter[probRow](f)
	rows := make([]probRow, len(probs))
	for i, p := range probs {
		rows[i] = probRow{Prob: p}
	}
	if _, err := w.Write(rows); err != nil {
		return err
	}
	return w.Close()
}

func writeProbResponseRows(f *os.File, probs []*float64, responses []string) error {
	w := parquet.NewGenericWriter[probResponseRow](f)
	rows := make([]probResponseRow, len(probs))
	for i, p := range probs {
		rows[i] = probResponseRow{Prob: p, Response: responses[i]}
	}
	if _, err := w.Write(rows); err != nil {
		return err
	}
	return w.Close()
}

//Personal.AI order the ending
