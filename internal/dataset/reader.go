// Package dataset reads drug name columns from parquet input files and
// writes the order-aligned result table plus a provenance manifest.
package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/Su-informatics-lab/llm-drug-effect/pkg/errors"
)

// ReadDrugColumn materializes one string column from a parquet file, in
// row order. Null cells become empty strings so positional alignment with
// the result table is never lost.
func ReadDrugColumn(path, column string) ([]string, error) {
	if column == "" {
		return nil, errors.InvalidParam("column name is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetRead,
			fmt.Sprintf("failed to open %s", path))
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetRead,
			fmt.Sprintf("failed to stat %s", path))
	}

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetRead,
			fmt.Sprintf("failed to parse %s as parquet", path))
	}

	leaf, ok := pf.Schema().Lookup(column)
	if !ok {
		return nil, errors.New(errors.ErrCodeColumnNotFound,
			fmt.Sprintf("column %q not found in %s", column, path))
	}

	var out []string
	for _, rg := range pf.RowGroups() {
		chunk := rg.ColumnChunks()[leaf.ColumnIndex]
		if err := readChunk(chunk, &out); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatasetRead,
				fmt.Sprintf("failed to read column %q from %s", column, path))
		}
	}
	return out, nil
}

func readChunk(chunk parquet.ColumnChunk, out *[]string) error {
	pages := chunk.Pages()
	defer pages.Close()

	buf := make([]parquet.Value, 256)
	for {
		page, err := pages.ReadPage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		values := page.Values()
		for {
			n, err := values.ReadValues(buf)
			for _, v := range buf[:n] {
				if v.IsNull() {
					*out = append(*out, "")
				} else {
					*out = append(*out, v.String())
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
		}
	}
}

//Personal.AI order the ending
