package estimation

import (
	"strconv"
	"strings"
)

// marker is the literal substring that locates the answer line in a response.
// Matching is case-sensitive and not anchored to the start of the line.
const marker = "Estimated Probability"

// FailureReason classifies why a response yielded no probability.  It exists
// for logging and metrics only; the null-producing contract does not depend
// on it.
type FailureReason string

const (
	// FailureNone means parsing succeeded.
	FailureNone FailureReason = ""
	// FailureNoMarker means no line contained the marker substring.
	FailureNoMarker FailureReason = "no_marker_line"
	// FailureNoColon means the marker line had no colon to split on.
	FailureNoColon FailureReason = "no_colon"
	// FailureNotANumber means the post-colon text did not parse as a float.
	FailureNotANumber FailureReason = "not_a_number"
)

// ParseProbability scans a raw response for the marker line and extracts the
// trailing numeric estimate.
//
// The first line containing the marker substring is selected; everything
// after the first colon on that line is whitespace-trimmed and parsed as a
// float64.  Every failure mode returns a nil probability with a reason — it
// is never an error.  Values outside [0, 1] are passed through unmodified.
func ParseProbability(response string) (*float64, FailureReason) {
	var line string
	found := false
	for _, l := range strings.Split(response, "\n") {
		if strings.Contains(l, marker) {
			line = l
			found = true
			break
		}
	}
	if !found {
		return nil, FailureNoMarker
	}

	_, after, ok := strings.Cut(line, ":")
	if !ok {
		return nil, FailureNoColon
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(after), 64)
	if err != nil {
		return nil, FailureNotANumber
	}
	return &v, FailureNone
}

//Personal.AI order the ending
