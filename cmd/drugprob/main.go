// Command drugprob estimates Type II diabetes probabilities for a list of
// drug names via an OpenAI-compatible chat-completion endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/Su-informatics-lab/llm-drug-effect/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

//Personal.AI order the ending
