package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nmehta/opsengine/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		dataDir = flag.String(
			"data",
			"",
			"Path to directory containing the CSV data files",
		)
		configFile  = flag.String("config", "", "Path to YAML file with analysis parameters")
		windowStart = flag.String("start", "", "Observation window start (YYYY-MM-DD)")
		windowEnd   = flag.String("end", "", "Observation window end (YYYY-MM-DD)")
		outputDir   = flag.String("output", "", "Output directory for results (optional)")
		format      = flag.String("format", "text", "Output format: text, json, csv")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
		help        = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Create command configuration
	config := commands.Config{
		DataDir:     *dataDir,
		ConfigFile:  *configFile,
		WindowStart: *windowStart,
		WindowEnd:   *windowEnd,
		OutputDir:   *outputDir,
		Format:      *format,
		Verbose:     *verbose,
		Help:        *help,
	}

	// Create and execute command
	cmd := commands.NewAnalyzeCommand(config)
	ctx := context.Background()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
