package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"jira-cfd/cmd/mockgen/engine"
	"jira-cfd/internal/config"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, drift")
	distribution := flag.String("distribution", "uniform", "Distribution to use: uniform, weibull")
	outDir := flag.String("out", "./cache", "Output directory for mock files")
	count := flag.Int("count", 200, "Number of incidents to generate")
	sourceID := flag.String("source", "MOCK", "Source ID of the generated cache")
	workflowFile := flag.String("workflow", "", "Optional workflow YAML file")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	wf := config.DefaultWorkflow()
	if *workflowFile != "" {
		var err error
		if wf, err = config.LoadWorkflow(*workflowFile); err != nil {
			fmt.Printf("Failed to load workflow: %v\n", err)
			os.Exit(1)
		}
	}

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Count:        *count,
		Now:          time.Now(),
		Workflow:     wf,
		Seed:         *seed,
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Count: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Count, *outDir)

	items := engine.Generate(cfg)

	if err := engine.Save(*outDir, *sourceID, items, wf); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
