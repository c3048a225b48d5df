package engine

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"jira-cfd/internal/cfd"
	"jira-cfd/internal/config"
	"jira-cfd/internal/eventlog"

	"gopkg.in/yaml.v3"
)

type GeneratorConfig struct {
	Scenario     string
	Distribution string // "uniform" or "weibull"
	Count        int
	Now          time.Time
	Workflow     config.Workflow
	Seed         int64
}

// Generate creates Count incidents, one arriving per day up to Now, each
// walking the workflow statuses in order until its sampled resolution time.
func Generate(cfg GeneratorConfig) []cfd.Item {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Workflow.InitialStatus == "" {
		cfg.Workflow = config.DefaultWorkflow()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	statuses := cfg.Workflow.Statuses
	items := make([]cfd.Item, 0, cfg.Count)

	// We want the last arrival to be today (cfg.Now)
	tArrival := cfg.Now.AddDate(0, 0, -cfg.Count)

	for i := 0; i < cfg.Count; i++ {
		item := cfd.Item{Key: fmt.Sprintf("MOCK-%d", i+1)}

		arrival := tArrival.Add(time.Duration(i*24) * time.Hour)
		item.Transitions = append(item.Transitions, cfd.Transition{
			Status: cfg.Workflow.InitialStatus,
			Date:   cfd.Day(arrival),
			Seq:    0,
		})

		k, lambda := 2.5, 9.5 // Mild: ~8 day median resolution
		switch cfg.Scenario {
		case "chaos":
			k = 0.8
			if cfg.Distribution == "weibull" {
				lambda = 12.0
			}
		case "drift":
			ratio := float64(i) / float64(cfg.Count)
			k = 2.5 - (1.7 * ratio) // Shift 2.5 -> 0.8
			lambda = 9.5 + (2.5 * ratio)
		}

		var totalDuration float64
		if cfg.Distribution == "weibull" {
			totalDuration = weibullSample(rng, k, lambda)
		} else {
			totalDuration = 6.0 + rng.Float64()*5.0
			if cfg.Scenario == "chaos" && rng.Float64() < 0.2 {
				totalDuration += 10 + rng.Float64()*15 // Controlled Black Swans
			}
			if cfg.Scenario == "drift" && i > cfg.Count/2 {
				totalDuration *= 2.0
			}
		}

		// Status j is entered after (j+1)/n of the resolution time.
		for j, status := range statuses {
			progress := float64(j+1) / float64(len(statuses))
			entered := arrival.Add(time.Duration(totalDuration*progress*24) * time.Hour)
			if entered.After(cfg.Now) {
				break
			}
			item.Transitions = append(item.Transitions, cfd.Transition{
				Status: status,
				Date:   cfd.Day(entered),
				Seq:    j + 1,
			})
		}

		items = append(items, item)
	}

	return items
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes the items as an event log cache for sourceID, next to the
// workflow file that describes their statuses.
func Save(outDir string, sourceID string, items []cfd.Item, wf config.Workflow) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	store := eventlog.NewEventStore()
	store.Append(sourceID, eventlog.FromItems(items))
	if err := store.Save(outDir, sourceID); err != nil {
		return err
	}

	data, err := yaml.Marshal(wf)
	if err != nil {
		return fmt.Errorf("failed to encode workflow: %w", err)
	}
	workflowPath := filepath.Join(outDir, fmt.Sprintf("%s-workflow.yaml", sourceID))
	return os.WriteFile(workflowPath, data, 0644)
}
