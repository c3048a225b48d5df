package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"jira-cfd/internal/cfd"
	"jira-cfd/internal/eventlog"
	"jira-cfd/internal/export"
	"jira-cfd/internal/extract"
	"jira-cfd/internal/visuals"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var buildOpts struct {
	source    string
	jql       string
	input     string
	anchor    string
	skipEmpty bool
	refresh   bool
	csvPath   string
	xlsxPath  string
	jsonPath  string
	htmlPath  string
	open      bool
	mermaid   bool
	rows      int
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Reconstruct the cumulative flow diagram and export it",
	Long: `Reads item histories from an items JSON file (--input) or the local cache, rebuilding
the cache from Jira when --refresh is given or the query was never collected. The daily
occupancy table is printed and written to CSV (default: <DATA_PATH>/output/<source>.csv).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions()
		if err != nil {
			return err
		}

		items, name, err := loadBuildItems(cmd)
		if err != nil {
			return err
		}

		res, err := cfd.Reconstruct(items, opts)
		if err != nil {
			return err
		}
		for _, d := range res.Diagnostics {
			log.Warn().Str("item", d.ItemKey).Str("reason", d.Reason).Msg("Item left out of the diagram")
		}

		table := res.Table(cfg.Workflow.ColumnOrder())
		if err := writeOutputs(name, table); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, visuals.RenderTable(table, buildOpts.rows))
		if buildOpts.mermaid || cfg.EnableMermaidCharts {
			fmt.Fprintln(out, visuals.GenerateCFDChart(table))
		}
		return nil
	},
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&buildOpts.source, "source", "", "cached source ID")
	f.StringVar(&buildOpts.jql, "jql", "", "JQL query (default: JIRA_JQL)")
	f.StringVar(&buildOpts.input, "input", "", "items JSON file ({key: {status: YYYY-MM-DD}})")
	f.StringVar(&buildOpts.anchor, "anchor", "", "last day of the diagram as YYYY-MM-DD (default: today)")
	f.BoolVar(&buildOpts.skipEmpty, "skip-empty", false, "skip items without history instead of failing")
	f.BoolVar(&buildOpts.refresh, "refresh", false, "fetch the query from Jira even if cached")
	f.StringVar(&buildOpts.csvPath, "csv", "", "CSV output path")
	f.StringVar(&buildOpts.xlsxPath, "xlsx", "", "XLSX output path")
	f.StringVar(&buildOpts.jsonPath, "json", "", "JSON output path (- for stdout)")
	f.StringVar(&buildOpts.htmlPath, "html", "", "HTML stacked area chart path")
	f.BoolVar(&buildOpts.open, "open", false, "open the HTML chart in the browser")
	f.BoolVar(&buildOpts.mermaid, "mermaid", false, "print a Mermaid chart")
	f.IntVar(&buildOpts.rows, "rows", 14, "days shown in the terminal table (0 for all)")
	buildCmd.MarkFlagsMutuallyExclusive("input", "source")
	buildCmd.MarkFlagsMutuallyExclusive("input", "refresh")
	rootCmd.AddCommand(buildCmd)
}

func runOptions() (cfd.Options, error) {
	opts := cfd.Options{EmptyHistory: cfg.EmptyHistoryPolicy}
	if buildOpts.skipEmpty {
		opts.EmptyHistory = cfd.PolicySkip
	}
	if buildOpts.anchor != "" {
		anchor, err := cfd.ParseDay(buildOpts.anchor)
		if err != nil {
			return opts, fmt.Errorf("--anchor: %w", err)
		}
		opts.Anchor = anchor
	}
	return opts, nil
}

// loadBuildItems returns the run's items and the name used for default outputs.
func loadBuildItems(cmd *cobra.Command) ([]cfd.Item, string, error) {
	if buildOpts.input != "" {
		items, err := extract.LoadItemsFile(buildOpts.input)
		name := trimExt(filepath.Base(buildOpts.input))
		return items, name, err
	}

	jql := eventlog.NormalizeJQL(buildOpts.jql)
	if jql == "" && buildOpts.source == "" {
		jql = eventlog.NormalizeJQL(cfg.JQL)
	}
	source := resolveSource(buildOpts.source, jql)
	provider := newProvider()

	if !buildOpts.refresh {
		items, err := provider.Items(source)
		if err == nil {
			return items, source, nil
		}
		if jql == "" {
			return nil, "", err
		}
		log.Info().Str("source", source).Msg("Source not cached, collecting from Jira")
	}

	if err := cfg.Jira.Validate(); err != nil {
		return nil, "", err
	}
	if _, err := provider.Hydrate(cmd.Context(), source, jql); err != nil {
		return nil, "", err
	}
	items, err := provider.Items(source)
	return items, source, err
}

func writeOutputs(name string, table cfd.Table) error {
	csvPath := buildOpts.csvPath
	if csvPath == "" {
		csvPath = filepath.Join(cfg.OutputDir, name+".csv")
	}
	if err := writeFile(csvPath, func(w io.Writer) error { return export.WriteCSV(w, table) }); err != nil {
		return err
	}
	log.Info().Str("path", csvPath).Int("days", len(table.Dates)).Msg("CSV written")

	if buildOpts.xlsxPath != "" {
		if err := export.WriteXLSX(buildOpts.xlsxPath, table); err != nil {
			return err
		}
		log.Info().Str("path", buildOpts.xlsxPath).Msg("Workbook written")
	}

	if buildOpts.jsonPath == "-" {
		if err := export.WriteJSON(os.Stdout, table); err != nil {
			return err
		}
	} else if buildOpts.jsonPath != "" {
		if err := writeFile(buildOpts.jsonPath, func(w io.Writer) error { return export.WriteJSON(w, table) }); err != nil {
			return err
		}
	}

	htmlPath := buildOpts.htmlPath
	if htmlPath == "" && buildOpts.open {
		htmlPath = filepath.Join(cfg.OutputDir, name+".html")
	}
	if htmlPath != "" {
		title := fmt.Sprintf("Cumulative Flow: %s", name)
		if err := writeFile(htmlPath, func(w io.Writer) error { return visuals.RenderAreaChart(w, table, title) }); err != nil {
			return err
		}
		log.Info().Str("path", htmlPath).Msg("Chart written")

		if buildOpts.open {
			if err := browser.OpenFile(htmlPath); err != nil {
				log.Warn().Err(err).Str("path", htmlPath).Msg("Failed to open browser")
			}
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
