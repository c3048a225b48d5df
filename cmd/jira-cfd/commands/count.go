package commands

import (
	"fmt"

	"jira-cfd/internal/eventlog"
	"jira-cfd/internal/jira"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var countOpts struct {
	jql string
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print how many Jira issues match the query, without collecting them",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Jira.Validate(); err != nil {
			return err
		}

		jql := countOpts.jql
		if jql == "" {
			jql = cfg.JQL
		}
		jql = eventlog.NormalizeJQL(jql)

		n, err := jira.NewClient(cfg.Jira).Count(cmd.Context(), jql)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s issues match %q (source %s)\n", humanize.Comma(int64(n)), jql, eventlog.SourceID(jql))
		return nil
	},
}

func init() {
	countCmd.Flags().StringVar(&countOpts.jql, "jql", "", "JQL query (default: JIRA_JQL)")
	rootCmd.AddCommand(countCmd)
}
