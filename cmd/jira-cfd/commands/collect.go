package commands

import (
	"fmt"

	"jira-cfd/internal/eventlog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var collectOpts struct {
	jql    string
	source string
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch status histories from Jira into the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Jira.Validate(); err != nil {
			return err
		}

		jql := collectOpts.jql
		if jql == "" {
			jql = cfg.JQL
		}
		jql = eventlog.NormalizeJQL(jql)
		source := resolveSource(collectOpts.source, jql)

		events, err := newProvider().Hydrate(cmd.Context(), source, jql)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Cached %s transitions for source %s\n", humanize.Comma(int64(events)), source)
		return nil
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectOpts.jql, "jql", "", "JQL query (default: JIRA_JQL)")
	collectCmd.Flags().StringVar(&collectOpts.source, "source", "", "cache ID to store under (default: derived from the query)")
	rootCmd.AddCommand(collectCmd)
}
