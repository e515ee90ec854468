package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/searchd/internal/daemon"
)

func newSearchCmd() *cobra.Command {
	var (
		filter string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "search <index-uid>",
		Short: "Scan an index for documents matching a filter",
		Long: `search performs filter-based retrieval over a committed index.
It is not a ranked relevance query: the engine builds inverted
indexes (component E) but no ranking/scoring component consumes
them, so this command can only return documents a boolean filter
expression accepts. Omit --filter to list every document up to
--limit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			client, err := daemonClient()
			if err != nil {
				return err
			}
			result, err := client.SearchDocuments(c.Context(), daemon.DocumentSearchParams{
				IndexUID: args[0],
				Filter:   filter,
				Limit:    limit,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "boolean filter expression, e.g. 'genre = scifi AND year > 2000'")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum documents to return (max 200)")
	return cmd
}
