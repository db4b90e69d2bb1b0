package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"bin-finder/internal/excel"
	"bin-finder/internal/models"
	"bin-finder/internal/search"

	"github.com/spf13/cobra"
)

func newSearchCommand(g *globalFlags) *cobra.Command {
	var (
		out     string
		asJSON  bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search bins by address",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			engine := search.NewEngine[models.Bin](logger)
			results := engine.Search(a.data.Bins, query)

			if out != "" {
				if err := excel.WriteSearchResults(out, results, "Results"); err != nil {
					return fmt.Errorf("export results: %w", err)
				}
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			if len(results) == 0 {
				fmt.Fprintf(w, "no bins match %q\n", query)
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(w, "%2d. [%3d %-14s] %s\n", i+1, r.SearchScore, r.MatchedBy, search.DisplayAddress(r.Item))
				if second, ok := search.SecondaryAddress(r.Item); ok && verbose {
					fmt.Fprintf(w, "    %s\n", second)
				}
			}
			if stats, ok := engine.Stats(); ok {
				fmt.Fprintf(w, "%d results (road %d, land lot %d, both %d)\n",
					stats.Total, stats.RoadAddressMatches, stats.LandLotAddressMatches, stats.BothMatches)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "also write results to this .xlsx file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the land-lot address under each result")
	return cmd
}
