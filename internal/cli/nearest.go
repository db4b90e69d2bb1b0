package cli

import (
	"encoding/json"
	"fmt"

	"bin-finder/internal/calculator"
	"bin-finder/internal/models"

	"github.com/spf13/cobra"
)

func newNearestCommand(g *globalFlags) *cobra.Command {
	var (
		lat, lng float64
		k        int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "List the bins closest to a point",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("lat") && !cmd.Flags().Changed("lng") {
				lat, lng = cfg.Origin.Lat, cfg.Origin.Lng
			}
			origin := models.Coordinate{Lat: lat, Lng: lng}
			if !origin.Valid() {
				return fmt.Errorf("%w: (%v, %v)", calculator.ErrInvalidCoordinate, lat, lng)
			}
			if k < 1 {
				return fmt.Errorf("%w: k must be at least 1", calculator.ErrInvalidInput)
			}

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			hits := a.data.Index.Nearest(origin, k)
			if len(hits) == 0 {
				return calculator.ErrNotFound
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(hits)
			}
			for i, h := range hits {
				addr := h.Bin.RoadAddress
				if addr == "" {
					addr = h.Bin.LandLotAddress
				}
				fmt.Fprintf(w, "%2d. %-8s %s (%s)\n", i+1, h.FormattedDistance, addr, h.Bin.ID)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude (default: configured origin)")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude (default: configured origin)")
	cmd.Flags().IntVarP(&k, "k", "k", 5, "number of bins")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}
