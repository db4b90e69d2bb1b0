package cli

import (
	"fmt"

	"bin-finder/internal/jobs"

	"github.com/spf13/cobra"
)

func newBatchCommand(g *globalFlags) *cobra.Command {
	var (
		mode   string
		meters float64
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "batch <input.xlsx>",
		Short: "Run a nearest or radius job over a workbook of origins",
		Long: `batch reads origins (ID, name, latitude, longitude) from the "Origins"
sheet, or the first sheet when it is missing. Bins come from a "Bins" sheet
when present and from the loaded dataset otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.Jobs.OutputDir = outDir
			}
			m, err := jobs.ParseMode(mode)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}

			job, err := a.jobs.Submit(jobs.Request{InputPath: args[0], Mode: m, Meters: meters})
			if err != nil {
				return err
			}
			if err := job.Wait(cmd.Context()); err != nil {
				job.Cancel()
				a.jobs.Wait()
				return err
			}

			v := job.Snapshot(true)
			w := cmd.OutOrStdout()
			for _, line := range v.Logs {
				fmt.Fprintln(w, line)
			}
			if v.Status != jobs.StatusDone {
				return fmt.Errorf("job %s: %s", v.Status, v.Error)
			}
			fmt.Fprintf(w, "%d rows written to %s\n", v.Result.Rows, v.Result.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "nearest", "nearest or radius")
	cmd.Flags().Float64Var(&meters, "meters", 0, "radius in meters (radius mode)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "output directory (default: jobs.outputDir)")
	return cmd
}
