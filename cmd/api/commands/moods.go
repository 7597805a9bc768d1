package commands

import (
	"github.com/spf13/cobra"
)

var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "Operaciones sobre el mood persistido",
}

var moodsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Corre ahora la pasada diaria de refresco de moods",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		out.Step("refreshing moods\n")
		res, err := a.Scheduler.TriggerManualUpdate(ctx)
		if err != nil {
			return out.Error("Mood refresh failed", err.Error(), []string{"check the storage connection"})
		}
		if res.Failed > 0 {
			out.Warning("%d pets could not be updated\n", res.Failed)
		}
		out.Success("scanned %d pets, updated %d\n", res.Scanned, res.Updated)
		return nil
	},
}

func init() {
	moodsCmd.AddCommand(moodsRefreshCmd)
	rootCmd.AddCommand(moodsCmd)
}
