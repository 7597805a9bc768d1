package commands

import (
	"pet-adoption-catalog/internal/seed"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Carga species, personalities y mascotas de ejemplo si el catálogo está vacío",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		out.Step("seeding catalog (%s)\n", a.Config.Storage.Driver)
		res, err := seed.Run(ctx, a.References, a.Pets, a.Log)
		if err != nil {
			return out.Error("Seed failed", err.Error(), nil)
		}
		if res.Skipped {
			out.Warning("catalog already has pets, only the Unknown sentinels were checked\n")
			return nil
		}
		out.Success("seeded %d references and %d pets\n", res.ReferencesOK, res.PetsCreated)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
