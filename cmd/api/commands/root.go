package commands

import (
	"context"
	"fmt"
	"os"

	"pet-adoption-catalog/internal/app"
	"pet-adoption-catalog/internal/config"
	"pet-adoption-catalog/internal/platform/printer"

	"github.com/spf13/cobra"
)

var (
	configPath string
	out        = printer.New(nil, nil)
)

var rootCmd = &cobra.Command{
	Use:   "petcatalog",
	Short: "Pet adoption catalog service",
	Long: `petcatalog sirve el catálogo de mascotas en adopción (API HTTP) y
expone utilidades de operación: carga de datos iniciales y refresco de moods.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "ruta a un archivo YAML de configuración (o CONFIG_FILE)")
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, out.Error("Invalid configuration", err.Error(), []string{
			"check the environment variables (STORAGE_DRIVER, DB_DSN, SCHEDULER_RUN_AT...)",
			"pass a valid file with --config",
		})
	}
	return cfg, nil
}

// buildApp carga config y arma el App. El caller hace Close.
func buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, out.ErrorWithContext("Failed to start", err.Error(), map[string]string{
			"storage": cfg.Storage.Driver,
			"env":     cfg.Env,
		}, []string{"verify the storage settings", "use STORAGE_DRIVER=memory for a local run"})
	}
	return a, nil
}
