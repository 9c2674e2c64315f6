package main

import (
	"github.com/jhoicas/Gestion-api/pkg/config"
	"github.com/jhoicas/Gestion-api/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFile string
	v          = viper.New()
)

var rootCmd = &cobra.Command{
	Use:           "gestion-api",
	Short:         "API de gestión multi-empresa",
	SilenceUsage:  true,
	SilenceErrors: true,
	// Sin subcomando se levanta el servidor.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "archivo de configuración (por defecto .env en el directorio actual)")
	rootCmd.PersistentFlags().String("log-level", "", "nivel de log: trace, debug, info, warn, error")
	_ = v.BindPFlag("LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.Flags().Int("port", 0, "puerto HTTP (sobrescribe HTTP_PORT)")
	_ = v.BindPFlag("HTTP_PORT", rootCmd.Flags().Lookup("port"))
	serveCmd.Flags().AddFlagSet(rootCmd.Flags())

	rootCmd.AddCommand(serveCmd, migrateCmd, superuserCmd)
}

// load lee la configuración y arma el logger de la aplicación.
func load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadFrom(v, configFile)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	return cfg, log, nil
}
