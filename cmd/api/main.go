// Package main es el entrypoint del API de búsquedas de FindMyPet.
package main

import (
	"os"

	"findmypet-search/internal/platform/config"
	"findmypet-search/internal/platform/logger"

	"github.com/spf13/cobra"
)

var (
	cfg config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "findmypet-api",
	Short:         "API de búsquedas de mascotas perdidas y revisión de matches",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		file, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(file)
		if err != nil {
			return err
		}
		cfg = loaded
		log = logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, App: cfg.AppName})
		return nil
	},
	// sin subcomando levanta el server
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "archivo de configuración yaml (opcional; env FINDMYPET_* tiene prioridad)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		l := log
		if l == nil {
			l = logger.New(logger.Options{})
		}
		l.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}
