package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/config"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Connect runs the schema migration against the write database.
	_, _, err = database.Connect(cfg.DB)
	if err != nil {
		return err
	}

	log.Info().Msg("Database migrations applied")
	return nil
}
