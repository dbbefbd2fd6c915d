package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crm_guincho",
	Short: "Operations CRM for the Guincho Oliveira tow fleet",
	Long: `The backend of the Guincho Oliveira operations CRM: dispatch queue,
knowledge base, support tickets, notifications and dashboard.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			log.Error().Err(err).Msg("Failed to display help")
		}
	},
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize()
}
