package main

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the votecount post for the configured topic without posting it",
	Long: "Loads the settings, reads the topic and the votecount plugin data and prints the post body. " +
		"Suppression rules are ignored and nothing is published.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, closer, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }()

		settings, err := newSettingsSource(cfg)
		if err != nil {
			return err
		}
		current, err := settings.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		poster := newPoster(cfg, nil, clockwork.NewRealClock())
		if err := poster.Apply(cmd.Context(), current); err != nil {
			return err
		}

		body, err := poster.Preview(cmd.Context())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), body)
		return err
	},
}
