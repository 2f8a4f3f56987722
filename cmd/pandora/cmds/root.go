package cmds

import (
	"github.com/go-go-golems/pandora/pkg/config"
	"github.com/spf13/cobra"
)

// App carries the settings resolved before any subcommand runs.
type App struct {
	ConfigFile string
	Settings   config.Settings
}

func NewRootCommand() *cobra.Command {
	app := &App{Settings: config.Defaults()}

	rootCmd := &cobra.Command{
		Use:   "pandora",
		Short: "PANDORA planning chat",
		Long: `PANDORA is a chat with a simulated planning agent.

The conversation starts from a fixed three message seed; every message you send
is answered with a canned reply after a short delay.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(app.ConfigFile)
			if err != nil {
				return err
			}
			s, err := config.Load(v, cmd.Flags())
			if err != nil {
				return err
			}
			app.Settings = s
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.ConfigFile, "config", "", "Config file (default ~/.pandora/config.yaml)")
	config.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		NewChatCommand(app),
		NewServeCommand(app),
		NewSeedCommand(app),
		NewWatchCommand(app),
	)
	return rootCmd
}
