package cmds

import (
	"time"

	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/go-go-golems/pandora/pkg/transcript"
	"github.com/spf13/cobra"
)

func NewSeedCommand(_ *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Print the conversation every session starts with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := transcript.ParseFormat(format)
			if err != nil {
				return err
			}
			t := transcript.Transcript{Messages: conversation.SeedMessages(time.Now())}
			return transcript.Write(cmd.OutOrStdout(), t, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (yaml, json)")
	return cmd
}
