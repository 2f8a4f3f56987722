package main

import (
	"github.com/go-go-golems/pandora/cmd/pandora/cmds"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := cmds.NewRootCommand()
	cobra.CheckErr(rootCmd.Execute())
}
