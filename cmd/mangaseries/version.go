package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the mangaseries version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("mangaseries version:", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
