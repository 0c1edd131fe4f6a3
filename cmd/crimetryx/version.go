package main

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the operating mode and backend reachability",
	Run: func(cmd *cobra.Command, _ []string) {
		reachable := "reachable"
		if err := app.client.Healthy(cmd.Context()); err != nil {
			reachable = "unreachable"
		}
		cmd.Printf("mode: %s\nbackend: %s (%s)\ndata: %s\n",
			app.cfg.Mode, app.cfg.APIURL, reachable, app.cfg.DataDir)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the build version",
	Run: func(cmd *cobra.Command, _ []string) {
		version := "devel"
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
			version = info.Main.Version
		}
		cmd.Println("crimetryx", version)
	},
}
