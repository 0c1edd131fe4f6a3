// Command crimetryx is the investigator's terminal companion to the
// Crimetryx case-management backend. It works against the live backend when
// one is reachable and degrades to a local store when not.
package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/crimetryx/crimetryx/internal/errors"
)

var (
	app          *application
	outputFormat string
	modeOverride string
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&modeOverride, "mode", "",
		"operating mode: auto, live or offline (overrides CRIMETRYX_MODE)")

	rootCmd.AddGroup(authGroup, caseGroup, analysisGroup)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(casesCmd, evidenceCmd, pullCmd)
	rootCmd.AddCommand(sceneCmd, analyzeCmd, reportCmd)
	rootCmd.AddCommand(statusCmd, versionCmd)
}

var authGroup = &cobra.Group{
	ID:    "auth",
	Title: "Authentication",
}

var caseGroup = &cobra.Group{
	ID:    "case",
	Title: "Case management",
}

var analysisGroup = &cobra.Group{
	ID:    "analysis",
	Title: "Scene reconstruction and analysis",
}

var rootCmd = &cobra.Command{
	Use:           "crimetryx",
	Long:          `Terminal client for Crimetryx forensic case management`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		switch outputFormat {
		case "table", "json", "yaml":
		default:
			return errors.New("unknown output format: " + outputFormat)
		}
		var err error
		app, err = newApplication(cmd.Context())
		return err
	},
	PersistentPostRunE: func(*cobra.Command, []string) error {
		if app == nil {
			return nil
		}
		return app.Close()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
