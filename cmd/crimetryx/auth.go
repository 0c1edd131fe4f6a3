package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/crimetryx/crimetryx/internal/models"
)

var (
	loginUser     string
	loginPassword string
)

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "investigator id")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password")
	_ = loginCmd.MarkFlagRequired("user")
	_ = loginCmd.MarkFlagRequired("password")
}

var loginCmd = &cobra.Command{
	Use:     "login",
	GroupID: "auth",
	Short:   "Sign in as an investigator",
	Long: `Signs in against the backend, or with the built-in demo account
(demo/demo123) when running offline. The identity is remembered until logout.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		identity, err := app.sessions.Login(cmd.Context(), app.authenticator(), loginUser, loginPassword)
		if err != nil {
			return err
		}
		cmd.Printf("Signed in as %s (%s)\n", identity.Name, identity.InvestigatorID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	GroupID: "auth",
	Short:   "Sign out and forget the stored identity",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := app.sessions.Clear(); err != nil {
			return err
		}
		cmd.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	GroupID: "auth",
	Short:   "Show the signed-in investigator",
	RunE: func(cmd *cobra.Command, _ []string) error {
		identity, ok := app.sessions.Current()
		if !ok {
			cmd.Println("Not signed in")
			return nil
		}
		return emit(cmd.OutOrStdout(), identity, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s (%s), role %s\n",
				identity.Name, identity.InvestigatorID, identity.Role)
			return err
		})
	},
}

// currentIdentity is the signed-in identity, or the demo identity when the
// command is used without logging in first.
func currentIdentity() models.Identity {
	if identity, ok := app.sessions.Current(); ok {
		return identity
	}
	return models.Identity{InvestigatorID: "demo", Name: "Demo Investigator", Role: "investigator"}
}
