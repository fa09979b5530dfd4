package main

import (
	"fmt"
	"os"
	"time"

	"axiapac.com/selfservice/security"
	"github.com/spf13/cobra"
)

// createtoken prints a bearer token the mock backend accepts.
func main() {
	var userID int64
	var email, secret string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "createtoken",
		Short: "Issue an access token for the mock backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := security.CreateAccessToken(&security.Identity{UserID: userID, Email: email}, []byte(secret), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 1, "user id (token subject)")
	cmd.Flags().StringVar(&email, "email", "a@b.com", "user email")
	cmd.Flags().StringVar(&secret, "secret", "dev-secret", "JWT signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
