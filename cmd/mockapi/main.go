package main

import (
	"fmt"
	"os"

	"axiapac.com/selfservice/logging"
	"axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/web"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var addr, secret, email, password, logLevel string

	cmd := &cobra.Command{
		Use:   "mockapi",
		Short: "Run the in-memory self-service backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logLevel, false)
			if err != nil {
				return err
			}
			defer logger.Sync()

			backend := web.NewBackend([]byte(secret), logger)
			if err := backend.AddUser(common.User{ID: 1, Name: "Demo User", Email: email}, password); err != nil {
				return err
			}

			logger.Info("mock backend listening", zap.String("addr", addr), zap.String("email", email))
			return web.NewRouter(backend).Run(addr)
		},
	}

	_ = godotenv.Load()
	cmd.Flags().StringVar(&addr, "addr", ":8090", "listen address")
	cmd.Flags().StringVar(&secret, "secret", envOr("MOCKAPI_JWT_SECRET", "dev-secret"), "JWT signing secret")
	cmd.Flags().StringVar(&email, "email", "a@b.com", "demo account email")
	cmd.Flags().StringVar(&password, "password", "secret1", "demo account password")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
