package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coursehub/coursehub-gateway/internal/api"
	"github.com/coursehub/coursehub-gateway/internal/config"
	"github.com/coursehub/coursehub-gateway/internal/credentials"
	"github.com/coursehub/coursehub-gateway/internal/gateway"
)

const (
	outputJSON string = "json"
	outputYAML string = "yaml"
)

// app holds everything a command needs, it is built once the flags are parsed
type app struct {
	configDir       string
	credentialsPath string
	output          string

	gateway *gateway.Gateway
	client  *api.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "coursehubctl",
		Short: "coursehubctl - command line client for CourseHub",
		Long: `coursehubctl talks to the CourseHub backend with a session that survives
between invocations. Expired sessions are refreshed automatically.

Configuration:
  Config is loaded from config.yaml and secret_config.yaml in the --config
  directory, $CONFIG_LOCATION, /etc/coursehub or the current directory.

  Environment variables can override config values with the COURSEHUB_ prefix.
  Example: COURSEHUB_BACKEND_BASEURL=https://coursehub.example/api/v1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configDir, "config", "", "directory with the config files")
	rootCmd.PersistentFlags().StringVar(&a.credentialsPath, "credentials", "", "credential file (default: <user config dir>/coursehub/credentials.yaml)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputJSON, "output format, json or yaml")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newTokenCmd(a),
		newCoursesCmd(a),
		newLessonsCmd(a),
		newLecturesCmd(a),
		newQuizCmd(a),
		newDepositCmd(a),
		newPurchaseCmd(a),
		newPurchasesCmd(a),
	)
	return rootCmd
}

func (a *app) init(ctx context.Context) error {
	if a.output != outputJSON && a.output != outputYAML {
		return fmt.Errorf("unsupported output format %q", a.output)
	}
	ch := config.NewConfigHandler(config.WithConfigPaths(a.configDir))
	cfg, err := ch.Config()
	if err != nil {
		return fmt.Errorf("loading the configuration failed: %w", err)
	}
	// an in-memory credential would be gone after every command
	if cfg.Credentials.Type == config.CredentialStoreMemory || a.credentialsPath != "" {
		cfg.Credentials.Type = config.CredentialStoreFile
		cfg.Credentials.FilePath = a.credentialsPath
		if cfg.Credentials.FilePath == "" {
			cfg.Credentials.FilePath, err = credentials.DefaultFilePath()
			if err != nil {
				return err
			}
		}
	}
	store, err := credentials.NewStore(cfg.Credentials, cfg.Redis)
	if err != nil {
		return err
	}
	a.gateway, err = gateway.NewGateway(gateway.WithConfig(cfg.Backend), gateway.WithCredentialStore(store))
	if err != nil {
		return err
	}
	err = a.gateway.Restore(ctx)
	if err != nil {
		return fmt.Errorf("reading the stored session failed: %w", err)
	}
	a.client, err = api.NewClient(
		api.WithGateway(a.gateway),
		api.WithBaseURL(cfg.Backend.BaseURL),
		api.WithEndpoints(cfg.Backend.Endpoints),
	)
	return err
}

func (a *app) print(w io.Writer, value any) error {
	if a.output == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(value)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
