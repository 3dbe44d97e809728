package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/talkincode/farmstock/config"
	"github.com/talkincode/farmstock/internal/adminapi"
	"github.com/talkincode/farmstock/internal/app"
	"github.com/talkincode/farmstock/internal/webserver"
	"go.uber.org/zap"
)

const (
	Version   = "1.0.0"
	BuildTime = "dev"
	appName   = "farmstock"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Farm product inventory manager",
		Long: `farmstock keeps a catalogue of farm products grouped into categories,
with search, paging, a low-stock dashboard and CSV export over an HTTP admin API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// a missing .env is fine; the environment may already be set
			if _, err := os.Stat(envFile); err == nil {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load %s: %w", envFile, err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/farmstock.yml", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file with FARMSTOCK_* overrides")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the admin API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer application.Release()
			zap.L().Info("database schema is up to date")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "initdb",
		Short: "Drop every table and recreate the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer application.Release()
			if err := application.InitDb(); err != nil {
				return err
			}
			zap.L().Warn("database reinitialized, all data removed")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// bootstrap loads the config and initializes logging, the database schema and services
func bootstrap(configPath string) (*app.Application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.InitDirs(); err != nil {
		return nil, err
	}
	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		return nil, err
	}
	return application, nil
}

func serve(ctx context.Context, configPath string) error {
	application, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer application.Release()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := webserver.Init(application)
	adminapi.Init()
	return server.Start(ctx)
}
