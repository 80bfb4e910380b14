package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mand0ng/fitness-app-backend/internal/app"
	"github.com/mand0ng/fitness-app-backend/internal/data/db"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:   "fitness-app-backend",
	Short: "Workout plan generation service",
	Long:  "Serves the workout API and generates 30-day plans in three chained model calls.",
	// Bare invocation serves, matching the container entrypoint.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and job runner",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE:  runMigrate,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a plan for one user and print it as JSON",
	RunE:  runGenerate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), app.LoadConfig().Version)
	},
}

var (
	generateUserID  string
	generatePersist bool
)

func init() {
	generateCmd.Flags().StringVar(&generateUserID, "user-id", "", "id of an onboarded user")
	generateCmd.Flags().BoolVar(&generatePersist, "persist", false, "store the plan as the user's program")
	_ = generateCmd.MarkFlagRequired("user-id")

	rootCmd.AddCommand(serveCmd, migrateCmd, generateCmd, versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg app.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.LoadConfig()
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("Startup failed", "error", err)
		log.Sync()
		return err
	}
	defer a.Close()
	return a.Run(ctx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := app.LoadConfig()
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	dbService, err := db.Open(log, cfg.DB)
	if err != nil {
		return err
	}
	defer dbService.Close()
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		return err
	}
	log.Info("Migrations applied", "driver", cfg.DB.Driver)
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	userID, err := uuid.Parse(generateUserID)
	if err != nil {
		return fmt.Errorf("invalid --user-id: %w", err)
	}
	cfg := app.LoadConfig()
	// The HTTP surface is never started here.
	cfg.MetricsEnabled = false
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return err
	}
	defer a.Close()

	plan, programID, err := a.GeneratePlan(ctx, userID, generatePersist)
	if err != nil {
		return err
	}
	if programID != uuid.Nil {
		log.Info("Plan stored", "program_id", programID)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
