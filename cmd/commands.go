package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/farellandr/admitpay/config"
	"github.com/farellandr/admitpay/internal/handlers"
	"github.com/farellandr/admitpay/internal/logger"
	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/repository"
	"github.com/farellandr/admitpay/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "admitpay",
	Short:         "Admissions approval and fee payment service",
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed roles",
	RunE:  runMigrate,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	RunE:  runCreateAdmin,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")

	createAdminCmd.Flags().String("email", "", "account email")
	createAdminCmd.Flags().String("name", "", "display name")
	createAdminCmd.Flags().String("password", "", "account password")
	createAdminCmd.Flags().String("role", models.RoleSuperAdmin, "admin or superadmin")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := config.MigrateDatabase(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("database migrated")
	return nil
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	password, _ := cmd.Flags().GetString("password")
	role, _ := cmd.Flags().GetString("role")

	if role != models.RoleAdmin && role != models.RoleSuperAdmin {
		return fmt.Errorf("invalid role %q: must be admin or superadmin", role)
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := config.MigrateDatabase(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	user, err := handlers.CreateUser(context.Background(), repository.NewStore(db), email, name, password, role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	log.Info("admin created", zap.String("email", user.Email), zap.String("role", role))
	return nil
}
