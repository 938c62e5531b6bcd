package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"researchnett/internal/auth"
	"researchnett/internal/cache"
	"researchnett/internal/config"
	"researchnett/internal/db"
	"researchnett/internal/logger"
	"researchnett/internal/metrics"
	"researchnett/internal/repository"
	"researchnett/internal/service"
	"researchnett/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "manage",
	Short: "ResearchNett maintenance tasks",
	Long: `Maintenance tasks run against the configured database and Redis.

Available subcommands:
  migrate       - Create or update every table
  grant-admin   - Make a user an admin
  revoke-admin  - Remove a user's admin membership
  seed          - Load demo users, profiles and calls`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		cfg = config.Load()
		logger.Init(cfg.Env)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin <email>",
	Short: "Make a user an admin",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrantAdmin,
}

var revokeAdminCmd = &cobra.Command{
	Use:   "revoke-admin <email>",
	Short: "Remove a user's admin membership",
	Args:  cobra.ExactArgs(1),
	RunE:  runRevokeAdmin,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users, profiles and calls",
	Long: `Load demo data from a JSON file or an http(s) URL.

The document has the shape {"users": [{"email", "password", "admin",
"profile": {...}, "calls": [{...}]}]}. Missing users are created as
confirmed accounts; existing users keep their password.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

var (
	cfg        *config.Config
	seedSource string
)

func init() {
	seedCmd.Flags().StringVar(&seedSource, "source", "", "seed file path or http(s) URL")
	_ = seedCmd.MarkFlagRequired("source")

	rootCmd.AddCommand(migrateCmd, grantAdminCmd, revokeAdminCmd, seedCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDB() (*gorm.DB, error) {
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, err
	}
	return gormDB, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if _, err := openDB(); err != nil {
		return err
	}
	logger.Info(cmd.Context(), "Migrations completed", zap.String("database", db.Describe(cfg.DBDriver, cfg.DatabaseDSN)))
	return nil
}

// withAdminService runs fn against an AdminService whose membership events
// drop the cached admin flag shared with running servers.
func withAdminService(fn func(service.AdminService) error) error {
	gormDB, err := openDB()
	if err != nil {
		return err
	}
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	adminRepo := repository.NewAdminRepository(gormDB)
	hub := session.NewHub()
	done := session.NewResolver(adminRepo, cacheClient).Watch(hub)
	defer func() {
		hub.Close()
		<-done
	}()

	svc := service.NewAdminService(
		adminRepo,
		repository.NewUserRepository(gormDB),
		repository.NewFounderRepository(gormDB),
		repository.NewFeedbackRepository(gormDB),
		hub,
	)
	return fn(svc)
}

func runGrantAdmin(cmd *cobra.Command, args []string) error {
	return withAdminService(func(svc service.AdminService) error {
		user, err := svc.Grant(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("grant admin: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", user.Email)
		return nil
	})
}

func runRevokeAdmin(cmd *cobra.Command, args []string) error {
	return withAdminService(func(svc service.AdminService) error {
		removed, err := svc.Revoke(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("revoke admin: %w", err)
		}
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), "%s was not an admin\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer an admin\n", args[0])
		return nil
	})
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	doc, err := service.LoadSeedDocument(ctx, seedSource)
	if err != nil {
		return err
	}

	gormDB, err := openDB()
	if err != nil {
		return err
	}
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	profileRepo := repository.NewProfileRepository(gormDB)
	callRepo := repository.NewCallRepository(gormDB)
	profiles := service.NewProfileService(profileRepo, auth.NewDraftStore(cacheClient), cacheClient)
	calls := service.NewCallService(callRepo, profileRepo, repository.NewEngagementRepository(gormDB), metrics.New())
	seeder := service.NewSeedService(
		repository.NewUserRepository(gormDB),
		repository.NewAdminRepository(gormDB),
		profiles,
		calls,
	)

	report, err := seeder.Seed(ctx, doc)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "users created: %d, existing: %d, profiles: %d, calls: %d, skipped: %d\n",
		report.UsersCreated, report.UsersExisting, report.ProfilesCreated, report.CallsCreated, report.Skipped)
	return nil
}
