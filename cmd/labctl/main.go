package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lessonlab/internal/audio"
	"lessonlab/internal/config"
	"lessonlab/internal/database"
	"lessonlab/internal/repository"
	"lessonlab/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "labctl",
	Short: "Operate on Lesson Lab progress and account data",
	Long: `labctl works directly on the Lesson Lab database: print progress
reports, export practice history as CSV, back up and restore accounts and
progress, and clear recorded progress.

It reads the same environment (or .env file) as the server.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// app holds the services a command works with
type app struct {
	db       *database.DB
	accounts *repository.AccountRepository
	progress *service.ProgressService
	auth     *service.AuthService
	backup   *service.BackupService
	speech   *audio.SpeechService
}

func openApp() (*app, error) {
	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	kvRepo := repository.NewKVRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	progress, err := service.NewProgressService(kvRepo)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	auth := service.NewAuthService(service.NewAccountService(accountRepo, nil), kvRepo,
		cfg.SessionDuration, cfg.SessionExtendThreshold, cfg.AuditLogCapacity)

	return &app{
		db:       db,
		accounts: accountRepo,
		progress: progress,
		auth:     auth,
		backup:   service.NewBackupService(accountRepo, progress, auth),
		speech:   audio.NewSpeechService(cfg.TTSBaseURL, cfg.TTSLanguage, cfg.AudioCachePath, cfg.ExternalCallTimeout, cfg.Debug),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
