package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	cmd2 "toolnav/cmd"
	"toolnav/internal/models"
	"toolnav/internal/repository"
)

// MigrateCmd creates or updates the database schema.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and seed default settings.",
	Long: `Connects to the configured SQLite database and runs GORM's
automatic migrations for every model, then installs the default
settings. Existing settings keep their values.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmd2.Cfg
		if cfg == nil {
			log.Fatalf("FATAL: configuration was not loaded")
		}

		db, err := cmd2.OpenDatabase(cfg)
		if err != nil {
			log.Fatalf("FATAL: cannot connect to the database: %v", err)
		}
		defer func() {
			if err := cmd2.CloseDatabase(db); err != nil {
				log.Printf("warning: closing database connection: %v", err)
			}
		}()

		log.Println("running database migrations...")
		if err := db.AutoMigrate(
			&models.Category{},
			&models.Link{},
			&models.Tag{},
			&models.User{},
			&models.Favorite{},
			&models.ClickRecord{},
			&models.APIToken{},
			&models.Setting{},
		); err != nil {
			log.Fatalf("FATAL: running migrations: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.DBTimeout())
		defer cancel()
		if err := repository.NewSettingRepository(db).SeedDefaults(ctx); err != nil {
			log.Fatalf("FATAL: seeding default settings: %v", err)
		}

		fmt.Println("Database migrations completed successfully.")
	},
}

func init() {
	cmd2.RootCmd.AddCommand(MigrateCmd)
}
