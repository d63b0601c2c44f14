package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	cmd2 "toolnav/cmd"
	"toolnav/internal/repository"
	"toolnav/internal/services"
)

// StatsCmd prints the directory-wide counters.
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print directory statistics.",
	Long: `Prints the aggregate counters: links by status, categories, tags,
users, total clicks, recent click windows, and the most clicked links.

Example:
  toolnav stats`,
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

		statsService := services.NewStatsService(
			repository.NewStatsRepository(db),
			cfg.DBTimeout(),
			time.Duration(cfg.Stats.CacheTTLSeconds)*time.Second,
			cfg.Stats.PopularLimit,
		)

		dashboard, popular, err := statsService.Dashboard(context.Background())
		if err != nil {
			log.Fatalf("FATAL: fetching statistics: %v", err)
		}

		fmt.Printf("Links:       %d total, %d active, %d inactive, %d error\n",
			dashboard.TotalLinks, dashboard.ActiveLinks, dashboard.InactiveLinks, dashboard.ErrorLinks)
		fmt.Printf("Categories:  %d\n", dashboard.TotalCategories)
		fmt.Printf("Tags:        %d\n", dashboard.TotalTags)
		fmt.Printf("Users:       %d\n", dashboard.TotalUsers)
		fmt.Printf("Clicks:      %d total, %d today, %d this week, %d this month\n",
			dashboard.TotalClicks, dashboard.TodayClicks, dashboard.WeekClicks, dashboard.MonthClicks)

		if len(popular) > 0 {
			fmt.Println("Most clicked:")
			for i, link := range popular {
				fmt.Printf("  %d. %s (%d clicks)\n", i+1, link.Title, link.ClickCount)
			}
		}
	},
}

func init() {
	cmd2.RootCmd.AddCommand(StatsCmd)
}
