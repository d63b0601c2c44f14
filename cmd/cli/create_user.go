package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	cmd2 "toolnav/cmd"
	"toolnav/internal/models"
	"toolnav/internal/repository"
	"toolnav/internal/services"
)

var (
	emailFlag    string
	usernameFlag string
	passwordFlag string
	adminFlag    bool
)

// CreateUserCmd provisions an account from the command line.
var CreateUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user account.",
	Long: `Creates a user account directly in the database, bypassing the
registration setting. Useful for bootstrapping an admin.

Example:
  toolnav create-user --email=ops@example.com --username=ops --password=secret --admin`,
	Run: func(cmd *cobra.Command, args []string) {
		if emailFlag == "" || usernameFlag == "" || passwordFlag == "" {
			log.Fatalf("FATAL: --email, --username and --password are required")
		}

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

		userService := services.NewUserService(repository.NewUserRepository(db), cfg.DBTimeout())

		role := models.RoleUser
		if adminFlag {
			role = models.RoleAdmin
		}

		user, err := userService.Create(context.Background(), services.UserInput{
			Email:    emailFlag,
			Username: usernameFlag,
			Password: passwordFlag,
			Role:     role,
		})
		if err != nil {
			log.Fatalf("FATAL: creating user: %v", err)
		}

		fmt.Printf("User created: %s (%s) role=%s id=%d\n", user.Username, user.Email, user.Role, user.ID)
	},
}

func init() {
	CreateUserCmd.Flags().StringVar(&emailFlag, "email", "", "Email address for the account")
	CreateUserCmd.Flags().StringVar(&usernameFlag, "username", "", "Login name for the account")
	CreateUserCmd.Flags().StringVar(&passwordFlag, "password", "", "Initial password")
	CreateUserCmd.Flags().BoolVar(&adminFlag, "admin", false, "Grant the admin role")
	cmd2.RootCmd.AddCommand(CreateUserCmd)
}
