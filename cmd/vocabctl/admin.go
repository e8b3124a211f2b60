package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
	"vocabdrill/internal/service"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var adminAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Create an administrator account",
	Example: `  vocabctl admin add --email teacher@example.com --name "Ms Kim" --password s3cretpass`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")

		emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
		if err != nil {
			return err
		}

		authService := service.NewAuthService(repository.NewUserRepository(db), security.NewTokenIssuer(cfg.JWTSecret, time.Hour), emailService)
		user, err := authService.AddAdmin(cmd.Context(), email, password, name)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created administrator %s (id %d)\n", user.Email, user.ID)
		return nil
	},
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List administrator accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		users, err := repository.NewUserRepository(db).GetAllUsers()
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", u.ID, u.Email, u.Name)
		}
		return nil
	},
}

func init() {
	adminAddCmd.Flags().String("email", "", "Administrator email")
	adminAddCmd.Flags().String("name", "", "Display name")
	adminAddCmd.Flags().String("password", "", "Password, at least 8 characters")
	for _, f := range []string{"email", "name", "password"} {
		_ = adminAddCmd.MarkFlagRequired(f)
	}

	adminCmd.AddCommand(adminAddCmd)
	adminCmd.AddCommand(adminListCmd)
}
