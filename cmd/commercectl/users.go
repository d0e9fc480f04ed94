package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"course-commerce/internal/app"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func resetPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a user's password and end their session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if len(password) < 6 {
				return errors.New("password must be at least 6 characters")
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if email == "" {
					email = a.Config.AdminEmail
				}
				email = strings.ToLower(strings.TrimSpace(email))

				user, err := a.UserRepo.FindByEmail(email)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("user %s not found", email)
				}
				if err != nil {
					return err
				}

				if err := user.SetPassword(password); err != nil {
					return fmt.Errorf("hash password: %w", err)
				}
				// A new token version logs out any open session.
				if err := a.UserRepo.ChangePassword(user.ID, user.Password, uuid.NewString()); err != nil {
					return fmt.Errorf("update password: %w", err)
				}

				log.Printf("✅ Password for %s has been reset", email)
				return nil
			})
		},
	}

	cmd.Flags().StringP("email", "e", "", "Account email (default ADMIN_EMAIL)")
	cmd.Flags().StringP("password", "p", "", "New password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
