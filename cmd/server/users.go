package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/config"
	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/pkg/jwt"
	"github.com/tgo/embedhub/internal/repository"
	"github.com/tgo/embedhub/internal/service"
)

func newAuthService(cfg *config.Config, gormDB *gorm.DB) (*service.AuthService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	jwtManager := jwt.NewManager(cfg.JWTSecret, cfg.AccessTokenExpireMin, cfg.RefreshTokenExpireDays)
	return service.NewAuthService(repository.NewUserRepository(gormDB), repository.NewAPIKeyRepository(gormDB), jwtManager), nil
}

// authCommandService bootstraps the database and the auth service for CLI commands.
func authCommandService() (*service.AuthService, error) {
	cfg, gormDB, err := bootstrap()
	if err != nil {
		return nil, err
	}
	return newAuthService(cfg, gormDB)
}

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(userCreateCommand(), userSuspendCommand())
	return cmd
}

func userCreateCommand() *cobra.Command {
	var (
		username string
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			authSvc, err := authCommandService()
			if err != nil {
				return err
			}
			user, err := authSvc.CreateUser(context.Background(), &service.CreateUserRequest{
				Username: username,
				Password: password,
				Role:     role,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %q (id %d)\n", user.Role, user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (at least 8 characters)")
	cmd.Flags().StringVarP(&role, "role", "r", model.RoleAdmin, "Role: admin, manager or default")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func userSuspendCommand() *cobra.Command {
	var (
		username string
		restore  bool
	)

	cmd := &cobra.Command{
		Use:   "suspend",
		Short: "Suspend a user, or restore one with --restore",
		RunE: func(cmd *cobra.Command, args []string) error {
			authSvc, err := authCommandService()
			if err != nil {
				return err
			}
			user, err := authSvc.SetSuspended(context.Background(), username, !restore)
			if err != nil {
				return err
			}
			state := "suspended"
			if restore {
				state = "restored"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %q %s\n", user.Username, state)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().BoolVar(&restore, "restore", false, "Lift the suspension instead")
	cmd.MarkFlagRequired("username")
	return cmd
}

func apiKeyRevokeCommand() *cobra.Command {
	var id uint

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an API key by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			authSvc, err := authCommandService()
			if err != nil {
				return err
			}
			if err := authSvc.RevokeAPIKey(context.Background(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked API key %d\n", id)
			return nil
		},
	}

	cmd.Flags().UintVar(&id, "id", 0, "API key id")
	cmd.MarkFlagRequired("id")
	return cmd
}

func apiKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys for the public API",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Issue a new API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			authSvc, err := authCommandService()
			if err != nil {
				return err
			}
			key, err := authSvc.CreateAPIKey(context.Background(), nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", key.ID, key.Secret)
			return nil
		},
	})
	cmd.AddCommand(apiKeyRevokeCommand())
	return cmd
}
