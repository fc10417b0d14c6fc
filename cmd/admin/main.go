// Command admin holds operator tasks: schema migration, admin account
// bootstrap and password hashing.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"applyfollow-backend/config"
	"applyfollow-backend/internal/domain"
	"applyfollow-backend/internal/repository/postgres"
	"applyfollow-backend/migrations"
	"applyfollow-backend/pkg/auth"
	"applyfollow-backend/pkg/database"
	"applyfollow-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func main() {
	cobra.CheckErr(newRootCmd().Execute())
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "applyfollow-admin",
		Short:        "Operator commands for the ApplyFollow backend",
		SilenceUsage: true,
	}

	cmd.AddCommand(newMigrateCmd(), newCreateAdminCmd(), newHashPasswordCmd())
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := database.Migrate(cmd.Context(), pool, migrations.FS)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
}

func newCreateAdminCmd() *cobra.Command {
	var emailAddr, name, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if emailAddr == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			if len(password) < 6 {
				return errors.New("password must be at least 6 characters")
			}

			pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			return createAdmin(cmd.Context(), cmd.OutOrStdout(), postgres.NewUserRepository(pool), emailAddr, name, password)
		},
	}

	cmd.Flags().StringVar(&emailAddr, "email", "", "admin email")
	cmd.Flags().StringVar(&name, "name", "Administrator", "full name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	return cmd
}

func createAdmin(ctx context.Context, out io.Writer, users domain.UserRepository, emailAddr, name, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	existing, err := users.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		existing.Role = domain.RoleAdmin
		existing.IsActive = true
		if err := users.Update(ctx, existing); err != nil {
			return fmt.Errorf("promote user: %w", err)
		}
		if err := users.UpdatePassword(ctx, existing.ID, hash); err != nil {
			return fmt.Errorf("set password: %w", err)
		}
		fmt.Fprintf(out, "promoted %s to admin\n", emailAddr)
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("lookup user: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: hash,
		FullName:     name,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		Provider:     domain.ProviderLocal,
	}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(out, "created admin %s (%s)\n", emailAddr, user.ID)
	return nil
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.LogLevel)
	if cfg.Database.URL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set")
	}
	return database.NewPostgresConnection(ctx, cfg.Database.URL, database.PoolOptions{MaxConns: 2, MinConns: 1})
}
