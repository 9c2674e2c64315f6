package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones SQL embebidas",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := load()
		if err != nil {
			return err
		}
		pool, err := postgres.NewPool(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := postgres.Migrate(cmd.Context(), pool)
		if err != nil {
			return err
		}
		log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
		return nil
	},
}

var superuser struct {
	username string
	email    string
}

// La contraseña se lee de GESTION_SUPERUSER_PASSWORD para no dejarla en el historial del shell.
var superuserCmd = &cobra.Command{
	Use:   "create-superuser",
	Short: "Crea un superusuario",
	RunE: func(cmd *cobra.Command, _ []string) error {
		username := entity.NormalizeUsername(superuser.username)
		if msg := entity.ValidateUsername(username); msg != "" {
			return fmt.Errorf("username: %s", msg)
		}
		email := entity.NormalizeEmail(superuser.email)
		if msg := entity.ValidateEmail(email); msg != "" {
			return fmt.Errorf("email: %s", msg)
		}
		password := os.Getenv("GESTION_SUPERUSER_PASSWORD")
		if msg := entity.ValidatePassword(password); msg != "" {
			return fmt.Errorf("GESTION_SUPERUSER_PASSWORD: %s", msg)
		}

		cfg, log, err := load()
		if err != nil {
			return err
		}
		pool, err := postgres.NewPool(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()

		users := postgres.NewUserRepository(pool)
		existing, err := users.GetByUsername(cmd.Context(), username)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("el usuario %q ya existe", username)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash de contraseña: %w", err)
		}
		now := time.Now()
		u := &entity.User{
			ID:           uuid.New().String(),
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			IsStaff:      true,
			IsSuperuser:  true,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(cmd.Context(), u); err != nil {
			return err
		}
		log.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("superusuario creado")
		return nil
	},
}

func init() {
	superuserCmd.Flags().StringVar(&superuser.username, "username", "", "nombre de usuario")
	superuserCmd.Flags().StringVar(&superuser.email, "email", "", "email")
	_ = superuserCmd.MarkFlagRequired("username")
	_ = superuserCmd.MarkFlagRequired("email")
}
