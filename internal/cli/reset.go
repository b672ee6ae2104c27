package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/terraincognita07/cyclecast/internal/db"
	"github.com/terraincognita07/cyclecast/internal/security"
	"github.com/terraincognita07/cyclecast/internal/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	temporaryPasswordAttempts = 32
)

var ErrResetUserNotFound = errors.New("user not found")

type ResetPasswordOptions struct {
	DBPath string
	Email  string
	// Interactive asks the operator for the temporary password instead of
	// generating one.
	Interactive bool
	Stdin       *os.File
	Out         io.Writer
	Logger      *zap.Logger
}

func RunResetPasswordCommand(options ResetPasswordOptions) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}
	if options.Stdin == nil {
		options.Stdin = os.Stdin
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	email := services.NormalizeAuthEmail(options.Email)
	if email == "" {
		return fmt.Errorf("invalid email address %q", options.Email)
	}

	password := ""
	if options.Interactive {
		entered, err := promptSecret("Temporary password: ", options.Stdin, options.Out)
		if err != nil {
			return fmt.Errorf("read temporary password: %w", err)
		}
		if err := services.ValidatePasswordStrength(entered); err != nil {
			return fmt.Errorf("temporary password must be at least %d characters with upper case, lower case and a digit", services.MinPasswordLength)
		}
		password = entered
	}

	database, err := db.OpenSQLite(options.DBPath, options.Logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	temporaryPassword, err := resetUserPassword(database, email, password)
	if err != nil {
		return err
	}
	options.Logger.Info("password reset", zap.String("email", email))

	fmt.Fprintln(options.Out, "Password reset successful")
	if !options.Interactive {
		fmt.Fprintf(options.Out, "Temporary password: %s\n", temporaryPassword)
	}
	fmt.Fprintln(options.Out, "User must change password on next login.")
	return nil
}

// resetUserPassword stores password (or a generated one when empty) for the
// user and flags the account for a forced change.
func resetUserPassword(database *gorm.DB, email string, password string) (string, error) {
	users := db.NewUserRepository(database)
	user, found, err := users.FindByNormalizedEmail(email)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrResetUserNotFound, email)
	}

	if password == "" {
		password, err = generateTemporaryPassword(12)
		if err != nil {
			return "", fmt.Errorf("generate temporary password: %w", err)
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash temporary password: %w", err)
	}
	if err := users.UpdatePassword(user.ID, string(passwordHash), true); err != nil {
		return "", fmt.Errorf("update user password: %w", err)
	}
	return password, nil
}

// generateTemporaryPassword draws until the result satisfies the login
// password policy, so the user can sign in with it.
func generateTemporaryPassword(length int) (string, error) {
	if length < services.MinPasswordLength {
		length = services.MinPasswordLength
	}

	for attempt := 0; attempt < temporaryPasswordAttempts; attempt++ {
		candidate, err := security.RandomString(length, temporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		if services.ValidatePasswordStrength(candidate) == nil {
			return candidate, nil
		}
	}
	return "", errors.New("could not draw a policy compliant password")
}
