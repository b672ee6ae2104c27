package services

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuthCredentialsInvalid   = errors.New("auth credentials invalid")
	ErrAuthEmailExists          = errors.New("auth email already exists")
	ErrAuthUserNotFound         = errors.New("auth user not found")
	ErrAuthPasswordMustDiffer   = errors.New("auth new password must differ")
	ErrAuthInvalidCurrentSecret = errors.New("auth invalid current password")
	ErrAuthStoreFailed          = errors.New("auth store failed")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, bool, error)
	FindByID(userID uint) (models.User, bool, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	users AuthUserRepository
	now   func() time.Time
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users, now: time.Now}
}

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}

func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	password := strings.TrimSpace(passwordRaw)
	if email == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return email, password, nil
}

func (service *AuthService) Register(emailRaw string, password string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return models.User{}, ErrAuthStoreFailed
	}
	if exists {
		return models.User{}, ErrAuthEmailExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    service.now().UTC(),
	}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, ErrAuthEmailExists
	}
	return user, nil
}

// Authenticate returns ErrAuthCredentialsInvalid for unknown emails and wrong
// passwords alike.
func (service *AuthService) Authenticate(emailRaw string, password string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}

	user, found, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		return models.User{}, ErrAuthStoreFailed
	}
	if !found {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, found, err := service.users.FindByID(userID)
	if err != nil {
		return models.User{}, ErrAuthStoreFailed
	}
	if !found {
		return models.User{}, ErrAuthUserNotFound
	}
	return user, nil
}

func (service *AuthService) ChangePassword(userID uint, currentPassword string, newPassword string) (models.User, error) {
	user, err := service.FindByID(userID)
	if err != nil {
		return models.User{}, err
	}

	currentPassword = strings.TrimSpace(currentPassword)
	newPassword = strings.TrimSpace(newPassword)
	if currentPassword == "" || newPassword == "" {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return models.User{}, ErrAuthInvalidCurrentSecret
	}
	if currentPassword == newPassword {
		return models.User{}, ErrAuthPasswordMustDiffer
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return models.User{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	if err := service.users.UpdatePassword(user.ID, string(passwordHash), false); err != nil {
		return models.User{}, ErrAuthStoreFailed
	}
	user.PasswordHash = string(passwordHash)
	user.MustChangePassword = false
	return user, nil
}
