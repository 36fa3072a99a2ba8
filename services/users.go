package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"learnhub/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// UserService registriert Nutzer und prüft Zugangsdaten.
type UserService struct {
	DB     *gorm.DB
	Logger *zap.Logger
	// Cost ist der bcrypt-Aufwand; 0 bedeutet bcrypt.DefaultCost.
	Cost int
}

// NewUserService erstellt eine neue Instanz des UserService.
func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{DB: db, Logger: logger}
}

// Register legt einen Nutzer an. Benutzername und E-Mail müssen eindeutig sein.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ? OR username = ?", email, username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: user already exists", ErrConflict)
	}

	user := &models.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: user already exists", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.Logger.Info("Nutzer registriert", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate prüft E-Mail und Passwort. Unbekannte Nutzer und falsche Passwörter
// liefern denselben Fehler.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	return &user, nil
}

// Find lädt einen Nutzer per ID.
func (s *UserService) Find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}
