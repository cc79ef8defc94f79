package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var ErrUnknownRole = errors.New("unknown role")

// CreateUser hashes password and stores an account with the named role.
func CreateUser(ctx context.Context, store *repository.Store, email, name, password, roleName string) (*models.User, error) {
	role, err := store.FindRole(ctx, roleName)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnknownRole
	}
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Name:     name,
		Password: string(hashed),
		RoleID:   role.ID,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	user.Role = *role
	return user, nil
}
