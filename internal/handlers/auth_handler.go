package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/farellandr/admitpay/internal/helpers"
	"github.com/farellandr/admitpay/internal/logger"
	"github.com/farellandr/admitpay/internal/middleware"
	"github.com/farellandr/admitpay/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required,min=8"`
	RoleName string `json:"role_name" binding:"required,oneof=admin superadmin"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthHandler struct {
	Store     *repository.Store
	JWTSecret string
	Logger    *zap.Logger
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationError(c, err)
		return
	}

	user, err := CreateUser(c.Request.Context(), h.Store, req.Email, req.Name, req.Password, req.RoleName)
	switch {
	case errors.Is(err, ErrUnknownRole):
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid role.")
		return
	case errors.Is(err, repository.ErrDuplicate):
		helpers.RespondWithError(c, http.StatusConflict, "User already exists.")
		return
	case err != nil:
		logger.For(c, h.Logger).Error("register user", zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully.",
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"role":  req.RoleName,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationError(c, err)
		return
	}

	user, err := h.Store.FindUserByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.For(c, h.Logger).Error("load user", zap.Error(err))
		}
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	if h.JWTSecret == "" {
		helpers.RespondWithError(c, http.StatusInternalServerError, "JWT_SECRET not configured.")
		return
	}

	tokenString, err := middleware.SignSession(h.JWTSecret, user, middleware.DefaultSessionTTL)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role.Name,
		},
	})
}
