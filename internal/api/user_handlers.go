package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceguard-backend/internal/auth"
	"voiceguard-backend/internal/database"
	"voiceguard-backend/internal/models"
)

// listUsersHandler handles GET /api/users/get-users
func listUsersHandler(c echo.Context) error {
	users, err := authService.ListAccounts()
	if err != nil {
		c.Logger().Error("list users error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Oops! Something went wrong. Please try again later.",
		})
	}

	if users == nil {
		users = []*models.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// addUserHandler handles POST /api/users/add-user
func addUserHandler(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	user, err := authService.Register(req)
	if err != nil {
		var ve *auth.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": ve.Message,
			})
		case errors.Is(err, database.ErrEmailTaken):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "This email is already registered. Please try another one.",
			})
		default:
			c.Logger().Error("register error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Oops! Something went wrong. Please try again later.",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User created successfully",
		"user":    user,
	})
}

// loginHandler handles POST /api/users/login
func loginHandler(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid credentials. Please check your email and password.",
		})
	}

	token, _, err := authService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid credentials. Please check your email and password.",
			})
		}
		c.Logger().Error("login error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "An error occurred. Please try again later.",
		})
	}

	auth.LoginRateLimiter.RecordSuccess(c.RealIP())

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}

// getCurrentUser handles GET /api/users/me
func getCurrentUser(c echo.Context) error {
	claims := auth.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "not authenticated",
		})
	}

	user, err := authService.GetAccount(claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "account no longer exists",
			})
		}
		c.Logger().Error("get current user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "An error occurred. Please try again later.",
		})
	}

	return c.JSON(http.StatusOK, user)
}

// updateUserHandler handles PUT /api/users/:id
func updateUserHandler(c echo.Context) error {
	claims := auth.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "not authenticated",
		})
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid user ID",
		})
	}

	// Accounts can only be modified by their owner
	if claims.UserID != id {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "cannot modify another user's account",
		})
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	user, err := authService.UpdateAccount(id, req)
	if err != nil {
		var ve *auth.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": ve.Message,
			})
		case errors.Is(err, database.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found",
			})
		default:
			c.Logger().Error("update user error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "An error occurred. Please try again later.",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
		"user":    user,
	})
}
