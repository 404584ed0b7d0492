package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/identity"
)

// Handler exposes login and session endpoints.
type Handler struct {
	users  *identity.Service
	tokens *Service
}

// NewHandler builds the auth HTTP handler.
func NewHandler(users *identity.Service, tokens *Service) *Handler {
	return &Handler{users: users, tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func toUserResponse(user identity.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
	}
}

// Login verifies credentials and returns an access token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid email or password")
	}
	token, err := h.tokens.Issue(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "token signing failed")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"access_token": token.AccessToken,
		"token_type":   token.TokenType,
		"expires_in":   token.ExpiresIn,
		"user":         toUserResponse(user),
	})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int64)
	user, err := h.users.Get(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusNotFound, "user not found")
	}
	return c.JSON(toUserResponse(user))
}

// ChangePassword swaps the authenticated user's password.
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int64)
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.users.ChangePassword(c.UserContext(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return fiber.NewError(http.StatusBadRequest, "current password is incorrect")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"message": "password changed"})
}
