package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/identity"
)

// RegisterUserRoutes wires user registration and lookup endpoints.
func RegisterUserRoutes(r fiber.Router, users *identity.Service, logger *slog.Logger) {
	group := r.Group("/users")

	group.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			Email     string `json:"email"`
			Password  string `json:"password"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Phone     string `json:"phone"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := users.Register(c.UserContext(), identity.RegisterInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		})
		if err != nil {
			if errors.Is(err, identity.ErrEmailTaken) {
				return fiber.NewError(http.StatusBadRequest, "email already registered")
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if logger != nil {
			logger.Info("user registered",
				slog.Int64("user_id", user.ID),
				slog.String("email", user.Email),
			)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"phone":      user.Phone,
		})
	})

	group.Get("/", func(c *fiber.Ctx) error {
		list, err := users.List(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		out := make([]fiber.Map, 0, len(list))
		for _, user := range list {
			out = append(out, fiber.Map{
				"id":         user.ID,
				"email":      user.Email,
				"first_name": user.FirstName,
				"last_name":  user.LastName,
			})
		}
		return c.JSON(out)
	})

	group.Get("/:email", func(c *fiber.Ctx) error {
		user, err := users.FindByEmail(c.UserContext(), c.Params("email"))
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "user not found")
		}
		return c.JSON(fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		})
	})

	group.Delete("/:email", func(c *fiber.Ctx) error {
		if err := users.Delete(c.UserContext(), c.Params("email")); err != nil {
			return fiber.NewError(http.StatusNotFound, "user not found")
		}
		return c.JSON(fiber.Map{"message": "user deleted"})
	})
}
