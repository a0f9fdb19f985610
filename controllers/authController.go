package controllers

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"facturation-backend/middlewares"
)

// AuthController handles the single-operator session. There is no user table:
// the operator password hash comes from the environment.
type AuthController struct{}

func NewAuthController() *AuthController {
	return &AuthController{}
}

type loginDTO struct {
	Password string `json:"password" validate:"required"`
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var data loginDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	hash := os.Getenv("OPERATOR_PASSWORD_HASH")
	if hash == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "operator password not configured",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(data.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "invalid credentials",
		})
	}

	token, err := middlewares.GenerateJWT()
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token": token,
	})
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	// Tokens are stateless; the client drops its copy.
	return c.JSON(fiber.Map{
		"message": "success",
	})
}
