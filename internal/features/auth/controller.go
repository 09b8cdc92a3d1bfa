package auth

import (
	common_api "bank-backoffice/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthController struct {
	Service AuthService
}

func NewAuthController(service AuthService) *AuthController {
	return &AuthController{Service: service}
}

func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	token, u, err := ctrl.Service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return common_api.Error(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  u,
	})
}
