package auth

import (
	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	Controller *AuthController
}

func NewAuthApi(controller *AuthController) *AuthApi {
	return &AuthApi{Controller: controller}
}

func (api *AuthApi) Setup(app *fiber.App) {
	group := app.Group("/api/auth")

	group.Post("/login", api.Controller.Login)
}
