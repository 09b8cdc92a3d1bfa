package user

import (
	"bank-backoffice/internal/common/models"
	"bank-backoffice/internal/config"
	"bank-backoffice/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	Controller *UserController
	Config     *config.Config
}

func NewUserApi(controller *UserController, config *config.Config) *UserApi {
	return &UserApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *UserApi) Setup(app *fiber.App) {
	group := app.Group("/api/users", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/", middleware.RequireRole(models.RoleAdmin), api.Controller.Create)
	group.Get("/", middleware.RequireRole(models.RoleManager, models.RoleAdmin), api.Controller.List)
	group.Get("/:id", api.Controller.GetByID)
	group.Put("/:id", middleware.RequireRole(models.RoleAdmin), api.Controller.Update)
	group.Delete("/:id", middleware.RequireRole(models.RoleAdmin), api.Controller.Deactivate)
}
