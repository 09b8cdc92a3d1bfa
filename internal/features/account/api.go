package account

import (
	"bank-backoffice/internal/common/models"
	"bank-backoffice/internal/config"
	"bank-backoffice/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AccountApi struct {
	Controller *AccountController
	Config     *config.Config
}

func NewAccountApi(controller *AccountController, config *config.Config) *AccountApi {
	return &AccountApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *AccountApi) Setup(app *fiber.App) {
	group := app.Group("/api/accounts", middleware.AuthMiddleware(api.Config.SkipAuth),
		middleware.RequireRole(models.RoleOfficer, models.RoleManager, models.RoleAdmin))

	group.Post("/", api.Controller.Create)
	group.Get("/", api.Controller.List)
	group.Get("/:id", api.Controller.GetByID)
	group.Put("/:id", api.Controller.Update)
	group.Delete("/:id", middleware.RequireRole(models.RoleManager, models.RoleAdmin), api.Controller.Close)
}
