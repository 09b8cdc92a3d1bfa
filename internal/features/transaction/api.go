package transaction

import (
	"bank-backoffice/internal/common/models"
	"bank-backoffice/internal/config"
	"bank-backoffice/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TransactionApi struct {
	Controller *TransactionController
	Config     *config.Config
}

func NewTransactionApi(controller *TransactionController, config *config.Config) *TransactionApi {
	return &TransactionApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *TransactionApi) Setup(app *fiber.App) {
	// Only Officer and Manager roles may initiate or inspect
	// transactions; status overrides and deletion are Manager-only.
	group := app.Group("/api/transactions", middleware.AuthMiddleware(api.Config.SkipAuth),
		middleware.RequireRole(models.RoleOfficer, models.RoleManager))

	group.Post("/", api.Controller.Create)
	group.Get("/", api.Controller.List)
	group.Get("/:id", api.Controller.GetByID)
	group.Patch("/:id/status", middleware.RequireRole(models.RoleManager), api.Controller.ChangeStatus)
	group.Delete("/:id", middleware.RequireRole(models.RoleManager), api.Controller.Delete)
}
