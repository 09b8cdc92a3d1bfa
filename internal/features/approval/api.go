package approval

import (
	"bank-backoffice/internal/common/models"
	"bank-backoffice/internal/config"
	"bank-backoffice/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ApprovalApi struct {
	Controller *ApprovalController
	Config     *config.Config
}

func NewApprovalApi(controller *ApprovalController, config *config.Config) *ApprovalApi {
	return &ApprovalApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *ApprovalApi) Setup(app *fiber.App) {
	// Approvals are a Manager-only surface.
	group := app.Group("/api/approvals", middleware.AuthMiddleware(api.Config.SkipAuth),
		middleware.RequireRole(models.RoleManager))

	group.Get("/", api.Controller.GetAll)
	group.Post("/", api.Controller.Create)
	group.Get("/:id", api.Controller.GetByID)
	group.Post("/:id/decision", api.Controller.SubmitDecision)
	group.Patch("/:id/decision", api.Controller.ChangeDecision)
	group.Put("/:id", api.Controller.Update)
	group.Delete("/:id", api.Controller.Delete)
}
