package transaction

import (
	"time"

	common_api "bank-backoffice/internal/common/api"
	"bank-backoffice/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type TransactionController struct {
	Service TransactionService
}

func NewTransactionController(service TransactionService) *TransactionController {
	return &TransactionController{Service: service}
}

func (ctrl *TransactionController) Create(c *fiber.Ctx) error {
	var req CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	txn, err := ctrl.Service.Create(c.UserContext(), req, actor)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

func (ctrl *TransactionController) GetByID(c *fiber.Ctx) error {
	txn, err := ctrl.Service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(txn)
}

func (ctrl *TransactionController) List(c *fiber.Ctx) error {
	filter := ListFilter{
		AccountID: c.Query("account_id"),
		Type:      c.Query("type"),
		Status:    c.Query("status"),
	}
	if raw := c.Query("date_from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.DateFrom = &t
		}
	}
	if raw := c.Query("date_to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.DateTo = &t
		}
	}

	txns, err := ctrl.Service.List(c.UserContext(), filter)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(txns)
}

func (ctrl *TransactionController) ChangeStatus(c *fiber.Ctx) error {
	var req ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	txn, err := ctrl.Service.ChangeStatus(c.UserContext(), c.Params("id"), req.Status, actor)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(txn)
}

func (ctrl *TransactionController) Delete(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := ctrl.Service.Delete(c.UserContext(), c.Params("id"), actor); err != nil {
		return common_api.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
