package account

import (
	"strconv"

	common_api "bank-backoffice/internal/common/api"
	"bank-backoffice/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AccountController struct {
	Service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{Service: service}
}

func (ctrl *AccountController) Create(c *fiber.Ctx) error {
	var req CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	account, err := ctrl.Service.Create(c.UserContext(), req, actor)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

func (ctrl *AccountController) GetByID(c *fiber.Ctx) error {
	account, err := ctrl.Service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(account)
}

func (ctrl *AccountController) List(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	accounts, err := ctrl.Service.List(c.UserContext(), c.Query("branch"), c.Query("status"), page, limit)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(accounts)
}

func (ctrl *AccountController) Update(c *fiber.Ctx) error {
	var req UpdateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	account, err := ctrl.Service.Update(c.UserContext(), c.Params("id"), req, actor)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(account)
}

func (ctrl *AccountController) Close(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := ctrl.Service.Close(c.UserContext(), c.Params("id"), actor); err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account closed"})
}
