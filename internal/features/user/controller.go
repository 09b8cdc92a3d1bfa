package user

import (
	"strconv"

	common_api "bank-backoffice/internal/common/api"
	"bank-backoffice/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{Service: service}
}

func (ctrl *UserController) Create(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	user, err := ctrl.Service.Create(c.UserContext(), req, actor)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (ctrl *UserController) GetByID(c *fiber.Ctx) error {
	user, err := ctrl.Service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(user)
}

func (ctrl *UserController) List(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	users, err := ctrl.Service.List(c.UserContext(), c.Query("role"), c.Query("status"), page, limit)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(users)
}

func (ctrl *UserController) Update(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	user, err := ctrl.Service.Update(c.UserContext(), c.Params("id"), req, actor)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(user)
}

func (ctrl *UserController) Deactivate(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := ctrl.Service.Deactivate(c.UserContext(), c.Params("id"), actor); err != nil {
		return common_api.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
