package approval

import (
	"time"

	common_api "bank-backoffice/internal/common/api"
	"bank-backoffice/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DecisionRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Decision   string `json:"decision"`
	Comments   string `json:"comments"`
}

type ChangeDecisionRequest struct {
	Decision string `json:"decision"`
}

type ApprovalController struct {
	Service ApprovalService
}

func NewApprovalController(service ApprovalService) *ApprovalController {
	return &ApprovalController{Service: service}
}

func (ctrl *ApprovalController) Create(c *fiber.Ctx) error {
	var req CreateApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	approval, err := ctrl.Service.Create(c.UserContext(), req, actor)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(approval)
}

func (ctrl *ApprovalController) GetByID(c *fiber.Ctx) error {
	approval, err := ctrl.Service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(approval)
}

func (ctrl *ApprovalController) GetAll(c *fiber.Ctx) error {
	filter := ListFilter{
		TransactionID: c.Query("transaction_id"),
		ReviewerID:    c.Query("reviewer_id"),
		Decision:      c.Query("decision"),
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

	approvals, err := ctrl.Service.GetAll(c.UserContext(), filter)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(approvals)
}

// SubmitDecision takes the reviewer from the request body but the
// service verifies it against the authenticated caller: the token, not
// the payload, decides who is reviewing.
func (ctrl *ApprovalController) SubmitDecision(c *fiber.Ctx) error {
	var req DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if req.ReviewerID == "" {
		req.ReviewerID = actor.ID
	}

	approval, err := ctrl.Service.SubmitDecision(c.UserContext(), c.Params("id"), req.ReviewerID, req.Decision, req.Comments, actor)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(approval)
}

func (ctrl *ApprovalController) ChangeDecision(c *fiber.Ctx) error {
	var req ChangeDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	approval, err := ctrl.Service.ChangeDecision(c.UserContext(), c.Params("id"), req.Decision, actor)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(approval)
}

func (ctrl *ApprovalController) Update(c *fiber.Ctx) error {
	var req UpdateApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	approval, err := ctrl.Service.Update(c.UserContext(), c.Params("id"), req, actor)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(approval)
}

func (ctrl *ApprovalController) Delete(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := ctrl.Service.Delete(c.UserContext(), c.Params("id"), actor); err != nil {
		return common_api.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
