package audit

import (
	"strconv"

	common_api "bank-backoffice/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filters := make(map[string]interface{})
	if actorID := c.Query("actor_id"); actorID != "" {
		filters["actor_id"] = actorID
	}
	if action := c.Query("action"); action != "" {
		filters["action"] = action
	}

	entries, err := ctrl.Service.ListLogs(c.UserContext(), filters, page, limit)
	if err != nil {
		return common_api.Error(c, err)
	}

	return c.JSON(entries)
}
