package api

import (
	"bank-backoffice/internal/common/errs"

	"github.com/gofiber/fiber/v2"
)

// Route is implemented by every feature's Api type so fx can collect
// them into one group and register them against the app.
type Route interface {
	Setup(app *fiber.App)
}

// Error maps a business error kind to a transport status and writes the
// standard error body. Controllers never inspect message text.
func Error(c *fiber.Ctx, err error) error {
	kind := errs.KindOf(err)

	status := fiber.StatusInternalServerError
	switch kind {
	case errs.KindValidation:
		status = fiber.StatusBadRequest
	case errs.KindNotFound:
		status = fiber.StatusNotFound
	case errs.KindConflict:
		status = fiber.StatusConflict
	case errs.KindAuthorization:
		status = fiber.StatusForbidden
	case errs.KindTransient:
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
		"kind":  string(kind),
	})
}
