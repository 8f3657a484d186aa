package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/continu8/backoffice/internal/auth"
	"github.com/continu8/backoffice/internal/service"
	"github.com/continu8/backoffice/internal/validation"
	apperrors "github.com/continu8/backoffice/pkg/util"
)

const defaultPageSize = 20

func actorFrom(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Profile == nil {
		return service.Actor{}, apperrors.NewUnauthorized("not authenticated")
	}
	return service.Actor{ID: principal.ID(), Role: principal.Role()}, nil
}

// bindBody parses the JSON body into req and validates it.
func bindBody(c *fiber.Ctx, v *validation.Validator, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return v.Struct(req)
}

// bindOptionalBody is bindBody for endpoints whose body may be omitted.
func bindOptionalBody(c *fiber.Ctx, v *validation.Validator, req any) error {
	if len(c.Body()) == 0 {
		return v.Struct(req)
	}
	return bindBody(c, v, req)
}

// bindQuery parses query parameters into req and validates it.
func bindQuery(c *fiber.Ctx, v *validation.Validator, req any) error {
	if err := c.QueryParser(req); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	return v.Struct(req)
}

// filterValue maps "" and "all" to no filter.
func filterValue(val string) *string {
	if val == "" || val == "all" {
		return nil
	}
	return &val
}

func page(pageNum, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageNum <= 0 {
		pageNum = 1
	}
	return pageSize, (pageNum - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
