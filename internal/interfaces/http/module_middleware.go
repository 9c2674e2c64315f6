package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// RequireTenantAccess exige acceso a la empresa seleccionada: lectura de miembro (regla 3)
// para GET/HEAD y administración (regla 2) para el resto de métodos.
// Debe usarse DESPUÉS de AuthMiddleware y TenantMiddleware.
func RequireTenantAccess(checker authz.Checker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		level := authz.LevelCompanyAdmin
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			level = authz.LevelMember
		}
		d, err := checker.Authorize(c.UserContext(), GetUser(c), GetTenant(c), level)
		if err != nil {
			return err
		}
		if !d.Allowed {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: d.Reason})
		}
		return c.Next()
	}
}

// RequireModule devuelve un middleware Fiber que verifica si la empresa seleccionada
// tiene el módulo activo y sin vencer. Usuarios privilegiados pasan siempre.
//
// Comportamiento:
//   - 403 Forbidden → módulo no contratado o vencido, o sin empresa seleccionada.
//   - 500 → fallo de infraestructura al consultar la DB (lo responde el ErrorHandler).
func RequireModule(moduleName string, checker authz.Checker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := checker.RequireModule(c.UserContext(), GetUser(c), GetTenant(c), moduleName)
		if err != nil {
			return err
		}
		if !d.Allowed {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "el módulo '" + moduleName + "' no está activo para esta empresa",
			})
		}
		return c.Next()
	}
}

// requireTenant exige una empresa válida cuando el usuario privilegiado pasa las reglas sin selector.
func requireTenant(c *fiber.Ctx) error {
	if GetCompanyID(c) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_COMPANY", Message: "cabecera " + HeaderCompanyID + " requerida"})
	}
	return c.Next()
}
