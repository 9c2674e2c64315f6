package http

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/pkg/jwt"
)

// Locals keys para el usuario autenticado y la empresa seleccionada en Fiber.
const (
	LocalUser   = "user"
	LocalTenant = "tenant"
)

// HeaderCompanyID selector de empresa.
const HeaderCompanyID = "X-Company-ID"

// AuthMiddleware valida el Bearer Token JWT de acceso y carga el usuario en c.Locals.
// Los privilegios se leen de la base en cada petición; un usuario inactivo o eliminado es 401.
func AuthMiddleware(jwtSecret string, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.ParseType(jwtSecret, tokenString, jwt.TokenAccess)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		user, err := users.GetByID(c.UserContext(), claims.UserID)
		if err != nil {
			return err
		}
		if user == nil || !user.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "usuario inexistente o inactivo"})
		}
		c.Locals(LocalUser, user)
		return c.Next()
	}
}

// TenantMiddleware resuelve una sola vez por petición el selector X-Company-ID.
// Sin cabecera no hay empresa seleccionada; un valor inválido queda como Tenant no válido
// y lo deniega el evaluador.
func TenantMiddleware(resolver *authz.TenantResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenant, err := resolver.Resolve(c.UserContext(), c.Get(HeaderCompanyID))
		if err != nil {
			return err
		}
		c.Locals(LocalTenant, tenant)
		return c.Next()
	}
}

// GetUser devuelve el usuario autenticado (después de AuthMiddleware).
func GetUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}

// GetUserID devuelve el id del usuario autenticado.
func GetUserID(c *fiber.Ctx) string {
	if u := GetUser(c); u != nil {
		return u.ID
	}
	return ""
}

// GetTenant devuelve la empresa seleccionada (después de TenantMiddleware).
func GetTenant(c *fiber.Ctx) authz.Tenant {
	t, _ := c.Locals(LocalTenant).(authz.Tenant)
	return t
}

// GetCompanyID devuelve el id de la empresa seleccionada si existe.
func GetCompanyID(c *fiber.Ctx) string {
	if t := GetTenant(c); t.Valid() {
		return t.Company.ID
	}
	return ""
}

// ClientIP primera entrada de X-Forwarded-For si es una IP válida; si no, la dirección remota.
func ClientIP(c *fiber.Ctx) string {
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	return c.IP()
}

// caller arma el contexto de caso de uso de la petición.
func caller(c *fiber.Ctx) usecase.Caller {
	return usecase.Caller{User: GetUser(c), Tenant: GetTenant(c), IP: ClientIP(c)}
}
