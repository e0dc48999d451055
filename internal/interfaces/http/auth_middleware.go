package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/grupoterra/autorizaciones-api/internal/application/dto"
	"github.com/grupoterra/autorizaciones-api/pkg/jwt"
)

// Locals keys para identidad del usuario en Fiber.
const (
	LocalUserID   = "user_id"
	LocalUserName = "user_name"
	LocalNivel    = "nivel"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID, nombre y nivel a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
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
		userID, userName, nivel, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalUserName, userName)
		c.Locals(LocalNivel, nivel)
		return c.Next()
	}
}

// RequireNivel devuelve un middleware que autoriza solo a los niveles indicados.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalNivel).
//
// Comportamiento:
//   - 401 → token sin claim de nivel (token legacy o usuario fuera del directorio).
//   - 403 → nivel presente pero no permitido en la ruta.
func RequireNivel(niveles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		nivel := GetNivel(c)
		if nivel == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_NIVEL",
				Message: "el token no incluye nivel jerárquico",
			})
		}
		for _, n := range niveles {
			if nivel == n {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "nivel '" + nivel + "' sin acceso a esta ruta",
		})
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetUserName devuelve el nombre del usuario del contexto.
func GetUserName(c *fiber.Ctx) string {
	v := c.Locals(LocalUserName)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetNivel devuelve el nivel jerárquico del contexto.
func GetNivel(c *fiber.Ctx) string {
	v := c.Locals(LocalNivel)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
