package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/grupoterra/autorizaciones-api/internal/application/dto"
	"github.com/grupoterra/autorizaciones-api/internal/application/usecase"
	"github.com/grupoterra/autorizaciones-api/internal/domain"
)

// MatrixHandler administración de la matriz de autorizaciones (solo director/ejecutivo).
type MatrixHandler struct {
	uc *usecase.MatrixUseCase
}

// NewMatrixHandler construye el handler.
func NewMatrixHandler(uc *usecase.MatrixUseCase) *MatrixHandler {
	return &MatrixHandler{uc: uc}
}

// List godoc
// @Summary      Consultar la matriz de autorizaciones
// @Tags         matriz
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MatrixListResponse
// @Router       /api/matriz [get]
func (h *MatrixHandler) List(c *fiber.Ctx) error {
	resp, err := h.uc.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}

// Create godoc
// @Summary      Agregar regla a la matriz
// @Description  Valida el invariante de partición: los rangos activos del tipo no
//
//	pueden traslaparse ni dejar huecos.
//
// @Tags         matriz
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMatrixRuleRequest  true  "workflow_type, min_amount, max_amount, required_level, requires_sequential, escalation_hours"
// @Success      201   {object}  dto.MatrixRuleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/matriz [post]
func (h *MatrixHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMatrixRuleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Create(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Deactivate godoc
// @Summary      Desactivar regla de la matriz
// @Description  Baja lógica; los flujos en curso conservan su copia de la regla.
// @Tags         matriz
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la regla"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/matriz/{id} [delete]
func (h *MatrixHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "regla no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "regla desactivada"})
}
