package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/grupoterra/autorizaciones-api/internal/application/dto"
	"github.com/grupoterra/autorizaciones-api/internal/application/escalamiento"
)

// EscalationHandler expone el escalador: estadísticas, en-riesgo y ejecución manual.
type EscalationHandler struct {
	uc *escalamiento.SchedulerUseCase
}

// NewEscalationHandler construye el handler.
func NewEscalationHandler(uc *escalamiento.SchedulerUseCase) *EscalationHandler {
	return &EscalationHandler{uc: uc}
}

// Stats godoc
// @Summary      Estadísticas de escalamiento
// @Tags         escalamientos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.EscalationStatsDTO
// @Router       /api/escalamientos/estadisticas [get]
func (h *EscalationHandler) Stats(c *fiber.Ctx) error {
	resp, err := h.uc.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}

// AtRisk godoc
// @Summary      Flujos en riesgo de escalamiento
// @Description  Flujos abiertos dentro de la ventana de anticipación de su SLA o ya vencidos.
// @Tags         escalamientos
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.WorkflowAtRiskDTO
// @Router       /api/escalamientos/en-riesgo [get]
func (h *EscalationHandler) AtRisk(c *fiber.Ctx) error {
	list, err := h.uc.AtRisk(c.Context(), time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(list), "flujos": list})
}

// Trigger godoc
// @Summary      Ejecutar pasada de escalamiento
// @Description  Invocación manual equivalente a un tick del escalador periódico.
// @Tags         escalamientos
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.EscalationEventDTO
// @Router       /api/escalamientos/ejecutar [post]
func (h *EscalationHandler) Trigger(c *fiber.Ctx) error {
	events, err := h.uc.Trigger(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"emitidos": len(events), "eventos": events})
}
