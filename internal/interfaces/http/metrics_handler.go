package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/grupoterra/autorizaciones-api/internal/application/dto"
	"github.com/grupoterra/autorizaciones-api/internal/application/usecase"
)

// MetricsHandler expone la foto de métricas del dashboard de autorizaciones.
type MetricsHandler struct {
	uc *usecase.MetricsUseCase
}

// NewMetricsHandler construye el handler.
func NewMetricsHandler(uc *usecase.MetricsUseCase) *MetricsHandler {
	return &MetricsHandler{uc: uc}
}

// Snapshot godoc
// @Summary      Métricas de autorizaciones
// @Description  Totales por estado, tasa de aprobación, tiempo promedio y aprobadores activos.
// @Tags         autorizaciones
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MetricsSnapshotDTO
// @Router       /api/autorizaciones/metricas [get]
func (h *MetricsHandler) Snapshot(c *fiber.Ctx) error {
	resp, err := h.uc.Snapshot(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}
