package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/grupoterra/autorizaciones-api/internal/application/autorizacion"
	"github.com/grupoterra/autorizaciones-api/internal/application/dto"
	"github.com/grupoterra/autorizaciones-api/internal/domain"
)

// WorkflowHandler maneja las peticiones HTTP de flujos de autorización (protegido).
type WorkflowHandler struct {
	workflowUC *autorizacion.WorkflowUseCase
	decisionUC *autorizacion.DecisionUseCase
}

// NewWorkflowHandler construye el handler.
func NewWorkflowHandler(workflowUC *autorizacion.WorkflowUseCase, decisionUC *autorizacion.DecisionUseCase) *WorkflowHandler {
	return &WorkflowHandler{workflowUC: workflowUC, decisionUC: decisionUC}
}

func actorFromCtx(c *fiber.Ctx) autorizacion.Actor {
	return autorizacion.Actor{ID: GetUserID(c), Name: GetUserName(c), Level: GetNivel(c)}
}

// Create godoc
// @Summary      Crear flujo de autorización
// @Description  Resuelve el nivel en la matriz por tipo y monto, construye la cadena
//
//	de firmas y registra la firma de elaboración del solicitante.
//
// @Tags         flujos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWorkflowRequest  true  "title, workflow_type, amount, project"
// @Success      201   {object}  dto.WorkflowResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/flujos [post]
func (h *WorkflowHandler) Create(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	if actor.ID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateWorkflowRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.workflowUC.Create(c.Context(), actor, in)
	if err != nil {
		if errors.Is(err, domain.ErrNoMatchingRule) {
			// Gap de configuración de la matriz: no es culpa del cuerpo de la petición.
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "NO_MATCHING_RULE", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "NO_APPROVER", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID godoc
// @Summary      Consultar flujo
// @Tags         flujos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del flujo"
// @Success      200  {object}  dto.WorkflowResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/flujos/{id} [get]
func (h *WorkflowHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.workflowUC.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if resp == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "flujo no encontrado"})
	}
	return c.JSON(resp)
}

// Decide godoc
// @Summary      Registrar decisión sobre un flujo
// @Description  aprobar/rechazar valida paso actual y jerarquía; revertir elimina la
//
//	decisión propia si ningún paso posterior está firmado.
//
// @Tags         flujos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del flujo"
// @Param        body  body  dto.DecisionRequest  true  "action, comments"
// @Success      200   {object}  dto.DecisionResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/flujos/{id}/decision [post]
func (h *WorkflowHandler) Decide(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	if actor.ID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.DecisionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.decisionUC.Record(c.Context(), actor, c.Params("id"), in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "flujo no encontrado"})
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrCannotReverse) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CANNOT_REVERSE", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TERMINAL_STATE", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}

// ListApprovals godoc
// @Summary      Histórico de decisiones activas del flujo
// @Tags         flujos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del flujo"
// @Success      200  {array}  dto.DecisionResponse
// @Router       /api/flujos/{id}/aprobaciones [get]
func (h *WorkflowHandler) ListApprovals(c *fiber.Ctx) error {
	list, err := h.workflowUC.GetApprovals(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(list), "aprobaciones": list})
}

// GetUserApproval godoc
// @Summary      Decisión activa de un usuario sobre el flujo
// @Tags         flujos
// @Security     Bearer
// @Produce      json
// @Param        id         path  string  true  "ID del flujo"
// @Param        usuarioId  path  string  true  "ID del usuario"
// @Success      200  {object}  dto.DecisionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/flujos/{id}/aprobaciones/{usuarioId} [get]
func (h *WorkflowHandler) GetUserApproval(c *fiber.Ctx) error {
	resp, err := h.workflowUC.GetUserApproval(c.Context(), c.Params("id"), c.Params("usuarioId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if resp == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el usuario no tiene decisión activa"})
	}
	return c.JSON(resp)
}

// ListRecent godoc
// @Summary      Flujos recientes
// @Tags         autorizaciones
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de flujos (default 20, tope 100)"
// @Success      200  {object}  dto.WorkflowListResponse
// @Router       /api/autorizaciones/flujos/recientes [get]
func (h *WorkflowHandler) ListRecent(c *fiber.Ctx) error {
	resp, err := h.workflowUC.ListRecent(c.Context(), c.QueryInt("limit"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}
