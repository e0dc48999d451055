package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/grupoterra/autorizaciones-api/internal/application/autorizacion"
	"github.com/grupoterra/autorizaciones-api/internal/application/escalamiento"
	"github.com/grupoterra/autorizaciones-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WorkflowUC  *autorizacion.WorkflowUseCase
	DecisionUC  *autorizacion.DecisionUseCase
	SchedulerUC *escalamiento.SchedulerUseCase
	MetricsUC   *usecase.MetricsUseCase
	MatrixUC    *usecase.MatrixUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Flujos de autorización (protegido)
	flujos := protected.Group("/flujos")
	workflowHandler := NewWorkflowHandler(deps.WorkflowUC, deps.DecisionUC)
	flujos.Post("/", workflowHandler.Create)
	flujos.Get("/:id", workflowHandler.GetByID)
	flujos.Post("/:id/decision", workflowHandler.Decide)
	flujos.Get("/:id/aprobaciones", workflowHandler.ListApprovals)
	flujos.Get("/:id/aprobaciones/:usuarioId", workflowHandler.GetUserApproval)

	// Dashboard de autorizaciones (protegido)
	autoriz := protected.Group("/autorizaciones")
	metricsHandler := NewMetricsHandler(deps.MetricsUC)
	autoriz.Get("/metricas", metricsHandler.Snapshot)
	autoriz.Get("/flujos/recientes", workflowHandler.ListRecent)

	// Escalador (protegido; la ejecución manual solo para niveles altos)
	esc := protected.Group("/escalamientos")
	escalationHandler := NewEscalationHandler(deps.SchedulerUC)
	esc.Get("/estadisticas", escalationHandler.Stats)
	esc.Get("/en-riesgo", escalationHandler.AtRisk)
	esc.Post("/ejecutar", RequireNivel("director", "ejecutivo"), escalationHandler.Trigger)

	// Matriz de autorizaciones (solo director/ejecutivo)
	matriz := protected.Group("/matriz", RequireNivel("director", "ejecutivo"))
	matrixHandler := NewMatrixHandler(deps.MatrixUC)
	matriz.Get("/", matrixHandler.List)
	matriz.Post("/", matrixHandler.Create)
	matriz.Delete("/:id", matrixHandler.Deactivate)
}
