package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/grupoterra/autorizaciones-api/internal/application/autorizacion"
	"github.com/grupoterra/autorizaciones-api/internal/application/escalamiento"
	"github.com/grupoterra/autorizaciones-api/internal/application/usecase"
	"github.com/grupoterra/autorizaciones-api/internal/infrastructure/postgres"
	httpRouter "github.com/grupoterra/autorizaciones-api/internal/interfaces/http"
	"github.com/grupoterra/autorizaciones-api/pkg/config"
	"github.com/grupoterra/autorizaciones-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	matrixRepo := postgres.NewMatrixRepository(pool)
	approverRepo := postgres.NewApproverRepository(pool)
	flujoRepo := postgres.NewWorkflowRepository(pool)
	pasoRepo := postgres.NewStepRepository(pool)
	decisionRepo := postgres.NewDecisionRepository(pool)
	escRepo := postgres.NewEscalationRepository(pool)
	metricsRepo := postgres.NewMetricsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	workflowUC := autorizacion.NewWorkflowUseCase(matrixRepo, approverRepo, flujoRepo, pasoRepo, decisionRepo, txRunner)
	decisionUC := autorizacion.NewDecisionUseCase(approverRepo, txRunner, log)
	schedulerUC := escalamiento.NewSchedulerUseCase(flujoRepo, escRepo, txRunner, cfg.Escalamiento.RiskWindowHours, log)
	metricsUC := usecase.NewMetricsUseCase(metricsRepo, cfg.Escalamiento.MetricsDays)
	matrixUC := usecase.NewMatrixUseCase(matrixRepo)

	// Escalador periódico: compara la edad de los flujos abiertos contra su SLA.
	schedCtx, stopScheduler := context.WithCancel(ctx)
	go schedulerUC.Run(schedCtx, time.Duration(cfg.Escalamiento.IntervalMinutes)*time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Autorizaciones API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		WorkflowUC:  workflowUC,
		DecisionUC:  decisionUC,
		SchedulerUC: schedulerUC,
		MetricsUC:   metricsUC,
		MatrixUC:    matrixUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
