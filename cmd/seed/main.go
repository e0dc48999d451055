// seed carga la matriz de autorizaciones por defecto y un directorio inicial de
// aprobadores. Idempotente a nivel de corrida: si la matriz ya tiene reglas no
// inserta nada.
//
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grupoterra/autorizaciones-api/internal/domain"
	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/infrastructure/postgres"
	"github.com/grupoterra/autorizaciones-api/pkg/config"
)

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func amountPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

type tier struct {
	min        decimal.Decimal
	max        *decimal.Decimal
	nivel      entity.ApproverLevel
	sequential bool
	slaHours   int
}

// defaultMatrix niveles por defecto de cada tipo de flujo. Los rangos de cada
// tipo particionan [0, ∞) sin traslape.
func defaultMatrix() map[entity.WorkflowType][]tier {
	return map[entity.WorkflowType][]tier{
		entity.TipoPago: {
			{amount(0), amountPtr(25000), entity.NivelSupervisor, true, 12},
			{amount(25001), amountPtr(100000), entity.NivelGerente, false, 24},
			{amount(100001), nil, entity.NivelDirector, true, 48},
		},
		entity.TipoContratacion: {
			{amount(0), amountPtr(50000), entity.NivelGerente, true, 24},
			{amount(50001), nil, entity.NivelDirector, true, 48},
		},
		entity.TipoOrdenCambio: {
			{amount(0), amountPtr(10000), entity.NivelSupervisor, true, 12},
			{amount(10001), amountPtr(50000), entity.NivelGerente, true, 24},
			{amount(50001), nil, entity.NivelDirector, true, 48},
		},
		entity.TipoLiberacionCredito: {
			{amount(0), amountPtr(100000), entity.NivelDirector, true, 48},
			{amount(100001), nil, entity.NivelEjecutivo, true, 72},
		},
		entity.TipoCapitalCall: {
			{amount(0), nil, entity.NivelEjecutivo, true, 72},
		},
	}
}

func defaultApprovers() []entity.Approver {
	return []entity.Approver{
		{ID: "sup-001", Name: "Ana Torres", Level: entity.NivelSupervisor, IsActive: true},
		{ID: "sup-002", Name: "Carlos Mejía", Level: entity.NivelSupervisor, IsActive: true},
		{ID: "ger-001", Name: "Luis Ramírez", Level: entity.NivelGerente, IsActive: true},
		{ID: "dir-001", Name: "Eva Salazar", Level: entity.NivelDirector, IsActive: true},
		{ID: "eje-001", Name: "Mario Terra", Level: entity.NivelEjecutivo, IsActive: true},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	matrixRepo := postgres.NewMatrixRepository(pool)
	approverRepo := postgres.NewApproverRepository(pool)

	existing, err := matrixRepo.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leer matriz: %v\n", err)
		os.Exit(1)
	}
	if len(existing) > 0 {
		fmt.Printf("la matriz ya tiene %d reglas, nada que hacer\n", len(existing))
		return
	}

	now := time.Now()
	var rules int
	for _, tipo := range entity.WorkflowTypes() {
		for _, t := range defaultMatrix()[tipo] {
			rule := entity.MatrixRule{
				ID:                 uuid.New().String(),
				WorkflowType:       tipo,
				MinAmount:          t.min,
				MaxAmount:          t.max,
				RequiredLevel:      t.nivel,
				RequiresSequential: t.sequential,
				EscalationHours:    t.slaHours,
				IsActive:           true,
				CreatedAt:          now,
				UpdatedAt:          now,
			}
			if err := matrixRepo.Create(ctx, &rule); err != nil {
				fmt.Fprintf(os.Stderr, "insertar regla %s/%s: %v\n", tipo, t.nivel, err)
				os.Exit(1)
			}
			rules++
		}
	}

	var approvers int
	for _, a := range defaultApprovers() {
		a.CreatedAt = now
		a.UpdatedAt = now
		if err := approverRepo.Create(ctx, &a); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			fmt.Fprintf(os.Stderr, "insertar aprobador %s: %v\n", a.ID, err)
			os.Exit(1)
		}
		approvers++
	}

	fmt.Printf("seed completado: %d reglas, %d aprobadores\n", rules, approvers)
}
