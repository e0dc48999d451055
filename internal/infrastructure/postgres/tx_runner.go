package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grupoterra/autorizaciones-api/internal/application/autorizacion"
	"github.com/grupoterra/autorizaciones-api/internal/application/escalamiento"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

// Ensure TxRunner implements autorizacion.TxRunner and escalamiento.TxRunner.
var _ autorizacion.TxRunner = (*TxRunner)(nil)
var _ escalamiento.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Es la sección crítica del registro de decisiones: el flujo se bloquea con
// GetByIDForUpdate y los pasos, el ledger y la bitácora se escriben juntos.
func (r *TxRunner) Run(ctx context.Context, fn func(
	flujoRepo repository.WorkflowRepository,
	pasoRepo repository.StepRepository,
	decisionRepo repository.DecisionRepository,
	bitacoraRepo repository.AuditRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	flujoRepo := NewWorkflowRepository(tx)
	pasoRepo := NewStepRepository(tx)
	decisionRepo := NewDecisionRepository(tx)
	bitacoraRepo := NewAuditRepository(tx)

	if err := fn(flujoRepo, pasoRepo, decisionRepo, bitacoraRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunEscalation inicia una transacción con los repos que usa el escalador al
// tratar un flujo (lock de la fila, eventos y proyección de estado).
func (r *TxRunner) RunEscalation(ctx context.Context, fn func(
	flujoRepo repository.WorkflowRepository,
	escRepo repository.EscalationRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	flujoRepo := NewWorkflowRepository(tx)
	escRepo := NewEscalationRepository(tx)

	if err := fn(flujoRepo, escRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
