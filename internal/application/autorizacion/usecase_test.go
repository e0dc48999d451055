package autorizacion

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grupoterra/autorizaciones-api/internal/application/dto"
	"github.com/grupoterra/autorizaciones-api/internal/domain"
	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
	"github.com/grupoterra/autorizaciones-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store en memoria: implementa los puertos de persistencia para los tests de
// casos de uso, con la misma disciplina (decisión activa única por usuario).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	flujos    map[string]*entity.Workflow
	pasos     map[string][]entity.ApprovalStep
	decisions map[string][]entity.Decision
	bitacora  []entity.AuditEntry
	rules     []entity.MatrixRule
	approvers map[string]entity.Approver
}

func newMemStore() *memStore {
	return &memStore{
		flujos:    make(map[string]*entity.Workflow),
		pasos:     make(map[string][]entity.ApprovalStep),
		decisions: make(map[string][]entity.Decision),
		approvers: make(map[string]entity.Approver),
	}
}

type memFlujoRepo struct{ s *memStore }

func (r memFlujoRepo) Create(_ context.Context, wf *entity.Workflow) error {
	c := *wf
	r.s.flujos[wf.ID] = &c
	return nil
}

func (r memFlujoRepo) GetByID(_ context.Context, id string) (*entity.Workflow, error) {
	wf, ok := r.s.flujos[id]
	if !ok {
		return nil, nil
	}
	c := *wf
	return &c, nil
}

func (r memFlujoRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Workflow, error) {
	return r.GetByID(ctx, id)
}

func (r memFlujoRepo) UpdateProjection(_ context.Context, wf *entity.Workflow) error {
	c := *wf
	r.s.flujos[wf.ID] = &c
	return nil
}

func (r memFlujoRepo) ListRecent(_ context.Context, limit int) ([]entity.Workflow, error) {
	var out []entity.Workflow
	for _, wf := range r.s.flujos {
		out = append(out, *wf)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memFlujoRepo) ListOpen(_ context.Context) ([]entity.Workflow, error) {
	var out []entity.Workflow
	for _, wf := range r.s.flujos {
		if wf.Status.Open() {
			out = append(out, *wf)
		}
	}
	return out, nil
}

type memPasoRepo struct{ s *memStore }

func (r memPasoRepo) CreateBatch(_ context.Context, steps []entity.ApprovalStep) error {
	for _, s := range steps {
		r.s.pasos[s.WorkflowID] = append(r.s.pasos[s.WorkflowID], s)
	}
	return nil
}

func (r memPasoRepo) ListByWorkflow(_ context.Context, workflowID string) ([]entity.ApprovalStep, error) {
	out := make([]entity.ApprovalStep, len(r.s.pasos[workflowID]))
	copy(out, r.s.pasos[workflowID])
	return out, nil
}

func (r memPasoRepo) Update(_ context.Context, step *entity.ApprovalStep) error {
	list := r.s.pasos[step.WorkflowID]
	for i := range list {
		if list[i].StepIndex == step.StepIndex {
			list[i] = *step
		}
	}
	return nil
}

type memDecisionRepo struct{ s *memStore }

func (r memDecisionRepo) Upsert(_ context.Context, d *entity.Decision) error {
	list := r.s.decisions[d.WorkflowID]
	for i := range list {
		if list[i].UserID == d.UserID {
			list[i] = *d
			return nil
		}
	}
	r.s.decisions[d.WorkflowID] = append(list, *d)
	return nil
}

func (r memDecisionRepo) Delete(_ context.Context, workflowID, userID string) error {
	list := r.s.decisions[workflowID]
	out := list[:0]
	for _, d := range list {
		if d.UserID != userID {
			out = append(out, d)
		}
	}
	r.s.decisions[workflowID] = out
	return nil
}

func (r memDecisionRepo) ListByWorkflow(_ context.Context, workflowID string) ([]entity.Decision, error) {
	out := make([]entity.Decision, len(r.s.decisions[workflowID]))
	copy(out, r.s.decisions[workflowID])
	return out, nil
}

func (r memDecisionRepo) GetByUser(_ context.Context, workflowID, userID string) (*entity.Decision, error) {
	for _, d := range r.s.decisions[workflowID] {
		if d.UserID == userID {
			c := d
			return &c, nil
		}
	}
	return nil, nil
}

type memAuditRepo struct{ s *memStore }

func (r memAuditRepo) Append(_ context.Context, e *entity.AuditEntry) error {
	r.s.bitacora = append(r.s.bitacora, *e)
	return nil
}

func (r memAuditRepo) ListByWorkflow(_ context.Context, workflowID string) ([]entity.AuditEntry, error) {
	var out []entity.AuditEntry
	for _, e := range r.s.bitacora {
		if e.WorkflowID == workflowID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memMatrixRepo struct{ s *memStore }

func (r memMatrixRepo) Create(_ context.Context, rule *entity.MatrixRule) error {
	r.s.rules = append(r.s.rules, *rule)
	return nil
}

func (r memMatrixRepo) GetByID(_ context.Context, id string) (*entity.MatrixRule, error) {
	for _, rule := range r.s.rules {
		if rule.ID == id {
			c := rule
			return &c, nil
		}
	}
	return nil, nil
}

func (r memMatrixRepo) List(_ context.Context) ([]entity.MatrixRule, error) {
	out := make([]entity.MatrixRule, len(r.s.rules))
	copy(out, r.s.rules)
	return out, nil
}

func (r memMatrixRepo) Deactivate(_ context.Context, id string) error {
	for i := range r.s.rules {
		if r.s.rules[i].ID == id {
			r.s.rules[i].IsActive = false
		}
	}
	return nil
}

type memApproverRepo struct{ s *memStore }

func (r memApproverRepo) Create(_ context.Context, a *entity.Approver) error {
	r.s.approvers[a.ID] = *a
	return nil
}

func (r memApproverRepo) GetByID(_ context.Context, id string) (*entity.Approver, error) {
	a, ok := r.s.approvers[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r memApproverRepo) ListActive(_ context.Context) ([]entity.Approver, error) {
	ids := make([]string, 0, len(r.s.approvers))
	for id := range r.s.approvers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []entity.Approver
	for _, id := range ids {
		if a := r.s.approvers[id]; a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

// memTx serializa los callbacks con un mutex, emulando la sección crítica por
// flujo del TxRunner real.
type memTx struct{ s *memStore }

func (t memTx) Run(ctx context.Context, fn func(
	repository.WorkflowRepository,
	repository.StepRepository,
	repository.DecisionRepository,
	repository.AuditRepository,
) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return fn(memFlujoRepo{t.s}, memPasoRepo{t.s}, memDecisionRepo{t.s}, memAuditRepo{t.s})
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures parametrizados: matriz y jerarquía de prueba.
// ──────────────────────────────────────────────────────────────────────────────

func montoPtr(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func fixtureStore() *memStore {
	s := newMemStore()
	s.rules = []entity.MatrixRule{
		{ID: "pago-1", WorkflowType: entity.TipoPago, MinAmount: decimal.Zero, MaxAmount: montoPtr(25000),
			RequiredLevel: entity.NivelSupervisor, RequiresSequential: true, EscalationHours: 12, IsActive: true},
		{ID: "pago-2", WorkflowType: entity.TipoPago, MinAmount: decimal.NewFromInt(25001), MaxAmount: montoPtr(100000),
			RequiredLevel: entity.NivelGerente, RequiresSequential: false, EscalationHours: 24, IsActive: true},
		{ID: "pago-3", WorkflowType: entity.TipoPago, MinAmount: decimal.NewFromInt(100001), MaxAmount: nil,
			RequiredLevel: entity.NivelDirector, RequiresSequential: true, EscalationHours: 48, IsActive: true},
	}
	for _, a := range []entity.Approver{
		{ID: "u-res", Name: "Residente Obra", Level: entity.NivelSupervisor, IsActive: true},
		{ID: "u-sup", Name: "Supervisora Ana", Level: entity.NivelSupervisor, IsActive: true},
		{ID: "u-ger", Name: "Gerente Luis", Level: entity.NivelGerente, IsActive: true},
		{ID: "u-dir", Name: "Directora Eva", Level: entity.NivelDirector, IsActive: true},
	} {
		s.approvers[a.ID] = a
	}
	return s
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func buildUseCases(s *memStore) (*WorkflowUseCase, *DecisionUseCase) {
	wfUC := NewWorkflowUseCase(memMatrixRepo{s}, memApproverRepo{s}, memFlujoRepo{s}, memPasoRepo{s}, memDecisionRepo{s}, memTx{s})
	decUC := NewDecisionUseCase(memApproverRepo{s}, memTx{s}, testLogger())
	return wfUC, decUC
}

func crearFlujo(t *testing.T, uc *WorkflowUseCase, monto int64) *dto.WorkflowResponse {
	t.Helper()
	wf, err := uc.Create(context.Background(), Actor{ID: "u-res", Name: "Residente Obra"}, dto.CreateWorkflowRequest{
		Title:        "Pago subcontratista cimentación",
		WorkflowType: "pago",
		Amount:       decimal.NewFromInt(monto),
		Project:      "Torre Mirador",
	})
	require.NoError(t, err)
	return wf
}

func decidir(t *testing.T, uc *DecisionUseCase, wfID, userID, accion string) (*dto.DecisionResultDTO, error) {
	t.Helper()
	return uc.Record(context.Background(), Actor{ID: userID}, wfID, dto.DecisionRequest{Action: accion})
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación de flujos
// ──────────────────────────────────────────────────────────────────────────────

// Un pago de 30.000 empareja el nivel gerente: cadena de 3 pasos
// (elabora + supervisor + gerente), modo paralelo, SLA 24h. El paso de
// elaboración queda firmado por el solicitante al crear.
func TestCreate_PagoNivelGerente(t *testing.T) {
	wfUC, _ := buildUseCases(fixtureStore())
	wf := crearFlujo(t, wfUC, 30000)

	assert.Equal(t, "pendiente", wf.Status)
	assert.Equal(t, "gerente", wf.RequiredLevel)
	assert.False(t, wf.RequiresSequential)
	assert.Equal(t, 24, wf.EscalationHours)
	require.Len(t, wf.Steps, 3)
	assert.Equal(t, "firmado", wf.Steps[0].Status)
	assert.Equal(t, 1, wf.CurrentStep)
	assert.Equal(t, "Supervisora Ana", wf.CurrentApprover)
}

// Monto fuera de toda regla activa: gap de configuración.
func TestCreate_SinReglaAplicable(t *testing.T) {
	s := fixtureStore()
	s.rules = s.rules[:1] // solo el nivel supervisor queda activo
	wfUC, _ := buildUseCases(s)

	_, err := wfUC.Create(context.Background(), Actor{ID: "u-res"}, dto.CreateWorkflowRequest{
		Title: "Pago grande", WorkflowType: "pago", Amount: decimal.NewFromInt(500000),
	})
	assert.ErrorIs(t, err, domain.ErrNoMatchingRule)
}

func TestCreate_TipoInvalido(t *testing.T) {
	wfUC, _ := buildUseCases(fixtureStore())
	_, err := wfUC.Create(context.Background(), Actor{ID: "u-res"}, dto.CreateWorkflowRequest{
		Title: "x", WorkflowType: "prestamo", Amount: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Sin aprobador activo para un nivel de la cadena, la creación falla: es un
// gap del directorio, no del solicitante.
func TestCreate_SinAprobadorDeNivel(t *testing.T) {
	s := fixtureStore()
	delete(s.approvers, "u-ger")
	wfUC, _ := buildUseCases(s)

	_, err := wfUC.Create(context.Background(), Actor{ID: "u-res"}, dto.CreateWorkflowRequest{
		Title: "Pago", WorkflowType: "pago", Amount: decimal.NewFromInt(30000),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro de decisiones
// ──────────────────────────────────────────────────────────────────────────────

// Cadena secuencial de 4 pasos (nivel director): las firmas en orden aprueban
// el flujo; el paso actual avanza con cada firma.
func TestRecord_SecuencialAprobacionCompleta(t *testing.T) {
	wfUC, decUC := buildUseCases(fixtureStore())
	wf := crearFlujo(t, wfUC, 150000)
	require.Len(t, wf.Steps, 4)
	require.True(t, wf.RequiresSequential)

	res, err := decidir(t, decUC, wf.ID, "u-sup", "aprobar")
	require.NoError(t, err)
	assert.Equal(t, "pendiente", res.Status)
	assert.Equal(t, 2, res.CurrentStep)

	res, err = decidir(t, decUC, wf.ID, "u-ger", "aprobar")
	require.NoError(t, err)
	assert.Equal(t, 3, res.CurrentStep)

	res, err = decidir(t, decUC, wf.ID, "u-dir", "aprobar")
	require.NoError(t, err)
	assert.Equal(t, "aprobado", res.Status)
	assert.Equal(t, -1, res.CurrentStep)
}

// En secuencial, un supervisor no puede firmar cuando el paso actual exige un
// rango superior al suyo.
func TestRecord_SecuencialRespetaElOrden(t *testing.T) {
	wfUC, decUC := buildUseCases(fixtureStore())
	wf := crearFlujo(t, wfUC, 150000)

	_, err := decidir(t, decUC, wf.ID, "u-sup", "aprobar")
	require.NoError(t, err)

	// El paso actual es de nivel gerente; la supervisora ya firmó el suyo.
	_, err = decidir(t, decUC, wf.ID, "u-sup", "aprobar")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// Un rechazo en cualquier punto corta el flujo a rechazado y bloquea nuevas
// decisiones.
func TestRecord_RechazoCortaYBloquea(t *testing.T) {
	wfUC, decUC := buildUseCases(fixtureStore())
	wf := crearFlujo(t, wfUC, 30000) // paralelo

	res, err := decidir(t, decUC, wf.ID, "u-ger", "rechazar")
	require.NoError(t, err)
	assert.Equal(t, "rechazado", res.Status)

	_, err = decidir(t, decUC, wf.ID, "u-sup", "aprobar")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// Aprobar y revertir sin firma posterior regresa el flujo a su paso previo.
func TestRecord_ReversionSinFirmaPosterior(t *testing.T) {
	wfUC, decUC := buildUseCases(fixtureStore())
	wf := crearFlujo(t, wfUC, 150000)

	_, err := decidir(t, decUC, wf.ID, "u-sup", "aprobar")
	require.NoError(t, err)

	res, err := decidir(t, decUC, wf.ID, "u-sup", "revertir")
	require.NoError(t, err)
	assert.Equal(t, "pendiente", res.Status)
	assert.Equal(t, 1, res.CurrentStep)
	assert.Equal(t, "Supervisora Ana", res.CurrentApprover)

	// La decisión activa desapareció del ledger.
	d, err := wfUC.GetUserApproval(context.Background(), wf.ID, "u-sup")
	require.NoError(t, err)
	assert.Nil(t, d)
}

// Con una firma posterior la reversión falla y no cambia nada.
func TestRecord_ReversionConFirmaPosteriorFalla(t *testing.T) {
	wfUC, decUC := buildUseCases(fixtureStore())
	wf := crearFlujo(t, wfUC, 150000)

	_, err := decidir(t, decUC, wf.ID, "u-sup", "aprobar")
	require.NoError(t, err)
	_, err = decidir(t, decUC, wf.ID, "u-ger", "aprobar")
	require.NoError(t, err)

	_, err = decidir(t, decUC, wf.ID, "u-sup", "revertir")
	assert.ErrorIs(t, err, domain.ErrCannotReverse)

	got, err := wfUC.GetByID(context.Background(), wf.ID)
	require.NoError(t, err)
	assert.Equal(t, "pendiente", got.Status)
	assert.Equal(t, 3, got.CurrentStep) // sin cambios
}

// Revertir la última firma de un flujo aprobado lo reabre.
func TestRecord_ReversionReabreFlujoAprobado(t *testing.T) {
	wfUC, decUC := buildUseCases(fixtureStore())
	wf := crearFlujo(t, wfUC, 150000)

	for _, u := range []string{"u-sup", "u-ger", "u-dir"} {
		_, err := decidir(t, decUC, wf.ID, u, "aprobar")
		require.NoError(t, err)
	}

	res, err := decidir(t, decUC, wf.ID, "u-dir", "revertir")
	require.NoError(t, err)
	assert.Equal(t, "pendiente", res.Status)
	assert.Equal(t, 3, res.CurrentStep)
	assert.Equal(t, "Directora Eva", res.CurrentApprover)
}

func TestRecord_ReversionSinDecisionPropia(t *testing.T) {
	wfUC, decUC := buildUseCases(fixtureStore())
	wf := crearFlujo(t, wfUC, 30000)

	_, err := decidir(t, decUC, wf.ID, "u-ger", "revertir")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecord_AccionDesconocida(t *testing.T) {
	wfUC, decUC := buildUseCases(fixtureStore())
	wf := crearFlujo(t, wfUC, 30000)

	_, err := decidir(t, decUC, wf.ID, "u-ger", "delegar")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecord_FlujoInexistente(t *testing.T) {
	_, decUC := buildUseCases(fixtureStore())
	_, err := decidir(t, decUC, "no-existe", "u-ger", "aprobar")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// La bitácora conserva cada evento crudo aunque el ledger solo guarde la
// decisión activa.
func TestRecord_BitacoraConservaEventosCrudos(t *testing.T) {
	s := fixtureStore()
	wfUC, decUC := buildUseCases(s)
	wf := crearFlujo(t, wfUC, 150000)

	_, err := decidir(t, decUC, wf.ID, "u-sup", "aprobar")
	require.NoError(t, err)
	_, err = decidir(t, decUC, wf.ID, "u-sup", "revertir")
	require.NoError(t, err)
	_, err = decidir(t, decUC, wf.ID, "u-sup", "aprobar")
	require.NoError(t, err)

	entries, err := memAuditRepo{s}.ListByWorkflow(context.Background(), wf.ID)
	require.NoError(t, err)
	// elaboración + aprobar + revertir + aprobar
	assert.Len(t, entries, 4)

	// El ledger solo tiene las decisiones activas (residente + supervisora).
	decisions, err := wfUC.GetApprovals(context.Background(), wf.ID)
	require.NoError(t, err)
	assert.Len(t, decisions, 2)
}

// ApprovalsSeq es re-iterable: dos recorridos ven la misma secuencia.
func TestApprovalsSeq_Reiterable(t *testing.T) {
	wfUC, decUC := buildUseCases(fixtureStore())
	wf := crearFlujo(t, wfUC, 30000)
	_, err := decidir(t, decUC, wf.ID, "u-ger", "aprobar")
	require.NoError(t, err)

	seq, err := wfUC.ApprovalsSeq(context.Background(), wf.ID)
	require.NoError(t, err)

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	assert.Equal(t, 2, count())
	assert.Equal(t, 2, count())
}
