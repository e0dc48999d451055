package escalamiento

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
	"github.com/grupoterra/autorizaciones-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store en memoria para el escalador.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu     sync.Mutex
	flujos map[string]*entity.Workflow
	events map[string][]entity.EscalationEvent
	// failOn fuerza un error al tratar ese flujo, para el test de aislamiento
	// de fallos parciales.
	failOn string
}

func newMemStore() *memStore {
	return &memStore{
		flujos: make(map[string]*entity.Workflow),
		events: make(map[string][]entity.EscalationEvent),
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
	if id == r.s.failOn {
		return nil, errors.New("registro corrupto")
	}
	return r.GetByID(ctx, id)
}

func (r memFlujoRepo) UpdateProjection(_ context.Context, wf *entity.Workflow) error {
	c := *wf
	r.s.flujos[wf.ID] = &c
	return nil
}

func (r memFlujoRepo) ListRecent(_ context.Context, limit int) ([]entity.Workflow, error) {
	return nil, nil
}

func (r memFlujoRepo) ListOpen(_ context.Context) ([]entity.Workflow, error) {
	var out []entity.Workflow
	for _, wf := range r.s.flujos {
		if wf.Status.Open() {
			out = append(out, *wf)
		}
	}
	// Orden estable para que las pasadas sean reproducibles en los tests.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memEscRepo struct{ s *memStore }

func (r memEscRepo) Append(_ context.Context, e *entity.EscalationEvent) error {
	r.s.events[e.WorkflowID] = append(r.s.events[e.WorkflowID], *e)
	return nil
}

func (r memEscRepo) ListByWorkflow(_ context.Context, workflowID string) ([]entity.EscalationEvent, error) {
	out := make([]entity.EscalationEvent, len(r.s.events[workflowID]))
	copy(out, r.s.events[workflowID])
	return out, nil
}

func (r memEscRepo) CountByType(_ context.Context) ([]repository.EscalationCount, error) {
	counts := make(map[entity.EscalationType]int64)
	for _, list := range r.s.events {
		for _, e := range list {
			counts[e.Type]++
		}
	}
	var out []repository.EscalationCount
	for tipo, n := range counts {
		out = append(out, repository.EscalationCount{Type: tipo, Count: n})
	}
	return out, nil
}

type memTx struct{ s *memStore }

func (t memTx) RunEscalation(ctx context.Context, fn func(
	repository.WorkflowRepository,
	repository.EscalationRepository,
) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return fn(memFlujoRepo{t.s}, memEscRepo{t.s})
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

var inicio = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func flujoAbierto(id string, slaHours int, createdAt time.Time) *entity.Workflow {
	return &entity.Workflow{
		ID:              id,
		Title:           "Pago subcontratista " + id,
		WorkflowType:    entity.TipoPago,
		Status:          entity.EstadoPendiente,
		EscalationHours: slaHours,
		CurrentApprover: "Gerente Luis",
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func buildScheduler(s *memStore) *SchedulerUseCase {
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return NewSchedulerUseCase(memFlujoRepo{s}, memEscRepo{s}, memTx{s}, 4, log)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// elapsed = H emite exactamente un recordatorio sin cambiar el estado; la
// pasada repetida dentro del mismo bucket no duplica.
func TestScan_RecordatorioEnH(t *testing.T) {
	s := newMemStore()
	s.flujos["wf-1"] = flujoAbierto("wf-1", 24, inicio)
	uc := buildScheduler(s)

	events, err := uc.Scan(context.Background(), inicio.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "recordatorio", events[0].Type)
	assert.Equal(t, entity.EstadoPendiente, s.flujos["wf-1"].Status)

	events, err = uc.Scan(context.Background(), inicio.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Len(t, s.events["wf-1"], 1)
}

// elapsed = 2H emite el escalamiento y fuerza el estado a "escalado".
func TestScan_EscalamientoEn2H(t *testing.T) {
	s := newMemStore()
	s.flujos["wf-1"] = flujoAbierto("wf-1", 24, inicio)
	uc := buildScheduler(s)

	_, err := uc.Scan(context.Background(), inicio.Add(24*time.Hour))
	require.NoError(t, err)

	events, err := uc.Scan(context.Background(), inicio.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "escalamiento", events[0].Type)
	assert.Equal(t, entity.EstadoEscalado, s.flujos["wf-1"].Status)

	// 3H: escalamiento final; el estado ya era escalado.
	events, err = uc.Scan(context.Background(), inicio.Add(72*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "escalamiento_final", events[0].Type)
	assert.Equal(t, entity.EstadoEscalado, s.flujos["wf-1"].Status)

	// Nada más que emitir después del final.
	events, err = uc.Scan(context.Background(), inicio.Add(200*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

// Un flujo que saltó buckets entre pasadas recibe solo el evento del bucket
// actual.
func TestScan_SaltoDeBucket(t *testing.T) {
	s := newMemStore()
	s.flujos["wf-1"] = flujoAbierto("wf-1", 24, inicio)
	uc := buildScheduler(s)

	events, err := uc.Scan(context.Background(), inicio.Add(50*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "escalamiento", events[0].Type)
	assert.Len(t, s.events["wf-1"], 1)
}

// Los flujos cerrados y los que aún no cruzan el umbral no emiten nada.
func TestScan_IgnoraCerradosYJovenes(t *testing.T) {
	s := newMemStore()
	s.flujos["wf-joven"] = flujoAbierto("wf-joven", 24, inicio)
	terminado := flujoAbierto("wf-listo", 24, inicio.Add(-100*time.Hour))
	terminado.Status = entity.EstadoAprobado
	s.flujos["wf-listo"] = terminado
	uc := buildScheduler(s)

	events, err := uc.Scan(context.Background(), inicio.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

// El fallo en un flujo se registra y se salta; el resto de la pasada continúa.
func TestScan_AislaFallosParciales(t *testing.T) {
	s := newMemStore()
	s.flujos["wf-a"] = flujoAbierto("wf-a", 24, inicio)
	s.flujos["wf-b"] = flujoAbierto("wf-b", 24, inicio)
	s.failOn = "wf-a"
	uc := buildScheduler(s)

	events, err := uc.Scan(context.Background(), inicio.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "wf-b", events[0].WorkflowID)
}

// Una cancelación detiene la pasada dejando en firme lo ya emitido.
func TestScan_CancelacionConservaLoEmitido(t *testing.T) {
	s := newMemStore()
	s.flujos["wf-1"] = flujoAbierto("wf-1", 24, inicio)
	uc := buildScheduler(s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	events, err := uc.Scan(ctx, inicio.Add(24*time.Hour))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, events)
	assert.Empty(t, s.events["wf-1"])
}

func TestStats_ConteoPorTipo(t *testing.T) {
	s := newMemStore()
	s.flujos["wf-1"] = flujoAbierto("wf-1", 24, inicio)
	s.flujos["wf-2"] = flujoAbierto("wf-2", 24, inicio)
	uc := buildScheduler(s)

	_, err := uc.Scan(context.Background(), inicio.Add(24*time.Hour)) // 2 recordatorios
	require.NoError(t, err)
	_, err = uc.Scan(context.Background(), inicio.Add(48*time.Hour)) // 2 escalamientos
	require.NoError(t, err)

	stats, err := uc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)

	byType := make(map[string]int64)
	for _, c := range stats.ByType {
		byType[c.Type] = c.Count
	}
	assert.Equal(t, int64(2), byType["recordatorio"])
	assert.Equal(t, int64(2), byType["escalamiento"])
}

// En riesgo: a menos de la ventana del primer umbral, o ya vencido.
func TestAtRisk_VentanaConfigurable(t *testing.T) {
	s := newMemStore()
	s.flujos["wf-cerca"] = flujoAbierto("wf-cerca", 24, inicio)                   // 21h de edad, a 3h del SLA
	s.flujos["wf-lejos"] = flujoAbierto("wf-lejos", 24, inicio.Add(18*time.Hour)) // 3h de edad
	uc := buildScheduler(s)                                                       // ventana de 4h

	atRisk, err := uc.AtRisk(context.Background(), inicio.Add(21*time.Hour))
	require.NoError(t, err)
	require.Len(t, atRisk, 1)
	assert.Equal(t, "wf-cerca", atRisk[0].WorkflowID)
	assert.InDelta(t, 21.0, atRisk[0].ElapsedHours, 0.01)
	assert.Equal(t, 24, atRisk[0].SLAHours)
}
