package autorizacion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 7 aprobados / 3 rechazados = 70.0%.
func TestApprovalRate_SieteDeDiez(t *testing.T) {
	assert.Equal(t, 70.0, ApprovalRate(7, 3))
}

func TestApprovalRate_Extremos(t *testing.T) {
	assert.Equal(t, 0.0, ApprovalRate(0, 0)) // sin terminales
	assert.Equal(t, 100.0, ApprovalRate(5, 0))
	assert.Equal(t, 0.0, ApprovalRate(0, 8))
	assert.Equal(t, 33.3, ApprovalRate(1, 2)) // redondeo a un decimal
}

func TestAverageApprovalTime(t *testing.T) {
	assert.Equal(t, time.Duration(0), AverageApprovalTime(nil))
	assert.Equal(t, 3*time.Hour, AverageApprovalTime([]time.Duration{2 * time.Hour, 4 * time.Hour}))
}
