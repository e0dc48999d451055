package autorizacion

import (
	"math"
	"time"
)

// ApprovalRate porcentaje de flujos aprobados sobre los terminales
// (aprobados + rechazados), redondeado a un decimal. Sin terminales: 0.
func ApprovalRate(aprobados, rechazados int64) float64 {
	total := aprobados + rechazados
	if total == 0 {
		return 0
	}
	rate := float64(aprobados) / float64(total) * 100
	return math.Round(rate*10) / 10
}

// AverageApprovalTime promedio de duraciones (updatedAt − createdAt de los
// flujos aprobados). Lista vacía: 0.
func AverageApprovalTime(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	return sum / time.Duration(len(durations))
}
