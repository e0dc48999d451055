package autorizacion

import (
	"time"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
)

// Bucket nivel de escalamiento alcanzado por el tiempo transcurrido contra el
// SLA de la regla (H horas): 0 (<H), 1 (>=H), 2 (>=2H), 3 (>=3H).
//
// El transcurrido se mide siempre desde la creación del flujo, nunca desde el
// último evento: el escalador re-notifica por edad absoluta.
func Bucket(elapsed time.Duration, slaHours int) int {
	if slaHours <= 0 {
		return 0
	}
	h := time.Duration(slaHours) * time.Hour
	switch {
	case elapsed >= 3*h:
		return 3
	case elapsed >= 2*h:
		return 2
	case elapsed >= h:
		return 1
	}
	return 0
}

// TypeForBucket evento correspondiente a un bucket (1..3).
func TypeForBucket(b int) (entity.EscalationType, bool) {
	switch b {
	case 1:
		return entity.EscalamientoRecordatorio, true
	case 2:
		return entity.EscalamientoEscalamiento, true
	case 3:
		return entity.EscalamientoFinal, true
	}
	return "", false
}

// NextEvent decide el evento a emitir para un flujo abierto: a lo sumo uno por
// pasada, y solo si el bucket actual supera el rango máximo ya emitido. Pasadas
// repetidas dentro del mismo bucket no duplican eventos, y un recordatorio
// nunca se re-emite después de un escalamiento.
//
// Si el flujo saltó buckets entre pasadas (p. ej. de 0 directo a 2H) se emite
// únicamente el evento del bucket actual, no los intermedios.
func NextEvent(elapsed time.Duration, slaHours int, emitted []entity.EscalationEvent) (entity.EscalationType, bool) {
	bucket := Bucket(elapsed, slaHours)
	if bucket == 0 {
		return "", false
	}
	maxRank := 0
	for _, e := range emitted {
		if r := e.Type.Rank(); r > maxRank {
			maxRank = r
		}
	}
	if bucket <= maxRank {
		return "", false
	}
	return TypeForBucket(bucket)
}

// AtRisk indica si un flujo abierto está dentro de la ventana de riesgo: a
// menos de `window` de cruzar su primer umbral, o ya por encima de él.
func AtRisk(elapsed time.Duration, slaHours int, window time.Duration) bool {
	if slaHours <= 0 {
		return false
	}
	return elapsed >= time.Duration(slaHours)*time.Hour-window
}
