package services

import "errors"

// Errores centinela del flujo de cobranza. Los handlers los traducen a HTTP
// con errors.Is. ErrNoEncontrado cubre también los accesos de otra
// institución: ambos casos se reportan igual para no revelar la existencia
// del registro a quien no le pertenece.
var (
	ErrNoEncontrado    = errors.New("registro no encontrado")
	ErrMontoInvalido   = errors.New("el monto debe ser mayor a cero")
	ErrSinEstudiantes  = errors.New("no hay estudiantes matriculados en el alcance indicado")
	ErrYaGenerado      = errors.New("la deuda ya fue generada para todos los estudiantes del alcance")
	ErrEstadoFinal     = errors.New("el comprobante ya fue verificado")
	ErrMotivoRequerido = errors.New("el motivo de rechazo es obligatorio")
)
