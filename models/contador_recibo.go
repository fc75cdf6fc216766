package models

import "gorm.io/gorm"

// ContadorRecibo es el contador de numeración de recibos, una fila por
// (institución, serie). El número siguiente se obtiene con un incremento
// atómico a nivel de base de datos dentro de la misma transacción que
// inserta el Pago, en lugar de leer el último recibo y sumar uno en
// memoria: dos registros de pago concurrentes nunca comparten número.
type ContadorRecibo struct {
	gorm.Model
	InstitucionID uint   `json:"institucionId" gorm:"index:idx_contador_institucion_serie,unique;not null"`
	Serie         string `json:"serie" gorm:"index:idx_contador_institucion_serie,unique;not null"`

	// Ultimo es la última secuencia emitida para la serie.
	Ultimo int64 `json:"ultimo" gorm:"default:0"`
}
