package models

import (
	"time"

	"gorm.io/gorm"
)

// Pago representa un pago aceptado contra una cuota del cronograma.
// Es un registro de auditoría de solo inserción: nunca se actualiza.
type Pago struct {
	gorm.Model
	CronogramaPagoID uint           `json:"cronogramaPagoId" gorm:"index;not null"`
	CronogramaPago   CronogramaPago `json:"-"`
	InstitucionID    uint           `json:"institucionId" gorm:"index:idx_pago_recibo,unique;not null"`

	// Concepto guarda el nombre del concepto al momento del pago (una copia,
	// no una referencia): si el catálogo cambia después, el recibo histórico
	// conserva el texto original.
	Concepto string `json:"concepto"`

	Monto         float64   `json:"monto" gorm:"type:numeric(12,2);not null"`
	Metodo        string    `json:"metodo" gorm:"default:'Efectivo'"`
	Referencia    string    `json:"referencia"`
	NumeroRecibo  string    `json:"numeroRecibo" gorm:"index:idx_pago_recibo,unique;not null"`
	FechaPago     time.Time `json:"fechaPago" gorm:"not null"`
	Estado        string    `json:"estado" gorm:"default:'CONFIRMADO'"`
	Observaciones string    `json:"observaciones"`
}
