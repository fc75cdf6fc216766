package models

import (
	"time"

	"gorm.io/gorm"
)

// Estados posibles de un comprobante. PENDIENTE es el único estado desde el
// que se permite una transición; APROBADO y RECHAZADO son terminales.
const (
	ComprobantePendiente = "PENDIENTE"
	ComprobanteAprobado  = "APROBADO"
	ComprobanteRechazado = "RECHAZADO"
)

// ComprobantePago es una constancia de pago (voucher bancario) subida por un
// apoderado, a la espera de la verificación del personal administrativo.
type ComprobantePago struct {
	gorm.Model
	CronogramaPagoID uint           `json:"cronogramaPagoId" gorm:"index;not null"`
	CronogramaPago   CronogramaPago `json:"cronogramaPago,omitempty"`

	// ApoderadoID identifica quién subió el comprobante.
	ApoderadoID uint      `json:"apoderadoId" gorm:"index;not null"`
	Apoderado   Apoderado `json:"-"`

	ArchivoURL      string    `json:"archivoUrl"`
	Monto           float64   `json:"monto" gorm:"type:numeric(12,2);not null"`
	BancoOrigen     string    `json:"bancoOrigen"`
	NumeroOperacion string    `json:"numeroOperacion"`
	FechaOperacion  time.Time `json:"fechaOperacion"`

	Estado        string `json:"estado" gorm:"default:'PENDIENTE';index"`
	MotivoRechazo string `json:"motivoRechazo"`

	// VerificadoPorID y VerificadoEn registran la decisión del personal.
	VerificadoPorID *uint      `json:"verificadoPorId"`
	VerificadoEn    *time.Time `json:"verificadoEn"`

	// PagoID apunta al pago emitido al aprobar. Referencia de consulta,
	// no un canal de mutación: el Pago jamás se edita desde aquí.
	PagoID *uint `json:"pagoId"`
}
