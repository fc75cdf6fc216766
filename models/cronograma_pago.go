package models

import (
	"time"

	"gorm.io/gorm"
)

// CronogramaPago representa una línea de deuda programada en el sistema.
// Cada registro de este modelo es una cuota de un estudiante contra un
// concepto de pago del catálogo.
type CronogramaPago struct {
	// gorm.Model incorpora los campos estándar: ID, CreatedAt, UpdatedAt, DeletedAt.
	gorm.Model

	// EstudianteID es la clave foránea hacia la tabla 'estudiantes'.
	// Indica a qué estudiante pertenece exclusivamente esta deuda.
	EstudianteID uint       `json:"estudianteId" gorm:"index:idx_cronograma_estudiante_concepto,unique"`
	Estudiante   Estudiante `json:"-"`

	// ConceptoPagoID enlaza con el concepto del catálogo. El índice único
	// compuesto (estudiante, concepto) impide la doble facturación del
	// mismo concepto a un mismo estudiante.
	ConceptoPagoID uint         `json:"conceptoPagoId" gorm:"index:idx_cronograma_estudiante_concepto,unique"`
	ConceptoPago   ConceptoPago `json:"conceptoPago,omitempty"`

	// Monto es la suma adeudada, ya con el descuento de beca aplicado.
	// gorm:"type:numeric(12,2)" indica a GORM que en la base de datos
	// corresponde al tipo NUMERIC con 2 decimales para cálculos financieros.
	Monto float64 `json:"monto" gorm:"type:numeric(12,2);not null"`

	// MontoPagado es el acumulado de pagos aceptados contra esta cuota.
	// Es monótono no decreciente: solo crece con cada pago registrado.
	MontoPagado float64 `json:"montoPagado" gorm:"type:numeric(12,2);default:0"`

	// Pagado es verdadero cuando MontoPagado alcanzó a Monto en la última
	// escritura. No se reevalúa en lecturas.
	Pagado bool `json:"pagado" gorm:"default:false"`

	// FechaVencimiento es la fecha límite de pago de la cuota.
	FechaVencimiento time.Time `json:"fechaVencimiento" gorm:"not null"`

	// MoraAcumulada es la penalidad por atraso calculada por el proceso de
	// mora. Es informativa: no se suma a Monto ni participa en la
	// determinación de Pagado.
	MoraAcumulada float64 `json:"moraAcumulada" gorm:"type:numeric(12,2);default:0"`
}
