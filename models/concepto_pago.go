package models

import "gorm.io/gorm"

// ConceptoPago es una entrada del catálogo de cobros de la institución,
// por ejemplo "Matrícula" o "Pensión Marzo". Es de solo lectura para el
// flujo de cobranza: la generación de deuda nunca lo modifica.
type ConceptoPago struct {
	gorm.Model
	InstitucionID uint   `json:"institucionId" gorm:"index;not null"`
	Nombre        string `json:"nombre" gorm:"not null"`
	Descripcion   string `json:"descripcion"`

	// MontoSugerido es el importe por defecto que se propone al generar deuda.
	MontoSugerido float64 `json:"montoSugerido" gorm:"type:numeric(12,2)"`

	// TasaMoraDiaria es el interés por cada día de atraso.
	TasaMoraDiaria float64 `json:"tasaMoraDiaria" gorm:"type:numeric(12,2);default:0"`

	// FormulaDescuento permite calcular el monto efectivo con una expresión
	// sobre las variables 'monto' y 'beca', por ejemplo "monto - (beca * 2)".
	// Si está vacía se aplica el descuento simple max(0, monto - beca).
	FormulaDescuento string `json:"formulaDescuento"`
}
