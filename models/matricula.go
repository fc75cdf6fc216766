package models

import (
	"time"

	"gorm.io/gorm"
)

// Matricula es la inscripción de un estudiante para un año escolar.
// Al crearla se genera automáticamente la deuda del concepto "Matrícula".
type Matricula struct {
	gorm.Model
	EstudianteID uint       `json:"estudianteId" gorm:"index;not null"`
	Estudiante   Estudiante `json:"-"`
	Anio         int        `json:"anio" gorm:"not null"`
	FechaIngreso *time.Time `json:"fechaIngreso"`

	// BecaDescuento es el descuento por beca del estudiante para el año.
	// Se resta del monto solicitado al generar cada cronograma de pago.
	BecaDescuento float64 `json:"becaDescuento" gorm:"type:numeric(12,2);default:0"`

	// Estado: 'ACTIVA' o 'ANULADA'.
	Estado string `json:"estado" gorm:"default:'ACTIVA'"`
}

// Apoderado vincula una cuenta de usuario (padre o tutor) con sus hijos.
// La relación da la cadena de propiedad apoderado → estudiante → institución
// que usan los comprobantes de pago.
type Apoderado struct {
	gorm.Model
	UsuarioID   uint         `json:"usuarioId" gorm:"uniqueIndex;not null"`
	Usuario     Usuario      `json:"-"`
	Parentesco  string       `json:"parentesco"`
	Estudiantes []Estudiante `json:"estudiantes,omitempty" gorm:"many2many:apoderado_estudiantes;"`
}
