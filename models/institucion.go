package models

import "gorm.io/gorm"

// Institucion representa un colegio dentro del sistema multi-institución.
// Todo el alcance de datos (estudiantes, conceptos, pagos) cuelga de ella.
type Institucion struct {
	gorm.Model
	Nombre string `json:"nombre" gorm:"not null"`
	Codigo string `json:"codigo" gorm:"uniqueIndex;not null"`

	// SerieRecibo es la serie activa para la numeración de recibos,
	// por ejemplo "B001". Cambia solo por decisión administrativa.
	SerieRecibo string `json:"serieRecibo" gorm:"default:'B001'"`
}
