package models

import (
	"time"

	"gorm.io/gorm"
)

// Estudiante representa al alumno en la base de datos.
type Estudiante struct {
	gorm.Model
	InstitucionID uint        `json:"institucionId" gorm:"index;not null"`
	Institucion   Institucion `json:"-"`
	AulaID        *uint       `json:"aulaId"`
	Aula          *Aula       `json:"aula,omitempty" gorm:"foreignKey:AulaID"`

	Apellidos       string     `json:"apellidos" gorm:"not null"`
	Nombres         string     `json:"nombres" gorm:"not null"`
	DNI             string     `json:"dni" gorm:"uniqueIndex"`
	Sexo            string     `json:"sexo"`
	FechaNacimiento *time.Time `json:"fechaNacimiento"`
	Telefono        string     `json:"telefono"`
	Email           string     `json:"email"`
	Direccion       string     `json:"direccion"`

	// Activo indica si el estudiante sigue matriculado en la institución.
	// La generación de deuda solo considera estudiantes activos.
	Activo *bool `json:"activo" gorm:"default:true"`
}

// Aula es una sección de un grado, por ejemplo "3ro A" de primaria.
type Aula struct {
	gorm.Model
	InstitucionID uint   `json:"institucionId" gorm:"index;not null"`
	Grado         int    `json:"grado" gorm:"not null"`
	Seccion       string `json:"seccion" gorm:"not null"`
	Nivel         string `json:"nivel"`
}
