package models

import "gorm.io/gorm"

type Usuario struct {
	gorm.Model
	Login          string      `json:"login" gorm:"uniqueIndex;not null"`
	PasswordHash   string      `json:"-" gorm:"not null"`
	NombreCompleto string      `json:"nombreCompleto"`
	InstitucionID  uint        `json:"institucionId" gorm:"index;not null"`
	Institucion    Institucion `json:"-"`
	Roles          []Rol       `json:"roles,omitempty" gorm:"many2many:usuario_roles;"`
}

type Rol struct {
	gorm.Model
	Nombre   string    `json:"nombre" gorm:"uniqueIndex;not null"`
	Permisos []Permiso `json:"permisos,omitempty" gorm:"many2many:rol_permisos;"`
}

type Permiso struct {
	gorm.Model
	Nombre      string `json:"nombre" gorm:"uniqueIndex;not null"`
	Descripcion string `json:"descripcion"`
}
