package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/config"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/services"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MatriculaInput struct {
	EstudianteID  uint    `json:"estudianteId" binding:"required"`
	Anio          int     `json:"anio" binding:"required"`
	FechaIngreso  string  `json:"fechaIngreso"`
	BecaDescuento float64 `json:"becaDescuento"`
}

// CreateMatriculaHandler inscribe a un estudiante en el año escolar y genera
// la deuda automática del concepto "Matrícula", todo en una transacción.
func CreateMatriculaHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var input MatriculaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var matricula models.Matricula
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var estudiante models.Estudiante
		if err := tx.Where("id = ? AND institucion_id = ?", input.EstudianteID, institucionID).
			First(&estudiante).Error; err != nil {
			return fmt.Errorf("estudiante no encontrado")
		}

		var existentes int64
		if err := tx.Model(&models.Matricula{}).
			Where("estudiante_id = ? AND anio = ? AND estado = ?", input.EstudianteID, input.Anio, "ACTIVA").
			Count(&existentes).Error; err != nil {
			return err
		}
		if existentes > 0 {
			return fmt.Errorf("el estudiante ya tiene matrícula activa para el año %d", input.Anio)
		}

		matricula = models.Matricula{
			EstudianteID:  input.EstudianteID,
			Anio:          input.Anio,
			BecaDescuento: input.BecaDescuento,
		}
		if input.FechaIngreso != "" {
			if fecha, err := parsearFecha(input.FechaIngreso); err == nil {
				matricula.FechaIngreso = &fecha
			}
		}
		if err := tx.Create(&matricula).Error; err != nil {
			return err
		}

		return services.GenerarDeudaMatricula(tx, institucionID, &matricula)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invalidarVistasFinanzas(institucionID)
	c.JSON(http.StatusCreated, matricula)
}

// AnularMatriculaHandler anula la inscripción. La cuota de matrícula se
// elimina solo si sigue impaga y sin abonos; con pagos encima, la anulación
// conserva el historial contable intacto.
func AnularMatriculaHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var matricula models.Matricula
		if err := tx.
			Joins("JOIN estudiantes ON estudiantes.id = matriculas.estudiante_id AND estudiantes.deleted_at IS NULL").
			Where("matriculas.id = ? AND estudiantes.institucion_id = ?", c.Param("id"), institucionID).
			First(&matricula).Error; err != nil {
			return fmt.Errorf("matrícula no encontrada")
		}
		if matricula.Estado != "ACTIVA" {
			return fmt.Errorf("la matrícula ya está anulada")
		}

		if err := tx.Model(&matricula).
			Updates(map[string]interface{}{"estado": "ANULADA", "updated_at": time.Now()}).Error; err != nil {
			return err
		}

		return services.EliminarDeudaMatricula(tx, institucionID, matricula.EstudianteID)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invalidarVistasFinanzas(institucionID)
	c.JSON(http.StatusOK, gin.H{"mensaje": "Matrícula anulada"})
}
