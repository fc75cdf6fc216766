package handlers

import (
	"net/http"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/config"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ConceptoInput struct {
	Nombre           string  `json:"nombre" binding:"required"`
	Descripcion      string  `json:"descripcion"`
	MontoSugerido    float64 `json:"montoSugerido"`
	TasaMoraDiaria   float64 `json:"tasaMoraDiaria"`
	FormulaDescuento string  `json:"formulaDescuento"`
}

// ListarConceptosHandler devuelve el catálogo de cobros de la institución.
func ListarConceptosHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var conceptos []models.ConceptoPago
	if err := config.DB.Where("institucion_id = ?", institucionID).
		Order("nombre ASC").Find(&conceptos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener el catálogo"})
		return
	}
	c.JSON(http.StatusOK, conceptos)
}

// GetConceptoHandler devuelve un concepto por ID.
func GetConceptoHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var concepto models.ConceptoPago
	if err := config.DB.Where("id = ? AND institucion_id = ?", c.Param("id"), institucionID).
		First(&concepto).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Concepto no encontrado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		}
		return
	}
	c.JSON(http.StatusOK, concepto)
}

// CreateConceptoHandler crea una entrada del catálogo.
func CreateConceptoHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var input ConceptoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	concepto := models.ConceptoPago{
		InstitucionID:    institucionID,
		Nombre:           input.Nombre,
		Descripcion:      input.Descripcion,
		MontoSugerido:    input.MontoSugerido,
		TasaMoraDiaria:   input.TasaMoraDiaria,
		FormulaDescuento: input.FormulaDescuento,
	}
	if err := config.DB.Create(&concepto).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo crear el concepto"})
		return
	}
	c.JSON(http.StatusCreated, concepto)
}

// UpdateConceptoHandler actualiza un concepto existente. No afecta a las
// cuotas ya generadas ni a los pagos emitidos: ambos guardan sus propios
// montos y nombres.
func UpdateConceptoHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var concepto models.ConceptoPago
	if err := config.DB.Where("id = ? AND institucion_id = ?", c.Param("id"), institucionID).
		First(&concepto).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Concepto no encontrado"})
		return
	}

	var input ConceptoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	concepto.Nombre = input.Nombre
	concepto.Descripcion = input.Descripcion
	concepto.MontoSugerido = input.MontoSugerido
	concepto.TasaMoraDiaria = input.TasaMoraDiaria
	concepto.FormulaDescuento = input.FormulaDescuento

	if err := config.DB.Save(&concepto).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo actualizar el concepto"})
		return
	}
	c.JSON(http.StatusOK, concepto)
}

// DeleteConceptoHandler elimina un concepto (borrado suave).
func DeleteConceptoHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	resultado := config.DB.Where("id = ? AND institucion_id = ?", c.Param("id"), institucionID).
		Delete(&models.ConceptoPago{})
	if resultado.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo eliminar el concepto"})
		return
	}
	if resultado.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Concepto no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "Concepto eliminado"})
}
