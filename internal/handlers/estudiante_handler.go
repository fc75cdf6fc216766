package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/config"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EstudianteInput struct {
	Apellidos       string `json:"apellidos" binding:"required"`
	Nombres         string `json:"nombres" binding:"required"`
	DNI             string `json:"dni"`
	Sexo            string `json:"sexo"`
	FechaNacimiento string `json:"fechaNacimiento"`
	Telefono        string `json:"telefono"`
	Email           string `json:"email"`
	Direccion       string `json:"direccion"`
	AulaID          *uint  `json:"aulaId"`
}

// ListarEstudiantesHandler devuelve los estudiantes de la institución con
// paginación y búsqueda por apellidos, nombres o DNI.
func ListarEstudiantesHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var estudiantes []models.Estudiante
	var totalRows int64

	baseQuery := config.DB.Model(&models.Estudiante{}).
		Where("institucion_id = ?", institucionID)

	if search := c.Query("search"); search != "" {
		patron := "%" + strings.ToLower(search) + "%"
		baseQuery = baseQuery.Where(
			"LOWER(apellidos) LIKE ? OR LOWER(nombres) LIKE ? OR LOWER(dni) LIKE ?",
			patron, patron, patron)
	}
	if aulaID := c.Query("aula_id"); aulaID != "" {
		baseQuery = baseQuery.Where("aula_id = ?", aulaID)
	}

	baseQuery.Count(&totalRows)

	if err := baseQuery.Preload("Aula").
		Scopes(Paginate(c)).
		Order("apellidos ASC, nombres ASC").
		Find(&estudiantes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener el listado de estudiantes"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, estudiantes, totalRows))
}

// GetEstudianteHandler devuelve un estudiante por ID.
func GetEstudianteHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var estudiante models.Estudiante
	if err := config.DB.Preload("Aula").
		Where("id = ? AND institucion_id = ?", c.Param("id"), institucionID).
		First(&estudiante).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Estudiante no encontrado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		}
		return
	}
	c.JSON(http.StatusOK, estudiante)
}

// CreateEstudianteHandler registra un estudiante nuevo.
func CreateEstudianteHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var input EstudianteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	estudiante := models.Estudiante{
		InstitucionID: institucionID,
		Apellidos:     input.Apellidos,
		Nombres:       input.Nombres,
		DNI:           input.DNI,
		Sexo:          input.Sexo,
		Telefono:      input.Telefono,
		Email:         input.Email,
		Direccion:     input.Direccion,
		AulaID:        input.AulaID,
	}
	if input.FechaNacimiento != "" {
		if fecha, err := parsearFecha(input.FechaNacimiento); err == nil {
			estudiante.FechaNacimiento = &fecha
		}
	}

	if err := config.DB.Create(&estudiante).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo registrar al estudiante"})
		return
	}
	c.JSON(http.StatusCreated, estudiante)
}

// UpdateEstudianteHandler actualiza los datos de un estudiante.
func UpdateEstudianteHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var estudiante models.Estudiante
	if err := config.DB.Where("id = ? AND institucion_id = ?", c.Param("id"), institucionID).
		First(&estudiante).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Estudiante no encontrado"})
		return
	}

	var input EstudianteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	estudiante.Apellidos = input.Apellidos
	estudiante.Nombres = input.Nombres
	estudiante.DNI = input.DNI
	estudiante.Sexo = input.Sexo
	estudiante.Telefono = input.Telefono
	estudiante.Email = input.Email
	estudiante.Direccion = input.Direccion
	estudiante.AulaID = input.AulaID
	if input.FechaNacimiento != "" {
		if fecha, err := parsearFecha(input.FechaNacimiento); err == nil {
			estudiante.FechaNacimiento = &fecha
		}
	}

	if err := config.DB.Save(&estudiante).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo actualizar al estudiante"})
		return
	}
	c.JSON(http.StatusOK, estudiante)
}

// RetirarEstudianteHandler marca al estudiante como retirado. No se borra:
// su historial de cuotas y pagos se conserva.
func RetirarEstudianteHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	inactivo := false
	resultado := config.DB.Model(&models.Estudiante{}).
		Where("id = ? AND institucion_id = ?", c.Param("id"), institucionID).
		Updates(map[string]interface{}{"activo": &inactivo, "updated_at": time.Now()})
	if resultado.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo retirar al estudiante"})
		return
	}
	if resultado.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Estudiante no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "Estudiante retirado"})
}
