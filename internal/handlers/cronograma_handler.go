package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/config"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// GeneracionMasivaInput - estructura para recibir los datos del formulario
// de generación de deuda. Usamos string para la fecha para evitar errores
// del parseo automático.
type GeneracionMasivaInput struct {
	ConceptoID       uint    `json:"conceptoId" binding:"required"`
	Monto            float64 `json:"monto" binding:"required"`
	FechaVencimiento string  `json:"fechaVencimiento" binding:"required"`
	AulaID           *uint   `json:"aulaId"`
}

// GenerarDeudaMasivaHandler crea las cuotas de un concepto para todos los
// estudiantes del alcance (un aula o la institución completa).
func GenerarDeudaMasivaHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var input GeneracionMasivaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vencimiento, err := parsearFecha(input.FechaVencimiento)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato de fecha inválido. Se espera YYYY-MM-DD."})
		return
	}

	creados, err := services.GenerarCronogramaMasivo(config.DB, institucionID, services.GeneracionMasivaInput{
		ConceptoID:       input.ConceptoID,
		Monto:            input.Monto,
		FechaVencimiento: vencimiento,
		AulaID:           input.AulaID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoEncontrado):
			c.JSON(http.StatusNotFound, gin.H{"error": "Concepto de pago no encontrado"})
		case errors.Is(err, services.ErrMontoInvalido),
			errors.Is(err, services.ErrSinEstudiantes),
			errors.Is(err, services.ErrYaGenerado):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo generar la deuda"})
		}
		return
	}

	invalidarVistasFinanzas(institucionID)
	c.JSON(http.StatusCreated, gin.H{"creados": creados})
}

// DeudorResponse es una fila del listado de deudores.
type DeudorResponse struct {
	CronogramaID     uint      `json:"cronogramaId"`
	EstudianteNombre string    `json:"estudianteNombre"`
	Aula             string    `json:"aula"`
	Concepto         string    `json:"concepto"`
	Monto            float64   `json:"monto"`
	MontoPagado      float64   `json:"montoPagado"`
	SaldoPendiente   float64   `json:"saldoPendiente"`
	MoraAcumulada    float64   `json:"moraAcumulada"`
	FechaVencimiento time.Time `json:"fechaVencimiento"`
}

// ListarDeudoresHandler devuelve las cuotas con saldo pendiente de la
// institución, con paginación y búsqueda.
func ListarDeudoresHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var deudores []DeudorResponse
	var totalRows int64

	baseQuery := config.DB.Table("cronograma_pagos cp").
		Joins("JOIN estudiantes e ON e.id = cp.estudiante_id AND e.deleted_at IS NULL").
		Joins("JOIN concepto_pagos co ON co.id = cp.concepto_pago_id").
		Joins("LEFT JOIN aulas a ON a.id = e.aula_id").
		Where("cp.deleted_at IS NULL AND cp.pagado = ? AND e.institucion_id = ?", false, institucionID)

	if search := c.Query("search"); search != "" {
		patron := "%" + strings.ToLower(search) + "%"
		baseQuery = baseQuery.Where(
			"LOWER(e.apellidos) LIKE ? OR LOWER(e.nombres) LIKE ? OR LOWER(e.dni) LIKE ? OR LOWER(co.nombre) LIKE ?",
			patron, patron, patron, patron)
	}
	if conceptoID := c.Query("concepto_id"); conceptoID != "" {
		baseQuery = baseQuery.Where("cp.concepto_pago_id = ?", conceptoID)
	}
	if aulaID := c.Query("aula_id"); aulaID != "" {
		baseQuery = baseQuery.Where("e.aula_id = ?", aulaID)
	}

	baseQuery.Count(&totalRows)

	err := baseQuery.Select(`
		cp.id AS cronograma_id,
		(e.apellidos || ' ' || e.nombres) AS estudiante_nombre,
		(COALESCE(a.grado::text, '') || ' ' || COALESCE(a.seccion, '')) AS aula,
		co.nombre AS concepto,
		cp.monto,
		cp.monto_pagado,
		(cp.monto - cp.monto_pagado) AS saldo_pendiente,
		cp.mora_acumulada,
		cp.fecha_vencimiento
	`).
		Scopes(Paginate(c)).
		Order("cp.fecha_vencimiento ASC").
		Scan(&deudores).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener el listado de deudores"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, deudores, totalRows))
}

// ExportarDeudoresHandler - exporta el listado de deudores a Excel.
func ExportarDeudoresHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var deudores []DeudorResponse
	query := config.DB.Table("cronograma_pagos cp").
		Select(`
			cp.id AS cronograma_id,
			(e.apellidos || ' ' || e.nombres) AS estudiante_nombre,
			(COALESCE(a.grado::text, '') || ' ' || COALESCE(a.seccion, '')) AS aula,
			co.nombre AS concepto,
			cp.monto,
			cp.monto_pagado,
			(cp.monto - cp.monto_pagado) AS saldo_pendiente,
			cp.mora_acumulada,
			cp.fecha_vencimiento
		`).
		Joins("JOIN estudiantes e ON e.id = cp.estudiante_id AND e.deleted_at IS NULL").
		Joins("JOIN concepto_pagos co ON co.id = cp.concepto_pago_id").
		Joins("LEFT JOIN aulas a ON a.id = e.aula_id").
		Where("cp.deleted_at IS NULL AND cp.pagado = ? AND e.institucion_id = ?", false, institucionID).
		Order("cp.fecha_vencimiento ASC")

	if conceptoID := c.Query("concepto_id"); conceptoID != "" {
		query = query.Where("cp.concepto_pago_id = ?", conceptoID)
	}

	if err := query.Scan(&deudores).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudieron obtener los datos para exportar"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Deudores"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Estudiante", "Aula", "Concepto", "Monto", "Pagado", "Saldo", "Mora", "Vencimiento"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, d := range deudores {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), d.EstudianteNombre)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), d.Aula)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), d.Concepto)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), d.Monto)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), d.MontoPagado)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), d.SaldoPendiente)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), d.MoraAcumulada)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), d.FechaVencimiento.Format("02.01.2006"))
	}

	fileName := fmt.Sprintf("deudores_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo escribir el archivo Excel"})
	}
}
