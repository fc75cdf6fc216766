package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/config"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/services"
	"github.com/gin-gonic/gin"
)

// RegistroPagoInput - estructura para recibir los datos de caja.
type RegistroPagoInput struct {
	CronogramaID  uint    `json:"cronogramaId" binding:"required"`
	Monto         float64 `json:"monto" binding:"required"`
	Metodo        string  `json:"metodo"`
	Referencia    string  `json:"referencia"`
	NumeroRecibo  string  `json:"numeroRecibo"`
	Observaciones string  `json:"observaciones"`
}

// RegistrarPagoHandler aplica un pago de caja contra una cuota del cronograma.
func RegistrarPagoHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var input RegistroPagoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resultado, err := services.RegistrarPago(config.DB, institucionID, services.RegistroPagoInput{
		CronogramaID:  input.CronogramaID,
		Monto:         input.Monto,
		Metodo:        input.Metodo,
		Referencia:    input.Referencia,
		NumeroRecibo:  input.NumeroRecibo,
		Observaciones: input.Observaciones,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMontoInvalido):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNoEncontrado):
			c.JSON(http.StatusNotFound, gin.H{"error": "Cuota no encontrada"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo registrar el pago"})
		}
		return
	}

	invalidarVistasFinanzas(institucionID)
	c.JSON(http.StatusCreated, gin.H{
		"pagoId":        resultado.PagoID,
		"pagadoTotal":   resultado.PagadoTotal,
		"saldoRestante": resultado.SaldoRestante,
		"numeroRecibo":  resultado.NumeroRecibo,
		"montoEnLetras": montoEnLetras(input.Monto),
	})
}

// PagoResponse es una fila del historial de pagos con los datos del
// estudiante ya resueltos para la grilla.
type PagoResponse struct {
	ID               uint      `json:"id"`
	CronogramaPagoID uint      `json:"cronogramaPagoId"`
	EstudianteNombre string    `json:"estudianteNombre"`
	Concepto         string    `json:"concepto"`
	Monto            float64   `json:"monto"`
	Metodo           string    `json:"metodo"`
	Referencia       string    `json:"referencia"`
	NumeroRecibo     string    `json:"numeroRecibo"`
	FechaPago        time.Time `json:"fechaPago"`
}

// ListarPagosHandler devuelve el historial de pagos con paginación y búsqueda.
func ListarPagosHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var pagos []PagoResponse
	var totalRows int64

	baseQuery := config.DB.Table("pagos p").
		Joins("JOIN cronograma_pagos cp ON cp.id = p.cronograma_pago_id").
		Joins("JOIN estudiantes e ON e.id = cp.estudiante_id").
		Where("p.deleted_at IS NULL AND p.institucion_id = ?", institucionID)

	if search := c.Query("search"); search != "" {
		patron := "%" + strings.ToLower(search) + "%"
		baseQuery = baseQuery.Where(
			"LOWER(e.apellidos) LIKE ? OR LOWER(e.nombres) LIKE ? OR LOWER(e.dni) LIKE ? OR LOWER(p.numero_recibo) LIKE ?",
			patron, patron, patron, patron)
	}
	if desde := c.Query("desde"); desde != "" {
		baseQuery = baseQuery.Where("p.fecha_pago >= ?", desde)
	}
	if hasta := c.Query("hasta"); hasta != "" {
		baseQuery = baseQuery.Where("p.fecha_pago <= ?", hasta)
	}

	baseQuery.Count(&totalRows)

	err := baseQuery.Select(`
		p.id,
		p.cronograma_pago_id,
		(e.apellidos || ' ' || e.nombres) AS estudiante_nombre,
		p.concepto,
		p.monto,
		p.metodo,
		p.referencia,
		p.numero_recibo,
		p.fecha_pago
	`).
		Scopes(Paginate(c)).
		Order("p.fecha_pago DESC").
		Scan(&pagos).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener el historial de pagos"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, pagos, totalRows))
}

// SiguienteReciboHandler informa a la caja el número que llevará el próximo
// recibo. Es solo una vista previa: el número definitivo se reserva recién
// al registrar el pago.
func SiguienteReciboHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	numero, err := services.SiguienteNumeroRecibo(config.DB, institucionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo calcular el siguiente recibo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"numeroRecibo": numero})
}
