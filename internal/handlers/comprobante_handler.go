package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/config"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/services"
	"github.com/gin-gonic/gin"
)

// DecidirPayload es la decisión del personal sobre un comprobante.
type DecidirPayload struct {
	Decision      string `json:"decision" binding:"required"`
	MotivoRechazo string `json:"motivoRechazo"`
}

// SubmitComprobanteHandler procesa la subida de un voucher por un apoderado:
// formulario multipart con el archivo y los datos de la operación bancaria.
func SubmitComprobanteHandler(c *gin.Context) {
	usuarioID, ok := usuarioDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo procesar el formulario"})
		return
	}

	uploadDir := filepath.Join("static", "uploads", "comprobantes")
	if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo crear el directorio de subida"})
		return
	}

	archivoURL, err := saveUploadedFile(c, "archivo", uploadDir)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if archivoURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El archivo del comprobante es obligatorio"})
		return
	}

	cronogramaID, err := strconv.ParseUint(c.PostForm("cronogramaId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de cuota inválido"})
		return
	}
	monto, err := strconv.ParseFloat(c.PostForm("monto"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Monto inválido"})
		return
	}
	fechaOperacion, err := parsearFecha(c.PostForm("fechaOperacion"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato de fecha inválido. Se espera YYYY-MM-DD."})
		return
	}

	comprobante, err := services.SubmitComprobante(config.DB, usuarioID, services.SubmitComprobanteInput{
		CronogramaID:    uint(cronogramaID),
		ArchivoURL:      archivoURL,
		Monto:           monto,
		BancoOrigen:     c.PostForm("bancoOrigen"),
		NumeroOperacion: c.PostForm("numeroOperacion"),
		FechaOperacion:  fechaOperacion,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMontoInvalido):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNoEncontrado):
			c.JSON(http.StatusNotFound, gin.H{"error": "Cuota no encontrada"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo registrar el comprobante"})
		}
		return
	}

	c.JSON(http.StatusCreated, comprobante)
}

// ListarComprobantesPendientesHandler devuelve la cola de verificación de la
// institución, del más antiguo al más reciente.
func ListarComprobantesPendientesHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	pendientes, err := services.ListarComprobantesPendientes(config.DB, institucionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener la cola de comprobantes"})
		return
	}
	c.JSON(http.StatusOK, pendientes)
}

// DecidirComprobanteHandler aprueba o rechaza un comprobante pendiente.
func DecidirComprobanteHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}
	verificadorID, _ := usuarioDesdeContexto(c)

	comprobanteID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de comprobante inválido"})
		return
	}

	var payload DecidirPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch payload.Decision {
	case "aprobar":
		resultado, err := services.AprobarComprobante(config.DB, institucionID, verificadorID, uint(comprobanteID))
		if err != nil {
			responderErrorDecision(c, err)
			return
		}
		invalidarVistasFinanzas(institucionID)
		c.JSON(http.StatusOK, gin.H{
			"mensaje":       "Comprobante aprobado",
			"pagadoTotal":   resultado.PagadoTotal,
			"saldoRestante": resultado.SaldoRestante,
			"numeroRecibo":  resultado.NumeroRecibo,
		})
	case "rechazar":
		if err := services.RechazarComprobante(config.DB, institucionID, verificadorID, uint(comprobanteID), payload.MotivoRechazo); err != nil {
			responderErrorDecision(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"mensaje": "Comprobante rechazado"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Decisión inválida: se espera 'aprobar' o 'rechazar'"})
	}
}

func responderErrorDecision(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, gin.H{"error": "Comprobante no encontrado"})
	case errors.Is(err, services.ErrEstadoFinal):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrMotivoRequerido):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo procesar la decisión"})
	}
}
