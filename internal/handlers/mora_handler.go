package handlers

import (
	"net/http"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/config"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/services"
	"github.com/gin-gonic/gin"
)

type AcumularMoraInput struct {
	ConceptoID *uint `json:"conceptoId"`
	AulaID     *uint `json:"aulaId"`
}

// AcumularMoraHandler recalcula la mora de todas las cuotas vencidas de la
// institución. El cálculo es idempotente: puede correrse todas las veces
// que haga falta en el día.
func AcumularMoraHandler(c *gin.Context) {
	institucionID, ok := institucionDesdeContexto(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var input AcumularMoraInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	procesadas, err := services.AcumularMora(config.DB, institucionID, services.FiltroMora{
		ConceptoID: input.ConceptoID,
		AulaID:     input.AulaID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo recalcular la mora"})
		return
	}

	invalidarVistasFinanzas(institucionID)
	c.JSON(http.StatusOK, gin.H{"procesadas": procesadas})
}
