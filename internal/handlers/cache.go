package handlers

import (
	"fmt"
	"log/slog"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/config"
)

// invalidarVistasFinanzas borra del caché las vistas financieras de la
// institución después de cada mutación del ledger (generación de deuda,
// pagos, comprobantes, mora), para que los tableros se rearmen con datos
// frescos en la próxima consulta.
func invalidarVistasFinanzas(institucionID uint) {
	if config.RDB == nil {
		return
	}
	go func() {
		claves := []string{
			fmt.Sprintf("finanzas:%d:deudores", institucionID),
			fmt.Sprintf("finanzas:%d:resumen", institucionID),
			fmt.Sprintf("finanzas:%d:pendientes", institucionID),
		}
		if err := config.RDB.Del(config.Ctx, claves...).Err(); err != nil {
			slog.Warn("No se pudo invalidar el caché financiero", "error", err, "institucion_id", institucionID)
		}
	}()
}
