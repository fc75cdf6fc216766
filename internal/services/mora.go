package services

import (
	"math"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"gorm.io/gorm"
)

// FiltroMora acota el recálculo de mora a un concepto o a un aula.
// Ambos campos en nil significan toda la institución.
type FiltroMora struct {
	ConceptoID *uint
	AulaID     *uint
}

// AcumularMora recalcula la penalidad por atraso de todas las cuotas
// impagas ya vencidas. El valor se sobrescribe en cada corrida — días de
// atraso por tasa diaria del concepto, desde cero — así que ejecutarlo dos
// veces seguidas deja los mismos importes: no acumula entre corridas.
//
// La mora es informativa: no altera el monto adeudado ni la marca de pagado.
func AcumularMora(db *gorm.DB, institucionID uint, filtro FiltroMora) (int, error) {
	hoy := truncarADia(time.Now())

	procesadas := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		type cuotaVencida struct {
			ID               uint
			FechaVencimiento time.Time
			TasaMoraDiaria   float64
		}

		consulta := tx.Model(&models.CronogramaPago{}).
			Select("cronograma_pagos.id, cronograma_pagos.fecha_vencimiento, concepto_pagos.tasa_mora_diaria").
			Joins("JOIN concepto_pagos ON concepto_pagos.id = cronograma_pagos.concepto_pago_id AND concepto_pagos.deleted_at IS NULL").
			Joins("JOIN estudiantes ON estudiantes.id = cronograma_pagos.estudiante_id AND estudiantes.deleted_at IS NULL").
			Where("cronograma_pagos.pagado = ? AND cronograma_pagos.fecha_vencimiento < ?", false, hoy).
			Where("estudiantes.institucion_id = ?", institucionID)
		if filtro.ConceptoID != nil {
			consulta = consulta.Where("cronograma_pagos.concepto_pago_id = ?", *filtro.ConceptoID)
		}
		if filtro.AulaID != nil {
			consulta = consulta.Where("estudiantes.aula_id = ?", *filtro.AulaID)
		}

		var vencidas []cuotaVencida
		if err := consulta.Find(&vencidas).Error; err != nil {
			return err
		}

		for _, cuota := range vencidas {
			dias := diasDeAtraso(hoy, cuota.FechaVencimiento)
			mora := float64(dias) * cuota.TasaMoraDiaria
			if err := tx.Model(&models.CronogramaPago{}).
				Where("id = ?", cuota.ID).
				Update("mora_acumulada", mora).Error; err != nil {
				return err
			}
		}
		procesadas = len(vencidas)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return procesadas, nil
}

// diasDeAtraso cuenta los días transcurridos desde el vencimiento,
// redondeando hacia arriba cualquier fracción de día.
func diasDeAtraso(hoy, vencimiento time.Time) int {
	horas := hoy.Sub(vencimiento).Hours()
	if horas < 0 {
		horas = -horas
	}
	return int(math.Ceil(horas / 24))
}

func truncarADia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
