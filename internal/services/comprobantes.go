package services

import (
	"errors"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"gorm.io/gorm"
)

// SubmitComprobanteInput son los datos del voucher que sube un apoderado.
type SubmitComprobanteInput struct {
	CronogramaID    uint
	ArchivoURL      string
	Monto           float64
	BancoOrigen     string
	NumeroOperacion string
	FechaOperacion  time.Time
}

// SubmitComprobante registra una constancia de pago pendiente de
// verificación. El usuario debe ser apoderado del estudiante dueño de la
// cuota; cualquier otra cuota se reporta como inexistente.
func SubmitComprobante(db *gorm.DB, usuarioID uint, input SubmitComprobanteInput) (*models.ComprobantePago, error) {
	if input.Monto <= 0 {
		return nil, ErrMontoInvalido
	}

	var apoderado models.Apoderado
	if err := db.Where("usuario_id = ?", usuarioID).First(&apoderado).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}

	var cronograma models.CronogramaPago
	err := db.
		Where("id = ? AND estudiante_id IN (?)", input.CronogramaID,
			db.Table("apoderado_estudiantes").Select("estudiante_id").
				Where("apoderado_id = ?", apoderado.ID)).
		First(&cronograma).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}

	comprobante := models.ComprobantePago{
		CronogramaPagoID: cronograma.ID,
		ApoderadoID:      apoderado.ID,
		ArchivoURL:       input.ArchivoURL,
		Monto:            input.Monto,
		BancoOrigen:      input.BancoOrigen,
		NumeroOperacion:  input.NumeroOperacion,
		FechaOperacion:   input.FechaOperacion,
		Estado:           models.ComprobantePendiente,
	}
	if err := db.Create(&comprobante).Error; err != nil {
		return nil, err
	}
	return &comprobante, nil
}

// ListarComprobantesPendientes devuelve la cola de verificación del personal
// administrativo, de más antiguo a más reciente.
func ListarComprobantesPendientes(db *gorm.DB, institucionID uint) ([]models.ComprobantePago, error) {
	var pendientes []models.ComprobantePago
	err := db.
		Preload("CronogramaPago.Estudiante").
		Preload("CronogramaPago.ConceptoPago").
		Joins("JOIN cronograma_pagos ON cronograma_pagos.id = comprobante_pagos.cronograma_pago_id AND cronograma_pagos.deleted_at IS NULL").
		Joins("JOIN estudiantes ON estudiantes.id = cronograma_pagos.estudiante_id AND estudiantes.deleted_at IS NULL").
		Where("comprobante_pagos.estado = ? AND estudiantes.institucion_id = ?", models.ComprobantePendiente, institucionID).
		Order("comprobante_pagos.created_at ASC").
		Find(&pendientes).Error
	if err != nil {
		return nil, err
	}
	return pendientes, nil
}

// AprobarComprobante convierte un comprobante pendiente en un pago efectivo.
// Las tres escrituras — marcar APROBADO, abonar la cuota e insertar el Pago
// con método "Transferencia" — ocurren en una transacción: o salen las tres
// o ninguna, de modo que cada comprobante emite a lo sumo un Pago.
func AprobarComprobante(db *gorm.DB, institucionID, verificadorID, comprobanteID uint) (*ResultadoPago, error) {
	var resultado ResultadoPago
	err := db.Transaction(func(tx *gorm.DB) error {
		comprobante, err := comprobanteDeInstitucion(tx, institucionID, comprobanteID)
		if err != nil {
			return err
		}
		if comprobante.Estado != models.ComprobantePendiente {
			return ErrEstadoFinal
		}

		cronograma, err := cronogramaDeInstitucion(tx, institucionID, comprobante.CronogramaPagoID)
		if err != nil {
			return err
		}

		if err := aplicarAbono(tx, cronograma.ID, comprobante.Monto); err != nil {
			return err
		}
		if err := tx.First(cronograma, cronograma.ID).Error; err != nil {
			return err
		}

		numeroRecibo, err := asignarNumeroRecibo(tx, institucionID)
		if err != nil {
			return err
		}

		pago := models.Pago{
			CronogramaPagoID: cronograma.ID,
			InstitucionID:    institucionID,
			Concepto:         cronograma.ConceptoPago.Nombre,
			Monto:            comprobante.Monto,
			Metodo:           "Transferencia",
			Referencia:       comprobante.NumeroOperacion,
			NumeroRecibo:     numeroRecibo,
			FechaPago:        time.Now(),
		}
		if err := tx.Create(&pago).Error; err != nil {
			return err
		}

		// La transición lleva el estado en el WHERE: si otro verificador
		// decidió entre nuestra lectura y esta escritura, no se afecta
		// ninguna fila y toda la transacción (abono y Pago incluidos) se
		// revierte.
		ahora := time.Now()
		res := tx.Model(&models.ComprobantePago{}).
			Where("id = ? AND estado = ?", comprobante.ID, models.ComprobantePendiente).
			Updates(map[string]interface{}{
				"estado":            models.ComprobanteAprobado,
				"verificado_por_id": verificadorID,
				"verificado_en":     ahora,
				"pago_id":           pago.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEstadoFinal
		}

		resultado = ResultadoPago{
			PagoID:        pago.ID,
			PagadoTotal:   cronograma.Pagado,
			SaldoRestante: cronograma.Monto - cronograma.MontoPagado,
			NumeroRecibo:  numeroRecibo,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resultado, nil
}

// RechazarComprobante anota el motivo y quién lo rechazó. No toca el ledger:
// ni la cuota ni la tabla de pagos cambian.
func RechazarComprobante(db *gorm.DB, institucionID, verificadorID, comprobanteID uint, motivo string) error {
	if motivo == "" {
		return ErrMotivoRequerido
	}

	return db.Transaction(func(tx *gorm.DB) error {
		comprobante, err := comprobanteDeInstitucion(tx, institucionID, comprobanteID)
		if err != nil {
			return err
		}
		if comprobante.Estado != models.ComprobantePendiente {
			return ErrEstadoFinal
		}

		// Mismo guard de estado que la aprobación: el rechazo solo aplica
		// si el comprobante sigue pendiente al momento de escribir.
		ahora := time.Now()
		res := tx.Model(&models.ComprobantePago{}).
			Where("id = ? AND estado = ?", comprobante.ID, models.ComprobantePendiente).
			Updates(map[string]interface{}{
				"estado":            models.ComprobanteRechazado,
				"motivo_rechazo":    motivo,
				"verificado_por_id": verificadorID,
				"verificado_en":     ahora,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEstadoFinal
		}
		return nil
	})
}

// comprobanteDeInstitucion carga un comprobante verificando la cadena de
// propiedad comprobante → cuota → estudiante → institución.
func comprobanteDeInstitucion(tx *gorm.DB, institucionID, comprobanteID uint) (*models.ComprobantePago, error) {
	var comprobante models.ComprobantePago
	err := tx.
		Joins("JOIN cronograma_pagos ON cronograma_pagos.id = comprobante_pagos.cronograma_pago_id AND cronograma_pagos.deleted_at IS NULL").
		Joins("JOIN estudiantes ON estudiantes.id = cronograma_pagos.estudiante_id AND estudiantes.deleted_at IS NULL").
		Where("comprobante_pagos.id = ? AND estudiantes.institucion_id = ?", comprobanteID, institucionID).
		First(&comprobante).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	return &comprobante, nil
}
