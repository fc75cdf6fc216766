package services

import (
	"errors"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"github.com/Knetic/govaluate"
	"gorm.io/gorm"
)

// GeneracionMasivaInput describe una generación de deuda para un alcance:
// una sola aula o la institución completa si AulaID es nil.
type GeneracionMasivaInput struct {
	ConceptoID       uint
	Monto            float64
	FechaVencimiento time.Time
	AulaID           *uint
}

// GenerarCronogramaMasivo crea una cuota del concepto indicado para cada
// estudiante activo del alcance que aún no la tenga. El monto por estudiante
// es el solicitado menos el descuento de beca de su matrícula vigente.
// La creación es todo-o-nada: una sola transacción para todas las filas.
func GenerarCronogramaMasivo(db *gorm.DB, institucionID uint, input GeneracionMasivaInput) (int, error) {
	if input.Monto <= 0 {
		return 0, ErrMontoInvalido
	}

	creados := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var concepto models.ConceptoPago
		if err := tx.Where("id = ? AND institucion_id = ?", input.ConceptoID, institucionID).
			First(&concepto).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoEncontrado
			}
			return err
		}

		consulta := tx.Model(&models.Estudiante{}).
			Where("institucion_id = ? AND activo = ?", institucionID, true)
		if input.AulaID != nil {
			consulta = consulta.Where("aula_id = ?", *input.AulaID)
		}

		var estudianteIDs []uint
		if err := consulta.Pluck("id", &estudianteIDs).Error; err != nil {
			return err
		}
		if len(estudianteIDs) == 0 {
			return ErrSinEstudiantes
		}

		// Saltamos a los que ya tienen cuota de este concepto. La consulta
		// incluye filas con soft delete: siguen ocupando el índice único
		// (estudiante, concepto) y un insert sobre ellas fallaría.
		var yaFacturados []uint
		if err := tx.Unscoped().Model(&models.CronogramaPago{}).
			Where("concepto_pago_id = ? AND estudiante_id IN ?", concepto.ID, estudianteIDs).
			Pluck("estudiante_id", &yaFacturados).Error; err != nil {
			return err
		}
		facturado := make(map[uint]bool, len(yaFacturados))
		for _, id := range yaFacturados {
			facturado[id] = true
		}

		becas, err := becasPorEstudiante(tx, estudianteIDs)
		if err != nil {
			return err
		}

		var cuotas []models.CronogramaPago
		for _, estudianteID := range estudianteIDs {
			if facturado[estudianteID] {
				continue
			}
			monto, err := montoEfectivo(&concepto, input.Monto, becas[estudianteID])
			if err != nil {
				return err
			}
			cuotas = append(cuotas, models.CronogramaPago{
				EstudianteID:     estudianteID,
				ConceptoPagoID:   concepto.ID,
				Monto:            monto,
				MontoPagado:      0,
				Pagado:           false,
				FechaVencimiento: input.FechaVencimiento,
			})
		}
		if len(cuotas) == 0 {
			return ErrYaGenerado
		}

		if err := tx.Create(&cuotas).Error; err != nil {
			return err
		}
		creados = len(cuotas)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return creados, nil
}

// RegistroPagoInput son los datos de caja para aplicar un pago a una cuota.
type RegistroPagoInput struct {
	CronogramaID  uint
	Monto         float64
	Metodo        string
	Referencia    string
	NumeroRecibo  string
	Observaciones string
}

// ResultadoPago resume el estado de la cuota tras aplicar un pago.
// SaldoRestante puede ser negativo: el sobrepago se permite sin tope.
type ResultadoPago struct {
	PagoID        uint    `json:"pagoId"`
	PagadoTotal   bool    `json:"pagadoTotal"`
	SaldoRestante float64 `json:"saldoRestante"`
	NumeroRecibo  string  `json:"numeroRecibo"`
}

// RegistrarPago aplica un monto contra una cuota del cronograma y deja el
// registro de auditoría correspondiente, todo en una transacción: o se
// actualiza el saldo y se inserta el Pago, o no pasa nada.
//
// El saldo se incrementa con una expresión SQL (monto_pagado = monto_pagado
// + X) en vez de calcular el nuevo valor en memoria: dos pagos simultáneos
// sobre la misma cuota suman ambos, sin pisarse.
func RegistrarPago(db *gorm.DB, institucionID uint, input RegistroPagoInput) (*ResultadoPago, error) {
	if input.Monto <= 0 {
		return nil, ErrMontoInvalido
	}

	var resultado ResultadoPago
	err := db.Transaction(func(tx *gorm.DB) error {
		cronograma, err := cronogramaDeInstitucion(tx, institucionID, input.CronogramaID)
		if err != nil {
			return err
		}

		if err := aplicarAbono(tx, cronograma.ID, input.Monto); err != nil {
			return err
		}
		// Relectura dentro de la transacción: refleja nuestro propio abono.
		if err := tx.First(cronograma, cronograma.ID).Error; err != nil {
			return err
		}

		numeroRecibo := input.NumeroRecibo
		if numeroRecibo == "" {
			if numeroRecibo, err = asignarNumeroRecibo(tx, institucionID); err != nil {
				return err
			}
		} else if err = avanzarContadorManual(tx, institucionID, numeroRecibo); err != nil {
			return err
		}

		metodo := input.Metodo
		if metodo == "" {
			metodo = "Efectivo"
		}

		pago := models.Pago{
			CronogramaPagoID: cronograma.ID,
			InstitucionID:    institucionID,
			Concepto:         cronograma.ConceptoPago.Nombre,
			Monto:            input.Monto,
			Metodo:           metodo,
			Referencia:       input.Referencia,
			NumeroRecibo:     numeroRecibo,
			FechaPago:        time.Now(),
			Observaciones:    input.Observaciones,
		}
		if err := tx.Create(&pago).Error; err != nil {
			return err
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

// GenerarDeudaMatricula crea la cuota automática del concepto "Matrícula" al
// inscribir a un estudiante. Se invoca dentro de la transacción del alta de
// matrícula; si el catálogo no tiene el concepto, la inscripción continúa
// sin deuda.
func GenerarDeudaMatricula(tx *gorm.DB, institucionID uint, matricula *models.Matricula) error {
	var concepto models.ConceptoPago
	err := tx.Where("institucion_id = ? AND nombre = ?", institucionID, "Matrícula").
		First(&concepto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	// Si la cuota de matrícula ya existe (reinscripción), no se duplica.
	// Unscoped: una fila con soft delete también ocupa el índice único.
	var existentes int64
	if err := tx.Unscoped().Model(&models.CronogramaPago{}).
		Where("estudiante_id = ? AND concepto_pago_id = ?", matricula.EstudianteID, concepto.ID).
		Count(&existentes).Error; err != nil {
		return err
	}
	if existentes > 0 {
		return nil
	}

	monto, err := montoEfectivo(&concepto, concepto.MontoSugerido, matricula.BecaDescuento)
	if err != nil {
		return err
	}
	vencimiento := time.Now().AddDate(0, 0, 30)
	if matricula.FechaIngreso != nil {
		vencimiento = matricula.FechaIngreso.AddDate(0, 0, 30)
	}

	return tx.Create(&models.CronogramaPago{
		EstudianteID:     matricula.EstudianteID,
		ConceptoPagoID:   concepto.ID,
		Monto:            monto,
		FechaVencimiento: vencimiento,
	}).Error
}

// EliminarDeudaMatricula borra la cuota de matrícula al anular la
// inscripción, solo si sigue impaga y sin abonos. Una cuota con pago
// parcial o completo no se toca: el historial contable no se reescribe.
//
// El borrado es físico (Unscoped): una fila con soft delete seguiría
// ocupando el índice único (estudiante, concepto) y la reinscripción del
// estudiante fallaría al regenerar la deuda. No se pierde historial: la
// condición garantiza que la cuota nunca recibió un abono.
func EliminarDeudaMatricula(tx *gorm.DB, institucionID uint, estudianteID uint) error {
	return tx.Unscoped().
		Where("estudiante_id = ? AND monto_pagado = 0 AND pagado = ?", estudianteID, false).
		Where("concepto_pago_id IN (?)", tx.Model(&models.ConceptoPago{}).Select("id").
			Where("institucion_id = ? AND nombre = ?", institucionID, "Matrícula")).
		Delete(&models.CronogramaPago{}).Error
}

// cronogramaDeInstitucion carga una cuota verificando, vía el estudiante,
// que pertenezca a la institución del solicitante. Cuota de otra
// institución y cuota inexistente responden igual.
func cronogramaDeInstitucion(tx *gorm.DB, institucionID, cronogramaID uint) (*models.CronogramaPago, error) {
	var cronograma models.CronogramaPago
	err := tx.Preload("ConceptoPago").
		Joins("JOIN estudiantes ON estudiantes.id = cronograma_pagos.estudiante_id AND estudiantes.deleted_at IS NULL").
		Where("cronograma_pagos.id = ? AND estudiantes.institucion_id = ?", cronogramaID, institucionID).
		First(&cronograma).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	return &cronograma, nil
}

// aplicarAbono suma el monto al acumulado de la cuota y recalcula la marca
// de pagado en la misma sentencia SQL. Ambas expresiones ven los valores
// previos de la fila, así que la marca queda consistente con el nuevo
// acumulado incluso bajo concurrencia.
func aplicarAbono(tx *gorm.DB, cronogramaID uint, monto float64) error {
	return tx.Model(&models.CronogramaPago{}).
		Where("id = ?", cronogramaID).
		Updates(map[string]interface{}{
			"monto_pagado": gorm.Expr("monto_pagado + ?", monto),
			"pagado":       gorm.Expr("monto_pagado + ? >= monto", monto),
		}).Error
}

// becasPorEstudiante devuelve el descuento de beca de la matrícula vigente
// (año en curso) de cada estudiante. Sin matrícula vigente, descuento cero.
func becasPorEstudiante(tx *gorm.DB, estudianteIDs []uint) (map[uint]float64, error) {
	type fila struct {
		EstudianteID  uint
		BecaDescuento float64
	}
	var filas []fila
	err := tx.Model(&models.Matricula{}).
		Where("estudiante_id IN ? AND anio = ? AND estado = ?", estudianteIDs, time.Now().Year(), "ACTIVA").
		Find(&filas).Error
	if err != nil {
		return nil, err
	}
	becas := make(map[uint]float64, len(filas))
	for _, f := range filas {
		becas[f.EstudianteID] = f.BecaDescuento
	}
	return becas, nil
}

// montoEfectivo calcula el importe a facturar a un estudiante. Con fórmula
// configurada en el concepto se evalúa sobre las variables 'monto' y 'beca';
// sin fórmula, descuento simple. Nunca retorna negativo.
func montoEfectivo(concepto *models.ConceptoPago, monto, beca float64) (float64, error) {
	if concepto.FormulaDescuento == "" {
		if resultado := monto - beca; resultado > 0 {
			return resultado, nil
		}
		return 0, nil
	}

	expresion, err := govaluate.NewEvaluableExpression(concepto.FormulaDescuento)
	if err != nil {
		return 0, err
	}
	valor, err := expresion.Evaluate(map[string]interface{}{
		"monto": monto,
		"beca":  beca,
	})
	if err != nil {
		return 0, err
	}
	resultado, ok := valor.(float64)
	if !ok || resultado < 0 {
		return 0, nil
	}
	return resultado, nil
}
