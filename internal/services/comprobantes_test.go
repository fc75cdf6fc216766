package services_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/services"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitComprobante_SoloSobreCuotasDeSusHijos(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión", 300, 0)

	hijo := crearEstudiante(t, db, institucion.ID, nil)
	ajeno := crearEstudiante(t, db, institucion.ID, nil)
	cuotaHijo := crearCronograma(t, db, hijo.ID, concepto.ID, 300, time.Now())
	cuotaAjena := crearCronograma(t, db, ajeno.ID, concepto.ID, 300, time.Now())

	usuario, _ := crearApoderadoCon(t, db, institucion.ID, hijo)

	comprobante, err := services.SubmitComprobante(db, usuario.ID, services.SubmitComprobanteInput{
		CronogramaID:    cuotaHijo.ID,
		ArchivoURL:      "/static/uploads/comprobantes/v1.jpg",
		Monto:           300,
		BancoOrigen:     "BCP",
		NumeroOperacion: "OP-778123",
		FechaOperacion:  time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ComprobantePendiente, comprobante.Estado)

	_, err = services.SubmitComprobante(db, usuario.ID, services.SubmitComprobanteInput{
		CronogramaID: cuotaAjena.ID,
		Monto:        300,
	})
	require.ErrorIs(t, err, services.ErrNoEncontrado)
}

// Escenario completo del flujo: concepto de 350 con beca de 50 genera una
// cuota de 300; aprobar un comprobante por 300 la deja pagada y emite
// exactamente un pago por transferencia.
func TestAprobarComprobante_EmiteUnSoloPago(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión Marzo", 350, 0)
	estudiante := crearEstudiante(t, db, institucion.ID, nil)
	require.NoError(t, db.Create(&models.Matricula{
		EstudianteID:  estudiante.ID,
		Anio:          time.Now().Year(),
		BecaDescuento: 50,
	}).Error)

	_, err := services.GenerarCronogramaMasivo(db, institucion.ID, services.GeneracionMasivaInput{
		ConceptoID:       concepto.ID,
		Monto:            350,
		FechaVencimiento: time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	var cuota models.CronogramaPago
	require.NoError(t, db.Where("estudiante_id = ?", estudiante.ID).First(&cuota).Error)
	require.Equal(t, 300.0, cuota.Monto)

	usuario, _ := crearApoderadoCon(t, db, institucion.ID, estudiante)
	comprobante, err := services.SubmitComprobante(db, usuario.ID, services.SubmitComprobanteInput{
		CronogramaID:    cuota.ID,
		Monto:           300,
		BancoOrigen:     "BCP",
		NumeroOperacion: "OP-001",
		FechaOperacion:  time.Now(),
	})
	require.NoError(t, err)

	verificador := models.Usuario{Login: "tesoreria", PasswordHash: "x", InstitucionID: institucion.ID}
	require.NoError(t, db.Create(&verificador).Error)

	resultado, err := services.AprobarComprobante(db, institucion.ID, verificador.ID, comprobante.ID)
	require.NoError(t, err)
	assert.True(t, resultado.PagadoTotal)
	assert.Equal(t, 0.0, resultado.SaldoRestante)

	cuota = recargarCronograma(t, db, cuota.ID)
	assert.True(t, cuota.Pagado)
	assert.Equal(t, 300.0, cuota.MontoPagado)

	var pagos []models.Pago
	require.NoError(t, db.Where("cronograma_pago_id = ?", cuota.ID).Find(&pagos).Error)
	require.Len(t, pagos, 1)
	assert.Equal(t, 300.0, pagos[0].Monto)
	assert.Equal(t, "Transferencia", pagos[0].Metodo)
	assert.Equal(t, "OP-001", pagos[0].Referencia)

	var aprobado models.ComprobantePago
	require.NoError(t, db.First(&aprobado, comprobante.ID).Error)
	assert.Equal(t, models.ComprobanteAprobado, aprobado.Estado)
	require.NotNil(t, aprobado.PagoID)
	assert.Equal(t, pagos[0].ID, *aprobado.PagoID)
	require.NotNil(t, aprobado.VerificadoPorID)
	assert.Equal(t, verificador.ID, *aprobado.VerificadoPorID)
}

func TestAprobarComprobante_EstadosTerminalesNoSeReabren(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión", 300, 0)
	estudiante := crearEstudiante(t, db, institucion.ID, nil)
	cuota := crearCronograma(t, db, estudiante.ID, concepto.ID, 300, time.Now())
	usuario, _ := crearApoderadoCon(t, db, institucion.ID, estudiante)

	comprobante, err := services.SubmitComprobante(db, usuario.ID, services.SubmitComprobanteInput{
		CronogramaID: cuota.ID,
		Monto:        300,
	})
	require.NoError(t, err)

	_, err = services.AprobarComprobante(db, institucion.ID, 1, comprobante.ID)
	require.NoError(t, err)

	// Reaprobar no emite un segundo pago.
	_, err = services.AprobarComprobante(db, institucion.ID, 1, comprobante.ID)
	require.ErrorIs(t, err, services.ErrEstadoFinal)

	var pagos int64
	require.NoError(t, db.Model(&models.Pago{}).
		Where("cronograma_pago_id = ?", cuota.ID).Count(&pagos).Error)
	assert.EqualValues(t, 1, pagos)

	err = services.RechazarComprobante(db, institucion.ID, 1, comprobante.ID, "ilegible")
	require.ErrorIs(t, err, services.ErrEstadoFinal)
}

func TestRechazarComprobante_NoTocaElLedger(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión", 300, 0)
	estudiante := crearEstudiante(t, db, institucion.ID, nil)
	cuota := crearCronograma(t, db, estudiante.ID, concepto.ID, 300, time.Now())
	usuario, _ := crearApoderadoCon(t, db, institucion.ID, estudiante)

	comprobante, err := services.SubmitComprobante(db, usuario.ID, services.SubmitComprobanteInput{
		CronogramaID: cuota.ID,
		Monto:        300,
	})
	require.NoError(t, err)

	err = services.RechazarComprobante(db, institucion.ID, 7, comprobante.ID, "voucher ilegible")
	require.NoError(t, err)

	var rechazado models.ComprobantePago
	require.NoError(t, db.First(&rechazado, comprobante.ID).Error)
	assert.Equal(t, models.ComprobanteRechazado, rechazado.Estado)
	assert.Equal(t, "voucher ilegible", rechazado.MotivoRechazo)
	assert.Nil(t, rechazado.PagoID)

	recargada := recargarCronograma(t, db, cuota.ID)
	assert.Equal(t, 0.0, recargada.MontoPagado)
	assert.False(t, recargada.Pagado)

	var pagos int64
	require.NoError(t, db.Model(&models.Pago{}).Count(&pagos).Error)
	assert.EqualValues(t, 0, pagos)
}

func TestRechazarComprobante_MotivoObligatorio(t *testing.T) {
	db := abrirBD(t)
	err := services.RechazarComprobante(db, 1, 1, 99, "")
	require.ErrorIs(t, err, services.ErrMotivoRequerido)
}

func TestComprobantes_AisladosPorInstitucion(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	intrusa := crearInstitucion(t, db, "IE002")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión", 300, 0)
	estudiante := crearEstudiante(t, db, institucion.ID, nil)
	cuota := crearCronograma(t, db, estudiante.ID, concepto.ID, 300, time.Now())
	usuario, _ := crearApoderadoCon(t, db, institucion.ID, estudiante)

	comprobante, err := services.SubmitComprobante(db, usuario.ID, services.SubmitComprobanteInput{
		CronogramaID: cuota.ID,
		Monto:        300,
	})
	require.NoError(t, err)

	// Desde otra institución el comprobante no existe.
	_, err = services.AprobarComprobante(db, intrusa.ID, 1, comprobante.ID)
	require.ErrorIs(t, err, services.ErrNoEncontrado)
	err = services.RechazarComprobante(db, intrusa.ID, 1, comprobante.ID, "x")
	require.ErrorIs(t, err, services.ErrNoEncontrado)

	pendientes, err := services.ListarComprobantesPendientes(db, intrusa.ID)
	require.NoError(t, err)
	assert.Empty(t, pendientes)

	pendientes, err = services.ListarComprobantesPendientes(db, institucion.ID)
	require.NoError(t, err)
	require.Len(t, pendientes, 1)
	assert.Equal(t, comprobante.ID, pendientes[0].ID)
}

// Dos verificadores decidiendo el mismo comprobante a la vez: la transición
// de estado lleva el WHERE sobre PENDIENTE, así que solo una decisión
// aplica y el comprobante emite a lo sumo un pago.
func TestComprobantes_DecisionesSimultaneasEmitenUnSoloPago(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión", 300, 0)
	estudiante := crearEstudiante(t, db, institucion.ID, nil)
	cuota := crearCronograma(t, db, estudiante.ID, concepto.ID, 300, time.Now())
	usuario, _ := crearApoderadoCon(t, db, institucion.ID, estudiante)

	comprobante, err := services.SubmitComprobante(db, usuario.ID, services.SubmitComprobanteInput{
		CronogramaID: cuota.ID,
		Monto:        300,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	resultados := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(verificadorID uint) {
			defer wg.Done()
			_, err := services.AprobarComprobante(db, institucion.ID, verificadorID, comprobante.ID)
			resultados <- err
		}(uint(i + 1))
	}
	wg.Wait()
	close(resultados)

	exitos := 0
	for err := range resultados {
		if err == nil {
			exitos++
			continue
		}
		require.True(t, errors.Is(err, services.ErrEstadoFinal), "error inesperado: %v", err)
	}
	assert.Equal(t, 1, exitos)

	var pagos int64
	require.NoError(t, db.Model(&models.Pago{}).
		Where("cronograma_pago_id = ?", cuota.ID).Count(&pagos).Error)
	assert.EqualValues(t, 1, pagos)

	recargada := recargarCronograma(t, db, cuota.ID)
	assert.Equal(t, 300.0, recargada.MontoPagado)
}
