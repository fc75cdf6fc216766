package services_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/services"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumeracionRecibos_ArrancaEnUnoYEsMonotona(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión", 500, 0)
	estudiante := crearEstudiante(t, db, institucion.ID, nil)
	cronograma := crearCronograma(t, db, estudiante.ID, concepto.ID, 500, time.Now())

	for i := 1; i <= 3; i++ {
		resultado, err := services.RegistrarPago(db, institucion.ID, services.RegistroPagoInput{
			CronogramaID: cronograma.ID,
			Monto:        10,
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("B001-%06d", i), resultado.NumeroRecibo)
	}
}

func TestNumeracionRecibos_ContinuaLaSerieHeredada(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión", 500, 0)
	estudiante := crearEstudiante(t, db, institucion.ID, nil)
	cronograma := crearCronograma(t, db, estudiante.ID, concepto.ID, 500, time.Now())

	// Recibo emitido antes de que existiera el contador.
	require.NoError(t, db.Create(&models.Pago{
		CronogramaPagoID: cronograma.ID,
		InstitucionID:    institucion.ID,
		Concepto:         "Pensión",
		Monto:            10,
		NumeroRecibo:     "B001-000045",
		FechaPago:        time.Now(),
	}).Error)

	resultado, err := services.RegistrarPago(db, institucion.ID, services.RegistroPagoInput{
		CronogramaID: cronograma.ID,
		Monto:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, "B001-000046", resultado.NumeroRecibo)
}

func TestSiguienteNumeroRecibo_NoConsumeLaSecuencia(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión", 500, 0)
	estudiante := crearEstudiante(t, db, institucion.ID, nil)
	cronograma := crearCronograma(t, db, estudiante.ID, concepto.ID, 500, time.Now())

	siguiente, err := services.SiguienteNumeroRecibo(db, institucion.ID)
	require.NoError(t, err)
	assert.Equal(t, "B001-000001", siguiente)

	// Consultar varias veces no mueve el contador.
	siguiente, err = services.SiguienteNumeroRecibo(db, institucion.ID)
	require.NoError(t, err)
	assert.Equal(t, "B001-000001", siguiente)

	resultado, err := services.RegistrarPago(db, institucion.ID, services.RegistroPagoInput{
		CronogramaID: cronograma.ID,
		Monto:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, "B001-000001", resultado.NumeroRecibo)
}

func TestNumeracionRecibos_SeriesIndependientesPorInstitucion(t *testing.T) {
	db := abrirBD(t)
	institucionA := crearInstitucion(t, db, "IE001")
	institucionB := models.Institucion{Nombre: "Colegio B", Codigo: "IE002", SerieRecibo: "C007"}
	require.NoError(t, db.Create(&institucionB).Error)

	conceptoA := crearConcepto(t, db, institucionA.ID, "Pensión", 100, 0)
	conceptoB := crearConcepto(t, db, institucionB.ID, "Pensión", 100, 0)
	estudianteA := crearEstudiante(t, db, institucionA.ID, nil)
	estudianteB := crearEstudiante(t, db, institucionB.ID, nil)
	cronogramaA := crearCronograma(t, db, estudianteA.ID, conceptoA.ID, 100, time.Now())
	cronogramaB := crearCronograma(t, db, estudianteB.ID, conceptoB.ID, 100, time.Now())

	resultadoA, err := services.RegistrarPago(db, institucionA.ID, services.RegistroPagoInput{CronogramaID: cronogramaA.ID, Monto: 10})
	require.NoError(t, err)
	resultadoB, err := services.RegistrarPago(db, institucionB.ID, services.RegistroPagoInput{CronogramaID: cronogramaB.ID, Monto: 10})
	require.NoError(t, err)

	assert.Equal(t, "B001-000001", resultadoA.NumeroRecibo)
	assert.Equal(t, "C007-000001", resultadoB.NumeroRecibo)
}

// Dos registros de pago simultáneos sobre cuotas distintas nunca deben
// compartir número de recibo: la asignación pasa por el incremento atómico
// del contador dentro de la transacción de cada pago.
func TestNumeracionRecibos_ConcurrenciaSinDuplicados(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión", 100, 0)

	const pagos = 4
	cronogramas := make([]models.CronogramaPago, pagos)
	for i := range cronogramas {
		estudiante := crearEstudiante(t, db, institucion.ID, nil)
		cronogramas[i] = crearCronograma(t, db, estudiante.ID, concepto.ID, 100, time.Now())
	}

	var wg sync.WaitGroup
	numeros := make(chan string, pagos)
	for i := 0; i < pagos; i++ {
		wg.Add(1)
		go func(cronogramaID uint) {
			defer wg.Done()
			resultado, err := services.RegistrarPago(db, institucion.ID, services.RegistroPagoInput{
				CronogramaID: cronogramaID,
				Monto:        100,
			})
			if err == nil {
				numeros <- resultado.NumeroRecibo
			}
		}(cronogramas[i].ID)
	}
	wg.Wait()
	close(numeros)

	vistos := make(map[string]bool)
	total := 0
	for numero := range numeros {
		assert.False(t, vistos[numero], "número de recibo duplicado: %s", numero)
		vistos[numero] = true
		total++
	}
	assert.Equal(t, pagos, total)
}

// Un número de recibo digitado a mano por delante de la secuencia no debe
// trabar la serie: el contador salta hasta el número manual y las emisiones
// automáticas siguientes continúan después de él.
func TestNumeracionRecibos_ReciboManualAdelantadoNoTrabaLaSerie(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión", 100, 0)
	estudiante := crearEstudiante(t, db, institucion.ID, nil)
	cronograma := crearCronograma(t, db, estudiante.ID, concepto.ID, 500, time.Now())

	resultado, err := services.RegistrarPago(db, institucion.ID, services.RegistroPagoInput{
		CronogramaID: cronograma.ID,
		Monto:        10,
	})
	require.NoError(t, err)
	require.Equal(t, "B001-000001", resultado.NumeroRecibo)

	// La caja digita a mano el siguiente número de la serie.
	_, err = services.RegistrarPago(db, institucion.ID, services.RegistroPagoInput{
		CronogramaID: cronograma.ID,
		Monto:        10,
		NumeroRecibo: "B001-000002",
	})
	require.NoError(t, err)

	for _, esperado := range []string{"B001-000003", "B001-000004", "B001-000005"} {
		resultado, err := services.RegistrarPago(db, institucion.ID, services.RegistroPagoInput{
			CronogramaID: cronograma.ID,
			Monto:        10,
		})
		require.NoError(t, err)
		assert.Equal(t, esperado, resultado.NumeroRecibo)
	}
}

// La siembra del contador toma la secuencia más alta de la serie, no el
// recibo creado más recientemente: recibos heredados cargados fuera de
// orden no deben sembrar el contador bajo.
func TestNumeracionRecibos_SiembraConElMaximoHeredado(t *testing.T) {
	db := abrirBD(t)
	institucion := crearInstitucion(t, db, "IE001")
	concepto := crearConcepto(t, db, institucion.ID, "Pensión", 100, 0)
	estudiante := crearEstudiante(t, db, institucion.ID, nil)
	cronograma := crearCronograma(t, db, estudiante.ID, concepto.ID, 500, time.Now())

	for _, numero := range []string{"B001-000045", "B001-000010"} {
		require.NoError(t, db.Create(&models.Pago{
			CronogramaPagoID: cronograma.ID,
			InstitucionID:    institucion.ID,
			Concepto:         "Pensión",
			Monto:            10,
			NumeroRecibo:     numero,
			FechaPago:        time.Now(),
		}).Error)
	}

	resultado, err := services.RegistrarPago(db, institucion.ID, services.RegistroPagoInput{
		CronogramaID: cronograma.ID,
		Monto:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, "B001-000046", resultado.NumeroRecibo)
}
