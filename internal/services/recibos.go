package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"gorm.io/gorm"
)

// SerieReciboPorDefecto se usa cuando la institución no tiene serie configurada.
const SerieReciboPorDefecto = "B001"

// asignarNumeroRecibo emite el siguiente número de recibo de la institución,
// con formato "SSS-NNNNNN" (serie fija, secuencia de 6 dígitos).
//
// Debe llamarse dentro de la misma transacción que inserta el Pago: el
// incremento atómico sobre ContadorRecibo toma el bloqueo de fila hasta el
// commit, de modo que dos emisiones concurrentes quedan serializadas y el
// índice único sobre (institución, número de recibo) actúa solo de respaldo.
func asignarNumeroRecibo(tx *gorm.DB, institucionID uint) (string, error) {
	contador, err := contadorDeInstitucion(tx, institucionID)
	if err != nil {
		return "", err
	}

	if err := tx.Model(&models.ContadorRecibo{}).
		Where("id = ?", contador.ID).
		Update("ultimo", gorm.Expr("ultimo + 1")).Error; err != nil {
		return "", err
	}

	// Releemos dentro de la transacción: vemos nuestro propio incremento y
	// nadie más puede incrementar hasta que liberemos el bloqueo.
	if err := tx.First(&contador, contador.ID).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%06d", contador.Serie, contador.Ultimo), nil
}

// avanzarContadorManual sincroniza el contador con un número de recibo
// digitado a mano por la caja. Si el número pertenece a la serie activa y
// va por delante de la secuencia, el contador salta hasta él dentro de la
// misma transacción del pago; sin este salto, la siguiente emisión
// automática caería sobre el número ya tomado, el índice único la
// rechazaría y la serie quedaría trabada para siempre.
func avanzarContadorManual(tx *gorm.DB, institucionID uint, numeroRecibo string) error {
	contador, err := contadorDeInstitucion(tx, institucionID)
	if err != nil {
		return err
	}
	secuencia := parsearSecuencia(numeroRecibo, contador.Serie)
	if secuencia <= contador.Ultimo {
		return nil
	}
	return tx.Model(&models.ContadorRecibo{}).
		Where("id = ? AND ultimo < ?", contador.ID, secuencia).
		Update("ultimo", secuencia).Error
}

// SiguienteNumeroRecibo devuelve el número que recibiría el próximo pago,
// sin reservarlo. Es solo informativo para la caja.
func SiguienteNumeroRecibo(db *gorm.DB, institucionID uint) (string, error) {
	contador, err := contadorDeInstitucion(db, institucionID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", contador.Serie, contador.Ultimo+1), nil
}

// contadorDeInstitucion devuelve el contador de la serie activa, creándolo si
// no existe. La siembra inicial parsea el último recibo ya emitido de la
// serie para continuar la numeración heredada; si no hay ninguno, la
// secuencia arranca en cero y el primer recibo sale "SSS-000001".
func contadorDeInstitucion(tx *gorm.DB, institucionID uint) (models.ContadorRecibo, error) {
	var institucion models.Institucion
	if err := tx.First(&institucion, institucionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ContadorRecibo{}, ErrNoEncontrado
		}
		return models.ContadorRecibo{}, err
	}

	serie := institucion.SerieRecibo
	if serie == "" {
		serie = SerieReciboPorDefecto
	}

	var contador models.ContadorRecibo
	err := tx.Where("institucion_id = ? AND serie = ?", institucionID, serie).
		First(&contador).Error
	if err == nil {
		return contador, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return contador, err
	}

	contador = models.ContadorRecibo{
		InstitucionID: institucionID,
		Serie:         serie,
		Ultimo:        ultimaSecuenciaEmitida(tx, institucionID, serie),
	}
	if err := tx.Create(&contador).Error; err != nil {
		// Otro proceso creó la fila entre nuestro First y el Create:
		// el índice único la protege, basta con releerla.
		if relee := tx.Where("institucion_id = ? AND serie = ?", institucionID, serie).
			First(&contador).Error; relee == nil {
			return contador, nil
		}
		return contador, err
	}
	return contador, nil
}

// ultimaSecuenciaEmitida recupera la secuencia más alta ya emitida en la
// serie dentro de la tabla de pagos, para que el contador continúe la
// numeración previa al contador mismo. Se toma el máximo parseado y no el
// pago más reciente: recibos heredados cargados fuera de orden sembrarían
// el contador bajo y la emisión chocaría con números ya tomados.
func ultimaSecuenciaEmitida(tx *gorm.DB, institucionID uint, serie string) int64 {
	var numeros []string
	err := tx.Model(&models.Pago{}).
		Where("institucion_id = ? AND numero_recibo LIKE ?", institucionID, serie+"-%").
		Pluck("numero_recibo", &numeros).Error
	if err != nil {
		return 0
	}
	var maxima int64
	for _, numero := range numeros {
		if secuencia := parsearSecuencia(numero, serie); secuencia > maxima {
			maxima = secuencia
		}
	}
	return maxima
}

func parsearSecuencia(numeroRecibo, serie string) int64 {
	resto := strings.TrimPrefix(numeroRecibo, serie+"-")
	seq, err := strconv.ParseInt(resto, 10, 64)
	if err != nil {
		return 0
	}
	return seq
}
