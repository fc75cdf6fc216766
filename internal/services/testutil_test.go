package services_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// abrirBD levanta una base SQLite de prueba por test. Se usa un archivo en
// el directorio temporal (no :memory:) con _txlock=immediate para que las
// transacciones concurrentes de los tests de carrera se serialicen igual
// que lo harían los bloqueos de fila en Postgres.
func abrirBD(t *testing.T) *gorm.DB {
	t.Helper()

	ruta := filepath.Join(t.TempDir(), "test.db")
	dsn := ruta + "?_busy_timeout=10000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Institucion{},
		&models.Rol{},
		&models.Permiso{},
		&models.Usuario{},
		&models.Aula{},
		&models.Estudiante{},
		&models.Matricula{},
		&models.Apoderado{},
		&models.ConceptoPago{},
		&models.CronogramaPago{},
		&models.Pago{},
		&models.ComprobantePago{},
		&models.ContadorRecibo{},
	))
	return db
}

func crearInstitucion(t *testing.T, db *gorm.DB, codigo string) models.Institucion {
	t.Helper()
	institucion := models.Institucion{Nombre: "Colegio " + codigo, Codigo: codigo}
	require.NoError(t, db.Create(&institucion).Error)
	return institucion
}

func crearEstudiante(t *testing.T, db *gorm.DB, institucionID uint, aulaID *uint) models.Estudiante {
	t.Helper()
	estudiante := models.Estudiante{
		InstitucionID: institucionID,
		AulaID:        aulaID,
		Apellidos:     "Quispe",
		Nombres:       "Ana",
		DNI:           fmt.Sprintf("dni-%d-%d", institucionID, time.Now().UnixNano()),
	}
	require.NoError(t, db.Create(&estudiante).Error)
	return estudiante
}

func crearConcepto(t *testing.T, db *gorm.DB, institucionID uint, nombre string, monto, tasaMora float64) models.ConceptoPago {
	t.Helper()
	concepto := models.ConceptoPago{
		InstitucionID:  institucionID,
		Nombre:         nombre,
		MontoSugerido:  monto,
		TasaMoraDiaria: tasaMora,
	}
	require.NoError(t, db.Create(&concepto).Error)
	return concepto
}

func crearCronograma(t *testing.T, db *gorm.DB, estudianteID, conceptoID uint, monto float64, vencimiento time.Time) models.CronogramaPago {
	t.Helper()
	cronograma := models.CronogramaPago{
		EstudianteID:     estudianteID,
		ConceptoPagoID:   conceptoID,
		Monto:            monto,
		FechaVencimiento: vencimiento,
	}
	require.NoError(t, db.Create(&cronograma).Error)
	return cronograma
}

func crearApoderadoCon(t *testing.T, db *gorm.DB, institucionID uint, estudiante models.Estudiante) (models.Usuario, models.Apoderado) {
	t.Helper()
	usuario := models.Usuario{
		Login:         fmt.Sprintf("apoderado-%d-%d", institucionID, time.Now().UnixNano()),
		PasswordHash:  "x",
		InstitucionID: institucionID,
	}
	require.NoError(t, db.Create(&usuario).Error)

	apoderado := models.Apoderado{
		UsuarioID:   usuario.ID,
		Parentesco:  "Madre",
		Estudiantes: []models.Estudiante{estudiante},
	}
	require.NoError(t, db.Create(&apoderado).Error)
	return usuario, apoderado
}

func recargarCronograma(t *testing.T, db *gorm.DB, id uint) models.CronogramaPago {
	t.Helper()
	var cronograma models.CronogramaPago
	require.NoError(t, db.First(&cronograma, id).Error)
	return cronograma
}
