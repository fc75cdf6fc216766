package main

import (
	"log/slog"
	"os"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/config"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/routes"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadJWTKey()
	config.ConnectDB()
	config.ConnectRedis()

	// Migraciones automáticas: GORM crea y ajusta las tablas según los modelos.
	err := config.DB.AutoMigrate(
		&models.Institucion{},
		&models.Usuario{},
		&models.Rol{},
		&models.Permiso{},
		&models.Aula{},
		&models.Estudiante{},
		&models.Apoderado{},
		&models.Matricula{},
		&models.ConceptoPago{},
		&models.CronogramaPago{},
		&models.Pago{},
		&models.ComprobantePago{},
		&models.ContadorRecibo{},
	)
	if err != nil {
		slog.Error("Error en las migraciones automáticas", "error", err)
		os.Exit(1)
	}

	r := gin.Default()
	r.MaxMultipartMemory = 10 << 20

	// Archivos subidos (comprobantes) servidos de forma estática.
	r.Static("/static", "./static")

	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("Servidor iniciado", "puerto", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("El servidor terminó con error", "error", err)
		os.Exit(1)
	}
}
