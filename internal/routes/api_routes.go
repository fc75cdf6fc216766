package routes

import (
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/handlers"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes registra todas las rutas del API que requieren autenticación.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	// Grupo para todas las peticiones del API con prefijo /api
	apiGroup := api.Group("/api")
	{
		// --- CONCEPTOS DE PAGO ---
		conceptos := apiGroup.Group("/conceptos")
		{
			conceptos.GET("", handlers.ListarConceptosHandler)
			conceptos.GET("/:id", handlers.GetConceptoHandler)
			conceptos.POST("", middleware.PermissionMiddleware("conceptos_gestionar"), handlers.CreateConceptoHandler)
			conceptos.PUT("/:id", middleware.PermissionMiddleware("conceptos_gestionar"), handlers.UpdateConceptoHandler)
			conceptos.DELETE("/:id", middleware.PermissionMiddleware("conceptos_gestionar"), handlers.DeleteConceptoHandler)
		}

		// --- CRONOGRAMAS DE PAGO ---
		cronogramas := apiGroup.Group("/cronogramas")
		{
			cronogramas.POST("/generar", middleware.PermissionMiddleware("deudas_generar"), handlers.GenerarDeudaMasivaHandler)
			cronogramas.GET("/deudores", middleware.PermissionMiddleware("finanzas_ver"), handlers.ListarDeudoresHandler)
			cronogramas.GET("/deudores/export", middleware.PermissionMiddleware("finanzas_ver"), handlers.ExportarDeudoresHandler)
		}

		// --- MORA ---
		apiGroup.POST("/mora/acumular", middleware.PermissionMiddleware("deudas_generar"), handlers.AcumularMoraHandler)

		// --- PAGOS ---
		pagos := apiGroup.Group("/pagos")
		{
			pagos.POST("", middleware.PermissionMiddleware("pagos_registrar"), handlers.RegistrarPagoHandler)
			pagos.GET("", middleware.PermissionMiddleware("finanzas_ver"), handlers.ListarPagosHandler)
			pagos.GET("/siguiente-recibo", middleware.PermissionMiddleware("pagos_registrar"), handlers.SiguienteReciboHandler)
		}

		// --- COMPROBANTES DE PAGO ---
		// El envío lo hace el apoderado autenticado; la verificación, el personal.
		comprobantes := apiGroup.Group("/comprobantes")
		{
			comprobantes.POST("/submit", handlers.SubmitComprobanteHandler)
			comprobantes.GET("/pendientes", middleware.PermissionMiddleware("comprobantes_verificar"), handlers.ListarComprobantesPendientesHandler)
			comprobantes.POST("/:id/decidir", middleware.PermissionMiddleware("comprobantes_verificar"), handlers.DecidirComprobanteHandler)
		}

		// --- ESTUDIANTES ---
		estudiantes := apiGroup.Group("/estudiantes")
		{
			estudiantes.GET("", handlers.ListarEstudiantesHandler)
			estudiantes.GET("/:id", handlers.GetEstudianteHandler)
			estudiantes.POST("", middleware.PermissionMiddleware("estudiantes_gestionar"), handlers.CreateEstudianteHandler)
			estudiantes.PUT("/:id", middleware.PermissionMiddleware("estudiantes_gestionar"), handlers.UpdateEstudianteHandler)
			estudiantes.POST("/:id/retirar", middleware.PermissionMiddleware("estudiantes_gestionar"), handlers.RetirarEstudianteHandler)
		}

		// --- MATRÍCULAS ---
		matriculas := apiGroup.Group("/matriculas")
		{
			matriculas.POST("", middleware.PermissionMiddleware("matriculas_gestionar"), handlers.CreateMatriculaHandler)
			matriculas.POST("/:id/anular", middleware.PermissionMiddleware("matriculas_gestionar"), handlers.AnularMatriculaHandler)
		}
	}
}
