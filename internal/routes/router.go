package routes

import (
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes inicializa todas las rutas de la aplicación.
func SetupRoutes(r *gin.Engine) {
	// --- Rutas públicas ---
	// Primero registramos las rutas que no requieren autenticación:
	// inicio de sesión y registro de usuarios.
	RegisterAuthRoutes(r)

	// --- Grupo de rutas protegidas ---
	// Todas las rutas de este grupo requieren un usuario autenticado.
	// El middleware `AuthMiddleware` valida el token JWT y deja en el
	// contexto el usuario, su institución y sus permisos.
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
