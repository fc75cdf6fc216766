package routes

import (
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registra las rutas públicas de autenticación.
// Estas rutas no pasan por el middleware de verificación de token.
func RegisterAuthRoutes(r *gin.Engine) {
	// Procesa las credenciales del formulario de ingreso.
	r.POST("/login", handlers.LoginHandler)

	// Cierra la sesión del usuario.
	r.GET("/logout", handlers.LogoutHandler)

	// Alta de un nuevo usuario mediante el código de la institución.
	r.POST("/register", handlers.RegisterHandler)
}
