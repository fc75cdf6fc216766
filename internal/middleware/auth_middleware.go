package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/config"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// CachedUserData - estructura única para todos los datos del usuario en caché.
type CachedUserData struct {
	UserID        uint     `json:"user_id"`
	Login         string   `json:"login"`
	InstitucionID uint     `json:"institucion_id"`
	Roles         []string `json:"roles"`
	Permisos      []string `json:"permisos"`
}

// AuthMiddleware autentica el token de sesión y deja en el contexto al
// usuario, su institución y sus permisos. Los datos se cachean en Redis por
// 10 minutos para no golpear la base en cada request.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie("auth_token")
		if err != nil || tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				handleAuthError(c, "Token de autorización no provisto")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				handleAuthError(c, "Formato inválido del encabezado Authorization")
				return
			}
			tokenStr = parts[1]
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("método de firma inesperado: %v", token.Header["alg"])
			}
			return config.JwtKey, nil
		})
		if err != nil || !token.Valid {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "Token inválido o expirado")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			handleAuthError(c, "Claims del token inválidos")
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			handleAuthError(c, "Formato inválido del ID de usuario en el token")
			return
		}
		userID := uint(userIDFloat)

		cacheKey := fmt.Sprintf("user:%d:data", userID)
		if config.RDB != nil {
			cachedData, err := config.RDB.Get(config.Ctx, cacheKey).Result()
			if err == nil {
				var userData CachedUserData
				if json.Unmarshal([]byte(cachedData), &userData) == nil {
					setContextAndProceed(c, &userData)
					return
				}
				slog.Warn("No se pudo deserializar el usuario cacheado", "user_id", userID)
			} else if err != redis.Nil {
				slog.Error("Falló el GET de Redis", "error", err, "user_id", userID)
			}
		}

		var dbUser models.Usuario
		if err := config.DB.Preload("Roles.Permisos").First(&dbUser, userID).Error; err != nil {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "El usuario del token no existe")
			return
		}

		var roles []string
		var permisos []string
		vistos := make(map[string]bool)
		esAdmin := false
		for _, rol := range dbUser.Roles {
			roles = append(roles, rol.Nombre)
			if rol.Nombre == "admin" {
				esAdmin = true
			}
			for _, permiso := range rol.Permisos {
				if !vistos[permiso.Nombre] {
					vistos[permiso.Nombre] = true
					permisos = append(permisos, permiso.Nombre)
				}
			}
		}
		// El rol admin habilita todo sin enumerar permisos.
		if esAdmin {
			permisos = append(permisos, "admin")
		}

		userData := CachedUserData{
			UserID:        dbUser.ID,
			Login:         dbUser.Login,
			InstitucionID: dbUser.InstitucionID,
			Roles:         roles,
			Permisos:      permisos,
		}

		if config.RDB != nil {
			if jsonData, err := json.Marshal(userData); err == nil {
				if err := config.RDB.Set(config.Ctx, cacheKey, jsonData, 10*time.Minute).Err(); err != nil {
					slog.Error("No se pudo cachear al usuario", "error", err, "user_id", userID)
				}
			}
		}

		setContextAndProceed(c, &userData)
	}
}

// PermissionMiddleware exige un permiso concreto. El rol admin pasa siempre.
func PermissionMiddleware(permiso string) gin.HandlerFunc {
	return func(c *gin.Context) {
		valor, ok := c.Get("permisos")
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acceso denegado"})
			return
		}
		permisos, ok := valor.([]string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acceso denegado"})
			return
		}
		for _, p := range permisos {
			if p == permiso || p == "admin" {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acceso denegado"})
	}
}

func setContextAndProceed(c *gin.Context, userData *CachedUserData) {
	c.Set("user_id", userData.UserID)
	c.Set("login", userData.Login)
	c.Set("institucion_id", userData.InstitucionID)
	c.Set("roles", userData.Roles)
	c.Set("permisos", userData.Permisos)
	c.Next()
}

func handleAuthError(c *gin.Context, mensaje string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": mensaje})
}
