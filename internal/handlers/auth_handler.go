package handlers

import (
	"net/http"
	"time"

	"github.com/Jackson-sch/sistema-escolar-pro-sub002/config"
	"github.com/Jackson-sch/sistema-escolar-pro-sub002/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type LoginInput struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterInput struct {
	Login             string `json:"login" binding:"required"`
	Password          string `json:"password" binding:"required,min=8"`
	NombreCompleto    string `json:"nombreCompleto"`
	CodigoInstitucion string `json:"codigoInstitucion" binding:"required"`
}

// LoginHandler valida las credenciales y emite el token de sesión, tanto en
// la cookie auth_token como en el cuerpo de la respuesta.
func LoginHandler(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var usuario models.Usuario
	if err := config.DB.Where("login = ?", input.Login).First(&usuario).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas"})
		return
	}

	expiracion := time.Now().Add(12 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": usuario.ID,
		"exp":     expiracion.Unix(),
	})
	firmado, err := token.SignedString(config.JwtKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo emitir el token"})
		return
	}

	c.SetCookie("auth_token", firmado, int(time.Until(expiracion).Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": firmado})
}

// LogoutHandler invalida la cookie de sesión.
func LogoutHandler(c *gin.Context) {
	c.SetCookie("auth_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"mensaje": "Sesión cerrada"})
}

// RegisterHandler da de alta una cuenta nueva asociada a una institución por
// su código. La cuenta nace sin roles: el administrador se los asigna después.
func RegisterHandler(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var institucion models.Institucion
	if err := config.DB.Where("codigo = ?", input.CodigoInstitucion).First(&institucion).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Código de institución inválido"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo procesar la contraseña"})
		return
	}

	usuario := models.Usuario{
		Login:          input.Login,
		PasswordHash:   string(hash),
		NombreCompleto: input.NombreCompleto,
		InstitucionID:  institucion.ID,
	}
	if err := config.DB.Create(&usuario).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "El usuario ya existe"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"mensaje": "Usuario registrado", "id": usuario.ID})
}
