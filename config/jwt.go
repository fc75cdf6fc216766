package config

import (
	"log/slog"
	"os"
)

// JwtKey es la clave de firma HMAC para los tokens de sesión.
var JwtKey []byte

func LoadJWTKey() {
	key := os.Getenv("JWT_KEY")
	if key == "" {
		slog.Error("Error crítico: la variable de entorno JWT_KEY no está definida.")
		os.Exit(1)
	}
	JwtKey = []byte(key)
}
