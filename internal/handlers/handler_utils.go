package handlers

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// institucionDesdeContexto recupera la institución del usuario autenticado,
// colocada en el contexto por el middleware de autenticación.
func institucionDesdeContexto(c *gin.Context) (uint, bool) {
	valor, ok := c.Get("institucion_id")
	if !ok {
		return 0, false
	}
	institucionID, ok := valor.(uint)
	return institucionID, ok
}

func usuarioDesdeContexto(c *gin.Context) (uint, bool) {
	valor, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	usuarioID, ok := valor.(uint)
	return usuarioID, ok
}

// saveUploadedFile guarda un archivo del formulario con nombre aleatorio
// (uuid) para evitar colisiones y devuelve la URL relativa, o cadena vacía
// si el campo no vino en el formulario.
func saveUploadedFile(c *gin.Context, formKey, uploadDir string) (string, error) {
	file, header, err := c.Request.FormFile(formKey)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", fmt.Errorf("error al leer el campo '%s' del formulario: %v", formKey, err)
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	fileName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(uploadDir, fileName)

	out, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("no se pudo crear el archivo en el servidor: %v", err)
	}
	defer out.Close()

	if _, err = io.Copy(out, file); err != nil {
		return "", fmt.Errorf("no se pudo copiar el contenido del archivo: %v", err)
	}

	return "/" + filepath.ToSlash(filePath), nil
}

// montoEnLetras convierte un importe a su forma escrita para el recibo,
// por ejemplo "three hundred soles con 50/100 céntimos".
func montoEnLetras(monto float64) string {
	soles := int(monto)
	centimos := int(math.Round((monto - float64(soles)) * 100))
	return fmt.Sprintf("%s soles con %02d/100 céntimos", num2words.Convert(soles), centimos)
}

// parsearFecha acepta el formato de fecha de los formularios (YYYY-MM-DD).
func parsearFecha(valor string) (time.Time, error) {
	return time.Parse("2006-01-02", valor)
}
