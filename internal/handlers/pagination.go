package handlers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	tamanoPaginaPorDefecto = 20
	tamanoPaginaMaximo     = 100
)

// paginaYTamano lee los parámetros "page" y "pageSize" de la query string
// y los acota a los límites de los listados.
func paginaYTamano(c *gin.Context) (int, int) {
	pagina, _ := strconv.Atoi(c.Query("page"))
	if pagina <= 0 {
		pagina = 1
	}

	tamano, _ := strconv.Atoi(c.Query("pageSize"))
	switch {
	case tamano > tamanoPaginaMaximo:
		tamano = tamanoPaginaMaximo
	case tamano <= 0:
		tamano = tamanoPaginaPorDefecto
	}
	return pagina, tamano
}

// PaginatedResponse es el sobre común de todos los listados paginados del API.
type PaginatedResponse struct {
	Data        interface{} `json:"data"`
	TotalRows   int64       `json:"totalRows"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	PageSize    int         `json:"pageSize"`
}

// Paginate es un scope de GORM que aplica el offset y el límite de la
// página pedida. El conteo total corre aparte, sin el scope.
func Paginate(c *gin.Context) func(db *gorm.DB) *gorm.DB {
	pagina, tamano := paginaYTamano(c)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((pagina - 1) * tamano).Limit(tamano)
	}
}

// CreatePaginatedResponse arma el sobre de respuesta a partir de la página
// consultada y el total de filas ya contado por el handler.
func CreatePaginatedResponse(c *gin.Context, data interface{}, totalRows int64) PaginatedResponse {
	pagina, tamano := paginaYTamano(c)

	totalPages := 0
	if totalRows > 0 {
		totalPages = int(math.Ceil(float64(totalRows) / float64(tamano)))
	}

	return PaginatedResponse{
		Data:        data,
		TotalRows:   totalRows,
		TotalPages:  totalPages,
		CurrentPage: pagina,
		PageSize:    tamano,
	}
}
