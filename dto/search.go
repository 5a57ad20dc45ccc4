package dto

import "rental-api/domain"

// SearchRequest representa los parámetros de búsqueda de propiedades.
// Todos los filtros son opcionales; los punteros distinguen "ausente" de cero.
type SearchRequest struct {
	Latitude  *float64 `json:"latitude" form:"latitude"`
	Longitude *float64 `json:"longitude" form:"longitude"`
	Radius    *float64 `json:"radius" form:"radius"` // metros
	City      string   `json:"city" form:"city"`
	Type      string   `json:"type" form:"type"`
	MinPrice  *float64 `json:"min_price" form:"min_price"`
	MaxPrice  *float64 `json:"max_price" form:"max_price"`
	Page      int      `json:"page" form:"page"` // 0-based
	Size      int      `json:"size" form:"size"`
}

// HasGeo reports whether both coordinates were supplied.
func (r SearchRequest) HasGeo() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// SearchResponse representa la respuesta de una búsqueda de propiedades.
type SearchResponse struct {
	Properties []domain.Property `json:"properties"`
	Page       int               `json:"page"`
	Size       int               `json:"size"`
	TotalItems int               `json:"total_items"`
	TotalPages int               `json:"total_pages"`
}

// ErrorResponse representa una respuesta de error.
type ErrorResponse struct {
	Error string `json:"error"`
}
