package dto

import (
	"fmt"

	"rental-api/domain"
)

// PropertyRequest es el cuerpo de creación/actualización de una propiedad.
// Update es un reemplazo completo: los campos omitidos quedan vacíos.
type PropertyRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	ZipCode     string   `json:"zip_code"`
	Country     string   `json:"country"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Type        string   `json:"type"`
	Price       float64  `json:"price"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Area        float64  `json:"area"`
	Amenities   []string `json:"amenities"`
	Images      []string `json:"images"`
}

// Validate checks the required fields and coordinate bounds.
func (r PropertyRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidArgument)
	}
	if r.Address == "" {
		return fmt.Errorf("%w: address is required", domain.ErrInvalidArgument)
	}
	if r.City == "" {
		return fmt.Errorf("%w: city is required", domain.ErrInvalidArgument)
	}
	if r.Type == "" {
		return fmt.Errorf("%w: type is required", domain.ErrInvalidArgument)
	}
	if r.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidArgument)
	}
	if r.Latitude == nil || r.Longitude == nil {
		return fmt.Errorf("%w: latitude and longitude are required", domain.ErrInvalidArgument)
	}
	return domain.ValidateCoordinates(*r.Latitude, *r.Longitude)
}

// StatusUpdateRequest es el cuerpo del cambio de status administrativo.
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// PropertyPage es una página de propiedades para los listados por dueño.
type PropertyPage struct {
	Properties []domain.Property `json:"properties"`
	Page       int               `json:"page"`
	Size       int               `json:"size"`
	TotalItems int               `json:"total_items"`
	TotalPages int               `json:"total_pages"`
}
