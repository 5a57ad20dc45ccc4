package services

import (
	"rental-api/domain"
	"rental-api/utils"
)

// paginateSlice corta una página de un resultado filtrado en memoria.
// Una página fuera de rango devuelve vacío pero conserva el total.
func paginateSlice(items []domain.Property, page, size int) ([]domain.Property, int, error) {
	start, end := utils.PageBounds(page, size, len(items))
	return items[start:end], len(items), nil
}

func totalPages(total, size int) int {
	return utils.TotalPages(total, size)
}
