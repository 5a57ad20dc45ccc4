package dto

import (
	"time"

	"rental-api/domain"
)

// TransactionRequest es el cuerpo de creación de una reserva.
type TransactionRequest struct {
	PropertyID string    `json:"property_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// TransactionPage es una página de transacciones.
type TransactionPage struct {
	Transactions []domain.Transaction `json:"transactions"`
	Page         int                  `json:"page"`
	Size         int                  `json:"size"`
	TotalItems   int                  `json:"total_items"`
	TotalPages   int                  `json:"total_pages"`
}
