package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rental-api/domain"
	"rental-api/dto"
	"rental-api/middleware"
	"rental-api/services"
)

// TransactionController maneja las peticiones HTTP de reservas.
type TransactionController struct {
	service services.TransactionService
	logger  *zap.Logger
}

// NewTransactionController crea el controller de transacciones.
func NewTransactionController(service services.TransactionService, logger *zap.Logger) *TransactionController {
	return &TransactionController{service: service, logger: logger}
}

// Create maneja POST /api/transactions: el actor reserva como tenant.
func (ctl *TransactionController) Create(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request payload"})
		return
	}

	transaction, err := ctl.service.Create(c.Request.Context(), actor.ID, req)
	if err != nil {
		ctl.logger.Warn("transaction create failed", zap.String("tenant_id", actor.ID), zap.Error(err))
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

// Approve maneja PUT /api/transactions/:id/approve.
func (ctl *TransactionController) Approve(c *gin.Context) {
	ctl.applyTransition(c, ctl.service.Approve)
}

// Reject maneja PUT /api/transactions/:id/reject.
func (ctl *TransactionController) Reject(c *gin.Context) {
	ctl.applyTransition(c, ctl.service.Reject)
}

// Cancel maneja PUT /api/transactions/:id/cancel.
func (ctl *TransactionController) Cancel(c *gin.Context) {
	ctl.applyTransition(c, ctl.service.Cancel)
}

// Complete maneja PUT /api/transactions/:id/complete.
func (ctl *TransactionController) Complete(c *gin.Context) {
	ctl.applyTransition(c, ctl.service.Complete)
}

// ListForTenant maneja GET /api/transactions: las reservas del actor como
// tenant.
func (ctl *TransactionController) ListForTenant(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}

	page, size := pageParams(c)
	result, err := ctl.service.ListForTenant(c.Request.Context(), actor.ID, page, size)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListForOwner maneja GET /api/transactions/owner: las reservas sobre las
// propiedades del actor.
func (ctl *TransactionController) ListForOwner(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}

	page, size := pageParams(c)
	result, err := ctl.service.ListForOwner(c.Request.Context(), actor.ID, page, size)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (ctl *TransactionController) applyTransition(c *gin.Context, op func(ctx context.Context, id string, actor domain.Actor) (*domain.Transaction, error)) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}

	transaction, err := op(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		ctl.logger.Warn("transaction transition failed",
			zap.String("transaction_id", c.Param("id")),
			zap.String("actor_id", actor.ID),
			zap.Error(err))
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}
