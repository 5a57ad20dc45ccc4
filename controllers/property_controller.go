package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rental-api/domain"
	"rental-api/dto"
	"rental-api/middleware"
	"rental-api/services"
)

// PropertyController maneja las peticiones HTTP de propiedades.
type PropertyController struct {
	service services.PropertyService
	logger  *zap.Logger
}

// NewPropertyController crea el controller de propiedades.
func NewPropertyController(service services.PropertyService, logger *zap.Logger) *PropertyController {
	return &PropertyController{service: service, logger: logger}
}

// Search maneja GET /api/properties con los filtros como query params.
func (ctl *PropertyController) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid search parameters"})
		return
	}

	response, err := ctl.service.Search(c.Request.Context(), req)
	if err != nil {
		ctl.logger.Warn("search failed", zap.Error(err))
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetByID maneja GET /api/properties/:id.
func (ctl *PropertyController) GetByID(c *gin.Context) {
	property, err := ctl.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// Create maneja POST /api/properties. Requiere autenticación.
func (ctl *PropertyController) Create(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}

	var req dto.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request payload"})
		return
	}

	property, err := ctl.service.Create(c.Request.Context(), actor.ID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, property)
}

// Update maneja PUT /api/properties/:id. Sólo dueño o admin.
func (ctl *PropertyController) Update(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}

	var req dto.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request payload"})
		return
	}

	property, err := ctl.service.Update(c.Request.Context(), c.Param("id"), actor, req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

// Delete maneja DELETE /api/properties/:id. Sólo dueño o admin.
func (ctl *PropertyController) Delete(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}

	if err := ctl.service.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetStatus maneja PUT /api/admin/properties/:id/status: un admin fuerza el
// status de una propiedad (sacarla a MAINTENANCE, volverla a AVAILABLE). La
// ruta está detrás de AdminMiddleware.
func (ctl *PropertyController) SetStatus(c *gin.Context) {
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request payload"})
		return
	}

	status, err := domain.ParsePropertyStatus(req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}

	property, err := ctl.service.SetStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

// ListOwn maneja GET /api/properties/owner: las propiedades del actor.
func (ctl *PropertyController) ListOwn(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}

	page, size := pageParams(c)
	result, err := ctl.service.ListByOwner(c.Request.Context(), actor.ID, page, size)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// pageParams lee page/size de la query. Valores no numéricos caen en los
// defaults; los negativos los rechaza el servicio.
func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		page = 0
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil {
		size = 20
	}
	return page, size
}
