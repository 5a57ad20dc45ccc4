package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rental-api/dto"
	"rental-api/middleware"
	"rental-api/services"
)

// UserController maneja registro, login y consulta del usuario actual.
type UserController struct {
	service services.UserService
	logger  *zap.Logger
}

// NewUserController crea el controller de usuarios.
func NewUserController(service services.UserService, logger *zap.Logger) *UserController {
	return &UserController{service: service, logger: logger}
}

// Register maneja POST /api/auth/register.
func (ctl *UserController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request payload"})
		return
	}

	response, err := ctl.service.Register(req)
	if err != nil {
		ctl.logger.Warn("register failed", zap.String("email", req.Email), zap.Error(err))
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login maneja POST /api/auth/login.
func (ctl *UserController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request payload"})
		return
	}

	response, err := ctl.service.Login(req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Me maneja GET /api/auth/me: el usuario autenticado.
func (ctl *UserController) Me(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}

	user, err := ctl.service.GetByID(actor.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// HealthCheck maneja GET /health.
func (ctl *UserController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
