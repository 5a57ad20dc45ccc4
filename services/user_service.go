package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"rental-api/domain"
	"rental-api/dto"
	"rental-api/repositories"
	"rental-api/utils"
)

// UserService define registro, login y consulta de usuarios.
type UserService interface {
	Register(req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(req dto.LoginRequest) (*dto.AuthResponse, error)
	GetByID(id string) (*domain.User, error)
}

type userService struct {
	repo   repositories.UserRepository
	logger *zap.Logger
}

// NewUserService crea el servicio de usuarios.
func NewUserService(repo repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// Register crea un usuario con rol USER y devuelve un token emitido.
func (s *userService) Register(req dto.RegisterRequest) (*dto.AuthResponse, error) {
	exists, err := s.repo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email %s", domain.ErrAlreadyExists, req.Email)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:       req.Email,
		Password:    hashedPassword,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Role:        domain.RoleUser,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return &dto.AuthResponse{Token: token, TokenType: "Bearer", User: *user}, nil
}

// Login autentica por email y password. Ante cualquier fallo devuelve el
// mismo error genérico para no revelar si el email existe.
func (s *userService) Login(req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.GetByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	}

	if !user.Enabled || !utils.CheckPasswordHash(req.Password, user.Password) {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	}

	token, err := utils.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return &dto.AuthResponse{Token: token, TokenType: "Bearer", User: *user}, nil
}

func (s *userService) GetByID(id string) (*domain.User, error) {
	return s.repo.GetByID(id)
}
