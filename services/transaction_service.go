package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rental-api/domain"
	"rental-api/dto"
	"rental-api/repositories"
)

// TransactionService gobierna el ciclo de vida de las reservas y su acople
// con la disponibilidad de la propiedad.
type TransactionService interface {
	Create(ctx context.Context, tenantID string, req dto.TransactionRequest) (*domain.Transaction, error)
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	Approve(ctx context.Context, id string, actor domain.Actor) (*domain.Transaction, error)
	Reject(ctx context.Context, id string, actor domain.Actor) (*domain.Transaction, error)
	Cancel(ctx context.Context, id string, actor domain.Actor) (*domain.Transaction, error)
	Complete(ctx context.Context, id string, actor domain.Actor) (*domain.Transaction, error)
	ListForTenant(ctx context.Context, tenantID string, page, size int) (*dto.TransactionPage, error)
	ListForOwner(ctx context.Context, ownerID string, page, size int) (*dto.TransactionPage, error)
}

type transactionService struct {
	repo       repositories.TransactionRepository
	properties PropertyService
	logger     *zap.Logger
}

// NewTransactionService crea el servicio de transacciones.
func NewTransactionService(repo repositories.TransactionRepository, properties PropertyService, logger *zap.Logger) TransactionService {
	return &transactionService{
		repo:       repo,
		properties: properties,
		logger:     logger,
	}
}

// Create registra una reserva PENDING sobre una propiedad AVAILABLE.
// OwnerID y Amount se copian de la propiedad en este momento y no se
// recalculan después.
func (s *transactionService) Create(ctx context.Context, tenantID string, req dto.TransactionRequest) (*domain.Transaction, error) {
	if req.PropertyID == "" {
		return nil, fmt.Errorf("%w: property_id is required", domain.ErrInvalidArgument)
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: end_date must be after start_date", domain.ErrInvalidArgument)
	}

	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	if property.Status != domain.PropertyStatusAvailable {
		return nil, fmt.Errorf("%w: property %s is not available", domain.ErrFailedPrecondition, req.PropertyID)
	}

	now := time.Now().UTC()
	transaction := &domain.Transaction{
		PropertyID: req.PropertyID,
		TenantID:   tenantID,
		OwnerID:    property.OwnerID,
		Amount:     property.Price,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Status:     domain.TransactionStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, transaction); err != nil {
		return nil, err
	}

	s.logger.Info("transaction created",
		zap.String("transaction_id", transaction.ID),
		zap.String("property_id", req.PropertyID),
		zap.String("tenant_id", tenantID))
	return transaction, nil
}

func (s *transactionService) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

// Approve pasa una reserva PENDING a APPROVED y marca la propiedad como
// RENTED. Son dos escrituras sobre stores distintos sin transacción que las
// envuelva: un crash entre ambas deja una reserva APPROVED con la propiedad
// todavía AVAILABLE. Límite de consistencia conocido y asumido.
func (s *transactionService) Approve(ctx context.Context, id string, actor domain.Actor) (*domain.Transaction, error) {
	transaction, _, err := s.transition(ctx, id, actor, domain.TransactionStatusApproved, s.ownerOrAdmin)
	if err != nil {
		return nil, err
	}

	if _, err := s.properties.SetStatus(ctx, transaction.PropertyID, domain.PropertyStatusRented); err != nil {
		s.logger.Error("approved transaction but failed to mark property rented",
			zap.String("transaction_id", id),
			zap.String("property_id", transaction.PropertyID),
			zap.Error(err))
		return nil, err
	}

	return transaction, nil
}

// Reject pasa una reserva PENDING a REJECTED. La propiedad no cambia.
func (s *transactionService) Reject(ctx context.Context, id string, actor domain.Actor) (*domain.Transaction, error) {
	transaction, _, err := s.transition(ctx, id, actor, domain.TransactionStatusRejected, s.ownerOrAdmin)
	return transaction, err
}

// Cancel cancela una reserva. El tenant puede cancelar mientras está
// PENDING; dueño o admin pueden cancelar también una APPROVED. Sólo la
// cancelación de una APPROVED libera la propiedad: una PENDING nunca la
// tuvo tomada.
func (s *transactionService) Cancel(ctx context.Context, id string, actor domain.Actor) (*domain.Transaction, error) {
	transaction, from, err := s.transition(ctx, id, actor, domain.TransactionStatusCancelled, func(t *domain.Transaction, a domain.Actor) bool {
		if t.Status == domain.TransactionStatusPending {
			return a.ID == t.TenantID || domain.CanModify(a, t.OwnerID)
		}
		return domain.CanModify(a, t.OwnerID)
	})
	if err != nil {
		return nil, err
	}

	if from != domain.TransactionStatusApproved {
		return transaction, nil
	}
	return s.releaseProperty(ctx, transaction)
}

// Complete cierra una reserva APPROVED y libera la propiedad.
func (s *transactionService) Complete(ctx context.Context, id string, actor domain.Actor) (*domain.Transaction, error) {
	transaction, _, err := s.transition(ctx, id, actor, domain.TransactionStatusCompleted, s.ownerOrAdmin)
	if err != nil {
		return nil, err
	}

	return s.releaseProperty(ctx, transaction)
}

func (s *transactionService) ListForTenant(ctx context.Context, tenantID string, page, size int) (*dto.TransactionPage, error) {
	return s.listPage(ctx, page, size, func(ctx context.Context, page, size int) ([]domain.Transaction, int, error) {
		return s.repo.FindByTenant(ctx, tenantID, page, size)
	})
}

func (s *transactionService) ListForOwner(ctx context.Context, ownerID string, page, size int) (*dto.TransactionPage, error) {
	return s.listPage(ctx, page, size, func(ctx context.Context, page, size int) ([]domain.Transaction, int, error) {
		return s.repo.FindByOwner(ctx, ownerID, page, size)
	})
}

// transition aplica un cambio de estado validando autorización y la tabla
// de transiciones, persiste la transacción y devuelve el estado previo.
func (s *transactionService) transition(ctx context.Context, id string, actor domain.Actor, to domain.TransactionStatus, allowed func(*domain.Transaction, domain.Actor) bool) (*domain.Transaction, domain.TransactionStatus, error) {
	transaction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if !allowed(transaction, actor) {
		return nil, "", fmt.Errorf("%w: cannot move transaction %s to %s", domain.ErrUnauthorized, id, to)
	}

	if !domain.CanTransition(transaction.Status, to) {
		return nil, "", fmt.Errorf("%w: transaction %s is %s, cannot move to %s",
			domain.ErrFailedPrecondition, id, transaction.Status, to)
	}

	from := transaction.Status
	transaction.Status = to
	transaction.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, transaction); err != nil {
		return nil, "", err
	}

	s.logger.Info("transaction status changed",
		zap.String("transaction_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.ID))
	return transaction, from, nil
}

func (s *transactionService) ownerOrAdmin(t *domain.Transaction, actor domain.Actor) bool {
	return domain.CanModify(actor, t.OwnerID)
}

// releaseProperty devuelve la propiedad a AVAILABLE cuando la reserva que
// la tenía tomada deja de estar APPROVED. Para una reserva que nunca llegó
// a APPROVED no hay nada que liberar.
func (s *transactionService) releaseProperty(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	property, err := s.properties.GetByID(ctx, transaction.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.Status != domain.PropertyStatusRented {
		return transaction, nil
	}

	if _, err := s.properties.SetStatus(ctx, transaction.PropertyID, domain.PropertyStatusAvailable); err != nil {
		s.logger.Error("failed to release property",
			zap.String("transaction_id", transaction.ID),
			zap.String("property_id", transaction.PropertyID),
			zap.Error(err))
		return nil, err
	}
	return transaction, nil
}

func (s *transactionService) listPage(ctx context.Context, page, size int, find func(context.Context, int, int) ([]domain.Transaction, int, error)) (*dto.TransactionPage, error) {
	if page < 0 || size < 0 {
		return nil, fmt.Errorf("%w: page and size must not be negative", domain.ErrInvalidArgument)
	}
	if size == 0 {
		size = defaultPageSize
	}

	transactions, total, err := find(ctx, page, size)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}

	return &dto.TransactionPage{
		Transactions: transactions,
		Page:         page,
		Size:         size,
		TotalItems:   total,
		TotalPages:   totalPages(total, size),
	}, nil
}
