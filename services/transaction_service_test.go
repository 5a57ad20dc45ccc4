package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rental-api/domain"
	"rental-api/dto"
)

// fakeTransactionRepo implementa TransactionRepository en memoria.
type fakeTransactionRepo struct {
	transactions []domain.Transaction
}

func (f *fakeTransactionRepo) Create(_ context.Context, t *domain.Transaction) error {
	if t.ID == "" {
		t.ID = fmt.Sprintf("txn-%d", len(f.transactions)+1)
	}
	f.transactions = append(f.transactions, *t)
	return nil
}

func (f *fakeTransactionRepo) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	for _, t := range f.transactions {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, id)
}

func (f *fakeTransactionRepo) Update(_ context.Context, t *domain.Transaction) error {
	for i := range f.transactions {
		if f.transactions[i].ID == t.ID {
			f.transactions[i] = *t
			return nil
		}
	}
	return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, t.ID)
}

func (f *fakeTransactionRepo) FindByTenant(_ context.Context, tenantID string, page, size int) ([]domain.Transaction, int, error) {
	return f.pageMatching(func(t domain.Transaction) bool { return t.TenantID == tenantID }, page, size)
}

func (f *fakeTransactionRepo) FindByOwner(_ context.Context, ownerID string, page, size int) ([]domain.Transaction, int, error) {
	return f.pageMatching(func(t domain.Transaction) bool { return t.OwnerID == ownerID }, page, size)
}

func (f *fakeTransactionRepo) FindByProperty(_ context.Context, propertyID string, page, size int) ([]domain.Transaction, int, error) {
	return f.pageMatching(func(t domain.Transaction) bool { return t.PropertyID == propertyID }, page, size)
}

func (f *fakeTransactionRepo) pageMatching(keep func(domain.Transaction) bool, page, size int) ([]domain.Transaction, int, error) {
	var matched []domain.Transaction
	for _, t := range f.transactions {
		if keep(t) {
			matched = append(matched, t)
		}
	}
	start := page * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

type bookingFixture struct {
	transactions TransactionService
	properties   PropertyService
	propertyRepo *fakePropertyRepo
	txnRepo      *fakeTransactionRepo
}

func newBookingFixture(t *testing.T) *bookingFixture {
	logger := zaptest.NewLogger(t)
	propertyRepo := newFakePropertyRepo()
	txnRepo := &fakeTransactionRepo{}
	properties := NewPropertyService(propertyRepo, newFakeCache(), nil, time.Minute, false, logger)
	return &bookingFixture{
		transactions: NewTransactionService(txnRepo, properties, logger),
		properties:   properties,
		propertyRepo: propertyRepo,
		txnRepo:      txnRepo,
	}
}

func bookingRequest(propertyID string) dto.TransactionRequest {
	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	return dto.TransactionRequest{
		PropertyID: propertyID,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 5),
	}
}

func (fx *bookingFixture) propertyStatus(t *testing.T, id string) domain.PropertyStatus {
	t.Helper()
	p, err := fx.propertyRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Status
}

var (
	owner    = domain.Actor{ID: "owner-1", Role: domain.RoleUser}
	tenant   = domain.Actor{ID: "tenant-1", Role: domain.RoleUser}
	admin    = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	intruder = domain.Actor{ID: "intruder", Role: domain.RoleUser}
)

func TestBookingLifecycle_CreateAndApprove(t *testing.T) {
	fx := newBookingFixture(t)
	seedProperty(t, fx.propertyRepo, "p1", "Austin", domain.PropertyTypeHouse, 1500, domain.PropertyStatusAvailable, owner.ID)

	txn, err := fx.transactions.Create(context.Background(), tenant.ID, bookingRequest("p1"))
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionStatusPending, txn.Status)
	assert.Equal(t, owner.ID, txn.OwnerID)
	assert.Equal(t, tenant.ID, txn.TenantID)
	assert.Equal(t, float64(1500), txn.Amount)
	assert.True(t, txn.CreatedAt.Equal(txn.UpdatedAt))
	// crear la reserva no toca la propiedad
	assert.Equal(t, domain.PropertyStatusAvailable, fx.propertyStatus(t, "p1"))

	approved, err := fx.transactions.Approve(context.Background(), txn.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusApproved, approved.Status)
	assert.Equal(t, domain.PropertyStatusRented, fx.propertyStatus(t, "p1"))
}

func TestCreateTransaction_PropertyNotAvailable(t *testing.T) {
	fx := newBookingFixture(t)
	seedProperty(t, fx.propertyRepo, "p1", "Austin", domain.PropertyTypeHouse, 1500, domain.PropertyStatusRented, owner.ID)

	_, err := fx.transactions.Create(context.Background(), tenant.ID, bookingRequest("p1"))
	assert.ErrorIs(t, err, domain.ErrFailedPrecondition)
	assert.Empty(t, fx.txnRepo.transactions)
}

func TestCreateTransaction_InvalidRequest(t *testing.T) {
	fx := newBookingFixture(t)
	seedProperty(t, fx.propertyRepo, "p1", "Austin", domain.PropertyTypeHouse, 1500, domain.PropertyStatusAvailable, owner.ID)

	req := bookingRequest("p1")
	req.EndDate = req.StartDate
	_, err := fx.transactions.Create(context.Background(), tenant.ID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	req = bookingRequest("")
	_, err = fx.transactions.Create(context.Background(), tenant.ID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = fx.transactions.Create(context.Background(), tenant.ID, bookingRequest("no-such-property"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, fx.txnRepo.transactions)
}

func TestApprove_Authorization(t *testing.T) {
	fx := newBookingFixture(t)
	seedProperty(t, fx.propertyRepo, "p1", "Austin", domain.PropertyTypeHouse, 1500, domain.PropertyStatusAvailable, owner.ID)
	txn, err := fx.transactions.Create(context.Background(), tenant.ID, bookingRequest("p1"))
	require.NoError(t, err)

	for _, actor := range []domain.Actor{intruder, tenant} {
		_, err = fx.transactions.Approve(context.Background(), txn.ID, actor)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, "actor %s", actor.ID)
	}

	// nada mutó
	stored, err := fx.txnRepo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, stored.Status)
	assert.Equal(t, domain.PropertyStatusAvailable, fx.propertyStatus(t, "p1"))

	// admin puede aprobar sin ser dueño
	_, err = fx.transactions.Approve(context.Background(), txn.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.PropertyStatusRented, fx.propertyStatus(t, "p1"))
}

func TestApprove_NotFound(t *testing.T) {
	fx := newBookingFixture(t)
	_, err := fx.transactions.Approve(context.Background(), "missing", owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApprove_AlreadyDecided(t *testing.T) {
	fx := newBookingFixture(t)
	seedProperty(t, fx.propertyRepo, "p1", "Austin", domain.PropertyTypeHouse, 1500, domain.PropertyStatusAvailable, owner.ID)
	txn, err := fx.transactions.Create(context.Background(), tenant.ID, bookingRequest("p1"))
	require.NoError(t, err)

	_, err = fx.transactions.Reject(context.Background(), txn.ID, owner)
	require.NoError(t, err)

	_, err = fx.transactions.Approve(context.Background(), txn.ID, owner)
	assert.ErrorIs(t, err, domain.ErrFailedPrecondition)
}

func TestReject_LeavesPropertyUntouched(t *testing.T) {
	fx := newBookingFixture(t)
	seedProperty(t, fx.propertyRepo, "p1", "Austin", domain.PropertyTypeHouse, 1500, domain.PropertyStatusAvailable, owner.ID)
	txn, err := fx.transactions.Create(context.Background(), tenant.ID, bookingRequest("p1"))
	require.NoError(t, err)

	rejected, err := fx.transactions.Reject(context.Background(), txn.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusRejected, rejected.Status)
	assert.Equal(t, domain.PropertyStatusAvailable, fx.propertyStatus(t, "p1"))
}

func TestCancel_PendingByTenant(t *testing.T) {
	fx := newBookingFixture(t)
	seedProperty(t, fx.propertyRepo, "p1", "Austin", domain.PropertyTypeHouse, 1500, domain.PropertyStatusAvailable, owner.ID)
	txn, err := fx.transactions.Create(context.Background(), tenant.ID, bookingRequest("p1"))
	require.NoError(t, err)

	cancelled, err := fx.transactions.Cancel(context.Background(), txn.ID, tenant)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCancelled, cancelled.Status)
}

func TestCancel_PendingDoesNotReleaseProperty(t *testing.T) {
	fx := newBookingFixture(t)
	seedProperty(t, fx.propertyRepo, "p1", "Austin", domain.PropertyTypeHouse, 1500, domain.PropertyStatusAvailable, owner.ID)

	// la primera reserva queda aprobada y toma la propiedad
	first, err := fx.transactions.Create(context.Background(), "tenant-a", bookingRequest("p1"))
	require.NoError(t, err)

	// segunda reserva entra mientras la propiedad sigue AVAILABLE
	second, err := fx.transactions.Create(context.Background(), "tenant-b", bookingRequest("p1"))
	require.NoError(t, err)

	_, err = fx.transactions.Approve(context.Background(), first.ID, owner)
	require.NoError(t, err)
	require.Equal(t, domain.PropertyStatusRented, fx.propertyStatus(t, "p1"))

	// cancelar la PENDING no libera la propiedad tomada por la otra reserva
	_, err = fx.transactions.Cancel(context.Background(), second.ID, domain.Actor{ID: "tenant-b", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, domain.PropertyStatusRented, fx.propertyStatus(t, "p1"))
}

func TestCancel_ApprovedReleasesProperty(t *testing.T) {
	fx := newBookingFixture(t)
	seedProperty(t, fx.propertyRepo, "p1", "Austin", domain.PropertyTypeHouse, 1500, domain.PropertyStatusAvailable, owner.ID)
	txn, err := fx.transactions.Create(context.Background(), tenant.ID, bookingRequest("p1"))
	require.NoError(t, err)
	_, err = fx.transactions.Approve(context.Background(), txn.ID, owner)
	require.NoError(t, err)

	// el tenant ya no puede cancelar una APPROVED
	_, err = fx.transactions.Cancel(context.Background(), txn.ID, tenant)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	cancelled, err := fx.transactions.Cancel(context.Background(), txn.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCancelled, cancelled.Status)
	assert.Equal(t, domain.PropertyStatusAvailable, fx.propertyStatus(t, "p1"))
}

func TestComplete(t *testing.T) {
	fx := newBookingFixture(t)
	seedProperty(t, fx.propertyRepo, "p1", "Austin", domain.PropertyTypeHouse, 1500, domain.PropertyStatusAvailable, owner.ID)
	txn, err := fx.transactions.Create(context.Background(), tenant.ID, bookingRequest("p1"))
	require.NoError(t, err)

	// PENDING no se puede completar
	_, err = fx.transactions.Complete(context.Background(), txn.ID, owner)
	assert.ErrorIs(t, err, domain.ErrFailedPrecondition)

	_, err = fx.transactions.Approve(context.Background(), txn.ID, owner)
	require.NoError(t, err)

	completed, err := fx.transactions.Complete(context.Background(), txn.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, completed.Status)
	assert.Equal(t, domain.PropertyStatusAvailable, fx.propertyStatus(t, "p1"))
}

func TestListTransactions(t *testing.T) {
	fx := newBookingFixture(t)
	seedProperty(t, fx.propertyRepo, "p1", "Austin", domain.PropertyTypeHouse, 1500, domain.PropertyStatusAvailable, owner.ID)
	seedProperty(t, fx.propertyRepo, "p2", "Austin", domain.PropertyTypeHouse, 900, domain.PropertyStatusAvailable, "owner-2")

	_, err := fx.transactions.Create(context.Background(), tenant.ID, bookingRequest("p1"))
	require.NoError(t, err)
	_, err = fx.transactions.Create(context.Background(), tenant.ID, bookingRequest("p2"))
	require.NoError(t, err)
	_, err = fx.transactions.Create(context.Background(), "someone-else", bookingRequest("p1"))
	require.NoError(t, err)

	tenantPage, err := fx.transactions.ListForTenant(context.Background(), tenant.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, tenantPage.TotalItems)
	assert.Len(t, tenantPage.Transactions, 2)

	ownerPage, err := fx.transactions.ListForOwner(context.Background(), owner.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, ownerPage.TotalItems)

	_, err = fx.transactions.ListForTenant(context.Background(), tenant.ID, -1, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
