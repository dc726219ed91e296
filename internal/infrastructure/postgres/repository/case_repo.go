package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/squeakroad/case-service/internal/domain"
	"github.com/squeakroad/case-service/internal/infrastructure/postgres/mappers"
	"github.com/squeakroad/case-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// A case holds an admission slot until it is paid or its invoice expires.
// Canceling an unpaid case does not release it since the invoice stays payable.
const unpaidOpenCondition = "paid = ? AND expired = ?"

type DefaultCaseRepository struct {
	DB *gorm.DB
}

func NewDefaultCaseRepository(db *gorm.DB) *DefaultCaseRepository {
	return &DefaultCaseRepository{DB: db}
}

// Insert admits c if fewer than maxUnpaidCases cases hold a live invoice and
// stores it. The count and the insert share a transaction but take no lock,
// so concurrent creators may overshoot the ceiling by the number in flight.
func (r *DefaultCaseRepository) Insert(ctx context.Context, c *domain.Case, maxUnpaidCases int64) (int64, error) {
	caseModel := mappers.ToGORMCase(c)
	caseModel.ID = 0

	var admissionErr error
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unpaid int64
		if err := tx.Model(&models.CaseModel{}).
			Where(unpaidOpenCondition, false, false).
			Count(&unpaid).Error; err != nil {
			return err
		}
		if unpaid >= maxUnpaidCases {
			admissionErr = domain.ErrAdmissionDenied
			return admissionErr
		}

		return tx.Create(caseModel).Error
	})
	if admissionErr != nil {
		return 0, admissionErr
	}
	if err != nil {
		return 0, mapError(err)
	}

	c.ID = caseModel.ID
	return caseModel.ID, nil
}

func (r *DefaultCaseRepository) MarkPaid(ctx context.Context, caseID int64, paymentTime time.Time, amountPaidMsat int64) (*domain.Case, error) {
	return r.mutate(ctx, caseID, func(c *domain.Case) error {
		return c.MarkPaid(paymentTime, amountPaidMsat)
	})
}

func (r *DefaultCaseRepository) MarkAwarded(ctx context.Context, caseID int64) (*domain.Case, error) {
	return r.mutate(ctx, caseID, (*domain.Case).Award)
}

func (r *DefaultCaseRepository) CancelByBuyer(ctx context.Context, caseID int64) (*domain.Case, error) {
	return r.mutate(ctx, caseID, (*domain.Case).CancelByBuyer)
}

func (r *DefaultCaseRepository) CancelBySeller(ctx context.Context, caseID int64) (*domain.Case, error) {
	return r.mutate(ctx, caseID, (*domain.Case).CancelBySeller)
}

func (r *DefaultCaseRepository) Expire(ctx context.Context, caseID int64) (*domain.Case, error) {
	return r.mutate(ctx, caseID, (*domain.Case).Expire)
}

// mutate locks the row, applies transition and writes the result back in
// the same transaction. A rejected transition leaves the row untouched.
func (r *DefaultCaseRepository) mutate(ctx context.Context, caseID int64, transition func(*domain.Case) error) (*domain.Case, error) {
	var (
		updated       *domain.Case
		transitionErr error
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var caseModel models.CaseModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&caseModel, "id = ?", caseID).Error; err != nil {
			return err
		}

		c := mappers.ToDomainCase(&caseModel)
		if err := transition(c); err != nil {
			transitionErr = err
			return err
		}

		if err := tx.Model(&models.CaseModel{ID: c.ID}).Updates(lifecycleColumns(c)).Error; err != nil {
			return err
		}
		updated = c
		return nil
	})
	if transitionErr != nil {
		return nil, transitionErr
	}
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// lifecycleColumns are the only columns a transition may change. Terms and
// parties are fixed at insert.
func lifecycleColumns(c *domain.Case) map[string]any {
	m := mappers.ToGORMCase(c)
	return map[string]any{
		"paid":               m.Paid,
		"awarded":            m.Awarded,
		"canceled_by_seller": m.CanceledBySeller,
		"canceled_by_buyer":  m.CanceledByBuyer,
		"expired":            m.Expired,
		"amount_paid_msat":   m.AmountPaidMsat,
		"payment_time":       m.PaymentTime,
	}
}

func (r *DefaultCaseRepository) GetCaseByID(ctx context.Context, caseID int64) (*domain.Case, error) {
	return r.getCase(ctx, "id = ?", caseID)
}

func (r *DefaultCaseRepository) GetCaseByPublicID(ctx context.Context, publicID string) (*domain.Case, error) {
	return r.getCase(ctx, "public_id = ?", publicID)
}

func (r *DefaultCaseRepository) GetCaseByInvoiceHash(ctx context.Context, invoiceHash string) (*domain.Case, error) {
	return r.getCase(ctx, "invoice_hash = ?", invoiceHash)
}

func (r *DefaultCaseRepository) getCase(ctx context.Context, query string, arg any) (*domain.Case, error) {
	var caseModel models.CaseModel
	if err := r.DB.WithContext(ctx).First(&caseModel, query, arg).Error; err != nil {
		return nil, mapError(err)
	}
	return mappers.ToDomainCase(&caseModel), nil
}

func (r *DefaultCaseRepository) GetCasesByParty(
	ctx context.Context,
	partyID int64,
	role domain.PartyRole,
	page, limit int64,
) ([]*domain.Case, int64, error) {
	var column string
	switch role {
	case domain.RoleBuyer:
		column = "buyer_id"
	case domain.RoleSeller:
		column = "seller_id"
	default:
		return nil, 0, domain.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}
	if page < 1 || limit < 1 || page-1 > math.MaxInt32/limit {
		return nil, 0, domain.NewValidationError(fmt.Sprintf("page %d of size %d out of range", page, limit))
	}

	baseQuery := r.DB.WithContext(ctx).
		Model(&models.CaseModel{}).
		Where(column+" = ?", partyID).
		Session(&gorm.Session{})

	var total int64
	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, mapError(err)
	}

	var caseModels []models.CaseModel
	offset := (page - 1) * limit
	if err := baseQuery.
		Order("created_time DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&caseModels).Error; err != nil {
		return nil, 0, mapError(err)
	}

	cases := make([]*domain.Case, len(caseModels))
	for i := range caseModels {
		cases[i] = mappers.ToDomainCase(&caseModels[i])
	}
	return cases, total, nil
}

// ListUnpaidOpenCases returns the oldest cases still holding an admission
// slot, canceled ones included, so their invoices can be resolved.
func (r *DefaultCaseRepository) ListUnpaidOpenCases(ctx context.Context, limit int) ([]*domain.Case, error) {
	var caseModels []models.CaseModel
	if err := r.DB.WithContext(ctx).
		Where(unpaidOpenCondition, false, false).
		Order("created_time ASC").
		Limit(limit).
		Find(&caseModels).Error; err != nil {
		return nil, mapError(err)
	}

	cases := make([]*domain.Case, len(caseModels))
	for i := range caseModels {
		cases[i] = mappers.ToDomainCase(&caseModels[i])
	}
	return cases, nil
}

func (r *DefaultCaseRepository) CountUnpaidOpenCases(ctx context.Context) (int64, error) {
	var unpaid int64
	if err := r.DB.WithContext(ctx).Model(&models.CaseModel{}).
		Where(unpaidOpenCondition, false, false).
		Count(&unpaid).Error; err != nil {
		return 0, mapError(err)
	}
	return unpaid, nil
}

func mapError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}
