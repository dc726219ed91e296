package repository

import (
	"context"

	"github.com/squeakroad/case-service/internal/domain"
	"github.com/squeakroad/case-service/internal/infrastructure/postgres/mappers"
	"github.com/squeakroad/case-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultListingRepository struct {
	DB *gorm.DB
}

func NewDefaultListingRepository(db *gorm.DB) *DefaultListingRepository {
	return &DefaultListingRepository{DB: db}
}

func (r *DefaultListingRepository) GetListingByPublicID(ctx context.Context, publicID string) (*domain.Listing, error) {
	var listing models.ListingModel
	if err := r.DB.WithContext(ctx).First(&listing, "public_id = ?", publicID).Error; err != nil {
		return nil, mapError(err)
	}
	return mappers.ToDomainListing(&listing), nil
}
