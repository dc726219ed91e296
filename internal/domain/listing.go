package domain

import "context"

// Listing is the seller's bounty. The case core only reads it.
type Listing struct {
	ID                  int64
	PublicID            string
	OwnerID             int64
	Title               string
	PriceSat            uint64
	FeeRateBasisPoints  uint32
	Approved            bool
	DeactivatedBySeller bool
	DeactivatedByAdmin  bool
}

func (l *Listing) Deactivated() bool {
	return l.DeactivatedBySeller || l.DeactivatedByAdmin
}

type ListingRepository interface {
	GetListingByPublicID(ctx context.Context, publicID string) (*Listing, error)
}

// Party is the authenticated actor behind a request.
type Party struct {
	ID      int64
	IsAdmin bool
}
