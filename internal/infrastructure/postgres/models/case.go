package models

import "time"

type CaseModel struct {
	ID        int64  `gorm:"primaryKey"`
	PublicID  string `gorm:"uniqueIndex;not null"`
	Quantity  int64  `gorm:"not null"`
	BuyerID   int64  `gorm:"index;not null"`
	SellerID  int64  `gorm:"index;not null"`
	ListingID int64  `gorm:"not null"`

	CaseDetails string `gorm:"type:text;not null"`

	AmountOwedSat   int64 `gorm:"not null"`
	MarketFeeSat    int64 `gorm:"not null"`
	SellerCreditSat int64 `gorm:"not null"`

	InvoiceHash           string `gorm:"uniqueIndex;not null"`
	InvoicePaymentRequest string `gorm:"type:text;not null"`

	Paid             bool `gorm:"index:idx_cases_open_unpaid;not null"`
	Awarded          bool `gorm:"not null"`
	CanceledBySeller bool `gorm:"not null"`
	CanceledByBuyer  bool `gorm:"not null"`
	Expired          bool `gorm:"not null"`

	AmountPaidMsat int64
	CreatedTime    time.Time `gorm:"index;not null"`
	PaymentTime    *time.Time
}

func (CaseModel) TableName() string {
	return "cases"
}

type ListingModel struct {
	ID                  int64  `gorm:"primaryKey"`
	PublicID            string `gorm:"uniqueIndex;not null"`
	OwnerID             int64  `gorm:"index;not null"`
	Title               string
	PriceSat            int64 `gorm:"not null"`
	FeeRateBasisPoints  int32 `gorm:"not null"`
	Approved            bool  `gorm:"not null"`
	DeactivatedBySeller bool  `gorm:"not null"`
	DeactivatedByAdmin  bool  `gorm:"not null"`
}

func (ListingModel) TableName() string {
	return "listings"
}
