package models

import (
	"time"

	"github.com/shulesync/backend/internal/domain/library"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LibraryFineModel is the persistence model for library fines
type LibraryFineModel struct {
	AggregateModel
	StudentID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	BookTitle  string             `gorm:"type:varchar(200)"`
	Reason     string             `gorm:"type:varchar(255);not null"`
	Amount     decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	Status     library.FineStatus `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	DateIssued time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LibraryFineModel) TableName() string {
	return "library_fines"
}

// ToDomain converts the persistence model to a domain Fine
func (m *LibraryFineModel) ToDomain() *library.Fine {
	return &library.Fine{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		BookTitle:         m.BookTitle,
		Reason:            m.Reason,
		Amount:            valueobject.NewMoneyKES(m.Amount),
		Status:            m.Status,
		DateIssued:        m.DateIssued,
	}
}

// FromDomain populates the persistence model from a domain Fine
func (m *LibraryFineModel) FromDomain(f *library.Fine) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.StudentID = f.StudentID
	m.BookTitle = f.BookTitle
	m.Reason = f.Reason
	m.Amount = f.Amount.Amount()
	m.Status = f.Status
	m.DateIssued = f.DateIssued
}
