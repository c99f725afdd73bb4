package models

import (
	"github.com/shulesync/backend/internal/domain/academics"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/google/uuid"
)

// StudentModel is the persistence model for the Student aggregate root
type StudentModel struct {
	AggregateModel
	AdmissionNumber string           `gorm:"type:varchar(30);not null;uniqueIndex"`
	FirstName       string           `gorm:"type:varchar(60);not null"`
	LastName        string           `gorm:"type:varchar(60);not null"`
	Gender          string           `gorm:"type:varchar(10)"`
	Category        student.Category `gorm:"type:varchar(10);not null;default:'DAY';index"`
	Status          student.Status   `gorm:"type:varchar(15);not null;default:'ACTIVE';index"`
	ClassID         *uuid.UUID       `gorm:"type:uuid;index"`
	GuardianName    string           `gorm:"type:varchar(120)"`
	GuardianPhone   string           `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the persistence model to a domain Student
func (m *StudentModel) ToDomain() *student.Student {
	return &student.Student{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		AdmissionNumber:   m.AdmissionNumber,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Gender:            m.Gender,
		Category:          m.Category,
		Status:            m.Status,
		ClassID:           m.ClassID,
		GuardianName:      m.GuardianName,
		GuardianPhone:     m.GuardianPhone,
	}
}

// FromDomain populates the persistence model from a domain Student
func (m *StudentModel) FromDomain(s *student.Student) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.AdmissionNumber = s.AdmissionNumber
	m.FirstName = s.FirstName
	m.LastName = s.LastName
	m.Gender = s.Gender
	m.Category = s.Category
	m.Status = s.Status
	m.ClassID = s.ClassID
	m.GuardianName = s.GuardianName
	m.GuardianPhone = s.GuardianPhone
}

// AcademicYearModel is the persistence model for academic years
type AcademicYearModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(20);not null;uniqueIndex"`
	IsActive bool   `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (AcademicYearModel) TableName() string {
	return "academic_years"
}

// ToDomain converts the persistence model to a domain AcademicYear
func (m *AcademicYearModel) ToDomain() *academics.AcademicYear {
	return &academics.AcademicYear{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		IsActive:   m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain AcademicYear
func (m *AcademicYearModel) FromDomain(y *academics.AcademicYear) {
	m.FromDomainBaseEntity(y.BaseEntity)
	m.Name = y.Name
	m.IsActive = y.IsActive
}

// TermModel is the persistence model for terms
type TermModel struct {
	BaseModel
	AcademicYearID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_term_year_number,priority:1"`
	Number         int       `gorm:"not null;uniqueIndex:idx_term_year_number,priority:2"`
	IsCurrent      bool      `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (TermModel) TableName() string {
	return "terms"
}

// ToDomain converts the persistence model to a domain Term
func (m *TermModel) ToDomain() *academics.Term {
	return &academics.Term{
		BaseEntity:     m.BaseModel.ToDomain(),
		AcademicYearID: m.AcademicYearID,
		Number:         m.Number,
		IsCurrent:      m.IsCurrent,
	}
}

// FromDomain populates the persistence model from a domain Term
func (m *TermModel) FromDomain(t *academics.Term) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.AcademicYearID = t.AcademicYearID
	m.Number = t.Number
	m.IsCurrent = t.IsCurrent
}

// ClassModel is the persistence model for classes
type ClassModel struct {
	BaseModel
	Name  string `gorm:"type:varchar(60);not null;uniqueIndex"`
	Level string `gorm:"type:varchar(30);index"`
}

// TableName returns the table name for GORM
func (ClassModel) TableName() string {
	return "classes"
}

// ToDomain converts the persistence model to a domain Class
func (m *ClassModel) ToDomain() *academics.Class {
	return &academics.Class{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Level:      m.Level,
	}
}

// FromDomain populates the persistence model from a domain Class
func (m *ClassModel) FromDomain(c *academics.Class) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Level = c.Level
}
