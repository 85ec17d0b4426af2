package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "Beklemede"
	JobStatusInProgress JobStatus = "Devam Ediyor"
	JobStatusCompleted  JobStatus = "Tamamlandı"
	JobStatusCancelled  JobStatus = "İptal"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

type VehicleType string

const (
	VehicleSedan     VehicleType = "sedan"
	VehicleHatchback VehicleType = "hatchback"
	VehicleSUV       VehicleType = "suv"
	VehiclePickup    VehicleType = "pickup"
	VehicleVan       VehicleType = "van"
	VehicleTruck     VehicleType = "truck"
	VehicleOther     VehicleType = "other"
)

func (v VehicleType) Valid() bool {
	switch v {
	case VehicleSedan, VehicleHatchback, VehicleSUV, VehiclePickup, VehicleVan, VehicleTruck, VehicleOther:
		return true
	}
	return false
}

// Job - İş emri. Firma VEYA müşteriye bağlanabilir, ikisine birden değil.
type Job struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Müşteri iletişim bilgisi (kayıt anındaki hali)
	Name  string `gorm:"size:150;not null" json:"name"`
	Phone string `gorm:"size:50;not null" json:"phone"`

	Brand   string      `gorm:"size:100;not null" json:"brand"`
	Model   string      `gorm:"size:100;not null" json:"model"`
	Plate   string      `gorm:"size:20;not null;index" json:"plate"`
	Vehicle VehicleType `gorm:"size:20;not null" json:"vehicle"`

	Description string          `gorm:"column:job;size:2000;not null" json:"job"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"price"`
	Status      JobStatus       `gorm:"size:20;not null;default:'Beklemede';index" json:"status"`

	FirmID     *uint     `gorm:"index" json:"firmId"`
	Firm       *Firm     `gorm:"foreignKey:FirmID;constraint:-" json:"firm,omitempty"`
	CustomerID *uint     `gorm:"index" json:"customerId"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;constraint:-" json:"customer,omitempty"`

	Date  time.Time `gorm:"index;not null" json:"date"`
	Parts []JobPart `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"parts"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobPart - İşte kullanılan parça, fiyat kayıt anındaki satış fiyatıdır
type JobPart struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	JobID    uint            `gorm:"index;not null" json:"jobId"`
	StockID  uint            `gorm:"index;not null" json:"partId"`
	Stock    *Stock          `gorm:"foreignKey:StockID;constraint:-" json:"part,omitempty"`
	Quantity int             `gorm:"not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"price"`
}

// PartsTotal is Σ price × quantity over the consumed parts.
func (j *Job) PartsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range j.Parts {
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

// IsCancelled reports whether the job reached its terminal state.
func (j *Job) IsCancelled() bool {
	return j.Status == JobStatusCancelled
}
