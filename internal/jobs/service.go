package jobs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"garaj-backend/internal/apperr"
	"garaj-backend/internal/audit"
	"garaj-backend/internal/expense"
	"garaj-backend/internal/inventory"
	"garaj-backend/internal/ledger"
	"garaj-backend/internal/models"
	"garaj-backend/internal/validation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrJobNotFound        = apperr.NotFound("İş bulunamadı")
	ErrFirmNotFound       = apperr.NotFound("Firma bulunamadı")
	ErrCustomerNotFound   = apperr.NotFound("Müşteri bulunamadı")
	ErrAlreadyCancelled   = apperr.Invalid("Bu iş zaten iptal edilmiş")
	ErrCancelledImmutable = apperr.Invalid("İptal edilmiş iş güncellenemez")
	ErrCancelViaUpdate    = apperr.Invalid("İşi iptal etmek için iptal işlemini kullanın")
	ErrBothAccounts       = apperr.Invalid("İş aynı anda hem firmaya hem müşteriye bağlanamaz")
)

type CreateJobRequest struct {
	Name       string                  `json:"name" validate:"required"`
	Phone      string                  `json:"phone" validate:"required"`
	Brand      string                  `json:"brand" validate:"required"`
	Model      string                  `json:"model" validate:"required"`
	Plate      string                  `json:"plate" validate:"required"`
	Vehicle    models.VehicleType      `json:"vehicle" validate:"required"`
	Job        string                  `json:"job" validate:"required"`
	Price      decimal.Decimal         `json:"price" validate:"gte=0"`
	Status     models.JobStatus        `json:"status"`
	FirmID     *uint                   `json:"firm"`
	CustomerID *uint                   `json:"customer"`
	Date       string                  `json:"date"` // "2025-03-10" veya RFC3339, boşsa şimdi
	Parts      []inventory.PartRequest `json:"parts" validate:"dive"`
}

// UpdateJobRequest is a partial update; nil fields stay as they are.
// Parts: nil keeps the parts, a non-nil (even empty) list replaces them.
// Firm/customer: 0 removes the link.
type UpdateJobRequest struct {
	ID         uint                     `json:"id"`
	Name       *string                  `json:"name"`
	Phone      *string                  `json:"phone"`
	Brand      *string                  `json:"brand"`
	Model      *string                  `json:"model"`
	Plate      *string                  `json:"plate"`
	Vehicle    *models.VehicleType      `json:"vehicle"`
	Job        *string                  `json:"job"`
	Price      *decimal.Decimal         `json:"price" validate:"omitempty,gte=0"`
	Status     *models.JobStatus        `json:"status"`
	FirmID     *uint                    `json:"firm"`
	CustomerID *uint                    `json:"customer"`
	Date       *string                  `json:"date"`
	Parts      *[]inventory.PartRequest `json:"parts" validate:"omitempty,dive"`
}

type ListFilter struct {
	FirmID     uint
	CustomerID uint
	Status     models.JobStatus
}

// Service runs the job state machine. Every method expects to be called
// inside a transaction and uses only tx.
type Service struct {
	Actor string
	Now   func() time.Time
	Loc   *time.Location // tarih-only değerler bu bölgede gece yarısıdır, nil ise time.Local
}

func NewService(actor string, loc *time.Location) *Service {
	return &Service{Actor: actor, Now: time.Now, Loc: loc}
}

func (s *Service) parseDate(v string) (time.Time, error) {
	loc := s.Loc
	if loc == nil {
		loc = time.Local
	}
	return expense.ParseDate(v, loc)
}

func (s *Service) Create(tx *gorm.DB, req CreateJobRequest) (*models.Job, error) {
	trimCreate(&req)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	verrs := validation.Errors{}
	if !req.Vehicle.Valid() {
		verrs.Add("vehicle", "Geçersiz araç tipi")
	}
	if req.Status == "" {
		req.Status = models.JobStatusPending
	}
	if !req.Status.Valid() {
		verrs.Add("status", "Geçersiz durum değeri")
	}
	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		d, err := s.parseDate(req.Date)
		if err != nil {
			verrs.Add("date", "Tarih formatı 'YYYY-MM-DD' olmalı")
		}
		date = d
	}
	if err := verrs.Err(); err != nil {
		return nil, err
	}
	if req.Status == models.JobStatusCancelled {
		return nil, ErrCancelViaUpdate
	}

	firmID, customerID := normalizeID(req.FirmID), normalizeID(req.CustomerID)
	if err := checkAccounts(tx, firmID, customerID); err != nil {
		return nil, err
	}

	now := s.Now()
	job := models.Job{
		Name:        req.Name,
		Phone:       req.Phone,
		Brand:       req.Brand,
		Model:       req.Model,
		Plate:       req.Plate,
		Vehicle:     req.Vehicle,
		Description: req.Job,
		Price:       req.Price,
		Status:      req.Status,
		FirmID:      firmID,
		CustomerID:  customerID,
		Date:        now,
	}
	if !date.IsZero() {
		job.Date = date
	}

	parts, err := inventory.Consume(tx, req.Parts)
	if err != nil {
		return nil, err
	}
	job.Parts = parts

	if err := tx.Create(&job).Error; err != nil {
		return nil, fmt.Errorf("iş kaydedilemedi: %w", err)
	}

	if acc, ok := ledger.ForJob(&job); ok {
		if err := ledger.Charge(tx, acc, job.ID, job.Price, now); err != nil {
			return nil, err
		}
	}

	if err := s.log(tx, &job, models.AuditActionCreate, fmt.Sprintf("İş eklendi: %s - %s", job.Plate, job.Description), nil, &job); err != nil {
		return nil, err
	}
	return s.load(tx, job.ID)
}

func (s *Service) Update(tx *gorm.DB, id uint, req UpdateJobRequest) (*models.Job, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	job, err := s.load(tx, id)
	if err != nil {
		return nil, err
	}
	if job.IsCancelled() {
		return nil, ErrCancelledImmutable
	}
	before := *job
	oldAcc, hadAcc := ledger.ForJob(job)
	oldPrice := job.Price

	if err := s.applyUpdate(job, req); err != nil {
		return nil, err
	}
	if job.FirmID != nil && job.CustomerID != nil {
		return nil, ErrBothAccounts
	}
	if req.FirmID != nil || req.CustomerID != nil {
		if err := checkAccounts(tx, job.FirmID, job.CustomerID); err != nil {
			return nil, err
		}
	}

	if req.Parts != nil {
		if err := inventory.Restore(tx, job.Parts); err != nil {
			return nil, err
		}
		newParts, err := inventory.Consume(tx, *req.Parts)
		if err != nil {
			return nil, err
		}
		if err := tx.Where("job_id = ?", job.ID).Delete(&models.JobPart{}).Error; err != nil {
			return nil, fmt.Errorf("iş parçaları silinemedi: %w", err)
		}
		for i := range newParts {
			newParts[i].JobID = job.ID
		}
		if len(newParts) > 0 {
			if err := tx.Create(&newParts).Error; err != nil {
				return nil, fmt.Errorf("iş parçaları kaydedilemedi: %w", err)
			}
		}
	}

	if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).Updates(map[string]any{
		"name":        job.Name,
		"phone":       job.Phone,
		"brand":       job.Brand,
		"model":       job.Model,
		"plate":       job.Plate,
		"vehicle":     job.Vehicle,
		"job":         job.Description,
		"price":       job.Price,
		"status":      job.Status,
		"firm_id":     job.FirmID,
		"customer_id": job.CustomerID,
		"date":        job.Date,
	}).Error; err != nil {
		return nil, fmt.Errorf("iş güncellenemedi: %w", err)
	}

	// Fiyat ya da hesap değiştiyse eski borç geri alınır, yenisi yazılır
	newAcc, hasAcc := ledger.ForJob(job)
	if hadAcc != hasAcc || oldAcc != newAcc || !oldPrice.Equal(job.Price) {
		now := s.Now()
		if hadAcc {
			if _, err := ledger.Reverse(tx, oldAcc, job.ID, now); err != nil && !errors.Is(err, ledger.ErrAccountNotFound) {
				return nil, err
			}
		}
		if hasAcc {
			err := ledger.Exists(tx, newAcc)
			switch {
			case errors.Is(err, ledger.ErrAccountNotFound):
				// silinmiş hesaba borç yazılmaz
			case err != nil:
				return nil, err
			default:
				if err := ledger.Charge(tx, newAcc, job.ID, job.Price, now); err != nil {
					return nil, err
				}
			}
		}
	}

	updated, err := s.load(tx, job.ID)
	if err != nil {
		return nil, err
	}
	if err := s.log(tx, updated, models.AuditActionUpdate, fmt.Sprintf("İş güncellendi: %s", updated.Plate), &before, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel restores the consumed stock, reverses the job's charge and moves it to İptal.
func (s *Service) Cancel(tx *gorm.DB, id uint) (*models.Job, error) {
	job, err := s.load(tx, id)
	if err != nil {
		return nil, err
	}
	if job.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}
	before := *job

	if err := s.unwind(tx, job); err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).
		Update("status", models.JobStatusCancelled).Error; err != nil {
		return nil, fmt.Errorf("iş iptal edilemedi: %w", err)
	}

	cancelled, err := s.load(tx, job.ID)
	if err != nil {
		return nil, err
	}
	if err := s.log(tx, cancelled, models.AuditActionCancel, fmt.Sprintf("İş iptal edildi: %s", cancelled.Plate), &before, cancelled); err != nil {
		return nil, err
	}
	return cancelled, nil
}

// Delete removes the job; a job that is not cancelled is unwound first.
func (s *Service) Delete(tx *gorm.DB, id uint) error {
	job, err := s.load(tx, id)
	if err != nil {
		return err
	}
	return s.delete(tx, job)
}

// Clear deletes every job with the Delete semantics and returns the count.
func (s *Service) Clear(tx *gorm.DB) (int, error) {
	var all []models.Job
	if err := tx.Preload("Parts").Order("id asc").Find(&all).Error; err != nil {
		return 0, fmt.Errorf("işler okunamadı: %w", err)
	}
	for i := range all {
		if err := s.delete(tx, &all[i]); err != nil {
			return 0, err
		}
	}
	return len(all), nil
}

func (s *Service) delete(tx *gorm.DB, job *models.Job) error {
	if !job.IsCancelled() {
		if err := s.unwind(tx, job); err != nil {
			return err
		}
	}
	if err := tx.Where("job_id = ?", job.ID).Delete(&models.JobPart{}).Error; err != nil {
		return fmt.Errorf("iş parçaları silinemedi: %w", err)
	}
	if err := tx.Delete(&models.Job{}, "id = ?", job.ID).Error; err != nil {
		return fmt.Errorf("iş silinemedi: %w", err)
	}
	return s.log(tx, job, models.AuditActionDelete, fmt.Sprintf("İş silindi: %s - %s", job.Plate, job.Description), job, nil)
}

// unwind gives the parts back to stock and reverses what was billed.
func (s *Service) unwind(tx *gorm.DB, job *models.Job) error {
	if err := inventory.Restore(tx, job.Parts); err != nil {
		return err
	}
	acc, ok := ledger.ForJob(job)
	if !ok {
		return nil
	}
	_, err := ledger.Reverse(tx, acc, job.ID, s.Now())
	if errors.Is(err, ledger.ErrAccountNotFound) {
		// hesap silinmişse geri alınacak bakiye de yoktur
		return nil
	}
	return err
}

func (s *Service) load(tx *gorm.DB, id uint) (*models.Job, error) {
	var job models.Job
	err := tx.Preload("Parts", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Parts.Stock").
		Preload("Firm").
		Preload("Customer").
		First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("iş #%d: %w", id, ErrJobNotFound)
		}
		return nil, err
	}
	return &job, nil
}

func (s *Service) log(tx *gorm.DB, job *models.Job, action models.AuditAction, desc string, before, after *models.Job) error {
	opts := audit.LogOptions{
		UserName:    s.Actor,
		EntityType:  audit.EntityJob,
		EntityID:    job.ID,
		Action:      action,
		Description: desc,
	}
	if before != nil {
		opts.Before = before
	}
	if after != nil {
		opts.After = after
	}
	return audit.WriteLog(tx, opts)
}

// Get returns one job with its parts, stock details and account names.
func Get(db *gorm.DB, id uint) (*models.Job, error) {
	return (&Service{}).load(db, id)
}

// List returns jobs newest first.
func List(db *gorm.DB, f ListFilter) ([]models.Job, error) {
	dbq := db.Model(&models.Job{})
	if f.FirmID != 0 {
		dbq = dbq.Where("firm_id = ?", f.FirmID)
	}
	if f.CustomerID != 0 {
		dbq = dbq.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		dbq = dbq.Where("status = ?", f.Status)
	}

	var out []models.Job
	err := dbq.Preload("Firm").
		Preload("Customer").
		Preload("Parts").
		Order("date desc, id desc").
		Find(&out).Error
	return out, err
}

func checkAccounts(tx *gorm.DB, firmID, customerID *uint) error {
	if firmID != nil && customerID != nil {
		return ErrBothAccounts
	}
	if firmID != nil {
		if err := ledger.Exists(tx, ledger.FirmAccount(*firmID)); err != nil {
			if errors.Is(err, ledger.ErrAccountNotFound) {
				return ErrFirmNotFound
			}
			return err
		}
	}
	if customerID != nil {
		if err := ledger.Exists(tx, ledger.CustomerAccount(*customerID)); err != nil {
			if errors.Is(err, ledger.ErrAccountNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}
	}
	return nil
}

func normalizeID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}

func trimCreate(req *CreateJobRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Brand = strings.TrimSpace(req.Brand)
	req.Model = strings.TrimSpace(req.Model)
	req.Plate = strings.ToUpper(strings.TrimSpace(req.Plate))
	req.Job = strings.TrimSpace(req.Job)
}

func (s *Service) applyUpdate(job *models.Job, req UpdateJobRequest) error {
	verrs := validation.Errors{}

	setText := func(field string, val *string, dst *string) {
		if val == nil {
			return
		}
		v := strings.TrimSpace(*val)
		if v == "" {
			verrs.Add(field, "zorunlu alan")
			return
		}
		*dst = v
	}
	setText("name", req.Name, &job.Name)
	setText("phone", req.Phone, &job.Phone)
	setText("brand", req.Brand, &job.Brand)
	setText("model", req.Model, &job.Model)
	setText("plate", req.Plate, &job.Plate)
	setText("job", req.Job, &job.Description)
	job.Plate = strings.ToUpper(job.Plate)

	if req.Vehicle != nil {
		if !req.Vehicle.Valid() {
			verrs.Add("vehicle", "Geçersiz araç tipi")
		} else {
			job.Vehicle = *req.Vehicle
		}
	}
	if req.Status != nil {
		switch {
		case !req.Status.Valid():
			verrs.Add("status", "Geçersiz durum değeri")
		case *req.Status == models.JobStatusCancelled:
			return ErrCancelViaUpdate
		default:
			job.Status = *req.Status
		}
	}
	if req.Price != nil {
		job.Price = *req.Price
	}
	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		if d, err := s.parseDate(*req.Date); err != nil {
			verrs.Add("date", "Tarih formatı 'YYYY-MM-DD' olmalı")
		} else {
			job.Date = d
		}
	}
	if req.FirmID != nil {
		job.FirmID = normalizeID(req.FirmID)
		job.Firm = nil
	}
	if req.CustomerID != nil {
		job.CustomerID = normalizeID(req.CustomerID)
		job.Customer = nil
	}

	return verrs.Err()
}
