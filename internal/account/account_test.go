package account

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"garaj-backend/internal/apperr"
	"garaj-backend/internal/database"
	"garaj-backend/internal/ledger"
	"garaj-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newAccountApp(t *testing.T) *fiber.App {
	t.Helper()
	database.DB = setupTestDB(t)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	app.Get("/firms", ListFirmsHandler())
	app.Post("/firms", CreateFirmHandler())
	app.Put("/firms", UpdateFirmHandler())
	app.Get("/firms/:id", GetFirmHandler())
	app.Put("/firms/:id", UpdateFirmHandler())
	app.Delete("/firms/:id", DeleteFirmHandler())
	app.Post("/firms/:id/payments", CreateFirmPaymentHandler())
	app.Get("/firms/:id/payments", ListFirmPaymentsHandler())

	app.Get("/customers", ListCustomersHandler())
	app.Post("/customers", CreateCustomerHandler())
	app.Get("/customers/:id", GetCustomerHandler())
	app.Put("/customers/:id", UpdateCustomerHandler())
	app.Delete("/customers/:id", DeleteCustomerHandler())
	app.Post("/customers/:id/payments", CreateCustomerPaymentHandler())
	app.Get("/customers/:id/payments", ListCustomerPaymentsHandler())
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

// seedJob stores a job for the account and bills it like job creation does.
func seedJob(t *testing.T, acc ledger.Account, price int64, status models.JobStatus) models.Job {
	t.Helper()
	job := models.Job{
		Name: "Ali", Phone: "0555", Brand: "Ford", Model: "Focus", Plate: "35 AB 1",
		Vehicle: models.VehicleSedan, Description: "Bakım", Price: decimal.NewFromInt(price),
		Status: status, Date: time.Now(),
	}
	if acc.Type == models.AccountFirm {
		job.FirmID = &acc.ID
	} else {
		job.CustomerID = &acc.ID
	}
	if err := database.DB.Create(&job).Error; err != nil {
		t.Fatalf("job: %v", err)
	}
	if err := ledger.Charge(database.DB, acc, job.ID, job.Price, time.Now()); err != nil {
		t.Fatalf("charge: %v", err)
	}
	return job
}

func TestFirmPaymentReducesCurrentBalance(t *testing.T) {
	app := newAccountApp(t)

	status, body := send(t, app, http.MethodPost, "/firms", `{"name":"Öz Taşımacılık","email":"INFO@OZ.COM","totalBalance":99999}`)
	if status != http.StatusCreated {
		t.Fatalf("create: %d %v", status, body)
	}
	firm, _ := body["firm"].(map[string]any)
	if firm["email"] != "info@oz.com" {
		t.Fatalf("email should be lower-cased, got %v", firm["email"])
	}
	if firm["totalBalance"] != float64(0) {
		t.Fatalf("balance must not come from the client, got %v", firm["totalBalance"])
	}

	seedJob(t, ledger.FirmAccount(1), 1000, models.JobStatusCompleted)

	status, body = send(t, app, http.MethodPost, "/firms/1/payments", `{"amount":300}`)
	if status != http.StatusOK {
		t.Fatalf("payment: %d %v", status, body)
	}
	firm, _ = body["firm"].(map[string]any)
	if firm["totalBalance"] != float64(1000) || firm["currentBalance"] != float64(700) {
		t.Fatalf("expected 1000/700, got %v/%v", firm["totalBalance"], firm["currentBalance"])
	}
	payment, _ := body["payment"].(map[string]any)
	if payment["description"] != "Ödeme" || payment["date"] == "" {
		t.Fatalf("unexpected payment: %v", payment)
	}

	status, body = send(t, app, http.MethodGet, "/firms/1", "")
	payments, _ := body["payments"].([]any)
	jobs, _ := body["jobs"].([]any)
	if status != http.StatusOK || len(payments) != 1 || len(jobs) != 1 || body["totalPaid"] != float64(300) {
		t.Fatalf("detail: %d %v", status, body)
	}
}

func TestFirmPaymentErrors(t *testing.T) {
	app := newAccountApp(t)
	send(t, app, http.MethodPost, "/firms", `{"name":"Deniz Oto"}`)
	seedJob(t, ledger.FirmAccount(1), 200, models.JobStatusPending)

	status, body := send(t, app, http.MethodPost, "/firms/1/payments", `{"amount":500}`)
	if status != http.StatusBadRequest || body["error"] != "Firma bakiyesi yetersiz" {
		t.Fatalf("insufficient: %d %v", status, body)
	}
	status, _ = send(t, app, http.MethodPost, "/firms/1/payments", `{"amount":0}`)
	if status != http.StatusBadRequest {
		t.Fatalf("zero amount: expected 400, got %d", status)
	}
	status, _ = send(t, app, http.MethodPost, "/firms/9/payments", `{"amount":10}`)
	if status != http.StatusNotFound {
		t.Fatalf("unknown firm: expected 404, got %d", status)
	}

	_, body = send(t, app, http.MethodGet, "/firms/1/payments", "")
	payments, _ := body["payments"].([]any)
	if len(payments) != 0 {
		t.Fatalf("rejected payments must not be stored, got %v", payments)
	}
}

func TestDeleteBlockedByOpenJobs(t *testing.T) {
	app := newAccountApp(t)
	send(t, app, http.MethodPost, "/firms", `{"name":"Aras Filo"}`)
	send(t, app, http.MethodPost, "/customers", `{"name":"Zeynep","phone":"0533"}`)

	job := seedJob(t, ledger.FirmAccount(1), 100, models.JobStatusInProgress)
	seedJob(t, ledger.CustomerAccount(1), 100, models.JobStatusPending)

	status, body := send(t, app, http.MethodDelete, "/firms/1", "")
	if status != http.StatusBadRequest || body["error"] != "Tamamlanmamış işleri olan firma silinemez" {
		t.Fatalf("firm delete: %d %v", status, body)
	}
	status, body = send(t, app, http.MethodDelete, "/customers/1", "")
	if status != http.StatusBadRequest || body["error"] != "Tamamlanmamış işleri olan müşteri silinemez" {
		t.Fatalf("customer delete: %d %v", status, body)
	}

	database.DB.Model(&models.Job{}).Where("id = ?", job.ID).Update("status", models.JobStatusCompleted)
	status, _ = send(t, app, http.MethodDelete, "/firms/1", "")
	if status != http.StatusOK {
		t.Fatalf("delete after completion: %d", status)
	}
	var entries int64
	database.DB.Model(&models.LedgerEntry{}).Where("account_type = ?", models.AccountFirm).Count(&entries)
	if entries != 0 {
		t.Fatalf("ledger history should be removed with the firm, got %d", entries)
	}
}

func TestCustomerCRUD(t *testing.T) {
	app := newAccountApp(t)

	status, body := send(t, app, http.MethodPost, "/customers", `{"name":"Ayşe"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("missing phone: expected 400, got %d %v", status, body)
	}

	status, _ = send(t, app, http.MethodPost, "/customers", `{"name":"Ayşe","phone":"05551234567","plate":"34 aa 1"}`)
	if status != http.StatusCreated {
		t.Fatalf("create: %d", status)
	}

	status, body = send(t, app, http.MethodPut, "/customers/1", `{"notes":"VIP","version":1}`)
	customer, _ := body["customer"].(map[string]any)
	if status != http.StatusOK || customer["notes"] != "VIP" || customer["plate"] != "34 AA 1" {
		t.Fatalf("update: %d %v", status, body)
	}
	status, _ = send(t, app, http.MethodPut, "/customers/1", `{"notes":"eski","version":1}`)
	if status != http.StatusConflict {
		t.Fatalf("stale version: expected 409, got %d", status)
	}

	_, body = send(t, app, http.MethodGet, "/customers?q=ay", "")
	list, _ := body["customers"].([]any)
	if len(list) != 1 {
		t.Fatalf("search: %v", body)
	}
}

func TestCustomerPayment(t *testing.T) {
	app := newAccountApp(t)
	send(t, app, http.MethodPost, "/customers", `{"name":"Can","phone":"0532"}`)
	seedJob(t, ledger.CustomerAccount(1), 450, models.JobStatusCompleted)

	status, body := send(t, app, http.MethodPost, "/customers/1/payments", `{"amount":450,"description":"Nakit"}`)
	customer, _ := body["customer"].(map[string]any)
	if status != http.StatusOK || customer["currentBalance"] != float64(0) {
		t.Fatalf("payment: %d %v", status, body)
	}
}

func TestListPaymentsSurfacesDatabaseErrors(t *testing.T) {
	app := newAccountApp(t)

	code, _ := send(t, app, http.MethodGet, "/firms/99/payments", "")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing firm, got %d", code)
	}

	if err := database.DB.Migrator().DropTable(&models.Firm{}, &models.Customer{}); err != nil {
		t.Fatalf("drop tables: %v", err)
	}
	code, _ = send(t, app, http.MethodGet, "/firms/1/payments", "")
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when firms cannot be read, got %d", code)
	}
	code, _ = send(t, app, http.MethodGet, "/customers/1/payments", "")
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when customers cannot be read, got %d", code)
	}
}
