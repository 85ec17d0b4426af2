package jobs

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"garaj-backend/internal/apperr"
	"garaj-backend/internal/database"
	"garaj-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func newJobsApp(t *testing.T) *fiber.App {
	t.Helper()
	return newJobsAppIn(t, time.UTC)
}

func newJobsAppIn(t *testing.T, loc *time.Location) *fiber.App {
	t.Helper()
	database.DB = setupTestDB(t)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	app.Get("/jobs", ListJobsHandler())
	app.Post("/jobs", CreateJobHandler(loc))
	app.Put("/jobs", UpdateJobHandler(loc))
	app.Delete("/jobs/clear", ClearJobsHandler())
	app.Get("/jobs/:id", GetJobHandler())
	app.Put("/jobs/:id", UpdateJobHandler(loc))
	app.Delete("/jobs/:id", DeleteJobHandler())
	app.Post("/jobs/:id/cancel", CancelJobHandler())
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

const jobJSON = `{"name":"Ali Veli","phone":"05550000000","brand":"Fiat","model":"Egea","plate":"06 xyz 99","vehicle":"sedan","job":"Yağ değişimi","price":800%s}`

func TestJobLifecycleOverHTTP(t *testing.T) {
	app := newJobsApp(t)
	firm := seedFirm(t, database.DB)

	status, body := send(t, app, http.MethodPost, "/jobs", fmt.Sprintf(jobJSON, fmt.Sprintf(`,"firm":%d`, firm.ID)))
	if status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %v", status, body)
	}
	job, _ := body["job"].(map[string]any)
	if job["status"] != "Beklemede" || job["partsTotal"] != float64(0) {
		t.Fatalf("unexpected job: %v", job)
	}

	status, body = send(t, app, http.MethodPut, "/jobs", `{"id":1,"status":"Tamamlandı"}`)
	if status != http.StatusOK {
		t.Fatalf("update: %d %v", status, body)
	}

	status, _ = send(t, app, http.MethodPost, "/jobs/1/cancel", "")
	if status != http.StatusOK {
		t.Fatalf("cancel: %d", status)
	}
	status, body = send(t, app, http.MethodPost, "/jobs/1/cancel", "")
	if status != http.StatusBadRequest || body["error"] != "Bu iş zaten iptal edilmiş" {
		t.Fatalf("double cancel: %d %v", status, body)
	}

	status, body = send(t, app, http.MethodGet, "/jobs?firm=1", "")
	list, _ := body["jobs"].([]any)
	if status != http.StatusOK || len(list) != 1 {
		t.Fatalf("list: %d %v", status, body)
	}
}

func TestCreateJobErrors(t *testing.T) {
	app := newJobsApp(t)

	status, body := send(t, app, http.MethodPost, "/jobs", fmt.Sprintf(jobJSON, `,"firm":1,"customer":2`))
	if status != http.StatusBadRequest {
		t.Fatalf("both accounts: expected 400, got %d %v", status, body)
	}

	status, _ = send(t, app, http.MethodPost, "/jobs", fmt.Sprintf(jobJSON, `,"customer":42`))
	if status != http.StatusNotFound {
		t.Fatalf("unknown customer: expected 404, got %d", status)
	}

	status, body = send(t, app, http.MethodPost, "/jobs", `{"name":"x"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("missing fields: expected 400, got %d", status)
	}
	details, _ := body["details"].(map[string]any)
	if _, ok := details["plate"]; !ok {
		t.Fatalf("expected plate violation, got %v", body)
	}

	status, _ = send(t, app, http.MethodPost, "/jobs", fmt.Sprintf(jobJSON, `,"parts":[{"part":9,"quantity":1}]`))
	if status != http.StatusNotFound {
		t.Fatalf("unknown part: expected 404, got %d", status)
	}
}

func TestGetAndDeleteJob(t *testing.T) {
	app := newJobsApp(t)
	stock := seedStock(t, database.DB, 3)

	status, _ := send(t, app, http.MethodPost, "/jobs", fmt.Sprintf(jobJSON, fmt.Sprintf(`,"parts":[{"part":%d,"quantity":2,"price":100}]`, stock.ID)))
	if status != http.StatusCreated {
		t.Fatalf("create: %d", status)
	}

	status, body := send(t, app, http.MethodGet, "/jobs/1", "")
	job, _ := body["job"].(map[string]any)
	if status != http.StatusOK || job["partsTotal"] != float64(200) {
		t.Fatalf("detail: %d %v", status, body)
	}
	parts, _ := job["parts"].([]any)
	part, _ := parts[0].(map[string]any)["part"].(map[string]any)
	if part["code"] != "FB-01" {
		t.Fatalf("part should carry stock details, got %v", parts)
	}

	status, _ = send(t, app, http.MethodDelete, "/jobs/1", "")
	if status != http.StatusOK {
		t.Fatalf("delete: %d", status)
	}
	if got := stockQty(t, database.DB, stock.ID); got != 3 {
		t.Fatalf("stock should be restored, got %d", got)
	}
	status, _ = send(t, app, http.MethodGet, "/jobs/1", "")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestClearJobsReportsCount(t *testing.T) {
	app := newJobsApp(t)
	send(t, app, http.MethodPost, "/jobs", fmt.Sprintf(jobJSON, ""))
	send(t, app, http.MethodPost, "/jobs", fmt.Sprintf(jobJSON, ""))

	status, body := send(t, app, http.MethodDelete, "/jobs/clear", "")
	if status != http.StatusOK || body["message"] != "2 adet iş kaydı silindi" {
		t.Fatalf("clear: %d %v", status, body)
	}
}

func TestJobDateAcceptsDateOnly(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	app := newJobsAppIn(t, istanbul)

	status, body := send(t, app, http.MethodPost, "/jobs", fmt.Sprintf(jobJSON, `,"date":"2025-03-10"`))
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", status, body)
	}
	job, _ := body["job"].(map[string]any)
	id, _ := job["id"].(float64)

	var stored models.Job
	if err := database.DB.First(&stored, uint(id)).Error; err != nil {
		t.Fatalf("load job: %v", err)
	}
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, istanbul)
	if !stored.Date.Equal(want) {
		t.Fatalf("expected job dated %s, got %s", want, stored.Date)
	}

	status, body = send(t, app, http.MethodPut, fmt.Sprintf("/jobs/%d", uint(id)), `{"date":"2025-04-01"}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d (%v)", status, body)
	}
	if err := database.DB.First(&stored, uint(id)).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if want := time.Date(2025, 4, 1, 0, 0, 0, 0, istanbul); !stored.Date.Equal(want) {
		t.Fatalf("expected updated date %s, got %s", want, stored.Date)
	}

	status, _ = send(t, app, http.MethodPost, "/jobs", fmt.Sprintf(jobJSON, `,"date":"2025-03-10T08:30:00Z"`))
	if status != http.StatusCreated {
		t.Fatalf("expected RFC3339 date to be accepted, got %d", status)
	}

	status, body = send(t, app, http.MethodPost, "/jobs", fmt.Sprintf(jobJSON, `,"date":"10.03.2025"`))
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", status)
	}
	details, _ := body["details"].(map[string]any)
	if _, ok := details["date"]; !ok {
		t.Fatalf("expected date field error, got %v", body)
	}
}
