package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/NaByeonggil/obesity1-sub001/internal/platform/auth"
)

type testValidator struct{ v *validator.Validate }

func (tv *testValidator) Validate(i interface{}) error { return tv.v.Struct(i) }

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler(NewService(newMockRepo()))
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}
	return h, e
}

func requestAs(e *echo.Echo, p auth.Principal, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Create(t *testing.T) {
	h, e := newTestHandler()
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	body := `{"doctor_id":"` + uuid.New().String() + `","department_id":"` + uuid.New().String() +
		`","modality":"OFFLINE","scheduled_at":"` + time.Now().Add(24*time.Hour).Format(time.RFC3339) + `"}`
	c, rec := requestAs(e, patient, http.MethodPost, body)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", a.Status)
	}
}

func TestHandler_Create_MissingFields(t *testing.T) {
	h, e := newTestHandler()
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	c, _ := requestAs(e, patient, http.MethodPost, `{}`)

	err := h.Create(c)
	if err == nil {
		t.Fatal("expected error for empty booking")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, e := newTestHandler()
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	c, _ := requestAs(e, patient, http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Get(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_UpdateStatus_DoctorConfirms(t *testing.T) {
	h, e := newTestHandler()
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	doctor := auth.Principal{ID: uuid.New(), Role: auth.RoleDoctor}

	in := futureInput()
	in.DoctorID = doctor.ID
	a, err := h.svc.Create(context.Background(), patient, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	c, rec := requestAs(e, doctor, http.MethodPatch, `{"status":"CONFIRMED"}`)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var got Appointment
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", got.Status)
	}
}

func TestHandler_UpdateStatus_InvalidID(t *testing.T) {
	h, e := newTestHandler()
	doctor := auth.Principal{ID: uuid.New(), Role: auth.RoleDoctor}
	c, _ := requestAs(e, doctor, http.MethodPatch, `{"status":"CONFIRMED"}`)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.UpdateStatus(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
