package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/infra/memory"
	"github.com/BruksfildServices01/bookedbarber/internal/lock"
	"github.com/BruksfildServices01/bookedbarber/internal/middleware"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
	"github.com/BruksfildServices01/bookedbarber/internal/usecase/appointment"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Monday 2024-06-03 08:00 UTC.
var handlerNow = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

type publicFixture struct {
	store  *memory.Store
	barber models.User
	router *gin.Engine
}

func newPublicFixture(t *testing.T) *publicFixture {
	t.Helper()

	s := memory.NewStore(domain.PolicyDefaults{Timezone: "UTC"})
	shop := s.AddBarbershop(models.Barbershop{
		Name:              "Navalha",
		Slug:              "navalha",
		Timezone:          "UTC",
		BusinessStart:     "09:00",
		BusinessEnd:       "18:00",
		MinAdvanceMinutes: 120,
		MaxAdvanceDays:    30,
		SlotMinutes:       30,
	})
	s.AddProduct(models.BarberProduct{BarbershopID: shop.ID, Name: "Corte", Category: "hair", DurationMin: 30, Active: true})
	s.AddProduct(models.BarberProduct{BarbershopID: shop.ID, Name: "Platinado", Category: "color", DurationMin: 90, BufferBefore: 15, BufferAfter: 15, Active: true})

	barber := s.AddBarber(models.User{BarbershopID: shop.ID, Name: "Rui", Active: true})
	for wd := 1; wd <= 6; wd++ {
		s.AddWorkingHours(models.WorkingHours{BarberID: barber.ID, Weekday: wd, StartTime: "09:00", EndTime: "18:00", Active: true})
	}

	clock := timezone.FixedClock{At: handlerNow}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	book := appointment.NewAttemptBooking(s, s, domain.NewValidator(s, s, s, clock), lock.NewLocalLocker(), nil, logger)
	h := NewPublicHandler(s, book, appointment.NewGetAvailability(s, s, clock), logger)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/api/public/:slug/services", h.ListServices)
	r.GET("/api/public/:slug/availability", h.Availability)
	r.POST("/api/public/:slug/appointments", h.CreateAppointment)

	return &publicFixture{store: s, barber: barber, router: r}
}

func (f *publicFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *publicFixture) booking(clock, service string) gin.H {
	return gin.H{
		"barber_id":    f.barber.ID,
		"service":      service,
		"date":         "2024-06-03",
		"time":         clock,
		"client_name":  "Joana",
		"client_phone": "(11) 98888-7777",
	}
}

type errorBody struct {
	Code    string         `json:"error_code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return body
}

func TestCreateAppointmentCreated(t *testing.T) {
	f := newPublicFixture(t)

	w := f.do(t, http.MethodPost, "/api/public/navalha/appointments", f.booking("11:00", "Corte"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Appointment models.Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Appointment.ID == 0 || body.Appointment.BarberID != f.barber.ID {
		t.Fatalf("appointment = %+v", body.Appointment)
	}

	clients := f.store.Clients()
	if len(clients) != 1 || clients[0].Phone != "11988887777" {
		t.Fatalf("clients = %+v", clients)
	}
}

func TestCreateAppointmentConflict(t *testing.T) {
	f := newPublicFixture(t)

	if w := f.do(t, http.MethodPost, "/api/public/navalha/appointments", f.booking("11:00", "Corte")); w.Code != http.StatusCreated {
		t.Fatalf("first booking status = %d", w.Code)
	}

	w := f.do(t, http.MethodPost, "/api/public/navalha/appointments", f.booking("11:15", "Corte"))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	body := decodeError(t, w)
	if body.Code != "slot_conflict" {
		t.Fatalf("error_code = %s", body.Code)
	}
	times, _ := body.Details["conflicting_times"].([]any)
	if len(times) != 1 {
		t.Fatalf("conflicting_times = %v", body.Details["conflicting_times"])
	}
	first, _ := times[0].(map[string]any)
	if first["date"] != "2024-06-03" || first["start"] != "11:00" || first["end"] != "11:30" {
		t.Errorf("conflict = %v", first)
	}
	suggest, _ := body.Details["suggest"].(string)
	if !strings.HasPrefix(suggest, "/api/public/navalha/availability?") {
		t.Errorf("suggest = %q", suggest)
	}
}

func TestCreateAppointmentRejections(t *testing.T) {
	tests := []struct {
		name   string
		slug   string
		body   gin.H
		status int
		code   string
	}{
		{
			name:   "lead time",
			slug:   "navalha",
			body:   gin.H{"service": "Corte", "date": "2024-06-03", "time": "09:30", "client_name": "Ana"},
			status: http.StatusUnprocessableEntity,
			code:   "insufficient_lead_time",
		},
		{
			name:   "missing date",
			slug:   "navalha",
			body:   gin.H{"service": "Corte", "time": "11:00"},
			status: http.StatusBadRequest,
			code:   "invalid_input",
		},
		{
			name:   "unknown service",
			slug:   "navalha",
			body:   gin.H{"service": "Massagem", "date": "2024-06-03", "time": "11:00"},
			status: http.StatusNotFound,
			code:   "unknown_service",
		},
		{
			name:   "after closing",
			slug:   "navalha",
			body:   gin.H{"service": "Corte", "date": "2024-06-03", "time": "17:45"},
			status: http.StatusUnprocessableEntity,
			code:   "outside_business_hours",
		},
		{
			name:   "unknown barbershop",
			slug:   "nowhere",
			body:   gin.H{"service": "Corte", "date": "2024-06-03", "time": "11:00"},
			status: http.StatusNotFound,
			code:   "barbershop_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPublicFixture(t)

			w := f.do(t, http.MethodPost, "/api/public/"+tt.slug+"/appointments", tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.status, w.Body.String())
			}
			if got := decodeError(t, w).Code; got != tt.code {
				t.Errorf("error_code = %s, want %s", got, tt.code)
			}
			if n := len(f.store.Appointments()); n != 0 {
				t.Errorf("stored %d appointments after a rejection", n)
			}
		})
	}
}

func TestCreateAppointmentLeadTimeDetails(t *testing.T) {
	f := newPublicFixture(t)

	w := f.do(t, http.MethodPost, "/api/public/navalha/appointments", f.booking("09:30", "Corte"))
	body := decodeError(t, w)
	if body.Details["required_minutes"] != float64(120) {
		t.Errorf("details = %v", body.Details)
	}
}

func TestCreateAppointmentStorageUnavailable(t *testing.T) {
	f := newPublicFixture(t)
	f.store.FailWith(errors.New("connection refused"))

	w := f.do(t, http.MethodPost, "/api/public/navalha/appointments", f.booking("11:00", "Corte"))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Error("storage detail leaked to the client")
	}
}

func TestAvailability(t *testing.T) {
	f := newPublicFixture(t)

	if w := f.do(t, http.MethodPost, "/api/public/navalha/appointments", f.booking("11:00", "Corte")); w.Code != http.StatusCreated {
		t.Fatalf("booking status = %d", w.Code)
	}

	w := f.do(t, http.MethodGet, "/api/public/navalha/availability?date=2024-06-03&service=Corte", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Slots []domain.TimeSlot `json:"slots"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Slots) == 0 || body.Slots[0].Start != "10:00" {
		t.Fatalf("slots = %+v", body.Slots)
	}
	for _, s := range body.Slots {
		if s.Start == "11:00" {
			t.Fatal("booked slot offered")
		}
	}

	w = f.do(t, http.MethodGet, "/api/public/navalha/availability?date=2024-06-03&service=Corte&barber_id=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad barber_id status = %d", w.Code)
	}
}

func TestListServicesByCategory(t *testing.T) {
	f := newPublicFixture(t)

	w := f.do(t, http.MethodGet, "/api/public/navalha/services?category=COLOR", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Services []models.BarberProduct `json:"services"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Services) != 1 || body.Services[0].Name != "Platinado" {
		t.Fatalf("services = %+v", body.Services)
	}
}

func TestWriteErrorMapping(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{httperr.ErrBusiness("appointment_not_found"), http.StatusNotFound, "appointment_not_found"},
		{httperr.ErrBusiness("invalid_state"), http.StatusConflict, "invalid_state"},
		{httperr.ErrBusiness("something_else"), http.StatusBadRequest, "something_else"},
		{domain.TooFarInAdvance(30), http.StatusUnprocessableEntity, "too_far_in_advance"},
		{domain.StorageUnavailable("insert", errors.New("boom")), http.StatusServiceUnavailable, "service_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		writeError(c, logger, tt.err, "")

		if w.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, w.Code, tt.status)
		}
		if got := decodeError(t, w).Code; got != tt.code {
			t.Errorf("%v: code = %s, want %s", tt.err, got, tt.code)
		}
	}
}

func TestWriteErrorBusinessMessage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/", nil)

	writeError(c, logger, domain.CanConfirm(domain.StatusCancelled), "")

	body := decodeError(t, w)
	if w.Code != http.StatusConflict || body.Code != "invalid_state" {
		t.Fatalf("status = %d code = %s", w.Code, body.Code)
	}
	if body.Message != "cannot move a cancelled appointment to confirmed" {
		t.Fatalf("message = %q", body.Message)
	}
}
