package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rassvet/banquet-booking/internal/model"
	"github.com/rassvet/banquet-booking/internal/repository"
)

// memStore is an in-memory BookingStore + SlotStore. Reserve holds a
// mutex around the check-and-claim, which gives it the same atomicity the
// MySQL uniqueness constraint gives the real store.
type memStore struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	claims   map[string]string // hall|date|hour -> booking id
}

func newMemStore() *memStore {
	return &memStore{
		bookings: make(map[string]*model.Booking),
		claims:   make(map[string]string),
	}
}

func claimKey(hall int, date, hour string) string {
	return fmt.Sprintf("%d|%s|%s", hall, date, hour)
}

func (s *memStore) Reserve(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.BookingID]; ok {
		return repository.ErrDuplicateBooking
	}
	start, err := model.ParseHour(b.Time)
	if err != nil {
		return err
	}
	labels := model.SpanLabels(start, b.Duration)
	for _, l := range labels {
		if _, taken := s.claims[claimKey(b.HallNumber, b.Date, l)]; taken {
			return repository.ErrSlotTaken // nothing written: all-or-nothing
		}
	}
	for _, l := range labels {
		s.claims[claimKey(b.HallNumber, b.Date, l)] = b.BookingID
	}
	cp := *b
	cp.PaymentStatus = model.PaymentPending
	s.bookings[b.BookingID] = &cp
	b.PaymentStatus = model.PaymentPending
	return nil
}

func (s *memStore) GetByID(ctx context.Context, bookingID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *memStore) GetByPaymentID(ctx context.Context, paymentID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.PaymentID == paymentID && paymentID != "" {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (s *memStore) UpdatePaymentStatus(ctx context.Context, bookingID, status, paymentRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.PaymentStatus = status
	if paymentRef != "" {
		b.PaymentID = paymentRef
	}
	return nil
}

func (s *memStore) AttachPaymentRef(ctx context.Context, bookingID, paymentRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.PaymentID = paymentRef
	return nil
}

func (s *memStore) ListByDate(ctx context.Context, date string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if b.Date == date {
			out = append(out, *b)
		}
	}
	return out, nil
}

// BusyHours iterates a map, so callers see claims in no particular order,
// same as they must tolerate from any store.
func (s *memStore) BusyHours(ctx context.Context, hall int, date string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := fmt.Sprintf("%d|%s|", hall, date)
	hours := make([]string, 0)
	for k := range s.claims {
		if strings.HasPrefix(k, prefix) {
			hours = append(hours, strings.TrimPrefix(k, prefix))
		}
	}
	return hours, nil
}

func (s *memStore) ConflictingHours(ctx context.Context, hall int, date string, labels []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conflicting := make([]string, 0)
	for _, l := range labels {
		if _, taken := s.claims[claimKey(hall, date, l)]; taken {
			conflicting = append(conflicting, l)
		}
	}
	return conflicting, nil
}

// seedClaim places a raw claim without a booking record, for availability
// fixtures.
func (s *memStore) seedClaim(hall int, date, hour, bookingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims[claimKey(hall, date, hour)] = bookingID
}

func (s *memStore) claimOwner(hall int, date, hour string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.claims[claimKey(hall, date, hour)]
	return id, ok
}

// ----- helpers -----

func doGET(t *testing.T, h echo.HandlerFunc, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func doJSON(t *testing.T, h echo.HandlerFunc, target, payload string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func strSlice(v any) []string {
	arr, _ := v.([]any)
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		out = append(out, e.(string))
	}
	return out
}

// ----- availability -----

func TestAvailabilityEmptyGridIsFullyFree(t *testing.T) {
	h := NewBookingHandler(newMemStore(), newMemStore())

	rec, body := doGET(t, h.Availability, "/api/booking/availability?date=2024-06-01&hall=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, strSlice(body["available_slots"]), 13)
	assert.Empty(t, strSlice(body["busy_slots"]))
	assert.EqualValues(t, 13, body["total_slots"])
}

func TestAvailabilityRequiresDateAndHall(t *testing.T) {
	store := newMemStore()
	h := NewBookingHandler(store, store)

	rec, _ := doGET(t, h.Availability, "/api/booking/availability?hall=1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doGET(t, h.Availability, "/api/booking/availability?date=2024-06-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailabilityExcludesClaimedSlot(t *testing.T) {
	store := newMemStore()
	store.seedClaim(1, "2024-06-01", "14:00", "BKTEST")
	h := NewBookingHandler(store, store)

	rec, body := doGET(t, h.Availability, "/api/booking/availability?date=2024-06-01&hall=1")
	require.Equal(t, http.StatusOK, rec.Code)

	available := strSlice(body["available_slots"])
	assert.Len(t, available, 12)
	assert.NotContains(t, available, "14:00")
	assert.Equal(t, []string{"14:00"}, strSlice(body["busy_slots"]))

	// other halls are unaffected
	_, other := doGET(t, h.Availability, "/api/booking/availability?date=2024-06-01&hall=2")
	assert.Len(t, strSlice(other["available_slots"]), 13)
}

// ----- check-slot -----

func TestCheckSlotReportsConflict(t *testing.T) {
	store := newMemStore()
	store.seedClaim(1, "2024-06-01", "14:00", "BKTEST")
	h := NewBookingHandler(store, store)

	rec, body := doGET(t, h.CheckSlot, "/api/booking/check-slot?date=2024-06-01&hall=1&time=13:00&duration=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["available"])
	assert.Equal(t, []string{"14:00"}, strSlice(body["conflicting_slots"]))
	assert.Equal(t, []string{"13:00", "14:00"}, strSlice(body["requested_slots"]))
}

func TestCheckSlotFreeRange(t *testing.T) {
	store := newMemStore()
	store.seedClaim(1, "2024-06-01", "14:00", "BKTEST")
	h := NewBookingHandler(store, store)

	rec, body := doGET(t, h.CheckSlot, "/api/booking/check-slot?date=2024-06-01&hall=1&time=15:00&duration=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["available"])
	assert.Empty(t, strSlice(body["conflicting_slots"]))
}

func TestCheckSlotDefaultDuration(t *testing.T) {
	store := newMemStore()
	h := NewBookingHandler(store, store)

	_, body := doGET(t, h.CheckSlot, "/api/booking/check-slot?date=2024-06-01&hall=1&time=12:00")
	assert.Equal(t, []string{"12:00", "13:00"}, strSlice(body["requested_slots"]))
}

func TestCheckSlotExceedsOperatingHoursIsNegativeResultNotError(t *testing.T) {
	store := newMemStore()
	h := NewBookingHandler(store, store)

	rec, body := doGET(t, h.CheckSlot, "/api/booking/check-slot?date=2024-06-01&hall=1&time=21:00&duration=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["available"])
	assert.NotEmpty(t, body["reason"])
}

func TestCheckSlotInvalidTime(t *testing.T) {
	store := newMemStore()
	h := NewBookingHandler(store, store)

	for _, timeArg := range []string{"09:00", "23:00", "abc"} {
		rec, _ := doGET(t, h.CheckSlot, "/api/booking/check-slot?date=2024-06-01&hall=1&time="+timeArg)
		assert.Equal(t, http.StatusBadRequest, rec.Code, timeArg)
	}
}

// ----- create -----

const validCreateBody = `{
	"hall": 1, "date": "2024-06-01", "time": "10:00", "duration": 3,
	"guests": "10-20", "name": "Anna", "phone": "+70000000001",
	"email": "anna@example.com", "comments": "window table",
	"menuItems": [{"name": "Cake", "quantity": 2, "price": 1500}],
	"total": 50000
}`

func TestCreateBookingClaimsEverySpannedHour(t *testing.T) {
	store := newMemStore()
	h := NewBookingHandler(store, store)

	rec, body := doJSON(t, h.Create, "/api/booking/create", validCreateBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	id, _ := body["booking_id"].(string)
	require.True(t, strings.HasPrefix(id, "BK"), id)

	for _, hour := range []string{"10:00", "11:00", "12:00"} {
		owner, ok := store.claimOwner(1, "2024-06-01", hour)
		require.True(t, ok, hour)
		assert.Equal(t, id, owner, hour)
	}
	if _, ok := store.claimOwner(1, "2024-06-01", "13:00"); ok {
		t.Fatal("claimed an hour outside the booked span")
	}

	b, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, b.PaymentStatus)
	require.Len(t, b.MenuItems, 1)
	assert.Equal(t, "Cake", b.MenuItems[0].Name)
}

func TestCreateBookingMissingFields(t *testing.T) {
	store := newMemStore()
	h := NewBookingHandler(store, store)

	rec, body := doJSON(t, h.Create, "/api/booking/create",
		`{"hall": 1, "date": "2024-06-01", "time": "10:00", "total": 1000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestCreateBookingConflictReturns409(t *testing.T) {
	store := newMemStore()
	store.seedClaim(1, "2024-06-01", "11:00", "BKOTHER")
	h := NewBookingHandler(store, store)

	rec, body := doJSON(t, h.Create, "/api/booking/create", validCreateBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, body["success"])

	// the losing request must leave no partial claims behind
	if _, ok := store.claimOwner(1, "2024-06-01", "10:00"); ok {
		t.Fatal("partial claim persisted after conflict")
	}
}

func TestCreateBookingExceedingOperatingHoursRejected(t *testing.T) {
	store := newMemStore()
	h := NewBookingHandler(store, store)

	rec, _ := doJSON(t, h.Create, "/api/booking/create",
		`{"hall": 1, "date": "2024-06-01", "time": "22:00", "duration": 2,
		  "name": "Anna", "phone": "+70000000001", "total": 1000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Conflict checker and reservation agree: a range the checker calls free
// is reservable as long as nobody claims it in between.
func TestCheckerAgreesWithReserve(t *testing.T) {
	store := newMemStore()
	store.seedClaim(1, "2024-06-01", "14:00", "BKOTHER")
	h := NewBookingHandler(store, store)

	_, check := doGET(t, h.CheckSlot, "/api/booking/check-slot?date=2024-06-01&hall=1&time=10:00&duration=3")
	require.Equal(t, true, check["available"])

	rec, _ := doJSON(t, h.Create, "/api/booking/create", validCreateBody)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Two concurrent reservations over overlapping hours: exactly one wins,
// the other gets 409, and every claimed hour has a single owner.
func TestConcurrentOverlappingReservations(t *testing.T) {
	store := newMemStore()
	h := NewBookingHandler(store, store)

	payloads := []string{
		`{"hall": 1, "date": "2024-06-01", "time": "12:00", "duration": 3,
		  "name": "Anna", "phone": "+70000000001", "total": 30000}`,
		`{"hall": 1, "date": "2024-06-01", "time": "13:00", "duration": 2,
		  "name": "Boris", "phone": "+70000000002", "total": 20000}`,
	}

	codes := make([]int, len(payloads))
	var wg sync.WaitGroup
	for i, p := range payloads {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/booking/create", strings.NewReader(p))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			if err := h.Create(e.NewContext(req, rec)); err != nil {
				t.Error(err)
			}
			codes[i] = rec.Code
		}(i, p)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			wins++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, wins, "codes: %v", codes)
	assert.Equal(t, 1, conflicts, "codes: %v", codes)

	owner, ok := store.claimOwner(1, "2024-06-01", "13:00")
	require.True(t, ok)
	for _, hour := range []string{"12:00", "13:00", "14:00"} {
		if id, claimed := store.claimOwner(1, "2024-06-01", hour); claimed {
			assert.Equal(t, owner, id, "hour %s owned by a different booking", hour)
		}
	}
}

// ----- lookup -----

func TestGetBookingNotFound(t *testing.T) {
	store := newMemStore()
	h := NewBookingHandler(store, store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/booking/:bookingID")
	c.SetParamNames("bookingID")
	c.SetParamValues("BKMISSING")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBookingReturnsMenuItemsInOrder(t *testing.T) {
	store := newMemStore()
	h := NewBookingHandler(store, store)

	_, created := doJSON(t, h.Create, "/api/booking/create", `{
		"hall": 2, "date": "2024-07-10", "time": "18:00", "duration": 2,
		"name": "Vera", "phone": "+70000000003", "total": 9000,
		"menuItems": [
			{"name": "Soup", "quantity": 4, "price": 300},
			{"name": "Steak", "quantity": 4, "price": 1200},
			{"name": "Tea", "quantity": 8, "price": 150}
		]
	}`)
	id := created["booking_id"].(string)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/booking/:bookingID")
	c.SetParamNames("bookingID")
	c.SetParamValues(id)
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Booking model.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Booking.MenuItems, 3)
	assert.Equal(t, "Soup", body.Booking.MenuItems[0].Name)
	assert.Equal(t, "Steak", body.Booking.MenuItems[1].Name)
	assert.Equal(t, "Tea", body.Booking.MenuItems[2].Name)
}
