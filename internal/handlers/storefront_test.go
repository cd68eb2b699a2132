package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"rifas-storefront/internal/cart"
	"rifas-storefront/internal/config"
	"rifas-storefront/internal/models"
	"rifas-storefront/internal/services"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	mu           sync.Mutex
	raffle       *models.Raffle
	raffleErr    error
	provinces    []models.Province
	provincesErr error
	invalidated  int
}

func (c *fakeCatalog) Raffle(ctx context.Context) (*models.Raffle, error) {
	if c.raffleErr != nil {
		return nil, c.raffleErr
	}
	return c.raffle, nil
}

func (c *fakeCatalog) Provinces(ctx context.Context) ([]models.Province, error) {
	if c.provincesErr != nil {
		return nil, c.provincesErr
	}
	return c.provinces, nil
}

func (c *fakeCatalog) InvalidateRaffle(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
}

// MockRaffleClient is a mock implementation of RaffleClient
type MockRaffleClient struct {
	mock.Mock
}

func (m *MockRaffleClient) SubmitOrder(ctx context.Context, form models.OrderForm) (*models.OrderAck, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderAck), args.Error(1)
}

func (m *MockRaffleClient) ConsultNumbers(ctx context.Context, raffleID, email string) (*models.LookupResult, error) {
	args := m.Called(ctx, raffleID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LookupResult), args.Error(1)
}

type archivedProof struct {
	raffleID string
	proof    *models.PaymentProof
}

type fakeArchiver struct {
	mu    sync.Mutex
	calls []archivedProof
}

func (a *fakeArchiver) ArchiveAsync(ctx context.Context, raffleID string, proof *models.PaymentProof) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, archivedProof{raffleID: raffleID, proof: proof})
}

func testRaffle() *models.Raffle {
	return &models.Raffle{
		ID:          "r1",
		Title:       "Moto 0km",
		Description: "Gana una moto",
		Price:       decimal.RequireFromString("1.5"),
		ArrayNumbers: []models.NumberRecord{
			{ID: 7, Status: models.NumberWinner},
			{ID: 8, Status: models.NumberFree},
			{ID: 9, Status: models.NumberPaid},
			{ID: 10, Status: models.NumberFree},
		},
	}
}

func testProvinces() []models.Province {
	return []models.Province{
		{ID: "p1", Name: "Pichincha", Cities: []models.City{
			{ID: "c1", Name: "Quito", ProvinceID: "p1"},
			{ID: "c2", Name: "Cayambe", ProvinceID: "p1"},
		}},
		{ID: "p2", Name: "Guayas", Cities: []models.City{
			{ID: "c3", Name: "Guayaquil", ProvinceID: "p2"},
		}},
	}
}

type testEnv struct {
	handler  *StorefrontHandler
	catalog  *fakeCatalog
	api      *MockRaffleClient
	archiver *fakeArchiver
	store    sessions.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		catalog:  &fakeCatalog{raffle: testRaffle(), provinces: testProvinces()},
		api:      new(MockRaffleClient),
		archiver: &fakeArchiver{},
		store:    sessions.NewCookieStore([]byte("test-secret-key")),
	}
	env.handler = NewStorefrontHandler(config.DefaultStorefront(), env.store, env.catalog, env.api, env.archiver,
		services.NewProofHold(services.NewMemoryCache(), time.Minute), nil, zerolog.Nop())
	return env
}

// withCart returns a session cookie holding a selection of quantity numbers
func (e *testEnv) withCart(t *testing.T, quantity int) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	raffle := testRaffle()
	require.NoError(t, cart.ForRequest(e.store, rr, req).SetSelection(
		models.NewCartSelection(raffle.ID, raffle.Title, raffle.Price, quantity)))
	return sessionCookie(t, rr)
}

// sessionCookie returns the last session cookie set by a response
func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	var found *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == cart.SessionName {
			found = c
		}
	}
	require.NotNil(t, found, "expected a session cookie")
	return found
}

func formRequest(method, target string, values url.Values, cookie *http.Cookie, htmx bool) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return req
}

// withOrderFlash returns a session cookie carrying a fresh order acknowledgment
func (e *testEnv) withOrderFlash(t *testing.T, message string) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	session, err := e.store.Get(req, cart.SessionName)
	require.NoError(t, err)
	session.AddFlash(message, orderFlashKey)
	require.NoError(t, session.Save(req, rr))
	return sessionCookie(t, rr)
}

// withArmedCountdown returns a session cookie as left by the success page
func (e *testEnv) withArmedCountdown(t *testing.T) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/checkout/success", nil)
	req.AddCookie(e.withOrderFlash(t, "Gracias"))
	rr := httptest.NewRecorder()
	e.handler.Success(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	return sessionCookie(t, rr)
}

type upload struct {
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, file *upload, cookie *http.Cookie) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="recive"; filename="`+file.filename+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func validCheckoutFields() map[string]string {
	return map[string]string{
		"name":      "Ana",
		"lastname":  "Pérez",
		"ci":        "1712345678",
		"provincia": "p1",
		"ciudad":    "c1",
		"email":     " ana@example.com ",
		"phone":     "0991234567",
	}
}

func pdfProof() *upload {
	return &upload{filename: "comprobante.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4 test")}
}
