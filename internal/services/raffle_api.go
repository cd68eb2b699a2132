package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"rifas-storefront/internal/models"

	"github.com/rs/zerolog"
)

// RaffleAPIConfig configures the external raffle API client
type RaffleAPIConfig struct {
	BaseURL      string // e.g. https://back.rifasmym.ec/api
	CountriesURL string // base of the province list endpoint
	Timeout      time.Duration
	RetryBackoff time.Duration
}

// RaffleAPI talks to the raffle service owned by the raffle team
type RaffleAPI struct {
	config RaffleAPIConfig
	client *http.Client
	logger zerolog.Logger
}

// NewRaffleAPI creates a raffle API client. Every call is bounded by
// config.Timeout; only idempotent reads are retried.
func NewRaffleAPI(config RaffleAPIConfig, logger zerolog.Logger) *RaffleAPI {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = 300 * time.Millisecond
	}
	if config.CountriesURL == "" {
		config.CountriesURL = config.BaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	config.CountriesURL = strings.TrimSuffix(config.CountriesURL, "/")

	return &RaffleAPI{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With().Str("component", "raffle_api").Logger(),
	}
}

// GetRaffle fetches the current raffle from the listing endpoint
func (a *RaffleAPI) GetRaffle(ctx context.Context) (*models.Raffle, error) {
	body, err := a.getWithRetry(ctx, a.config.BaseURL+"/allTalonarios")
	if err != nil {
		return nil, err
	}

	var envelope raffleListing
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode raffle listing: %w", err)
	}
	if envelope.Data == nil || envelope.Data.ID == "" {
		return nil, models.ErrRaffleUnavailable
	}

	raffle := envelope.Data.Raffle
	gallery, err := models.ParseGallery(envelope.Data.Gallery)
	if err != nil {
		a.logger.Warn().Err(err).Str("raffle_id", raffle.ID).Msg("ignoring malformed raffle gallery")
		gallery = models.Gallery{}
	}
	raffle.Gallery = gallery

	return &raffle, nil
}

// raffleListing is the listing envelope with the gallery left raw, so a
// malformed gallery only drops the images
type raffleListing struct {
	Data *struct {
		models.Raffle
		Gallery json.RawMessage `json:"gallery"`
	} `json:"data"`
}

// GetProvinces fetches the province list with their cities
func (a *RaffleAPI) GetProvinces(ctx context.Context) ([]models.Province, error) {
	body, err := a.getWithRetry(ctx, a.config.CountriesURL+"/getCountry")
	if err != nil {
		return nil, err
	}

	var provinces []models.Province
	if err := json.Unmarshal(body, &provinces); err != nil {
		return nil, fmt.Errorf("failed to decode provinces: %w", err)
	}

	return provinces, nil
}

// ConsultNumbers asks the API to email the numbers bought with email.
// A 403 answer is returned as a *models.RejectionError.
func (a *RaffleAPI) ConsultNumbers(ctx context.Context, raffleID, email string) (*models.LookupResult, error) {
	payload, err := json.Marshal(models.LookupRequest{ID: raffleID, Email: email})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/consultNumbers", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, body, err := a.do(req)
	if err != nil {
		return nil, err
	}

	if status == http.StatusForbidden {
		return nil, &models.RejectionError{Status: status, Message: messageFrom(body)}
	}
	if status < 200 || status > 299 {
		return nil, &models.APIError{StatusCode: status, Message: messageFrom(body)}
	}

	var result models.LookupResult
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode lookup response: %w", err)
		}
	}

	return &result, nil
}

// SubmitOrder posts the order with its payment proof as multipart form data.
// A 2xx answer returns the acknowledgment as-is; callers check Succeeded.
func (a *RaffleAPI) SubmitOrder(ctx context.Context, form models.OrderForm) (*models.OrderAck, error) {
	body, contentType, err := encodeOrder(form)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/takeNumber", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	status, respBody, err := a.do(req)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		return nil, &models.APIError{StatusCode: status, Message: messageFrom(respBody)}
	}

	var ack models.OrderAck
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return nil, fmt.Errorf("failed to decode order acknowledgment: %w", err)
	}

	return &ack, nil
}

// encodeOrder builds the takeNumber multipart body
func encodeOrder(form models.OrderForm) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	fields := []struct {
		name  models.FieldName
		value string
	}{
		{models.FieldIdentityNumber, form.IdentityNumber},
		{models.FieldFirstName, form.FirstName},
		{models.FieldLastName, form.LastName},
		{models.FieldPhone, form.Phone},
		{models.FieldCity, form.City},
		{models.FieldEmail, form.Email},
		{models.FieldRaffleID, form.RaffleID},
		{models.FieldTicketCount, strconv.Itoa(form.TicketCount)},
	}
	for _, f := range fields {
		if err := mw.WriteField(string(f.name), f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	if proof := form.PaymentProof; proof != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			models.FieldPaymentProof, escapeQuotes(proof.Filename)))
		contentType := proof.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create proof part: %w", err)
		}
		if _, err := part.Write(proof.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write proof: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	return buf, mw.FormDataContentType(), nil
}

// getWithRetry performs an idempotent GET, retrying once on transport errors and 5xx
func (a *RaffleAPI) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &models.TransportError{Op: "GET " + url, Err: ctx.Err()}
			case <-time.After(a.config.RetryBackoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		status, body, err := a.do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if status >= 500 {
			lastErr = &models.APIError{StatusCode: status, Message: messageFrom(body)}
			continue
		}
		if status < 200 || status > 299 {
			return nil, &models.APIError{StatusCode: status, Message: messageFrom(body)}
		}
		return body, nil
	}

	return nil, lastErr
}

// do sends the request and reads the whole body
func (a *RaffleAPI) do(req *http.Request) (int, []byte, error) {
	start := time.Now()
	op := req.Method + " " + req.URL.Path

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn().Err(err).Str("op", op).Dur("elapsed", time.Since(start)).Msg("raffle api request failed")
		return 0, nil, &models.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, nil, &models.TransportError{Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	a.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("raffle api request completed")

	return resp.StatusCode, body, nil
}

// messageFrom extracts the message field of an error body, if any
func messageFrom(body []byte) string {
	var msg models.MessageBody
	if err := json.Unmarshal(body, &msg); err != nil {
		return ""
	}
	return msg.Message
}

// IsTransportError reports whether err means the API could not be reached
func IsTransportError(err error) bool {
	var te *models.TransportError
	return errors.As(err, &te)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
