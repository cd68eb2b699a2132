// Package checkout implements the checkout form: field state, dependent
// province/city selects, the payment proof, validation and the submission
// lifecycle.
package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"rifas-storefront/internal/models"
)

// User-facing failure messages
const (
	MsgServerError          = "Error en el servidor"
	MsgPaymentFailed        = "Ocurrió un error al procesar el pago"
	MsgConnectionFailed     = "No se pudo conectar con el servidor, intenta nuevamente"
	MsgProvincesUnavailable = "Error al cargar las provincias"
)

var (
	ErrBusy             = models.ErrSubmissionBusy
	ErrAlreadySubmitted = models.ErrAlreadySubmitted
)

// OrderSubmitter sends a captured order to the raffle API
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, form models.OrderForm) (*models.OrderAck, error)
}

// Previewer builds the preview reference of an attached proof
type Previewer interface {
	Preview(proof *models.PaymentProof) (string, error)
}

// SuccessHook runs once after the order is acknowledged
type SuccessHook func(ctx context.Context, order models.OrderForm, ack *models.OrderAck)

// Option configures a Controller
type Option func(*Controller)

// WithSuccessHook registers a hook run after a successful submission
func WithSuccessHook(hook SuccessHook) Option {
	return func(c *Controller) {
		c.hooks = append(c.hooks, hook)
	}
}

// WithPreviewer sets the proof previewer
func WithPreviewer(p Previewer) Option {
	return func(c *Controller) {
		c.previewer = p
	}
}

// WithProvincesUnavailable marks the province list as failed to load,
// which disables the city select
func WithProvincesUnavailable() Option {
	return func(c *Controller) {
		c.provincesUnavailable = true
	}
}

// WithLogger sets the controller logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller owns one checkout session's form state
type Controller struct {
	mu sync.Mutex

	selection *models.CartSelection
	form      models.OrderForm
	errors    models.ValidationErrors
	state     models.SubmissionState
	message   string

	provinces            []models.Province
	cities               []models.City
	provincesUnavailable bool

	submitter OrderSubmitter
	previewer Previewer
	hooks     []SuccessHook
	logger    zerolog.Logger
}

// New creates a controller pre-filled from the cart selection. A nil
// selection leaves the order lines empty and Submit fails with ErrCartEmpty.
func New(selection *models.CartSelection, provinces []models.Province, submitter OrderSubmitter, opts ...Option) *Controller {
	c := &Controller{
		errors:    models.ValidationErrors{},
		state:     models.StateIdle,
		provinces: provinces,
		cities:    []models.City{},
		submitter: submitter,
		logger:    zerolog.Nop(),
	}
	if selection != nil {
		sel := *selection
		c.selection = &sel
		c.form.RaffleID = sel.RaffleID
		c.form.TicketCount = sel.UnitQuantity
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.provincesUnavailable {
		c.provinces = nil
	}
	return c
}

// SetField updates a form field and clears only that field's error
func (c *Controller) SetField(name models.FieldName, value string) error {
	switch name {
	case models.FieldProvince:
		c.SelectProvince(value)
		return nil
	case models.FieldCity:
		return c.SelectCity(value)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.form.SetValue(name, value) {
		return models.ErrInvalidInput
	}
	delete(c.errors, name)
	return nil
}

// SelectProvince sets the province, resets the city and replaces the
// allowed city list with that province's cities
func (c *Controller) SelectProvince(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form.Province = id
	c.form.City = ""
	delete(c.errors, models.FieldProvince)

	c.cities = []models.City{}
	if province, ok := models.FindProvince(c.provinces, id); ok && id != "" {
		c.cities = append(c.cities, province.Cities...)
	}
}

// SelectCity sets the city. The id must belong to the selected province;
// an empty id clears the city.
func (c *Controller) SelectCity(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		c.form.City = ""
		return nil
	}
	if !c.cityEnabled() || !containsCity(c.cities, id) {
		return models.ErrInvalidInput
	}

	c.form.City = id
	delete(c.errors, models.FieldCity)
	return nil
}

// CityEnabled reports whether the city select accepts input
func (c *Controller) CityEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cityEnabled()
}

func (c *Controller) cityEnabled() bool {
	return !c.provincesUnavailable && c.form.Province != "" && len(c.cities) > 0
}

// AttachProof replaces the payment proof and refreshes its preview.
// A nil proof clears it.
func (c *Controller) AttachProof(proof *models.PaymentProof) {
	if proof == nil {
		c.ClearProof()
		return
	}

	attached := *proof
	attached.PreviewURL = ""
	if c.previewer != nil {
		preview, err := c.previewer.Preview(&attached)
		if err != nil {
			c.logger.Warn().Err(err).Str("filename", attached.Filename).Msg("payment proof preview failed")
		} else {
			attached.PreviewURL = preview
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.PaymentProof = &attached
	delete(c.errors, models.FieldPaymentProof)
}

// ClearProof removes the proof and its preview
func (c *Controller) ClearProof() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.PaymentProof = nil
}

// Validate returns the errors of the current form without touching state
func (c *Controller) Validate() models.ValidationErrors {
	c.mu.Lock()
	form := c.form
	c.mu.Unlock()
	return models.ValidateOrderForm(form)
}

// Submit validates the form and sends it. Validation failures return a
// *models.ValidationError without any network call. On any remote failure the
// controller ends in StateFailed and stays editable; Message explains why.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case models.StateSubmitting:
		c.mu.Unlock()
		return ErrBusy
	case models.StateSucceeded:
		c.mu.Unlock()
		return ErrAlreadySubmitted
	}
	if c.selection == nil {
		c.mu.Unlock()
		return models.ErrCartEmpty
	}

	if errs := models.ValidateOrderForm(c.form); len(errs) > 0 {
		c.errors = errs
		c.state = models.StateIdle
		c.mu.Unlock()
		return &models.ValidationError{Errors: errs}
	}

	c.state = models.StateSubmitting
	c.message = ""
	payload := c.capture()
	c.mu.Unlock()

	ack, err := c.submitter.SubmitOrder(ctx, payload)

	c.mu.Lock()
	if err == nil && ack != nil && ack.Succeeded() {
		c.state = models.StateSucceeded
		c.message = ack.Message
		hooks := c.hooks
		c.mu.Unlock()

		c.logger.Info().Str("raffle_id", payload.RaffleID).Int("numbers", payload.TicketCount).Msg("order acknowledged")
		for _, hook := range hooks {
			hook(ctx, payload, ack)
		}
		return nil
	}

	if err == nil {
		status := 0
		if ack != nil {
			status = ack.Status
		}
		err = &models.RejectionError{Status: status, Message: rejectionMessage(ack)}
	}
	c.state = models.StateFailed
	c.message = FailureMessage(err)
	c.mu.Unlock()

	c.logger.Warn().Err(err).Str("raffle_id", payload.RaffleID).Msg("order submission failed")
	return err
}

// capture copies the form so later edits do not reach the in-flight request
func (c *Controller) capture() models.OrderForm {
	payload := c.form
	if c.form.PaymentProof != nil {
		proof := *c.form.PaymentProof
		payload.PaymentProof = &proof
	}
	return payload
}

func rejectionMessage(ack *models.OrderAck) string {
	if ack != nil && ack.Message != "" {
		return ack.Message
	}
	return MsgServerError
}

// FailureMessage turns a submission error into the text shown to the user
func FailureMessage(err error) string {
	var rejection *models.RejectionError
	var apiErr *models.APIError
	var transport *models.TransportError

	switch {
	case errors.As(err, &rejection):
		if rejection.Message != "" {
			return rejection.Message
		}
		return MsgServerError
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgPaymentFailed
	case errors.As(err, &transport):
		return MsgConnectionFailed
	}
	return MsgPaymentFailed
}

// Form returns a copy of the current form
func (c *Controller) Form() models.OrderForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture()
}

// Errors returns a copy of the current validation errors
func (c *Controller) Errors() models.ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	errs := make(models.ValidationErrors, len(c.errors))
	for k, v := range c.errors {
		errs[k] = v
	}
	return errs
}

func (c *Controller) State() models.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Editable reports whether the form accepts another submission
func (c *Controller) Editable() bool {
	state := c.State()
	return state == models.StateIdle || state == models.StateFailed
}

// Message returns the last failure text, or the acknowledgment after success
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

func (c *Controller) Selection() (models.CartSelection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection == nil {
		return models.CartSelection{}, false
	}
	return *c.selection, true
}

func (c *Controller) Provinces() []models.Province {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.provinces
}

// Cities returns the cities currently allowed in the city select
func (c *Controller) Cities() []models.City {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.City(nil), c.cities...)
}

func (c *Controller) ProvincesUnavailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.provincesUnavailable
}

func containsCity(cities []models.City, id string) bool {
	for _, city := range cities {
		if city.ID == id {
			return true
		}
	}
	return false
}
