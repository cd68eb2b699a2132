package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rifas-storefront/internal/cart"
	"rifas-storefront/internal/models"
)

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) SubmitOrder(ctx context.Context, form models.OrderForm) (*models.OrderAck, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderAck), args.Error(1)
}

type stubPreviewer struct {
	url string
	err error
}

func (p stubPreviewer) Preview(*models.PaymentProof) (string, error) {
	return p.url, p.err
}

func testProvinces() []models.Province {
	return []models.Province{
		{ID: "A", Name: "Guayas", Cities: []models.City{
			{ID: "a1", Name: "Guayaquil", ProvinceID: "A"},
			{ID: "a2", Name: "Durán", ProvinceID: "A"},
		}},
		{ID: "B", Name: "Pichincha", Cities: []models.City{
			{ID: "b1", Name: "Quito", ProvinceID: "B"},
		}},
		{ID: "C", Name: "Galápagos"},
	}
}

func testSelection() *models.CartSelection {
	sel := models.NewCartSelection("r1", "Moto 0km", decimal.NewFromInt(5), 15)
	return &sel
}

func fillValid(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.SetField(models.FieldFirstName, "Ana"))
	require.NoError(t, c.SetField(models.FieldLastName, "Pérez"))
	require.NoError(t, c.SetField(models.FieldIdentityNumber, "0912345678"))
	require.NoError(t, c.SetField(models.FieldEmail, "ana@example.com"))
	require.NoError(t, c.SetField(models.FieldPhone, "0999999999"))
	c.SelectProvince("A")
	require.NoError(t, c.SelectCity("a1"))
	c.AttachProof(&models.PaymentProof{Filename: "pago.pdf", ContentType: "application/pdf", Data: []byte("%PDF")})
}

func TestNew_PrefillsFromSelection(t *testing.T) {
	c := New(testSelection(), testProvinces(), &MockSubmitter{})

	form := c.Form()
	assert.Equal(t, "r1", form.RaffleID)
	assert.Equal(t, 15, form.TicketCount)
	assert.Equal(t, models.StateIdle, c.State())

	sel, ok := c.Selection()
	require.True(t, ok)
	assert.Equal(t, "75", sel.TotalPrice.String())
}

func TestSubmit_Success(t *testing.T) {
	submitter := &MockSubmitter{}
	submitter.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(f models.OrderForm) bool {
		return f.RaffleID == "r1" && f.TicketCount == 15 && f.City == "a1" && f.PaymentProof != nil
	})).Return(&models.OrderAck{Status: 200, Message: "ok"}, nil).Once()

	c := New(testSelection(), testProvinces(), submitter)
	fillValid(t, c)

	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, models.StateSucceeded, c.State())
	assert.False(t, c.Editable())
	submitter.AssertExpectations(t)
}

func TestSubmit_SuccessHookClearsCart(t *testing.T) {
	store := cart.NewStore(cart.NewMemoryBackend())
	require.NoError(t, store.SetSelection(*testSelection()))

	submitter := &MockSubmitter{}
	submitter.On("SubmitOrder", mock.Anything, mock.Anything).Return(&models.OrderAck{Status: 200}, nil)

	var hookOrder models.OrderForm
	c := New(testSelection(), testProvinces(), submitter,
		WithSuccessHook(func(ctx context.Context, order models.OrderForm, ack *models.OrderAck) {
			hookOrder = order
			require.NoError(t, store.Clear())
		}),
	)
	fillValid(t, c)

	require.NoError(t, c.Submit(context.Background()))

	_, ok := store.Selection()
	assert.False(t, ok)
	assert.Equal(t, "ana@example.com", hookOrder.Email)
}

func TestSubmit_ValidationFailureMakesNoCall(t *testing.T) {
	submitter := &MockSubmitter{}
	c := New(testSelection(), testProvinces(), submitter)
	require.NoError(t, c.SetField(models.FieldFirstName, "Ana"))

	err := c.Submit(context.Background())

	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, models.FieldLastName, validation.Field())
	assert.Equal(t, models.StateIdle, c.State())

	errs := c.Errors()
	assert.False(t, errs.Has(models.FieldFirstName))
	for _, field := range []models.FieldName{
		models.FieldLastName, models.FieldIdentityNumber, models.FieldEmail,
		models.FieldProvince, models.FieldCity, models.FieldPaymentProof,
	} {
		assert.True(t, errs.Has(field), field)
	}
	submitter.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything)
}

func TestSetField_ClearsOnlyThatError(t *testing.T) {
	c := New(testSelection(), testProvinces(), &MockSubmitter{})
	_ = c.Submit(context.Background())
	require.True(t, c.Errors().Has(models.FieldEmail))

	require.NoError(t, c.SetField(models.FieldEmail, "not-an-email"))

	errs := c.Errors()
	assert.False(t, errs.Has(models.FieldEmail), "edited field error is cleared")
	assert.True(t, errs.Has(models.FieldFirstName), "other errors stay until the next submit")
}

func TestSetField_RejectsUnknownField(t *testing.T) {
	c := New(testSelection(), testProvinces(), &MockSubmitter{})

	assert.ErrorIs(t, c.SetField(models.FieldRaffleID, "other"), models.ErrInvalidInput)
	assert.Equal(t, "r1", c.Form().RaffleID)
}

func TestSubmit_ServerErrorKeepsFormEditable(t *testing.T) {
	submitter := &MockSubmitter{}
	submitter.On("SubmitOrder", mock.Anything, mock.Anything).
		Return(nil, &models.APIError{StatusCode: 500}).Once()

	c := New(testSelection(), testProvinces(), submitter)
	fillValid(t, c)
	before := c.Form()

	err := c.Submit(context.Background())

	var apiErr *models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, models.StateFailed, c.State())
	assert.Equal(t, MsgPaymentFailed, c.Message())
	assert.True(t, c.Editable())
	assert.Equal(t, before, c.Form(), "entered values are intact")

	// The user can retry
	submitter.On("SubmitOrder", mock.Anything, mock.Anything).Return(&models.OrderAck{Status: 200}, nil).Once()
	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, models.StateSucceeded, c.State())
}

func TestSubmit_ValidationFailureAfterFailedAttemptReturnsToIdle(t *testing.T) {
	submitter := &MockSubmitter{}
	submitter.On("SubmitOrder", mock.Anything, mock.Anything).
		Return(nil, &models.APIError{StatusCode: 502}).Once()

	c := New(testSelection(), testProvinces(), submitter)
	fillValid(t, c)
	require.Error(t, c.Submit(context.Background()))
	require.Equal(t, models.StateFailed, c.State())

	require.NoError(t, c.SetField(models.FieldEmail, ""))
	err := c.Submit(context.Background())

	var invalid *models.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StateIdle, c.State())
	assert.True(t, c.Editable())
	submitter.AssertNumberOfCalls(t, "SubmitOrder", 1)
}

func TestSubmit_FailureMessages(t *testing.T) {
	tests := []struct {
		name    string
		ack     *models.OrderAck
		err     error
		message string
	}{
		{"body rejection with message", &models.OrderAck{Status: 400, Message: "Números agotados"}, nil, "Números agotados"},
		{"body rejection without message", &models.OrderAck{Status: 500}, nil, MsgServerError},
		{"api error with message", nil, &models.APIError{StatusCode: 422, Message: "Cédula inválida"}, "Cédula inválida"},
		{"transport error", nil, &models.TransportError{Op: "POST /takeNumber", Err: errors.New("refused")}, MsgConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := &MockSubmitter{}
			if tt.ack != nil {
				submitter.On("SubmitOrder", mock.Anything, mock.Anything).Return(tt.ack, nil)
			} else {
				submitter.On("SubmitOrder", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			c := New(testSelection(), testProvinces(), submitter)
			fillValid(t, c)

			assert.Error(t, c.Submit(context.Background()))
			assert.Equal(t, models.StateFailed, c.State())
			assert.Equal(t, tt.message, c.Message())
		})
	}
}

func TestSubmit_BodyRejectionIsRejectionError(t *testing.T) {
	submitter := &MockSubmitter{}
	submitter.On("SubmitOrder", mock.Anything, mock.Anything).Return(&models.OrderAck{Status: 409, Message: "x"}, nil)

	c := New(testSelection(), testProvinces(), submitter)
	fillValid(t, c)

	var rejection *models.RejectionError
	require.ErrorAs(t, c.Submit(context.Background()), &rejection)
	assert.Equal(t, 409, rejection.Status)
}

func TestSubmit_WithoutSelection(t *testing.T) {
	c := New(nil, testProvinces(), &MockSubmitter{})
	fillValid(t, c)

	assert.ErrorIs(t, c.Submit(context.Background()), models.ErrCartEmpty)
}

func TestSubmit_AlreadySubmitted(t *testing.T) {
	submitter := &MockSubmitter{}
	submitter.On("SubmitOrder", mock.Anything, mock.Anything).Return(&models.OrderAck{Status: 200}, nil).Once()

	c := New(testSelection(), testProvinces(), submitter)
	fillValid(t, c)
	require.NoError(t, c.Submit(context.Background()))

	assert.ErrorIs(t, c.Submit(context.Background()), ErrAlreadySubmitted)
	submitter.AssertNumberOfCalls(t, "SubmitOrder", 1)
}

// blockingSubmitter holds the request until released
type blockingSubmitter struct {
	started chan models.OrderForm
	release chan struct{}
}

func (b *blockingSubmitter) SubmitOrder(ctx context.Context, form models.OrderForm) (*models.OrderAck, error) {
	b.started <- form
	<-b.release
	return &models.OrderAck{Status: 200}, nil
}

func TestSubmit_BusyAndPayloadCapturedAtSubmit(t *testing.T) {
	submitter := &blockingSubmitter{started: make(chan models.OrderForm, 1), release: make(chan struct{})}
	c := New(testSelection(), testProvinces(), submitter)
	fillValid(t, c)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.Submit(context.Background()))
	}()

	sent := <-submitter.started
	assert.Equal(t, models.StateSubmitting, c.State())
	assert.ErrorIs(t, c.Submit(context.Background()), ErrBusy)

	// Edits during the request do not reach the captured payload
	require.NoError(t, c.SetField(models.FieldFirstName, "Beatriz"))
	assert.Equal(t, "Ana", sent.FirstName)

	close(submitter.release)
	wg.Wait()
	assert.Equal(t, models.StateSucceeded, c.State())
}

func TestSelectProvince_ReplacesCities(t *testing.T) {
	c := New(testSelection(), testProvinces(), &MockSubmitter{})
	assert.False(t, c.CityEnabled(), "no province selected")

	c.SelectProvince("A")
	require.NoError(t, c.SelectCity("a2"))
	assert.Len(t, c.Cities(), 2)
	assert.True(t, c.CityEnabled())

	c.SelectProvince("B")

	form := c.Form()
	assert.Equal(t, "B", form.Province)
	assert.Empty(t, form.City, "city is reset")
	require.Len(t, c.Cities(), 1)
	assert.Equal(t, "b1", c.Cities()[0].ID)
	assert.ErrorIs(t, c.SelectCity("a1"), models.ErrInvalidInput, "cities of A are no longer allowed")
}

func TestSelectProvince_UnknownOrEmpty(t *testing.T) {
	c := New(testSelection(), testProvinces(), &MockSubmitter{})

	c.SelectProvince("Z")
	assert.Empty(t, c.Cities())
	assert.False(t, c.CityEnabled())

	c.SelectProvince("C")
	assert.Empty(t, c.Cities())
	assert.False(t, c.CityEnabled(), "province without cities")

	c.SelectProvince("")
	assert.False(t, c.CityEnabled())
}

func TestProvincesUnavailable(t *testing.T) {
	c := New(testSelection(), testProvinces(), &MockSubmitter{}, WithProvincesUnavailable())

	assert.True(t, c.ProvincesUnavailable())
	assert.Empty(t, c.Provinces())

	c.SelectProvince("A")
	assert.False(t, c.CityEnabled())
	assert.Error(t, c.SelectCity("a1"))

	// The rest of the form still works
	assert.NoError(t, c.SetField(models.FieldFirstName, "Ana"))
}

func TestAttachProof_ReplaceAndClear(t *testing.T) {
	c := New(testSelection(), testProvinces(), &MockSubmitter{}, WithPreviewer(stubPreviewer{url: "data:image/jpeg;base64,AAAA"}))
	_ = c.Submit(context.Background())
	require.True(t, c.Errors().Has(models.FieldPaymentProof))

	c.AttachProof(&models.PaymentProof{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("a")})
	assert.False(t, c.Errors().Has(models.FieldPaymentProof))
	assert.Equal(t, "data:image/jpeg;base64,AAAA", c.Form().PaymentProof.PreviewURL)

	c.AttachProof(&models.PaymentProof{Filename: "b.pdf", ContentType: "application/pdf", Data: []byte("b")})
	assert.Equal(t, "b.pdf", c.Form().PaymentProof.Filename)

	c.ClearProof()
	assert.Nil(t, c.Form().PaymentProof)

	c.AttachProof(&models.PaymentProof{Filename: "c.jpg", ContentType: "image/jpeg", Data: []byte("c")})
	c.AttachProof(nil)
	assert.Nil(t, c.Form().PaymentProof)
}

func TestAttachProof_PreviewFailureKeepsProof(t *testing.T) {
	c := New(testSelection(), testProvinces(), &MockSubmitter{}, WithPreviewer(stubPreviewer{err: errors.New("corrupt")}))

	c.AttachProof(&models.PaymentProof{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("a")})

	proof := c.Form().PaymentProof
	require.NotNil(t, proof)
	assert.Empty(t, proof.PreviewURL)
}

func TestValidate_IsPure(t *testing.T) {
	c := New(testSelection(), testProvinces(), &MockSubmitter{})

	errs := c.Validate()
	assert.NotEmpty(t, errs)
	assert.Empty(t, c.Errors(), "Validate does not populate the displayed errors")
	assert.Equal(t, models.StateIdle, c.State())
}
