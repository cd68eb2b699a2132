package consult

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rifas-storefront/internal/models"
)

type MockLooker struct {
	mock.Mock
}

func (m *MockLooker) ConsultNumbers(ctx context.Context, raffleID, email string) (*models.LookupResult, error) {
	args := m.Called(ctx, raffleID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LookupResult), args.Error(1)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func TestSubmitEmail_EmptyShowsRequiredAndExpires(t *testing.T) {
	looker := &MockLooker{}
	clock := newClock()
	w := NewWidget(looker, "r1", clock.Now)

	notice := w.SubmitEmail(context.Background(), "   ")

	assert.Equal(t, NoticeError, notice.Kind)
	assert.Equal(t, MsgEmailRequired, notice.Text)
	looker.AssertNotCalled(t, "ConsultNumbers", mock.Anything, mock.Anything, mock.Anything)

	clock.Advance(2999 * time.Millisecond)
	_, visible := w.Notice()
	assert.True(t, visible)

	clock.Advance(time.Millisecond)
	_, visible = w.Notice()
	assert.False(t, visible, "notice disappears after 3 seconds")
}

func TestSubmitEmail_Success(t *testing.T) {
	looker := &MockLooker{}
	looker.On("ConsultNumbers", mock.Anything, "r1", "ana@example.com").
		Return(&models.LookupResult{Message: "Te enviamos tus números"}, nil)

	w := NewWidget(looker, "r1", newClock().Now)

	notice := w.SubmitEmail(context.Background(), " ana@example.com ")

	assert.Equal(t, NoticeSuccess, notice.Kind)
	assert.Equal(t, "Te enviamos tus números", notice.Text)
	assert.Empty(t, w.Email(), "input is cleared on success")
	looker.AssertExpectations(t)
}

func TestSubmitEmail_SuccessWithoutMessage(t *testing.T) {
	looker := &MockLooker{}
	looker.On("ConsultNumbers", mock.Anything, "r1", "ana@example.com").Return(&models.LookupResult{}, nil)

	notice := NewWidget(looker, "r1", nil).SubmitEmail(context.Background(), "ana@example.com")

	assert.Equal(t, MsgSuccess, notice.Text)
}

func TestSubmitEmail_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"forbidden with message", &models.RejectionError{Status: 403, Message: "Correo no registrado"}, "Correo no registrado"},
		{"forbidden without message", &models.RejectionError{Status: 403}, MsgForbidden},
		{"server error with message", &models.APIError{StatusCode: 500, Message: "boom"}, "boom"},
		{"server error without message", &models.APIError{StatusCode: 500}, MsgRequestFailed},
		{"transport error", &models.TransportError{Op: "POST", Err: errors.New("refused")}, MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			looker := &MockLooker{}
			looker.On("ConsultNumbers", mock.Anything, "r1", "ana@example.com").Return(nil, tt.err)

			clock := newClock()
			w := NewWidget(looker, "r1", clock.Now)

			notice := w.SubmitEmail(context.Background(), "ana@example.com")
			assert.Equal(t, NoticeError, notice.Kind)
			assert.Equal(t, tt.want, notice.Text)
			assert.Equal(t, "ana@example.com", w.Email(), "input is kept on error")

			clock.Advance(NoticeDuration)
			_, visible := w.Notice()
			assert.False(t, visible)
		})
	}
}

func TestNotice_ReplacedByNewerSubmission(t *testing.T) {
	looker := &MockLooker{}
	looker.On("ConsultNumbers", mock.Anything, "r1", "ana@example.com").Return(&models.LookupResult{}, nil)

	clock := newClock()
	w := NewWidget(looker, "r1", clock.Now)

	w.SubmitEmail(context.Background(), "")
	clock.Advance(2 * time.Second)
	w.SubmitEmail(context.Background(), "ana@example.com")
	clock.Advance(2 * time.Second)

	notice, visible := w.Notice()
	require.True(t, visible, "the newer notice has its own window")
	assert.Equal(t, NoticeSuccess, notice.Kind)
}
