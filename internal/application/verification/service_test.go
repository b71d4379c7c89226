package verification

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bowling-bff/internal/domain"
	"github.com/bowling-bff/internal/infrastructure/memory"
	"github.com/bowling-bff/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(email string, purpose domain.Purpose) (*domain.Ticket, error) {
	args := m.Called(email, purpose)
	if t, _ := args.Get(0).(*domain.Ticket); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

// blockingSigner counts calls and holds each one until release is closed.
type blockingSigner struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSigner) Sign(email string, purpose domain.Purpose) (*domain.Ticket, error) {
	b.calls.Add(1)
	b.entered <- struct{}{}
	<-b.release
	return &domain.Ticket{Token: "tkt", Email: email, Purpose: purpose}, nil
}

type failingStore struct{ *memory.OTPStore }

func (failingStore) Generate() (string, error) { return "", errors.New("entropy exhausted") }

// --- builder ---

func newService(returnCode bool) (Service, *memory.OTPStore, *clock.Fake, *mockSigner) {
	fc := clock.NewFake(time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC))
	store := memory.NewOTPStore(memory.Options{Clock: fc})
	signer := &mockSigner{}
	svc := NewService(ServiceDeps{Store: store, Signer: signer, ReturnCode: returnCode})
	return svc, store, fc, signer
}

// --- Request ---

func TestRequest_InvalidEmail(t *testing.T) {
	svc, _, _, _ := newService(false)
	_, err := svc.Request(context.Background(), RequestCodeRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestRequest_StoresCodeAndHidesIt(t *testing.T) {
	svc, store, _, _ := newService(false)
	out, err := svc.Request(context.Background(), RequestCodeRequest{Email: "Bowler@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, 300, out.ExpiresIn)
	assert.Empty(t, out.Code)

	rec, ok := store.Get("bowler@example.com")
	require.True(t, ok)
	assert.Len(t, rec.Code, 6)
}

func TestRequest_SubSecondExpiryRoundsUp(t *testing.T) {
	store := memory.NewOTPStore(memory.Options{Expiry: 1500 * time.Millisecond})
	svc := NewService(ServiceDeps{Store: store})
	out, err := svc.Request(context.Background(), RequestCodeRequest{Email: "bowler@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.ExpiresIn)

	assert.Equal(t, 1, expiresInSeconds(time.Millisecond))
	assert.Equal(t, 300, expiresInSeconds(5*time.Minute))
}

func TestRequest_DevModeReturnsCode(t *testing.T) {
	svc, store, _, _ := newService(true)
	out, err := svc.Request(context.Background(), RequestCodeRequest{Email: "bowler@example.com"})
	require.NoError(t, err)
	require.Len(t, out.Code, 6)
	assert.True(t, store.IsValid("bowler@example.com", out.Code))
}

func TestRequest_ReplacesPreviousCode(t *testing.T) {
	svc, store, _, _ := newService(true)
	first, err := svc.Request(context.Background(), RequestCodeRequest{Email: "bowler@example.com"})
	require.NoError(t, err)
	second, err := svc.Request(context.Background(), RequestCodeRequest{Email: "bowler@example.com"})
	require.NoError(t, err)

	assert.True(t, store.IsValid("bowler@example.com", second.Code))
	if first.Code != second.Code {
		assert.False(t, store.IsValid("bowler@example.com", first.Code))
	}
}

func TestRequest_GenerateError(t *testing.T) {
	store := failingStore{memory.NewOTPStore(memory.Options{})}
	svc := NewService(ServiceDeps{Store: store})
	_, err := svc.Request(context.Background(), RequestCodeRequest{Email: "bowler@example.com"})
	assert.ErrorContains(t, err, "entropy exhausted")
	assert.Equal(t, 0, store.Len())
}

// --- Verify ---

func TestVerify_BadCodeFormat(t *testing.T) {
	svc, _, _, _ := newService(false)
	_, err := svc.Verify(context.Background(), VerifyCodeRequest{
		Email: "bowler@example.com", Code: "12ab56", Purpose: domain.PurposeSignup,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestVerify_UnknownPurpose(t *testing.T) {
	svc, _, _, _ := newService(false)
	_, err := svc.Verify(context.Background(), VerifyCodeRequest{
		Email: "bowler@example.com", Code: "123456", Purpose: "league_admin",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestVerify_NoCodeIssued(t *testing.T) {
	svc, _, _, signer := newService(false)
	_, err := svc.Verify(context.Background(), VerifyCodeRequest{
		Email: "bowler@example.com", Code: "000000", Purpose: domain.PurposeSignup,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	signer.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything)
}

func TestVerify_WrongCode(t *testing.T) {
	svc, store, _, _ := newService(false)
	store.Set("bowler@example.com", "111111")

	_, err := svc.Verify(context.Background(), VerifyCodeRequest{
		Email: "bowler@example.com", Code: "222222", Purpose: domain.PurposeSignup,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.True(t, store.IsValid("bowler@example.com", "111111"), "wrong guess must not consume the code")
}

func TestVerify_ExpiredCode(t *testing.T) {
	svc, store, fc, _ := newService(false)
	store.Set("bowler@example.com", "111111")
	fc.Advance(store.ExpiryDuration() + time.Second)

	_, err := svc.Verify(context.Background(), VerifyCodeRequest{
		Email: "bowler@example.com", Code: "111111", Purpose: domain.PurposeSignup,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerify_HappyPath_ConsumesCode(t *testing.T) {
	svc, store, _, signer := newService(false)
	store.Set("bowler@example.com", "111111")
	want := &domain.Ticket{Token: "tkt", Email: "bowler@example.com", Purpose: domain.PurposePasswordReset}
	signer.On("Sign", "bowler@example.com", domain.PurposePasswordReset).Return(want, nil)

	got, err := svc.Verify(context.Background(), VerifyCodeRequest{
		Email: "BOWLER@example.com", Code: "111111", Purpose: domain.PurposePasswordReset,
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	signer.AssertExpectations(t)

	_, ok := store.Get("bowler@example.com")
	assert.False(t, ok, "code must be single use")
}

func TestVerify_SignError_KeepsCode(t *testing.T) {
	svc, store, _, signer := newService(false)
	store.Set("bowler@example.com", "111111")
	signer.On("Sign", "bowler@example.com", domain.PurposeSignup).Return(nil, errors.New("key unavailable"))

	_, err := svc.Verify(context.Background(), VerifyCodeRequest{
		Email: "bowler@example.com", Code: "111111", Purpose: domain.PurposeSignup,
	})
	assert.ErrorContains(t, err, "key unavailable")
	assert.True(t, store.IsValid("bowler@example.com", "111111"))
}

func TestVerify_ConcurrentCallsIssueOneTicket(t *testing.T) {
	store := memory.NewOTPStore(memory.Options{})
	signer := &blockingSigner{entered: make(chan struct{}, 2), release: make(chan struct{})}
	svc := NewService(ServiceDeps{Store: store, Signer: signer})
	store.Set("bowler@example.com", "111111")

	req := VerifyCodeRequest{Email: "bowler@example.com", Code: "111111", Purpose: domain.PurposeSignup}
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Verify(context.Background(), req)
			results <- err
		}()
	}

	select {
	case <-signer.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("no verify reached the signer")
	}
	// While the winner is held in Sign, the other call must already have been refused.
	select {
	case err := <-results:
		assert.True(t, errors.Is(err, domain.ErrUnauthorized), "got %v", err)
	case <-time.After(2 * time.Second):
		close(signer.release)
		t.Fatal("second verify was not refused while the first was signing")
	}
	close(signer.release)

	require.NoError(t, <-results)
	assert.EqualValues(t, 1, signer.calls.Load())
	assert.Equal(t, 0, store.Len())
}

// --- Check ---

func TestCheck(t *testing.T) {
	svc, store, _, _ := newService(false)
	store.Set("bowler@example.com", "111111")

	ok, err := svc.Check(context.Background(), CheckCodeRequest{Email: "bowler@example.com", Code: "111111"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Check(context.Background(), CheckCodeRequest{Email: "bowler@example.com", Code: "999999"})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, store.IsValid("bowler@example.com", "111111"), "Check must not consume the code")
}

func TestCheck_BadFormat(t *testing.T) {
	svc, _, _, _ := newService(false)
	_, err := svc.Check(context.Background(), CheckCodeRequest{Email: "bowler@example.com", Code: "1234567"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}
