package account

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bowling-bff/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUpstream struct{ mock.Mock }

func (m *mockUpstream) PostJSON(ctx context.Context, path string, payload interface{}) (*domain.UpstreamResult, error) {
	args := m.Called(ctx, path, payload)
	if r, _ := args.Get(0).(*domain.UpstreamResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func validSignup() domain.SignupRequest {
	return domain.SignupRequest{
		Username:  "strike_queen",
		Password:  "tenpins-forever",
		FirstName: "Ada",
		LastName:  "Lane",
		Birthday:  "1990-04-12",
	}
}

// --- Signup ---

func TestSignup_NoEmail(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Signup(context.Background(), "", validSignup())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestSignup_InvalidBody(t *testing.T) {
	svc := NewService(nil)
	req := validSignup()
	req.Password = "short"
	_, err := svc.Signup(context.Background(), "bowler@example.com", req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestSignup_BadBirthday(t *testing.T) {
	svc := NewService(nil)
	req := validSignup()
	req.Birthday = "12/04/1990"
	_, err := svc.Signup(context.Background(), "bowler@example.com", req)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestSignup_ForwardsVerifiedEmail(t *testing.T) {
	up := &mockUpstream{}
	want := &domain.UpstreamResult{StatusCode: http.StatusCreated, Body: []byte(`{"id":"u1"}`)}
	up.On("PostJSON", mock.Anything, "/users", mock.MatchedBy(func(p signupPayload) bool {
		return p.Email == "bowler@example.com" && p.Username == "strike_queen" && p.Verified
	})).Return(want, nil)

	res, err := NewService(up).Signup(context.Background(), "bowler@example.com", validSignup())
	require.NoError(t, err)
	assert.Equal(t, want, res)
	up.AssertExpectations(t)
}

func TestSignup_RelaysUpstreamConflict(t *testing.T) {
	up := &mockUpstream{}
	up.On("PostJSON", mock.Anything, "/users", mock.Anything).
		Return(&domain.UpstreamResult{StatusCode: http.StatusConflict}, nil)

	res, err := NewService(up).Signup(context.Background(), "bowler@example.com", validSignup())
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestSignup_UpstreamDown(t *testing.T) {
	up := &mockUpstream{}
	up.On("PostJSON", mock.Anything, "/users", mock.Anything).
		Return(nil, fmt.Errorf("dial: %w", domain.ErrUpstream))

	_, err := NewService(up).Signup(context.Background(), "bowler@example.com", validSignup())
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

// --- ResetPassword ---

func TestResetPassword_NoEmail(t *testing.T) {
	_, err := NewService(nil).ResetPassword(context.Background(), "", domain.ResetPasswordRequest{NewPassword: "gutterball99"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestResetPassword_ShortPassword(t *testing.T) {
	_, err := NewService(nil).ResetPassword(context.Background(), "bowler@example.com", domain.ResetPasswordRequest{NewPassword: "x"})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestResetPassword_HappyPath(t *testing.T) {
	up := &mockUpstream{}
	up.On("PostJSON", mock.Anything, "/users/password-reset", passwordResetPayload{
		Email: "bowler@example.com", NewPassword: "gutterball99",
	}).Return(&domain.UpstreamResult{StatusCode: http.StatusNoContent}, nil)

	res, err := NewService(up).ResetPassword(context.Background(), "bowler@example.com", domain.ResetPasswordRequest{NewPassword: "gutterball99"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	up.AssertExpectations(t)
}
