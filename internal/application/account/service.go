package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bowling-bff/internal/domain"
	"github.com/bowling-bff/internal/pkg/validate"
)

const (
	signupPath        = "/users"
	passwordResetPath = "/users/password-reset"
)

// Upstream is the subset of the upstream client the account flows need.
type Upstream interface {
	PostJSON(ctx context.Context, path string, payload interface{}) (*domain.UpstreamResult, error)
}

// Service completes account flows once the caller has proven control of an email.
// Email always comes from a verified ticket, never from the request body.
type Service interface {
	Signup(ctx context.Context, email string, req domain.SignupRequest) (*domain.UpstreamResult, error)
	ResetPassword(ctx context.Context, email string, req domain.ResetPasswordRequest) (*domain.UpstreamResult, error)
}

type service struct {
	upstream Upstream
}

func NewService(upstream Upstream) Service {
	return &service{upstream: upstream}
}

type signupPayload struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Birthday  string `json:"birthday,omitempty"`
	Verified  bool   `json:"email_verified"`
}

type passwordResetPayload struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

func (s *service) Signup(ctx context.Context, email string, req domain.SignupRequest) (*domain.UpstreamResult, error) {
	if email == "" {
		return nil, fmt.Errorf("verified email required: %w", domain.ErrUnauthorized)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidArgument)
	}
	res, err := s.upstream.PostJSON(ctx, signupPath, signupPayload{
		Email:     email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Birthday:  req.Birthday,
		Verified:  true,
	})
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 500 {
		slog.WarnContext(ctx, "upstream signup failed", "status", res.StatusCode)
	}
	return res, nil
}

func (s *service) ResetPassword(ctx context.Context, email string, req domain.ResetPasswordRequest) (*domain.UpstreamResult, error) {
	if email == "" {
		return nil, fmt.Errorf("verified email required: %w", domain.ErrUnauthorized)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidArgument)
	}
	res, err := s.upstream.PostJSON(ctx, passwordResetPath, passwordResetPayload{
		Email:       email,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 500 {
		slog.WarnContext(ctx, "upstream password reset failed", "status", res.StatusCode)
	}
	return res, nil
}
