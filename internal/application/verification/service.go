package verification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bowling-bff/internal/domain"
	"github.com/bowling-bff/internal/pkg/validate"
)

type RequestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeRequest struct {
	Email   string         `json:"email" validate:"required,email"`
	Code    string         `json:"code" validate:"required,otpcode"`
	Purpose domain.Purpose `json:"purpose" validate:"required,oneof=signup password_reset"`
}

type CheckCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,otpcode"`
}

// IssuedCode describes a freshly issued code. Code is only filled in dev mode.
type IssuedCode struct {
	ExpiresIn int    `json:"expires_in"` // seconds
	Code      string `json:"code,omitempty"`
}

// OTPStore is the subset of the OTP store the service needs.
type OTPStore interface {
	Generate() (string, error)
	Set(identifier, code string)
	IsValid(identifier, code string) bool
	Consume(identifier, code string) (domain.OTPRecord, bool)
	Restore(identifier string, rec domain.OTPRecord)
	ExpiryDuration() time.Duration
}

type TicketSigner interface {
	Sign(email string, purpose domain.Purpose) (*domain.Ticket, error)
}

type Service interface {
	Request(ctx context.Context, req RequestCodeRequest) (*IssuedCode, error)
	Verify(ctx context.Context, req VerifyCodeRequest) (*domain.Ticket, error)
	Check(ctx context.Context, req CheckCodeRequest) (bool, error)
}

type ServiceDeps struct {
	Store  OTPStore
	Signer TicketSigner
	// ReturnCode echoes issued codes to the caller. Dev only.
	ReturnCode bool
}

type service struct {
	store      OTPStore
	signer     TicketSigner
	returnCode bool
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:      deps.Store,
		signer:     deps.Signer,
		returnCode: deps.ReturnCode,
	}
}

func (s *service) Request(ctx context.Context, req RequestCodeRequest) (*IssuedCode, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidArgument)
	}
	code, err := s.store.Generate()
	if err != nil {
		return nil, err
	}
	s.store.Set(req.Email, code)

	out := &IssuedCode{ExpiresIn: expiresInSeconds(s.store.ExpiryDuration())}
	if s.returnCode {
		out.Code = code
	}
	return out, nil
}

// Verify consumes the code and issues a ticket for req.Purpose.
// If signing fails the code is restored so the caller can retry.
func (s *service) Verify(ctx context.Context, req VerifyCodeRequest) (*domain.Ticket, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidArgument)
	}
	rec, ok := s.store.Consume(req.Email, req.Code)
	if !ok {
		return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
	}
	ticket, err := s.signer.Sign(strings.ToLower(req.Email), req.Purpose)
	if err != nil {
		s.store.Restore(req.Email, rec)
		return nil, err
	}
	slog.InfoContext(ctx, "otp verified", "purpose", req.Purpose)
	return ticket, nil
}

// Check reports whether the code is currently valid without consuming it.
func (s *service) Check(ctx context.Context, req CheckCodeRequest) (bool, error) {
	if err := validate.Struct(&req); err != nil {
		return false, fmt.Errorf("%v: %w", err, domain.ErrInvalidArgument)
	}
	return s.store.IsValid(req.Email, req.Code), nil
}

// expiresInSeconds rounds up so a sub-second expiry is not reported as 0.
func expiresInSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
