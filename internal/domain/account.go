package domain

type SignupRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Birthday  string `json:"birthday,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// UpstreamResult is a response from the upstream API relayed back to the caller as-is.
type UpstreamResult struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
