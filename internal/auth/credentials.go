package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrPasswordMissing = errors.New("password required")
)

var validate = validator.New()

// Credentials is the body of the login and sign-up actions.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate normalizes the email and rejects input the provider would
// refuse anyway, saving it a round trip.
func (c *Credentials) Validate() error {
	c.Email = strings.TrimSpace(c.Email)

	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	if verrs[0].Field() == "Email" {
		return ErrInvalidEmail
	}
	return ErrPasswordMissing
}
