package signup

import (
	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/registration"
)

// NewSignup contains the identity fields a prospective user enters on the
// signup screen. The curriculum/package choices come from the registration
// draft, not from this form.
type NewSignup struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,min=9"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ns *NewSignup) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	return core.Validate.Struct(ns)
}

// Request is the payload handed to the backend's register endpoint: identity
// fields plus the consumed draft, with the declared role passed through
// verbatim.
type Request struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Password   string    `json:"password"`
	Role       string    `json:"role"`
	Curriculum string    `json:"curriculum"`
	Package    string    `json:"package,omitempty"`
	Grade      string    `json:"grade"`
	Duration   string    `json:"duration,omitempty"`
	Subjects   *[]string `json:"subjects,omitempty"`
}

func newRequest(data NewSignup, rawRole string, draft registration.Draft) Request {
	return Request{
		Name:       data.Name,
		Email:      data.Email,
		Phone:      data.Phone,
		Password:   data.Password,
		Role:       rawRole,
		Curriculum: draft.Curriculum,
		Package:    draft.PackageKey,
		Grade:      draft.Grade,
		Duration:   draft.Duration,
		Subjects:   draft.Subjects,
	}
}

// Credentials is the created-account confirmation returned by the backend.
type Credentials struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
