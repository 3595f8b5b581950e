package user

import (
	"github.com/danwahyudir/lapju/core"
)

// NewUser holds a registration request.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Rank     string `json:"rank"`
	OfficeID string `json:"office_id"`
	Password string `json:"password" validate:"required,min=8"`
}

func (nu *NewUser) clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Rank = core.CleanString(nu.Rank)
}

func (nu *NewUser) Validate() error {
	return core.Validate.Struct(nu)
}
