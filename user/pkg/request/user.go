package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type Signup struct {
	Username string `validate:"required"        json:"username"`
	Email    string `validate:"required,email"  json:"email"`
	Password string `validate:"required,min=6"  json:"password"`
}

func (s Signup) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", s.Email).Str("username", s.Username)
}

func (s Signup) MarshalJSON() ([]byte, error) {
	s.Password = "***"
	type S Signup
	return json.Marshal(S(s))
}

type Login struct {
	Email    string `validate:"required,email" json:"email"`
	Password string `validate:"required"       json:"password"`
}

func (l Login) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", l.Email).Str("password", "***")
}

func (l Login) MarshalJSON() ([]byte, error) {
	l.Password = "***"
	type L Login
	return json.Marshal(L(l))
}

type VerifyEmail struct {
	Token string `validate:"required" json:"token"`
}

type ForgotPassword struct {
	Email string `validate:"required,email" json:"email"`
}

type ResetPassword struct {
	Token    string `validate:"required"       json:"token"`
	Password string `validate:"required,min=6" json:"password"`
}

func (r ResetPassword) MarshalZerologObject(e *zerolog.Event) {
	e.Str("token", r.Token).Str("password", "***")
}

func (r ResetPassword) MarshalJSON() ([]byte, error) {
	r.Password = "***"
	type R ResetPassword
	return json.Marshal(R(r))
}

type ShippingAddress struct {
	FullName   string `validate:"required" json:"fullName"`
	Address    string `validate:"required" json:"address"`
	City       string `validate:"required" json:"city"`
	PostalCode string `validate:"required" json:"postalCode"`
	Country    string `validate:"required" json:"country"`
	Phone      string `validate:"required" json:"phone"`
}
