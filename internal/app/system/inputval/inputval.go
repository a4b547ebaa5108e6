// Package inputval turns an untrusted contact-form body into a typed,
// validated Contact or a Rejection describing the first defect found.
//
// Checks run in a fixed order and the first failing class wins:
//  1. body is a JSON object with string fields
//  2. every required field is present
//  3. length caps
//  4. coarse email shape
package inputval

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Length caps, in characters.
const (
	MaxNameLen    = 200
	MaxEmailLen   = 320
	MaxMessageLen = 5000

	maxLocalLen  = 64
	maxDomainLen = 255
)

// Contact is a validated contact submission.
type Contact struct {
	Name    string
	Email   string
	Message string
	Token   string
}

// Rejection is a client-side input defect. Status is the HTTP status to reply with.
type Rejection struct {
	Status  int
	Field   string
	Message string
}

func (r *Rejection) Error() string { return r.Message }

func reject(field, msg string) *Rejection {
	return &Rejection{Status: http.StatusBadRequest, Field: field, Message: msg}
}

// contactPayload is the wire shape. Widgets that post the raw form field
// name send the token as cf-turnstile-response.
type contactPayload struct {
	Name      string `json:"name" validate:"required,max=200"`
	Email     string `json:"email" validate:"required,max=320,coarse_email"`
	Message   string `json:"message" validate:"required,max=5000"`
	Token     string `json:"token" validate:"required"`
	WidgetTok string `json:"cf-turnstile-response" validate:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("coarse_email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// DecodeContact parses and validates a contact body.
// The returned error is always a *Rejection.
func DecodeContact(body []byte) (Contact, error) {
	var p contactPayload
	if err := json.Unmarshal(body, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return Contact{}, reject(typeErr.Field, fmt.Sprintf("%s must be a string.", typeErr.Field))
		}
		return Contact{}, reject("", "Request body must be a valid JSON object.")
	}
	if p.Token == "" {
		p.Token = p.WidgetTok
	}

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Contact{}, reject("", "Request body is invalid.")
		}
		return Contact{}, firstRejection(verrs)
	}

	return Contact{Name: p.Name, Email: p.Email, Message: p.Message, Token: p.Token}, nil
}

// firstRejection reports missing fields before length problems before
// email shape, regardless of the order validator returned them in.
func firstRejection(verrs validator.ValidationErrors) *Rejection {
	var missing []string
	var tooLong, badEmail validator.FieldError
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			missing = append(missing, fe.Field())
		case "max":
			if tooLong == nil {
				tooLong = fe
			}
		case "coarse_email":
			badEmail = fe
		}
	}

	switch {
	case len(missing) == 1:
		return reject(missing[0], fmt.Sprintf("Missing required field: %s.", missing[0]))
	case len(missing) > 1:
		sort.Strings(missing)
		return reject(missing[0], fmt.Sprintf("Missing required fields: %s.", strings.Join(missing, ", ")))
	case tooLong != nil:
		return reject(tooLong.Field(), fmt.Sprintf("%s must be at most %s characters.", tooLong.Field(), tooLong.Param()))
	case badEmail != nil:
		return reject("email", "email address is not valid.")
	}
	return reject("", "Request body is invalid.")
}

// IsValidEmail applies the coarse structural check used for contact
// addresses: a 1-64 character local part and a 1-255 character domain,
// neither containing '@' or whitespace.
func IsValidEmail(s string) bool {
	local, domain, ok := strings.Cut(s, "@")
	if !ok {
		return false
	}
	return validPart(local, maxLocalLen) && validPart(domain, maxDomainLen)
}

func validPart(s string, max int) bool {
	n := utf8.RuneCountInString(s)
	if n < 1 || n > max {
		return false
	}
	for _, r := range s {
		if r == '@' || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
