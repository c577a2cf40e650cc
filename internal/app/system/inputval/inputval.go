// internal/app/system/inputval/inputval.go
//
// JSON request decoding and validation. Validation errors are local and
// recoverable: they are reported before any backend is contacted.
package inputval

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/colabhub/colabhub/internal/app/system/normalize"
	"github.com/go-playground/validator/v10"
)

// InstitutionalDomain is the required email-domain suffix for every account.
// Enforced by the caller before the identity backend is ever contacted.
const InstitutionalDomain = "@inacapmail.cl"

// MaxBodySize caps JSON request bodies.
const MaxBodySize = 1 << 20 // 1 MB

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// institutional: email must carry the institutional domain suffix.
	_ = v.RegisterValidation("institutional", func(fl validator.FieldLevel) bool {
		return strings.HasSuffix(normalize.Email(fl.Field().String()), InstitutionalDomain)
	})
	return v
}

// ValidationError is returned for malformed or invalid request bodies.
// The message is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// DecodeAndValidate reads the JSON body into dst and runs struct validation.
// Unknown fields are rejected so client typos fail loudly.
func DecodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &ValidationError{Message: "invalid JSON body"}
	}
	return Validate(dst)
}

// Validate runs struct validation on an already-decoded value.
func Validate(dst interface{}) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: messageFor(fe),
		}
	}
	return &ValidationError{Message: "invalid input"}
}

// CheckInstitutionalEmail validates the email-domain rule for flows that
// take the address outside a struct (e.g. the OAuth callback).
func CheckInstitutionalEmail(email string) error {
	if !strings.HasSuffix(normalize.Email(email), InstitutionalDomain) {
		return &ValidationError{
			Field:   "email",
			Message: fmt.Sprintf("only %s accounts are allowed", InstitutionalDomain),
		}
	}
	return nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "institutional":
		return fmt.Sprintf("only %s accounts are allowed", InstitutionalDomain)
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "gte":
		return "must be >= " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
