package inputval

import (
	"net/http/httptest"
	"strings"
	"testing"
)

type registerBody struct {
	Email     string `json:"email" validate:"required,email,institutional"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
	FullName  string `json:"full_name" validate:"required"`
}

func decode(t *testing.T, body string, dst interface{}) error {
	t.Helper()
	r := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	return DecodeAndValidate(r, dst)
}

func TestDecodeAndValidate_OK(t *testing.T) {
	var b registerBody
	err := decode(t, `{"email":"ana@inacapmail.cl","password":"secret123","password2":"secret123","full_name":"Ana"}`, &b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Email != "ana@inacapmail.cl" {
		t.Errorf("email = %q", b.Email)
	}
}

func TestDecodeAndValidate_WrongDomain(t *testing.T) {
	var b registerBody
	err := decode(t, `{"email":"ana@gmail.com","password":"secret123","password2":"secret123","full_name":"Ana"}`, &b)
	if err == nil {
		t.Fatal("expected domain validation error")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if verr.Field != "email" {
		t.Errorf("field = %q, want email", verr.Field)
	}
}

func TestDecodeAndValidate_DomainCheckIsCaseInsensitive(t *testing.T) {
	var b registerBody
	err := decode(t, `{"email":"Ana@INACAPMAIL.CL","password":"secret123","password2":"secret123","full_name":"Ana"}`, &b)
	if err != nil {
		t.Errorf("uppercase institutional domain should pass, got %v", err)
	}
}

func TestDecodeAndValidate_PasswordMismatch(t *testing.T) {
	var b registerBody
	err := decode(t, `{"email":"ana@inacapmail.cl","password":"secret123","password2":"other","full_name":"Ana"}`, &b)
	if err == nil {
		t.Fatal("expected password confirmation error")
	}
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	var b registerBody
	if err := decode(t, `{"email":`, &b); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDecodeAndValidate_UnknownField(t *testing.T) {
	var b registerBody
	err := decode(t, `{"email":"ana@inacapmail.cl","password":"secret123","password2":"secret123","full_name":"Ana","bogus":1}`, &b)
	if err == nil {
		t.Fatal("unknown fields must be rejected")
	}
}

func TestCheckInstitutionalEmail(t *testing.T) {
	if err := CheckInstitutionalEmail("p@inacapmail.cl"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckInstitutionalEmail("p@example.com"); err == nil {
		t.Error("expected error for external domain")
	}
}
