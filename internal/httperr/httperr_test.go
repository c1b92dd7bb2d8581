package httperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsBusiness(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ErrBusiness("invalid_state"))

	if !IsBusiness(err, "invalid_state") {
		t.Fatalf("expected wrapped business error to match")
	}
	if IsBusiness(err, "appointment_not_found") {
		t.Fatalf("expected different code not to match")
	}
	if IsBusiness(errors.New("invalid_state"), "invalid_state") {
		t.Fatalf("plain errors are not business errors")
	}
}

func TestBusinessMessage(t *testing.T) {
	plain := ErrBusiness("invalid_month").(BusinessError)
	if plain.Message() != "invalid_month" || plain.Error() != "invalid_month" {
		t.Fatalf("plain = %q / %q", plain.Message(), plain.Error())
	}

	err := fmt.Errorf("wrap: %w", ErrBusinessf("invalid_state", "cannot move a %s appointment", "completed"))
	be, ok := AsBusiness(err)
	if !ok || be.Code != "invalid_state" {
		t.Fatalf("AsBusiness = %+v, %v", be, ok)
	}
	if be.Message() != "cannot move a completed appointment" {
		t.Fatalf("message = %q", be.Message())
	}
	if !IsBusiness(err, "invalid_state") {
		t.Fatal("detail must not affect code matching")
	}
}

func TestIsExclusionConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"exclusion", &pgconn.PgError{Code: "23P01"}, true},
		{"unique", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01"}), true},
		{"fk", &pgconn.PgError{Code: "23503"}, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range cases {
		if got := IsExclusionConflict(tt.err); got != tt.want {
			t.Fatalf("%s: IsExclusionConflict=%v, want %v", tt.name, got, tt.want)
		}
	}
}
