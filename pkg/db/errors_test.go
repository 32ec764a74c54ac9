package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolationPgx(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation without constraint filter")
	}
	if !IsUniqueViolation(err, "users_email_key") {
		t.Fatalf("expected match on constraint name")
	}
	if IsUniqueViolation(err, "tenants_slug_key") {
		t.Fatalf("expected mismatch on other constraint")
	}
}

func TestIsUniqueViolationOtherPGCode(t *testing.T) {
	err := &pgconn.PgError{Code: "23503", ConstraintName: "users_email_key"}
	if IsUniqueViolation(err, "") {
		t.Fatalf("foreign key violations are not unique violations")
	}
}

func TestIsUniqueViolationSQLiteMessage(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: users.email")
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected sqlite message fallback to match")
	}
	if !IsUniqueViolation(err, "users.email") {
		t.Fatalf("expected sqlite constraint substring to match")
	}
	if IsUniqueViolation(errors.New("syntax error"), "") {
		t.Fatalf("unrelated errors must not match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil error must not match")
	}
}
