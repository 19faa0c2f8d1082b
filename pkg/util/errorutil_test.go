package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewBusinessRule("cart is empty", nil)

	mapped := ToDomainError(original)
	if mapped.Code != "BUSINESS_RULE_VIOLATION" {
		t.Fatalf("code = %s", mapped.Code)
	}
	if mapped.Message != "cart is empty" {
		t.Fatalf("message = %s", mapped.Message)
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	mapped := ToDomainError(pgx.ErrNoRows)
	if mapped.Code != "NOT_FOUND" || mapped.HTTPStatus != http.StatusNotFound {
		t.Fatalf("got %s/%d", mapped.Code, mapped.HTTPStatus)
	}
}

func TestToDomainErrorMapsUniqueViolation(t *testing.T) {
	mapped := ToDomainError(&pgconn.PgError{Code: "23505"})
	if mapped.Code != "CONFLICT" || mapped.HTTPStatus != http.StatusConflict {
		t.Fatalf("got %s/%d", mapped.Code, mapped.HTTPStatus)
	}
}

func TestToDomainErrorMapsMalformedUUID(t *testing.T) {
	mapped := ToDomainError(&pgconn.PgError{Code: "22P02"})
	if mapped.Code != "NOT_FOUND" || mapped.HTTPStatus != http.StatusNotFound {
		t.Fatalf("got %s/%d", mapped.Code, mapped.HTTPStatus)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection reset")

	mapped := ToDomainError(cause)
	if mapped.Code != "INTERNAL_ERROR" || mapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("got %s/%d", mapped.Code, mapped.HTTPStatus)
	}
	if !errors.Is(mapped, cause) {
		t.Fatal("original error must stay wrapped")
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Fatal("nil must map to nil")
	}
}
