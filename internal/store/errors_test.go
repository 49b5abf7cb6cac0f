package store

import (
	"errors"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
)

func TestDBErrorClassifiesNetworkFailureAsTransient(t *testing.T) {
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	err := dbError(dialErr)
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("expected ErrTransient for a network failure, got %v", err)
	}
}

func TestDBErrorPassesThroughConstraintViolations(t *testing.T) {
	pgErr := &pgconn.PgError{Code: uniqueViolation}

	err := dbError(pgErr)
	if errors.Is(err, domain.ErrTransient) {
		t.Fatalf("constraint violation must not be transient: %v", err)
	}
	var out *pgconn.PgError
	if !errors.As(err, &out) || out.Code != uniqueViolation {
		t.Fatalf("expected the original pg error preserved, got %v", err)
	}
}

func TestDBErrorNilIsNil(t *testing.T) {
	if err := dbError(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
