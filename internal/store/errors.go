/**
 * @description
 * Error classification for the persistence layer. Connectivity-class driver
 * failures are wrapped as domain.ErrTransient so the HTTP layer can answer
 * 503 and callers can tell an outage from a permanent fault.
 */
package store

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
)

// Postgres error codes the repositories translate into domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// dbError classifies a driver failure. Network-level errors, timeouts and
// anything the driver reports as safe to retry become domain.ErrTransient;
// everything else passes through unchanged.
func dbError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.SafeToRetry(err) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("database unavailable: %v: %w", err, domain.ErrTransient)
	}
	return err
}
