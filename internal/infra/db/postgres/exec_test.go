//go:build !integration

package postgres

import (
	"errors"
	"fmt"
	"testing"

	"emby-cdk-manager/internal/domain"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

func TestRetryable(t *testing.T) {
	t.Run("should retry serialization failures and deadlocks", func(t *testing.T) {
		for _, code := range []string{pgSerializationFailure, pgDeadlockDetected} {
			err := fmt.Errorf("update: %w", &pgconn.PgError{Code: code})
			if !retryable(err) {
				t.Errorf("expected %s to be retryable", code)
			}
		}
	})

	t.Run("should not retry other failures", func(t *testing.T) {
		for _, err := range []error{
			&pgconn.PgError{Code: pgUniqueViolation},
			errors.New("boom"),
			domain.ErrNotFound,
		} {
			if retryable(err) {
				t.Errorf("expected %v not to be retryable", err)
			}
		}
	})
}

func TestDBErr(t *testing.T) {
	t.Run("should map driver errors onto domain errors", func(t *testing.T) {
		if !errors.Is(dbErr("find", pgx.ErrNoRows), domain.ErrNotFound) {
			t.Error("ErrNoRows should map to ErrNotFound")
		}
		if !errors.Is(dbErr("create", &pgconn.PgError{Code: pgUniqueViolation}), domain.ErrAlreadyExists) {
			t.Error("unique violation should map to ErrAlreadyExists")
		}
		if dbErr("noop", nil) != nil {
			t.Error("nil should stay nil")
		}
	})

	t.Run("should tag unknown errors with the operation", func(t *testing.T) {
		base := errors.New("connection reset")
		// --- Act ---
		err := dbErr("list cdks", base)
		// --- Assert ---
		if !errors.Is(err, base) || err.Error() != "list cdks: connection reset" {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("should reject unknown tx handles", func(t *testing.T) {
		_, err := getExecutor(nil, "not-a-tx")
		if !errors.Is(err, domain.ErrInvalidExecContext) {
			t.Errorf("expected ErrInvalidExecContext, got %v", err)
		}
		_, err = getExecutor(nil, nil)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestLimitOrDefault(t *testing.T) {
	if got := limitOrDefault(0, 50); got != 50 {
		t.Errorf("limitOrDefault(0, 50) = %d", got)
	}
	if got := limitOrDefault(10, 50); got != 10 {
		t.Errorf("limitOrDefault(10, 50) = %d", got)
	}
}
