package pipeline

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/hszk-dev/gostream/internal/domain/model"
	"github.com/hszk-dev/gostream/internal/domain/repository"
)

// ErrKind is the abstract error taxonomy stage handlers classify into.
// It decides retry-vs-terminal and the status a failed Video ends up in.
type ErrKind string

const (
	KindTransient    ErrKind = "transient"
	KindInputInvalid ErrKind = "input_invalid"
	KindContract     ErrKind = "contract"
	KindForbidden    ErrKind = "forbidden"
	KindNotFound     ErrKind = "not_found"
	KindCancelled    ErrKind = "cancelled"
	KindInternal     ErrKind = "internal"
)

var (
	// ErrQueueUnavailable marks a message-broker connection that is
	// down.
	ErrQueueUnavailable = errors.New("queue unavailable")

	// ErrSchedulerBusy is returned when RegisterPeriodic is called
	// twice for the same handler name.
	ErrSchedulerBusy = errors.New("periodic handler already registered")

	// ErrCancelled marks a job explicitly aborted by an operator.
	ErrCancelled = errors.New("job cancelled")

	// ErrProbeFailed marks a duration probe that could not read the
	// source's media header.
	ErrProbeFailed = errors.New("duration probe failed")

	// ErrUnsupportedContainer marks a source file whose container
	// ffprobe could not decode.
	ErrUnsupportedContainer = errors.New("unsupported or unreadable source container")

	// ErrStorageUnavailable wraps a transient object-storage failure.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrCredentialMissing marks a storage call that failed because of
	// missing or invalid credentials.
	ErrCredentialMissing = errors.New("storage credentials missing")
)

// Classify maps an error surfaced by a stage handler to the abstract
// taxonomy spec'd for the orchestrator's retry policy.
func Classify(err error) ErrKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, ErrProbeFailed), errors.Is(err, ErrUnsupportedContainer):
		return KindInputInvalid
	case errors.Is(err, repository.ErrVideoNotFound),
		errors.Is(err, repository.ErrWatchHistoryNotFound),
		errors.Is(err, repository.ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, model.ErrProgressExceedsDuration),
		errors.Is(err, model.ErrNegativeProgress),
		errors.Is(err, repository.ErrDuplicateVideo):
		return KindContract
	case errors.Is(err, model.ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, context.DeadlineExceeded):
		return KindTransient
	case isTransientNetworkError(err):
		return KindTransient
	default:
		return KindInternal
	}
}

// isTransientNetworkError reports whether err looks like a transient
// connection failure: timeouts, resets, refused connections.
func isTransientNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED)
}

// IsRetryable reports whether a stage should be retried per §4.1:
// Transient and Internal errors retry, everything else is terminal.
func IsRetryable(err error) bool {
	switch Classify(err) {
	case KindTransient, KindInternal:
		return true
	default:
		return false
	}
}
