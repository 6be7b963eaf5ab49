// Package reliable delivers messages over a connection whose outbound buffer
// may be congested. Both policies treat a non-empty buffer as the only
// congestion signal and re-check after a fixed delay; there is no backoff.
package reliable

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kostyay/signboard/internal/eventloop"
	"github.com/kostyay/signboard/internal/metrics"
)

// ErrAttemptsExhausted is logged when a bounded send gives up.
var ErrAttemptsExhausted = errors.New("message delivery attempts exhausted")

// Conn is the part of a duplex connection the senders need.
type Conn interface {
	Send(data []byte) error
	BufferedAmount() int
}

const (
	policyCallback = "callback"
	policyBounded  = "bounded"
)

// SendWithCallback sends msg as soon as conn's outbound buffer is empty,
// re-checking every retryDelay with no attempt limit. onSent, if non-nil, is
// called right after the frame has been handed to the connection.
//
// Must be called from the scheduler's goroutine.
func SendWithCallback(s eventloop.Scheduler, conn Conn, msg any, retryDelay time.Duration, onSent func()) {
	data, err := json.Marshal(msg)
	if err != nil {
		logSendError(policyCallback, fmt.Errorf("encode message: %w", err))
		return
	}

	var attempt func()
	attempt = func() {
		if conn.BufferedAmount() != 0 {
			metrics.SendAttempts.WithLabelValues(policyCallback, "congested").Inc()
			s.AfterFunc(retryDelay, attempt)
			return
		}
		if err := conn.Send(data); err != nil {
			metrics.SendAttempts.WithLabelValues(policyCallback, "error").Inc()
			logSendError(policyCallback, err)
			return
		}
		metrics.SendAttempts.WithLabelValues(policyCallback, "sent").Inc()
		if onSent != nil {
			onSent()
		}
	}
	attempt()
}

// SendBounded sends msg as soon as conn's outbound buffer is empty, checking
// at most maxAttempts times, retryDelay apart. When every check finds the
// buffer congested, or maxAttempts is not positive, the message is dropped and
// ErrAttemptsExhausted is logged.
// Errors never reach the caller.
//
// Must be called from the scheduler's goroutine.
func SendBounded(s eventloop.Scheduler, conn Conn, msg any, retryDelay time.Duration, maxAttempts int) {
	data, err := json.Marshal(msg)
	if err != nil {
		logSendError(policyBounded, fmt.Errorf("encode message: %w", err))
		return
	}
	if maxAttempts <= 0 {
		logExhausted(0, data)
		return
	}

	attempts := 0
	var attempt func()
	attempt = func() {
		if conn.BufferedAmount() == 0 {
			if err := conn.Send(data); err != nil {
				metrics.SendAttempts.WithLabelValues(policyBounded, "error").Inc()
				logSendError(policyBounded, err)
				return
			}
			metrics.SendAttempts.WithLabelValues(policyBounded, "sent").Inc()
			return
		}

		metrics.SendAttempts.WithLabelValues(policyBounded, "congested").Inc()
		attempts++
		if attempts >= maxAttempts {
			logExhausted(attempts, data)
			return
		}
		s.AfterFunc(retryDelay, attempt)
	}
	attempt()
}

func logExhausted(attempts int, data []byte) {
	metrics.SendExhausted.Inc()
	slog.Error("reliable.send.exhausted",
		"component", "reliable",
		"attempts", attempts,
		"payload", string(data),
		"error", ErrAttemptsExhausted,
	)
}

func logSendError(policy string, err error) {
	slog.Error("reliable.send.failed",
		"component", "reliable",
		"policy", policy,
		"error", err,
	)
}
