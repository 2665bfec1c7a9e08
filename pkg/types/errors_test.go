package types

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestConnectError(t *testing.T) {
	cause := errors.New("no relay")
	var err error = &ConnectError{Peer: "peer-abcdefgh-1", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("ConnectError 应可解包到原因")
	}

	wrapped := fmt.Errorf("discovery: %w", err)
	var cerr *ConnectError
	if !errors.As(wrapped, &cerr) {
		t.Fatal("errors.As 失败")
	}
	if cerr.Peer != "peer-abcdefgh-1" {
		t.Errorf("Peer = %q", cerr.Peer)
	}
}

func TestPunchError(t *testing.T) {
	err := &PunchError{Peer: "p", Reason: PunchReasonTimeout, Err: context.DeadlineExceeded}

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("PunchError 应可解包到原因")
	}
	if got := err.Error(); got != "hole punch p failed (timeout): context deadline exceeded" {
		t.Errorf("Error() = %q", got)
	}

	refused := &PunchError{Peer: "p", Reason: PunchReasonRefused, Err: fmt.Errorf("remote: %w", ErrPunchRefused)}
	if !errors.Is(refused, ErrPunchRefused) {
		t.Error("应可识别 ErrPunchRefused")
	}
}

func TestPunchFailureReason_String(t *testing.T) {
	want := map[PunchFailureReason]string{
		PunchReasonTransport:  "transport",
		PunchReasonTimeout:    "timeout",
		PunchReasonRefused:    "refused",
		PunchReasonValidation: "validation",
		PunchFailureReason(9): "unknown",
	}
	for r, s := range want {
		if r.String() != s {
			t.Errorf("%d.String() = %q, want %q", r, r.String(), s)
		}
	}
}
