package revision

import (
	"testing"

	"github.com/wisbric/waypoint/internal/domain"
)

func TestCheck_BlindWrite(t *testing.T) {
	if err := Check(nil, 7); err != nil {
		t.Fatalf("blind write should be accepted, got %v", err)
	}
}

func TestCheck_MatchAccepted(t *testing.T) {
	expected := uint32(3)
	if err := Check(&expected, 3); err != nil {
		t.Fatalf("matching revision should be accepted, got %v", err)
	}
}

func TestCheck_MismatchRejected(t *testing.T) {
	expected := uint32(3)
	err := Check(&expected, 5)
	if err == nil {
		t.Fatal("expected a revision mismatch error")
	}
	domErr, ok := domain.AsError(err)
	if !ok || domErr.Kind != domain.KindRevisionMismatch {
		t.Fatalf("expected domain.KindRevisionMismatch, got %#v", err)
	}
	if domErr.Expected != 3 || domErr.Actual != 5 {
		t.Fatalf("expected expected=3 actual=5, got expected=%d actual=%d", domErr.Expected, domErr.Actual)
	}
	if domErr.HTTPStatus() != 409 {
		t.Fatalf("expected HTTP 409, got %d", domErr.HTTPStatus())
	}
}

func TestCheckCreate_AbsentOrZeroAccepted(t *testing.T) {
	if err := CheckCreate(nil); err != nil {
		t.Fatalf("absent expectedRevision on create should be accepted, got %v", err)
	}
	zero := uint32(0)
	if err := CheckCreate(&zero); err != nil {
		t.Fatalf("expectedRevision=0 on create should be accepted, got %v", err)
	}
}

func TestCheckCreate_NonZeroRejected(t *testing.T) {
	one := uint32(1)
	err := CheckCreate(&one)
	if err == nil {
		t.Fatal("expected a revision mismatch error")
	}
	domErr, ok := domain.AsError(err)
	if !ok || domErr.Kind != domain.KindRevisionMismatch {
		t.Fatalf("expected domain.KindRevisionMismatch, got %#v", err)
	}
	if domErr.Expected != 1 || domErr.Actual != 0 {
		t.Fatalf("expected expected=1 actual=0, got expected=%d actual=%d", domErr.Expected, domErr.Actual)
	}
}

func TestNext(t *testing.T) {
	if Next(0) != 1 {
		t.Fatalf("Next(0) should be 1, got %d", Next(0))
	}
	if Next(4) != 5 {
		t.Fatalf("Next(4) should be 5, got %d", Next(4))
	}
}
