package idempotency

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestCanonicalize_KeyOrderIndependent(t *testing.T) {
	a := map[string]any{"b": 1, "a": 2, "c": map[string]any{"z": 1, "y": 2}}
	b := map[string]any{"c": map[string]any{"y": 2, "z": 1}, "a": 2, "b": 1}

	outA, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("canonicalize a: %v", err)
	}
	outB, err := Canonicalize(b)
	if err != nil {
		t.Fatalf("canonicalize b: %v", err)
	}
	if !bytes.Equal(outA, outB) {
		t.Fatalf("expected identical canonical forms, got %s vs %s", outA, outB)
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	payload := map[string]any{"routeId": "r1", "tags": []any{"c", "a", "b"}}

	once, err := Canonicalize(payload)
	if err != nil {
		t.Fatalf("first canonicalize: %v", err)
	}

	var decoded any
	if err := json.Unmarshal(once, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	twice, err := Canonicalize(decoded)
	if err != nil {
		t.Fatalf("second canonicalize: %v", err)
	}
	if !bytes.Equal(once, twice) {
		t.Fatalf("canonicalize(canonicalize(p)) != canonicalize(p): %s vs %s", once, twice)
	}
}

func TestHashPayload_DeterministicAndSensitive(t *testing.T) {
	h1, err := HashPayload(map[string]any{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("hash 1: %v", err)
	}
	h2, err := HashPayload(map[string]any{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("hash 2: %v", err)
	}
	if h1 != h2 {
		t.Fatal("expected identical hashes for reordered-but-equal payloads")
	}

	h3, err := HashPayload(map[string]any{"a": 1, "b": 3})
	if err != nil {
		t.Fatalf("hash 3: %v", err)
	}
	if h1 == h3 {
		t.Fatal("expected different hashes for different payloads")
	}
}
