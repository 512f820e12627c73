package idempotency

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

// Canonicalize produces a deterministic byte representation of an
// arbitrary JSON-marshalable payload: map keys are recursively sorted and
// the result is serialized with no insignificant whitespace (spec §4.2
// step 1, §8 property 3: canonicalize(canonicalize(p)) == canonicalize(p)).
func Canonicalize(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("unmarshaling payload for canonicalization: %w", err)
	}

	normalized := normalize(generic)

	out, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("marshaling canonicalized payload: %w", err)
	}
	return out, nil
}

// normalize recursively walks a decoded JSON value, replacing every map
// with an orderedMap so re-marshaling emits keys in sorted order. json.Marshal
// on a Go map already sorts string keys, but we decode into map[string]any
// and re-encode explicitly so the behaviour does not depend on that
// implementation detail.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(orderedMap, 0, len(val))
		for _, k := range keys {
			out = append(out, kv{Key: k, Value: normalize(val[k])})
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return val
	}
}

// kv is a single canonical key/value pair.
type kv struct {
	Key   string
	Value any
}

// orderedMap marshals as a JSON object with keys emitted in the order they
// were appended (sorted, by construction in normalize).
type orderedMap []kv

func (m orderedMap) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, pair := range m {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyJSON, err := json.Marshal(pair.Key)
		if err != nil {
			return nil, err
		}
		valJSON, err := json.Marshal(pair.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyJSON...)
		buf = append(buf, ':')
		buf = append(buf, valJSON...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// Hash computes the 256-bit cryptographic fingerprint of a canonicalized
// payload (spec §4.2 step 1, §3 IdempotencyRecord.payloadHash).
func Hash(canonical []byte) [32]byte {
	return sha256.Sum256(canonical)
}

// HashPayload canonicalizes and hashes payload in one step.
func HashPayload(payload any) ([32]byte, error) {
	canonical, err := Canonicalize(payload)
	if err != nil {
		return [32]byte{}, err
	}
	return Hash(canonical), nil
}
