package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room to change the algorithm later.
const (
	DomainEvent = "socialgraph/event/v1"
	DomainState = "socialgraph/state/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes the content-addressed ID of an event at a log position.
// The same kind, payload and seq always produce the same ID.
func EventID(kind EventKind, payload IRObject, seq int64) (string, error) {
	obj := IRObject{
		"kind":    IRString(kind),
		"payload": payload,
		"seq":     IRInt(seq),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// StateDigest hashes a state snapshot. Two engines that applied the same
// operations in the same order produce the same digest.
func StateDigest(snapshot IRObject) (string, error) {
	canonical, err := MarshalCanonical(snapshot)
	if err != nil {
		return "", fmt.Errorf("StateDigest: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// MustEventID is like EventID but panics on error. For tests.
func MustEventID(kind EventKind, payload IRObject, seq int64) string {
	id, err := EventID(kind, payload, seq)
	if err != nil {
		panic(err)
	}
	return id
}
