package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes keep hashes of different kinds from colliding.
const (
	DomainQuery  = "kantin/query/v1"
	DomainResult = "kantin/result/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// QuerySignature identifies a live query by name and parameters.
// Two subscriptions with equal signatures share one evaluation.
func QuerySignature(name string, params IRObject) (string, error) {
	if params == nil {
		params = IRObject{}
	}
	canonical, err := MarshalCanonical(IRObject{
		"name":   IRString(name),
		"params": params,
	})
	if err != nil {
		return "", fmt.Errorf("QuerySignature: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}

// Fingerprint hashes the canonical form of a query result. Results that are
// structurally equal (same rows, same order, same field values) have equal
// fingerprints.
func Fingerprint(result any) (string, error) {
	val, ok := result.(IRValue)
	if !ok {
		var err error
		if val, err = FromStruct(result); err != nil {
			return "", fmt.Errorf("Fingerprint: %w", err)
		}
	}
	canonical, err := MarshalCanonical(val)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// MustQuerySignature is like QuerySignature but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustQuerySignature(name string, params IRObject) string {
	sig, err := QuerySignature(name, params)
	if err != nil {
		panic(err)
	}
	return sig
}
