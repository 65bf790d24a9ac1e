package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix leaves
// room for a future algorithm change.
const (
	DomainCommand = "cutroom/command/v1"
	DomainOutcome = "cutroom/outcome/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null separator
// keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CommandID computes the content-addressed id of a command. The same
// session, op, args and seq always produce the same id.
func CommandID(session string, op OpName, args IRObject, seq int64) (string, error) {
	obj := IRObject{
		"session": IRString(session),
		"op":      IRString(op),
		"args":    args,
		"seq":     IRInt(seq),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CommandID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCommand, canonical), nil
}

// OutcomeID computes the content-addressed id of an outcome, linked to the
// command it answers.
func OutcomeID(commandID, outputCase string, result IRObject, seq int64) (string, error) {
	obj := IRObject{
		"command_id":  IRString(commandID),
		"output_case": IRString(outputCase),
		"result":      result,
		"seq":         IRInt(seq),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("OutcomeID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOutcome, canonical), nil
}

// MustCommandID is like CommandID but panics on error. Tests only.
func MustCommandID(session string, op OpName, args IRObject, seq int64) string {
	id, err := CommandID(session, op, args, seq)
	if err != nil {
		panic(err)
	}
	return id
}
