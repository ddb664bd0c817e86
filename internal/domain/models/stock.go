package models

import "strings"

// LedgerKind is the kind of an inventory ledger transaction.
type LedgerKind string

const (
	LedgerAdd    LedgerKind = "ADD"
	LedgerRemove LedgerKind = "REMOVE"
	LedgerAdjust LedgerKind = "ADJUST"
)

// LedgerKinds lists every recognised transaction kind.
var LedgerKinds = []LedgerKind{LedgerAdd, LedgerRemove, LedgerAdjust}

// ParseLedgerKind normalises a stored kind value. Matching is case-insensitive.
func ParseLedgerKind(raw string) LedgerKind {
	return LedgerKind(strings.ToUpper(strings.TrimSpace(raw)))
}

// Sign is the multiplier the kind applies to its quantity when computing
// on-hand stock. Unrecognised kinds contribute nothing.
func (k LedgerKind) Sign() int {
	switch k {
	case LedgerAdd, LedgerAdjust:
		return 1
	case LedgerRemove:
		return -1
	default:
		return 0
	}
}
