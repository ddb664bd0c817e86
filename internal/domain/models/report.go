package models

// LedgerCount reports how many containers and transactions one inventory
// schema generation holds in the loaded snapshot.
type LedgerCount struct {
	Strategy     string `json:"strategy"`
	Containers   int64  `json:"containers"`
	Transactions int64  `json:"transactions"`
}

// InventoryDiagnostic explains why no on-hand snapshot could be computed.
type InventoryDiagnostic struct {
	Message string        `json:"message"`
	Counts  []LedgerCount `json:"counts"`
}
