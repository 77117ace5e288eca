package models

import "time"

// Outcome classifies how a fleet operation ended.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeValidation   Outcome = "validation"
	OutcomeBreakdown    Outcome = "breakdown"
	OutcomeMissingParts Outcome = "missing_parts"
	OutcomeError        Outcome = "error"
)

// LedgerEntry is one row of the operations ledger.
type LedgerEntry struct {
	Date      time.Time
	Serial    string
	Kind      string
	Operation string
	Outcome   Outcome
	Detail    string
}

// Failed reports whether the operation did not go through.
func (e LedgerEntry) Failed() bool {
	return e.Outcome != OutcomeOK
}
