package domain

// Outcome classifies how a degradable operation finished. Components return
// an Outcome next to their (possibly empty) value instead of an error so the
// caller can tell "nothing found" from "provider down".
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeEmpty         Outcome = "empty"
	OutcomeUnconfigured  Outcome = "unconfigured"
	OutcomeUpstreamError Outcome = "upstream_error"
	OutcomeBlocked       Outcome = "blocked"
	OutcomeInvalid       Outcome = "invalid"
	OutcomeTimeout       Outcome = "timeout"
)

// Degraded reports whether the outcome is anything other than a success.
func (o Outcome) Degraded() bool {
	return o != OutcomeOK
}
