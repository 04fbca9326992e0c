// Package policy implements the pure decision function of the engine – it
// maps a (request, risk tier, ledger hit) triple onto an outcome via a fixed
// base rule table, and supports pluggable contextual predicates that may
// tighten, but never relax, the base decision.
package policy
