// Package toolgate is a resource-scoped authorization engine for hosts that
// let AI agents call tools. Every proposed tool call is classified by risk
// from the tool's declared annotations, checked against a ledger of prior
// user approvals keyed by exact (session, resource, tool) scope, and run
// through a policy engine; calls the policy cannot settle are put to the
// user through a pluggable interaction channel.
//
// The engine answers exactly one question per call: may this tool touch
// this resource in this session right now. Approvals never transfer across
// sessions, resources or tools, and every missing collaborator degrades to
// a deny rather than an allow.
//
// Hosts interact with the engine via the Service façade:
//
//	gate, err := toolgate.New(
//		toolgate.WithApprovalTimeout(time.Minute),
//	)
//	decision, err := gate.Authorize(ctx, &model.Request{
//		SessionID: sessionID,
//		ToolName:  "delete_repo",
//		Arguments: args,
//	})
//	if decision.Allowed() {
//		// execute the call
//	}
//
// For details see the individual sub-packages: risk (classification),
// policy (rule table and predicates), service/ledger (approval records),
// service/interaction (user prompts) and service/resolver (resource id
// extraction).
package toolgate
