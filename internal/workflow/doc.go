// Package workflow implements the screening pipeline's Temporal workflows.
//
// ApplicationWorkflow screens one submission and, when it qualifies, sends
// the pass notification. NotifyFailedWorkflow is the recurring sweep that
// emails rejected applicants and marks them notified in the ledger.
//
// Both workflows are thin drivers over pure state types (pipelineState,
// sweepState) whose transitions depend only on activity results. Workflow
// code must stay deterministic: no wall clock, no random values, no I/O and
// no map iteration that affects control flow. All of that belongs in
// activities.
package workflow
