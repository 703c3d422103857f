// Package worker wires configuration into the pipeline's workflows,
// activities and their backing adapters.
package worker

import (
	"github.com/jackwill99/temporal-hr/internal/activity"
	"github.com/jackwill99/temporal-hr/internal/workflow"
)

// Registry is the subset of worker.Worker used during startup.
type Registry interface {
	activity.Registry
	workflow.Registry
}

// RegisterAll registers both workflows and all five activities. Call it once,
// before the worker starts.
func RegisterAll(w Registry, deps activity.Deps) *activity.Activities {
	acts := activity.NewActivities(deps)
	workflow.Register(w)
	acts.Register(w)
	return acts
}
