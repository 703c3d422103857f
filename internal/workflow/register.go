package workflow

import "go.temporal.io/sdk/workflow"

// Registry is satisfied by worker.Worker and the SDK test environment.
type Registry interface {
	RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
}

// Register registers both workflows under their names.
func Register(r Registry) {
	r.RegisterWorkflowWithOptions(ApplicationWorkflow, workflow.RegisterOptions{Name: ApplicationWorkflowName})
	r.RegisterWorkflowWithOptions(NotifyFailedWorkflow, workflow.RegisterOptions{Name: NotifyFailedWorkflowName})
}
