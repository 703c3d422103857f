package activity

import (
	"go.temporal.io/sdk/activity"
)

// Registry is satisfied by worker.Worker and the SDK test environments.
type Registry interface {
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}

// Register registers every activity under its pipeline name.
func (a *Activities) Register(r Registry) {
	r.RegisterActivityWithOptions(a.EvaluateApplication, activity.RegisterOptions{Name: EvaluateApplicationName})
	r.RegisterActivityWithOptions(a.SendApplicantEmail, activity.RegisterOptions{Name: SendApplicantEmailName})
	r.RegisterActivityWithOptions(a.SendFailedEmail, activity.RegisterOptions{Name: SendFailedEmailName})
	r.RegisterActivityWithOptions(a.FetchUnnotifiedFailed, activity.RegisterOptions{Name: FetchUnnotifiedFailedName})
	r.RegisterActivityWithOptions(a.MarkFailedAsNotified, activity.RegisterOptions{Name: MarkFailedAsNotifiedName})
}
