package workflow

import "github.com/jackwill99/temporal-hr/internal/domain"

type pipelineStep int

const (
	stepScreen pipelineStep = iota
	stepNotifySuccess
	stepDone
)

func (s pipelineStep) String() string {
	switch s {
	case stepScreen:
		return "screen"
	case stepNotifySuccess:
		return "notify_success"
	case stepDone:
		return "done"
	default:
		return "unknown"
	}
}

// pipelineState is the Primary Workflow's state machine:
//
//	screen -> (qualifies) notify_success -> done
//	       -> (rejected)  done
type pipelineState struct {
	step   pipelineStep
	result domain.PipelineResult
}

func newPipelineState() *pipelineState {
	return &pipelineState{step: stepScreen}
}

func (s *pipelineState) screened(v domain.ScreeningVerdict) {
	s.result.Analysis = v
	if v.Qualifies {
		s.step = stepNotifySuccess
		return
	}
	s.step = stepDone
}

func (s *pipelineState) notified(r domain.NotificationResult) {
	s.result.NotificationResult = &r
	s.step = stepDone
}

func (s *pipelineState) done() bool { return s.step == stepDone }
