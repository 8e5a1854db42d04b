package domain

import (
	"strings"
	"time"
)

// Stage is a step of the participant study flow.
type Stage string

const (
	StageConsent        Stage = "consent"
	StagePriorKnowledge Stage = "priorKnowledge"
	StageGapFill        Stage = "gapFill"
	StageTranscription  Stage = "transcription"
	StageComplete       Stage = "complete"
)

// nextStage is the linear flow. StageComplete has no entry and is terminal.
var nextStage = map[Stage]Stage{
	StageConsent:        StagePriorKnowledge,
	StagePriorKnowledge: StageGapFill,
	StageGapFill:        StageTranscription,
	StageTranscription:  StageComplete,
}

// Next returns the stage that follows s. Advancing from StageComplete, or from
// an unknown stage, leaves the stage unchanged.
func (s Stage) Next() Stage {
	if n, ok := nextStage[s]; ok {
		return n
	}
	return s
}

func (s Stage) Terminal() bool { return s == StageComplete }

// Condition is the experimental arm a participant is assigned to.
type Condition string

const (
	ConditionTreatment Condition = "treatment"
	ConditionControl   Condition = "control"
)

func (c Condition) Valid() bool {
	return c == ConditionTreatment || c == ConditionControl
}

// StageFlow is one participant's walk through the stages of one experiment.
type StageFlow struct {
	ExperimentID string
	Condition    Condition
	Stage        Stage
}

// NewStageFlow starts a flow at StageConsent. Both the experiment id and the
// condition must be supplied by the caller's entry context.
func NewStageFlow(experimentID string, condition Condition) (*StageFlow, error) {
	if strings.TrimSpace(experimentID) == "" || condition == "" {
		return nil, ErrMissingParameter
	}
	if !condition.Valid() {
		return nil, NewValidationError("condition must be one of: treatment control")
	}
	return &StageFlow{ExperimentID: experimentID, Condition: condition, Stage: StageConsent}, nil
}

// Advance moves the flow one stage forward and returns the new stage.
func (f *StageFlow) Advance() Stage {
	f.Stage = f.Stage.Next()
	return f.Stage
}

// StudySession is the server-side record of a stage flow. It lives only for
// the duration of one sitting.
type StudySession struct {
	ID            string     `json:"id"`
	ExperimentID  string     `json:"experimentId"`
	ParticipantID string     `json:"participantId"`
	Condition     Condition  `json:"condition"`
	Stage         Stage      `json:"stage"`
	ConsentedAt   *time.Time `json:"consentedAt,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Flow returns the stage flow view of the session.
func (s *StudySession) Flow() *StageFlow {
	return &StageFlow{ExperimentID: s.ExperimentID, Condition: s.Condition, Stage: s.Stage}
}
