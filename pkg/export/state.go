package export

import (
	"time"

	"github.com/matzehuels/storeshots/pkg/errors"
)

// State is a stage of an export job.
type State string

// Job states in order. Done and Failed are terminal.
const (
	StateIdle      State = "idle"
	StateRendering State = "rendering"
	StateCapturing State = "capturing"
	StateEncoding  State = "encoding"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// next lists the legal transitions out of each state.
var next = map[State][]State{
	StateIdle:      {StateRendering, StateFailed},
	StateRendering: {StateCapturing, StateFailed},
	StateCapturing: {StateEncoding, StateFailed},
	StateEncoding:  {StateDone, StateFailed},
}

// Job records the progress of one artifact through the state machine.
type Job struct {
	ProjectID string        `json:"project_id"`
	Variant   string        `json:"variant,omitempty"`
	States    []State       `json:"states"`
	Err       error         `json:"-"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration"`
}

func newJob(projectID, variant string, now time.Time) *Job {
	return &Job{ProjectID: projectID, Variant: variant, States: []State{StateIdle}, Started: now}
}

// State returns the current state.
func (j *Job) State() State { return j.States[len(j.States)-1] }

// advance moves the job to s. Illegal transitions are programming errors
// and fail the job.
func (j *Job) advance(s State) error {
	cur := j.State()
	for _, ok := range next[cur] {
		if ok == s {
			j.States = append(j.States, s)
			return nil
		}
	}
	err := errors.New(errors.ErrCodeInternal, "illegal export transition %s → %s", cur, s)
	j.fail(err)
	return err
}

// fail moves the job to Failed and records err. A terminal job is left
// unchanged.
func (j *Job) fail(err error) {
	if j.State().Terminal() {
		return
	}
	j.States = append(j.States, StateFailed)
	j.Err = err
}
