package algo

import (
	"fmt"

	"go.uber.org/zap"

	pherrors "github.com/tamirms/perfecthash/errors"
)

// rejectReason names why a trial was infeasible. The empty reason means
// the trial succeeded.
type rejectReason string

const (
	accepted           rejectReason = ""
	rejectCycle        rejectReason = "cycle"
	rejectLoop         rejectReason = "loop"
	rejectParallel     rejectReason = "parallel"
	rejectCoreTooLarge rejectReason = "core too large"
	rejectCoreValues   rejectReason = "no free core value"
	rejectPeeling      rejectReason = "peeling incomplete"
	rejectBucket       rejectReason = "bucket exhausted"
)

// trialState is the state of one Run's retry loop.
type trialState uint8

const (
	stateSetup trialState = iota
	stateAttempt
	stateSuccess
	stateRetry
	stateExhausted
)

func (s trialState) String() string {
	switch s {
	case stateSetup:
		return "setup"
	case stateAttempt:
		return "attempt"
	case stateSuccess:
		return "success"
	case stateRetry:
		return "retry"
	case stateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// trials drives the Las Vegas retry contract: setup once, then at most
// budget attempts, each of which must reseed every hash function it uses.
type trials struct {
	budget int
	log    *zap.Logger

	state    trialState
	attempts int
	rejects  map[rejectReason]int
	// onState observes transitions; tests use it.
	onState func(trialState)
}

func newTrials(budget int, log *zap.Logger) *trials {
	return &trials{budget: budget, log: log, rejects: make(map[rejectReason]int)}
}

func (t *trials) enter(s trialState) {
	t.state = s
	if t.onState != nil {
		t.onState(s)
	}
}

// run executes the state machine. attempt performs trial i and returns a
// non-empty reason when the trial is infeasible; an error aborts the run.
func (t *trials) run(setup func() error, attempt func(i int) (rejectReason, error)) error {
	t.enter(stateSetup)
	for {
		switch t.state {
		case stateSetup:
			if setup != nil {
				if err := setup(); err != nil {
					return err
				}
			}
			t.enter(stateAttempt)

		case stateAttempt:
			if t.attempts >= t.budget {
				t.enter(stateExhausted)
				continue
			}
			i := t.attempts
			t.attempts++
			reason, err := attempt(i)
			if err != nil {
				return err
			}
			if reason == accepted {
				t.enter(stateSuccess)
				continue
			}
			t.rejects[reason]++
			t.log.Debug("trial rejected", zap.Int("trial", i), zap.String("reason", string(reason)))
			t.enter(stateRetry)

		case stateRetry:
			t.enter(stateAttempt)

		case stateSuccess:
			return nil

		case stateExhausted:
			return fmt.Errorf("%w: %d trials (%v)", pherrors.ErrTrialsExhausted, t.attempts, t.rejects)
		}
	}
}
