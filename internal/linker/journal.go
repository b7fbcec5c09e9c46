package linker

import (
	"github.com/rs/zerolog"
)

type step struct {
	name string
	do   func() error
	undo func() error // nil for steps that cannot be undone
}

// journal runs steps in order. commit can stop after any step; the steps
// already applied are then undone in reverse order.
type journal struct {
	logger zerolog.Logger
	steps  []step
}

func newJournal(logger zerolog.Logger) *journal {
	return &journal{logger: logger}
}

func (j *journal) add(name string, do, undo func() error) {
	j.steps = append(j.steps, step{name: name, do: do, undo: undo})
}

func (j *journal) commit() error {
	for i, s := range j.steps {
		j.logger.Debug().Str("step", s.name).Msg("Applying step")
		if err := s.do(); err != nil {
			j.logger.Error().Err(err).Str("step", s.name).Msg("Step failed, rolling back")
			j.rollback(i)
			return err
		}
	}
	return nil
}

func (j *journal) rollback(failed int) {
	for k := failed - 1; k >= 0; k-- {
		s := j.steps[k]
		if s.undo == nil {
			continue
		}
		if err := s.undo(); err != nil {
			// Left for status to report as drift.
			j.logger.Error().Err(err).Str("step", s.name).Msg("Rollback step failed")
		}
	}
}
