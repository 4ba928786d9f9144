package services

import (
	"context"
	"sort"

	"publishing-ops-api/apperrors"
)

// Jobs maps stable job names to their functions and runs them through the
// shared Runner.
type Jobs struct {
	runner *Runner
	funcs  map[string]JobFunc
}

func NewJobs(runner *Runner, digest *DigestService, deadlines *DeadlineService, sla *SLAReminderService, sync *DirectorySyncService) *Jobs {
	return &Jobs{
		runner: runner,
		funcs: map[string]JobFunc{
			JobDigest:        digest.Run,
			JobDeadlines:     deadlines.Run,
			JobSLAReminders:  sla.Run,
			JobDirectorySync: sync.Run,
		},
	}
}

// Names lists registered jobs in lexical order.
func (j *Jobs) Names() []string {
	names := make([]string, 0, len(j.funcs))
	for name := range j.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Func returns the registered job function.
func (j *Jobs) Func(name string) (JobFunc, error) {
	fn, ok := j.funcs[name]
	if !ok {
		return nil, apperrors.NotFoundf("unknown job %q", name)
	}
	return fn, nil
}

// Run executes the named job. An unknown name is an error and is not logged
// as a run.
func (j *Jobs) Run(ctx context.Context, name, trigger string) (RunOutcome, error) {
	fn, err := j.Func(name)
	if err != nil {
		return RunOutcome{}, err
	}
	return j.runner.Run(ctx, name, trigger, fn), nil
}
