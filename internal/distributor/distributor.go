// Package distributor splits a question bank across exam parts. Each run
// shuffles the bank once and hands every target its quota from a single pass
// over the shuffled order, so no question reaches two targets.
package distributor

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/stemsi/examprep-backend/internal/model"
)

var (
	ErrInsufficientBank = errors.New("insufficient-bank")
	ErrInvalidQuota     = errors.New("invalid quota")
)

// InsufficientBankError reports a run whose quotas exceed the bank.
type InsufficientBankError struct {
	Scope string
	Have  int
	Need  int
}

func (e *InsufficientBankError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("insufficient-bank: scope %q has %d questions, targets need %d", e.Scope, e.Have, e.Need)
	}
	return fmt.Sprintf("insufficient-bank: have %d questions, targets need %d", e.Have, e.Need)
}

func (e *InsufficientBankError) Unwrap() error { return ErrInsufficientBank }

// Target is one exam part and the number of questions it receives.
type Target struct {
	ExamID uuid.UUID
	PartID uuid.UUID
	Quota  int
}

// TargetError records a target that was skipped.
type TargetError struct {
	Scope  string
	Target Target
	Err    error
}

func (e TargetError) Error() string {
	return fmt.Sprintf("exam %s part %s: %v", e.Target.ExamID, e.Target.PartID, e.Err)
}

// Slice is the ordered set of questions assigned to one target.
type Slice struct {
	Scope     string
	Target    Target
	Questions []model.ParsedQuestion
}

// Assignment is the outcome of one distribution run.
type Assignment struct {
	Slices   []Slice
	Errors   []TargetError
	BankSize int
	Used     int
}

// Options customizes a run. The zero value is ready to use.
type Options struct {
	// Shuffle permutes n elements through swap. Defaults to math/rand/v2.Shuffle.
	Shuffle func(n int, swap func(i, j int))
	// Check validates a target before it receives questions. A target that
	// fails is recorded in Assignment.Errors and consumes nothing.
	Check func(Target) error
}

func (o Options) shuffle() func(int, func(i, j int)) {
	if o.Shuffle != nil {
		return o.Shuffle
	}
	return rand.Shuffle
}

// Distribute assigns quota-sized, non-overlapping slices of a shuffled copy
// of bank to targets, in target order. If the quotas add up to more than the
// bank holds, the run fails with *InsufficientBankError and assigns nothing.
// Returned questions are independent copies of the bank entries.
func Distribute(bank []model.ParsedQuestion, targets []Target, opts Options) (*Assignment, error) {
	return distribute("", bank, targets, opts)
}

func distribute(scope string, bank []model.ParsedQuestion, targets []Target, opts Options) (*Assignment, error) {
	need, err := totalQuota(targets)
	if err != nil {
		return nil, err
	}
	if need > len(bank) {
		return nil, &InsufficientBankError{Scope: scope, Have: len(bank), Need: need}
	}

	order := make([]int, len(bank))
	for i := range order {
		order[i] = i
	}
	opts.shuffle()(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	a := &Assignment{BankSize: len(bank)}
	pos := 0
	for _, t := range targets {
		if opts.Check != nil {
			if err := opts.Check(t); err != nil {
				a.Errors = append(a.Errors, TargetError{Scope: scope, Target: t, Err: err})
				continue
			}
		}

		qs := make([]model.ParsedQuestion, t.Quota)
		for i, idx := range order[pos : pos+t.Quota] {
			qs[i] = bank[idx].Clone()
		}
		pos += t.Quota
		a.Slices = append(a.Slices, Slice{Scope: scope, Target: t, Questions: qs})
	}
	a.Used = pos

	return a, nil
}

func totalQuota(targets []Target) (int, error) {
	need := 0
	for _, t := range targets {
		if t.Quota < 0 {
			return 0, fmt.Errorf("%w: exam %s part %s has quota %d", ErrInvalidQuota, t.ExamID, t.PartID, t.Quota)
		}
		need += t.Quota
	}
	return need, nil
}
