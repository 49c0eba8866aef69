package distributor

import (
	"slices"

	"github.com/google/uuid"

	"github.com/stemsi/examprep-backend/internal/model"
)

// Section is one bank distributed independently of the others, such as
// "Section A" and "Section B" feeding the same exams.
type Section struct {
	Scope   string
	Bank    []model.ParsedQuestion
	Targets []Target
}

// DistributeSections runs Distribute for every section. All sections are
// checked for feasibility before any of them runs, so an infeasible section
// fails the whole call. Slices and errors keep section order.
func DistributeSections(sections []Section, opts Options) (*Assignment, error) {
	for _, s := range sections {
		need, err := totalQuota(s.Targets)
		if err != nil {
			return nil, err
		}
		if need > len(s.Bank) {
			return nil, &InsufficientBankError{Scope: s.Scope, Have: len(s.Bank), Need: need}
		}
	}

	out := &Assignment{}
	for _, s := range sections {
		a, err := distribute(s.Scope, s.Bank, s.Targets, opts)
		if err != nil {
			return nil, err
		}
		out.Slices = append(out.Slices, a.Slices...)
		out.Errors = append(out.Errors, a.Errors...)
		out.BankSize += a.BankSize
		out.Used += a.Used
	}
	return out, nil
}

type partKey struct {
	exam uuid.UUID
	part uuid.UUID
}

// Merged unions the slices of each exam part in section order. The Quota of
// a merged target is the number of questions it received, and Scope is empty
// for parts fed by more than one section.
func (a *Assignment) Merged() []Slice {
	var (
		out   []Slice
		index = make(map[partKey]int)
	)
	for _, s := range a.Slices {
		k := partKey{s.Target.ExamID, s.Target.PartID}
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, Slice{
				Scope:     s.Scope,
				Target:    Target{ExamID: k.exam, PartID: k.part},
				Questions: slices.Clone(s.Questions),
			})
			out[len(out)-1].Target.Quota = len(s.Questions)
			continue
		}
		out[i].Questions = append(out[i].Questions, s.Questions...)
		out[i].Target.Quota = len(out[i].Questions)
		if out[i].Scope != s.Scope {
			out[i].Scope = ""
		}
	}
	return out
}
