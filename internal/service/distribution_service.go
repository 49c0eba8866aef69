package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/distributor"
	"github.com/stemsi/examprep-backend/internal/model"
	"github.com/stemsi/examprep-backend/internal/repository"
)

// SectionInput distributes one bank scope over its targets.
type SectionInput struct {
	Scope   string
	Targets []distributor.Target
}

// DistributeInput is one distribution run. Sections are independent banks
// (Section A, Section B) that may feed the same exam parts.
type DistributeInput struct {
	Sections []SectionInput
}

// DistributionService copies shuffled, non-overlapping slices of bank scopes
// into exam parts.
type DistributionService struct {
	banks    repository.BankStore
	exams    repository.ExamStore
	locker   ScopeLocker
	reports  ReportCache
	activity ActivityPublisher
	log      zerolog.Logger

	// shuffle overrides the distributor's random source in tests.
	shuffle func(n int, swap func(i, j int))
}

// NewDistributionService creates a new DistributionService.
func NewDistributionService(
	banks repository.BankStore,
	exams repository.ExamStore,
	locker ScopeLocker,
	reports ReportCache,
	activity ActivityPublisher,
	log zerolog.Logger,
) *DistributionService {
	return &DistributionService{
		banks:    banks,
		exams:    exams,
		locker:   locker,
		reports:  reports,
		activity: activity,
		log:      log.With().Str("component", "distribution_service").Logger(),
	}
}

type targetInfo struct {
	exam *model.Exam
	part *model.ExamPart
	err  error
}

// Distribute locks every scope named by the run, checks that all sections
// are feasible, then replaces each target part's questions with its slice.
// An infeasible section fails the call before anything is written. A target
// whose exam or part is missing, or whose write fails, is reported in
// Errors while the others proceed.
func (s *DistributionService) Distribute(ctx context.Context, in DistributeInput) (*model.DistributionReport, error) {
	if len(in.Sections) == 0 {
		return nil, fmt.Errorf("%w: no sections", distributor.ErrInvalidQuota)
	}

	// A scope listed twice would hand the same questions to two sections.
	scopes := make([]string, len(in.Sections))
	for i, sec := range in.Sections {
		scope, err := NormalizeScope(sec.Scope)
		if err != nil {
			return nil, err
		}
		if slices.Contains(scopes[:i], scope) {
			return nil, fmt.Errorf("%w: %q listed twice", ErrInvalidScope, scope)
		}
		scopes[i] = scope
	}

	release, err := acquireAll(ctx, s.locker, scopes)
	if err != nil {
		return nil, err
	}
	defer release()

	sections := make([]distributor.Section, len(in.Sections))
	for i, sec := range in.Sections {
		bank, err := s.banks.BankList(ctx, scopes[i])
		if err != nil {
			return nil, fmt.Errorf("load bank %s: %w", scopes[i], err)
		}
		sections[i] = distributor.Section{Scope: scopes[i], Bank: bank, Targets: sec.Targets}
	}

	targets := make(map[[2]uuid.UUID]*targetInfo)
	lookup := func(t distributor.Target) *targetInfo {
		key := [2]uuid.UUID{t.ExamID, t.PartID}
		if info, ok := targets[key]; ok {
			return info
		}
		info := s.resolveTarget(ctx, t)
		targets[key] = info
		return info
	}

	a, err := distributor.DistributeSections(sections, distributor.Options{
		Shuffle: s.shuffle,
		Check:   func(t distributor.Target) error { return lookup(t).err },
	})
	if err != nil {
		return nil, err
	}

	report := &model.DistributionReport{
		Scopes:        scopes,
		BankSize:      a.BankSize,
		Used:          a.Used,
		Targets:       []model.TargetSummary{},
		Errors:        []model.TargetFailure{},
		DistributedAt: time.Now(),
	}
	for _, te := range a.Errors {
		report.Errors = append(report.Errors, model.TargetFailure{
			Scope:  te.Scope,
			ExamID: te.Target.ExamID,
			PartID: te.Target.PartID,
			Reason: te.Err.Error(),
		})
	}

	for _, slice := range a.Merged() {
		t := slice.Target
		info := lookup(t)
		if err := s.exams.ExamQuestionsReplace(ctx, t.ExamID, t.PartID, slice.Questions); err != nil {
			s.log.Warn().Err(err).
				Str("exam_id", t.ExamID.String()).
				Str("part_id", t.PartID.String()).
				Msg("Failed to write distributed questions")
			report.Errors = append(report.Errors, model.TargetFailure{
				Scope:  slice.Scope,
				ExamID: t.ExamID,
				PartID: t.PartID,
				Reason: fmt.Sprintf("write failed: %v", err),
			})
			continue
		}
		report.Targets = append(report.Targets, model.TargetSummary{
			ExamID:         t.ExamID,
			PartID:         t.PartID,
			ExamTitle:      info.exam.Title,
			PartName:       info.part.Name,
			QuestionsAdded: len(slice.Questions),
		})
	}

	for _, scope := range scopes {
		if err := s.reports.Save(ctx, scope, report); err != nil {
			s.log.Warn().Err(err).Str("scope", scope).Msg("Failed to cache distribution report")
		}
	}

	s.log.Info().
		Strs("scopes", scopes).
		Int("bank_size", report.BankSize).
		Int("used", report.Used).
		Int("targets", len(report.Targets)).
		Int("errors", len(report.Errors)).
		Msg("Distribution completed")

	s.activity.Publish(ctx, newActivity(model.ActivityDistribution, strings.Join(scopes, ","),
		fmt.Sprintf("distributed %d of %d questions to %d parts, %d errors",
			report.Used, report.BankSize, len(report.Targets), len(report.Errors)),
		report))

	return report, nil
}

// resolveTarget loads the exam and part a target points at.
func (s *DistributionService) resolveTarget(ctx context.Context, t distributor.Target) *targetInfo {
	exam, err := s.exams.GetExam(ctx, t.ExamID)
	if errors.Is(err, repository.ErrNotFound) {
		return &targetInfo{err: ErrExamNotFound}
	}
	if err != nil {
		return &targetInfo{err: fmt.Errorf("get exam: %w", err)}
	}
	part, err := s.exams.GetPart(ctx, t.ExamID, t.PartID)
	if errors.Is(err, repository.ErrNotFound) {
		return &targetInfo{err: ErrPartNotFound}
	}
	if err != nil {
		return &targetInfo{err: fmt.Errorf("get part: %w", err)}
	}
	return &targetInfo{exam: exam, part: part}
}

// LastReport returns the cached report of the scope's most recent run.
func (s *DistributionService) LastReport(ctx context.Context, scope string) (*model.DistributionReport, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return nil, err
	}
	return s.reports.Load(ctx, scope)
}
