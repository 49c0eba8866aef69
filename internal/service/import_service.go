package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/config"
	"github.com/stemsi/examprep-backend/internal/model"
	"github.com/stemsi/examprep-backend/internal/parser"
	"github.com/stemsi/examprep-backend/internal/repository"
	"github.com/stemsi/examprep-backend/internal/response"
)

// Domain Errors
var (
	ErrEmptyImport    = errors.New("no question could be parsed")
	ErrInvalidScope   = errors.New("invalid scope key")
	ErrImportTooLarge = errors.New("import text too large")
	ErrExamNotFound   = errors.New("exam not found")
	ErrPartNotFound   = errors.New("exam part not found")
)

const maxScopeLen = 255

// NormalizeScope trims a scope key and checks its length.
func NormalizeScope(scope string) (string, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" || utf8.RuneCountInString(scope) > maxScopeLen {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	return scope, nil
}

// ImportInput is one paste destined for a bank scope.
type ImportInput struct {
	Scope string
	Text  string
	Mode  model.ImportMode
	Kind  model.ImportKind
	// SubQuestionCount is the exact number of sub-questions a passage must
	// carry. Zero uses the configured default.
	SubQuestionCount int
	Marks            *float64
	NegativeMarks    *float64
}

// ExamImportInput is one paste written straight into an exam part.
type ExamImportInput struct {
	ExamID        uuid.UUID
	PartID        uuid.UUID
	Text          string
	Mode          model.ImportMode
	Marks         *float64
	NegativeMarks *float64
}

// ImportService parses pasted text and commits it to banks or exam parts.
type ImportService struct {
	banks    repository.BankStore
	exams    repository.ExamStore
	locker   ScopeLocker
	activity ActivityPublisher
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(
	banks repository.BankStore,
	exams repository.ExamStore,
	locker ScopeLocker,
	activity ActivityPublisher,
	cfg *config.Config,
	log zerolog.Logger,
) *ImportService {
	return &ImportService{
		banks:    banks,
		exams:    exams,
		locker:   locker,
		activity: activity,
		cfg:      cfg,
		log:      log.With().Str("component", "import_service").Logger(),
	}
}

func (s *ImportService) parserOptions(scope string, marks, negative *float64) parser.Options {
	opts := parser.Options{
		Scope:         scope,
		Marks:         s.cfg.DefaultMarks,
		NegativeMarks: s.cfg.DefaultNegativeMarks,
	}
	if marks != nil {
		opts.Marks = *marks
	}
	if negative != nil {
		opts.NegativeMarks = *negative
	}
	return opts
}

func (s *ImportService) checkSize(text string) error {
	if s.cfg.MaxImportBytes > 0 && int64(len(text)) > s.cfg.MaxImportBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrImportTooLarge, len(text), s.cfg.MaxImportBytes)
	}
	return nil
}

// ImportBatch parses text completely, then commits every parsed question to
// the bank scope in one write. In replace mode the scope is cleared first;
// in append mode existing entries stay and re-imported ones are updated in
// place. Blocks that fail to parse are itemized in the report.
//
// When nothing parses the bank is left untouched and the report is returned
// together with ErrEmptyImport.
func (s *ImportService) ImportBatch(ctx context.Context, in ImportInput) (*model.ImportReport, error) {
	scope, err := NormalizeScope(in.Scope)
	if err != nil {
		return nil, err
	}
	if err := s.checkSize(in.Text); err != nil {
		return nil, err
	}
	if in.Mode == "" {
		in.Mode = model.ImportModeAppend
	}
	if in.Kind == "" {
		in.Kind = model.ImportKindQuestion
	}

	report := &model.ImportReport{
		ScopeKey: scope,
		Mode:     in.Mode,
		Kind:     in.Kind,
		Failures: []model.ImportFailure{},
	}
	write := repository.BankWrite{Scope: scope, Replace: in.Mode == model.ImportModeReplace}
	opts := s.parserOptions(scope, in.Marks, in.NegativeMarks)

	switch in.Kind {
	case model.ImportKindPassage:
		expected := in.SubQuestionCount
		if expected <= 0 {
			expected = s.cfg.PassageSubQuestions
		}
		chunks := parser.SplitPassages(in.Text)
		report.Total = len(chunks)
		for i, chunk := range chunks {
			p, err := parser.ParsePassage(chunk, expected, opts)
			if err != nil {
				report.Failures = append(report.Failures, importFailure(i, parser.Excerpt(chunk), err))
				continue
			}
			write.Passages = append(write.Passages, p)
			report.Parsed += len(p.SubQuestions)
			report.ExtraQuestionsIgnored += p.ExtraQuestionsIgnored
		}
		report.PassagesImported = len(write.Passages)

	default:
		res := parser.ParseText(in.Text, opts)
		report.Total = res.Total
		report.Parsed = len(res.Questions)
		for _, bf := range res.Failures {
			report.Failures = append(report.Failures, importFailure(bf.Index, bf.Excerpt, bf.Failure))
		}
		write.Questions = res.Questions
	}
	report.Failed = len(report.Failures)

	if report.Parsed == 0 {
		return report, ErrEmptyImport
	}

	release, err := s.locker.Acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := s.banks.BankCommit(ctx, write)
	if err != nil {
		return nil, fmt.Errorf("commit bank: %w", err)
	}
	report.Imported = res.Inserted
	report.Updated = res.Updated
	report.Removed = res.Removed

	s.log.Info().
		Str("scope", scope).
		Str("mode", string(in.Mode)).
		Str("kind", string(in.Kind)).
		Int("imported", report.Imported).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Msg("Bank import committed")

	s.activity.Publish(ctx, newActivity(model.ActivityImport, scope,
		fmt.Sprintf("%s import: %d new, %d updated, %d failed", in.Mode, report.Imported, report.Updated, report.Failed),
		report))

	return report, nil
}

// ImportIntoExam parses text and writes the questions straight into an exam
// part, bypassing the bank. At most cfg.ImportExamCap parsed questions are
// kept per call. Append adds them after the part's current questions,
// replace substitutes them.
func (s *ImportService) ImportIntoExam(ctx context.Context, in ExamImportInput) (*model.ImportReport, error) {
	if err := s.checkSize(in.Text); err != nil {
		return nil, err
	}
	if in.Mode == "" {
		in.Mode = model.ImportModeAppend
	}

	exam, err := s.exams.GetExam(ctx, in.ExamID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	part, err := s.exams.GetPart(ctx, in.ExamID, in.PartID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}

	scope := examScope(exam.ID, part.ID)
	res := parser.ParseText(in.Text, s.parserOptions(scope, in.Marks, in.NegativeMarks))

	report := &model.ImportReport{
		ExamID:   &exam.ID,
		PartID:   &part.ID,
		Mode:     in.Mode,
		Kind:     model.ImportKindQuestion,
		Total:    res.Total,
		Parsed:   len(res.Questions),
		Failed:   len(res.Failures),
		Failures: make([]model.ImportFailure, 0, len(res.Failures)),
	}
	for _, bf := range res.Failures {
		report.Failures = append(report.Failures, importFailure(bf.Index, bf.Excerpt, bf.Failure))
	}
	if report.Parsed == 0 {
		return report, ErrEmptyImport
	}

	questions := res.Questions
	if limit := s.cfg.ImportExamCap; limit > 0 && len(questions) > limit {
		report.WasLimited = true
		report.OriginalParsed = len(questions)
		questions = questions[:limit]
	}
	report.Imported = len(questions)

	release, err := s.locker.Acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer release()

	if in.Mode == model.ImportModeAppend {
		existing, err := s.exams.ExamQuestionsList(ctx, exam.ID, part.ID)
		if err != nil {
			return nil, fmt.Errorf("list part questions: %w", err)
		}
		questions = append(existing, questions...)
	} else {
		report.Removed = int64(part.QuestionCount)
	}

	if err := s.exams.ExamQuestionsReplace(ctx, exam.ID, part.ID, questions); err != nil {
		return nil, fmt.Errorf("write part questions: %w", err)
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("part_id", part.ID.String()).
		Str("mode", string(in.Mode)).
		Int("imported", report.Imported).
		Bool("was_limited", report.WasLimited).
		Msg("Exam import committed")

	s.activity.Publish(ctx, newActivity(model.ActivityExamImport, scope,
		fmt.Sprintf("%s import into %s / %s: %d questions", in.Mode, exam.Title, part.Name, report.Imported),
		report))

	return report, nil
}

// ListBank returns one page of a scope's questions in import order.
func (s *ImportService) ListBank(ctx context.Context, scope string, page, perPage int) ([]model.ParsedQuestion, *response.Pagination, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return nil, nil, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	questions, total, err := s.banks.BankPage(ctx, scope, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if questions == nil {
		questions = []model.ParsedQuestion{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return questions, pagination, nil
}

// ClearBank removes every question and passage of a scope. Exam parts that
// already received copies keep them.
func (s *ImportService) ClearBank(ctx context.Context, scope string) (int64, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return 0, err
	}

	release, err := s.locker.Acquire(ctx, scope)
	if err != nil {
		return 0, err
	}
	defer release()

	removed, err := s.banks.BankClear(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("clear bank: %w", err)
	}

	s.log.Info().Str("scope", scope).Int64("removed", removed).Msg("Bank cleared")
	s.activity.Publish(ctx, newActivity(model.ActivityClear, scope,
		fmt.Sprintf("cleared %d questions", removed), nil))

	return removed, nil
}

// ListScopes returns every non-empty bank scope.
func (s *ImportService) ListScopes(ctx context.Context) ([]model.ScopeSummary, error) {
	scopes, err := s.banks.BankScopes(ctx)
	if err != nil {
		return nil, err
	}
	if scopes == nil {
		scopes = []model.ScopeSummary{}
	}
	return scopes, nil
}

// examScope is the lock and fingerprint scope of a direct exam import.
func examScope(examID, partID uuid.UUID) string {
	return fmt.Sprintf("exam:%s:%s", examID, partID)
}

func importFailure(index int, excerpt string, err error) model.ImportFailure {
	out := model.ImportFailure{Index: index, Excerpt: excerpt, Reason: err.Error()}
	var f *parser.Failure
	if errors.As(err, &f) {
		out.Reason = string(f.Reason)
		out.Detail = f.Detail
		out.Found = f.Found
		out.Required = f.Required
	}
	return out
}
