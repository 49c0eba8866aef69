package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stemsi/examprep-backend/internal/model"
)

// MemoryStore keeps banks, exams and activity logs in process memory. It
// backs STORE_DRIVER=memory and the service tests.
type MemoryStore struct {
	mu sync.RWMutex

	banks    map[string][]model.ParsedQuestion
	passages map[uuid.UUID]*model.ComprehensionPassage
	updated  map[string]time.Time

	exams         map[uuid.UUID]model.Exam
	parts         map[uuid.UUID]model.ExamPart
	examQuestions map[uuid.UUID][]model.ParsedQuestion

	logs []model.ActivityLog
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		banks:         make(map[string][]model.ParsedQuestion),
		passages:      make(map[uuid.UUID]*model.ComprehensionPassage),
		updated:       make(map[string]time.Time),
		exams:         make(map[uuid.UUID]model.Exam),
		parts:         make(map[uuid.UUID]model.ExamPart),
		examQuestions: make(map[uuid.UUID][]model.ParsedQuestion),
	}
}

// AddExam registers an exam and its parts. IDs left empty are generated.
func (s *MemoryStore) AddExam(exam model.Exam, parts ...model.ExamPart) (model.Exam, []model.ExamPart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exam.ID == uuid.Nil {
		exam.ID = uuid.New()
	}
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = time.Now()
	}
	s.exams[exam.ID] = exam

	for i := range parts {
		if parts[i].ID == uuid.Nil {
			parts[i].ID = uuid.New()
		}
		parts[i].ExamID = exam.ID
		s.parts[parts[i].ID] = parts[i]
	}
	return exam, parts
}

func (s *MemoryStore) CreateExam(_ context.Context, exam *model.Exam, parts []model.ExamPart) error {
	e, ps := s.AddExam(*exam, parts...)
	*exam = e
	copy(parts, ps)
	return nil
}

func (s *MemoryStore) BankCommit(_ context.Context, w BankWrite) (BankResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res BankResult
	if w.Replace {
		res.Removed = int64(len(s.banks[w.Scope]))
		s.clearLocked(w.Scope)
	}

	questions := slices.Clone(w.Questions)
	for _, p := range w.Passages {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.ScopeKey = w.Scope
		p.CreatedAt = time.Now()
		for i := range p.SubQuestions {
			id := p.ID
			p.SubQuestions[i].PassageID = &id
		}
		stored := *p
		stored.SubQuestions = nil
		s.passages[p.ID] = &stored
		questions = append(questions, p.SubQuestions...)
	}

	bank := s.banks[w.Scope]
	now := time.Now()
	for _, q := range questions {
		q = q.Clone()
		q.ScopeKey = w.Scope

		i := slices.IndexFunc(bank, func(e model.ParsedQuestion) bool { return e.Fingerprint == q.Fingerprint })
		if i >= 0 {
			q.ID = bank[i].ID
			q.SourceOrder = bank[i].SourceOrder
			q.CreatedAt = bank[i].CreatedAt
			bank[i] = q
			res.Updated++
			continue
		}
		q.ID = uuid.New()
		q.CreatedAt = now
		bank = append(bank, q)
		res.Inserted++
	}
	s.banks[w.Scope] = bank
	s.updated[w.Scope] = now

	if len(w.Passages) > 0 {
		s.prunePassagesLocked(w.Scope)
	}

	return res, nil
}

func (s *MemoryStore) BankList(_ context.Context, scope string) ([]model.ParsedQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneQuestions(s.banks[scope]), nil
}

func (s *MemoryStore) BankPage(_ context.Context, scope string, limit, offset int) ([]model.ParsedQuestion, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bank := s.banks[scope]
	start := min(offset, len(bank))
	end := min(start+limit, len(bank))
	return cloneQuestions(bank[start:end]), len(bank), nil
}

func (s *MemoryStore) BankClear(_ context.Context, scope string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.banks[scope]))
	s.clearLocked(scope)
	return n, nil
}

func (s *MemoryStore) clearLocked(scope string) {
	delete(s.banks, scope)
	delete(s.updated, scope)
	for id, p := range s.passages {
		if p.ScopeKey == scope {
			delete(s.passages, id)
		}
	}
}

func (s *MemoryStore) prunePassagesLocked(scope string) {
	used := make(map[uuid.UUID]bool)
	for _, q := range s.banks[scope] {
		if q.PassageID != nil {
			used[*q.PassageID] = true
		}
	}
	for id, p := range s.passages {
		if p.ScopeKey == scope && !used[id] {
			delete(s.passages, id)
		}
	}
}

func (s *MemoryStore) BankScopes(_ context.Context) ([]model.ScopeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ScopeSummary
	for scope, bank := range s.banks {
		if len(bank) == 0 {
			continue
		}
		passages := make(map[uuid.UUID]struct{})
		for _, q := range bank {
			if q.PassageID != nil {
				passages[*q.PassageID] = struct{}{}
			}
		}
		out = append(out, model.ScopeSummary{
			ScopeKey:      scope,
			QuestionCount: len(bank),
			PassageCount:  len(passages),
			UpdatedAt:     s.updated[scope],
		})
	}
	slices.SortFunc(out, func(a, b model.ScopeSummary) int { return cmp.Compare(a.ScopeKey, b.ScopeKey) })
	return out, nil
}

func (s *MemoryStore) GetExam(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.exams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *MemoryStore) GetPart(_ context.Context, examID, partID uuid.UUID) (*model.ExamPart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parts[partID]
	if !ok || p.ExamID != examID {
		return nil, ErrNotFound
	}
	p.QuestionCount = len(s.examQuestions[partID])
	return &p, nil
}

func (s *MemoryStore) ExamQuestionsList(_ context.Context, examID, partID uuid.UUID) ([]model.ParsedQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.parts[partID]; !ok || p.ExamID != examID {
		return nil, nil
	}
	return cloneQuestions(s.examQuestions[partID]), nil
}

func (s *MemoryStore) ExamQuestionsReplace(_ context.Context, examID, partID uuid.UUID, qs []model.ParsedQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.parts[partID]; !ok || p.ExamID != examID {
		return ErrNotFound
	}
	copies := cloneQuestions(qs)
	for i := range copies {
		copies[i].ID = uuid.New()
		copies[i].SourceOrder = i
	}
	s.examQuestions[partID] = copies
	return nil
}

func (s *MemoryStore) InsertActivityLogs(_ context.Context, logs []model.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, logs...)
	return nil
}

func (s *MemoryStore) ListActivityLogs(_ context.Context, limit int) ([]model.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ActivityLog, 0, min(limit, len(s.logs)))
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.logs[i])
	}
	return out, nil
}

func cloneQuestions(qs []model.ParsedQuestion) []model.ParsedQuestion {
	if qs == nil {
		return nil
	}
	out := make([]model.ParsedQuestion, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
