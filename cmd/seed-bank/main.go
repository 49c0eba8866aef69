package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stemsi/examprep-backend/internal/config"
	"github.com/stemsi/examprep-backend/internal/database"
	"github.com/stemsi/examprep-backend/internal/logger"
	"github.com/stemsi/examprep-backend/internal/model"
	"github.com/stemsi/examprep-backend/internal/repository"
	"github.com/stemsi/examprep-backend/internal/service"
)

// seed-bank imports a text file into a bank scope, and can register an exam
// with parts to distribute into.
//
//	seed-bank -scope polity -file polity.txt
//	seed-bank -scope rc-english -kind passage -file passages.txt -mode replace
//	seed-bank -exam "Mock Test 1" -parts "Section A,Section B"
//	seed-bank -scope reasoning -file series.txt -preview 10
func main() {
	var (
		scope    = flag.String("scope", "", "Bank scope to import into")
		file     = flag.String("file", "", "Text file with pasted questions or passages")
		mode     = flag.String("mode", "append", "append or replace")
		kind     = flag.String("kind", "question", "question or passage")
		subQs    = flag.Int("sub-questions", 0, "Sub-questions per passage (0 uses PASSAGE_SUB_QUESTIONS)")
		examName = flag.String("exam", "", "Create an exam with this title")
		parts    = flag.String("parts", "Section A", "Comma-separated part names for -exam")
		preview  = flag.Int("preview", 0, "Print the first n bank questions with their answer keys")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if cfg.StoreDriver != config.StoreDriverPostgres {
		log.Fatal().Msg("seed-bank writes to PostgreSQL; set STORE_DRIVER=postgres")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	examRepo := repository.NewExamRepository(pool)

	if *examName != "" {
		examService := service.NewExamService(examRepo, log)
		exam, created, err := examService.Create(ctx, model.CreateExamRequest{Title: *examName, Parts: splitNames(*parts)})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create exam")
		}
		fmt.Printf("Created exam %q (%s)\n", exam.Title, exam.ID)
		for _, p := range created {
			fmt.Printf("  part %-20s %s\n", p.Name, p.ID)
		}
	}

	if *scope == "" && *file == "" {
		return
	}
	if *scope == "" || *file == "" {
		log.Fatal().Msg("-scope and -file are required together")
	}

	text, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read input")
	}

	// Seeding runs alone, so an in-process lock is enough.
	importService := service.NewImportService(
		repository.NewBankRepository(pool),
		examRepo,
		service.NewLocalScopeLocker(),
		service.NewStoreActivityPublisher(repository.NewActivityLogRepository(pool), log),
		cfg,
		log,
	)

	report, err := importService.ImportBatch(ctx, service.ImportInput{
		Scope:            *scope,
		Text:             string(text),
		Mode:             model.ImportMode(*mode),
		Kind:             model.ImportKind(*kind),
		SubQuestionCount: *subQs,
	})
	if report != nil {
		printReport(report)
	}
	if errors.Is(err, service.ErrEmptyImport) {
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	if *preview > 0 {
		questions, _, err := importService.ListBank(ctx, *scope, 1, *preview)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list bank")
		}
		printPreview(questions)
	}
}

func splitNames(raw string) []string {
	var names []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func printReport(r *model.ImportReport) {
	fmt.Printf("\n=== Import into %s (%s, %s) ===\n", r.ScopeKey, r.Mode, r.Kind)
	fmt.Printf("Blocks: %d  Parsed: %d  New: %d  Updated: %d  Removed: %d  Failed: %d\n",
		r.Total, r.Parsed, r.Imported, r.Updated, r.Removed, r.Failed)
	if r.PassagesImported > 0 {
		fmt.Printf("Passages: %d  Extra sub-questions ignored: %d\n", r.PassagesImported, r.ExtraQuestionsIgnored)
	}
	for _, f := range r.Failures {
		fmt.Printf("  #%d %-28s %s\n", f.Index+1, f.Reason, f.Excerpt)
	}
}

func printPreview(questions []model.ParsedQuestion) {
	fmt.Println()
	for i, q := range questions {
		fmt.Printf("%3d. %s\n", i+1, excerptLine(q.QuestionTextEn))
		for j, o := range q.OptionsEn {
			fmt.Printf("     %c. %s\n", rune('A'+j), o)
		}
		fmt.Printf("     Ans: %s\n", q.CorrectLetter())
	}
}

func excerptLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	if r := []rune(s); len(r) > 80 {
		return string(r[:77]) + "..."
	}
	return s
}
