package parser

import "strings"

// blockState tracks what the block being assembled already contains.
type blockState struct {
	answered   bool
	explaining bool
	hasOptions bool
}

// startsNewBlock reports whether line begins a new block even though no
// blank line separates it from the current one.
func (st *blockState) startsNewBlock(line string) bool {
	if isQuestionStart(line) && (st.answered || st.hasOptions) {
		return true
	}
	return st.answered && !st.explaining && !isExplanationLine(line) && !isStandaloneAnswerLine(line)
}

func (st *blockState) observe(line string) {
	if isAnswerLine(line) {
		st.answered = true
	}
	if st.answered && explanationMarkerRe.MatchString(line) {
		st.explaining = true
	}
	if !st.hasOptions && hasOptionMarkers(line) {
		st.hasOptions = true
	}
}

// Tokenize splits pasted text into candidate question blocks.
//
// Blocks are separated by blank lines. Sloppy pastes without blank lines are
// still split when a numbered question follows a block that already has its
// options or answer, and when a line other than an explanation or a second
// answer line (an "उत्तर: ख" rendering of "Ans: B") follows an answer.
// Blocks are trimmed and empty blocks are dropped.
func Tokenize(raw string) []string {
	lines := strings.Split(Normalize(raw), "\n")

	var (
		blocks []string
		cur    []string
		st     blockState
	)
	flush := func() {
		if b := strings.TrimSpace(strings.Join(cur, "\n")); b != "" {
			blocks = append(blocks, b)
		}
		cur = cur[:0]
		st = blockState{}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if len(cur) > 0 && st.startsNewBlock(trimmed) {
			flush()
		}
		cur = append(cur, strings.TrimRight(line, " "))
		st.observe(trimmed)
	}
	flush()

	return blocks
}
