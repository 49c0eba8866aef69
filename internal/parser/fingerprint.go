package parser

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/stemsi/examprep-backend/internal/model"
)

// Fingerprint identifies a question by its English content. Case and spacing
// differences do not change it, so re-pasting the same question into a scope
// updates the stored entry instead of duplicating it.
func Fingerprint(q *model.ParsedQuestion) string {
	d := xxhash.New()
	d.WriteString(strings.ToLower(collapseSpaces(q.QuestionTextEn)))
	for _, o := range q.OptionsEn {
		d.WriteString("\x1f")
		d.WriteString(strings.ToLower(collapseSpaces(o)))
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
