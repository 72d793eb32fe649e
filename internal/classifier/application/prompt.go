package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/synapse/internal/shared/contract"
)

// Vocabulary is the set of labels the model may choose from.
type Vocabulary struct {
	Categories []string
	EntryTypes []string
	Priorities []string
}

// DefaultVocabulary offers the built-in categories and every classifier kind.
func DefaultVocabulary() Vocabulary {
	priorities := make([]string, len(contract.Priorities))
	for i, p := range contract.Priorities {
		priorities[i] = string(p)
	}
	return Vocabulary{
		Categories: append([]string(nil), contract.DefaultCategorySlugs...),
		EntryTypes: contract.EntryTypeStrings(contract.ClassifierEntryTypes),
		Priorities: priorities,
	}
}

const promptTemplate = `You sort notes for a personal organizer. Today is %s (%s).

Classify the text below and answer with a single JSON object and nothing else:
{
  "category_slug": one of [%s],
  "entry_type": one of [%s],
  "metadata": {
    "summary": short summary,
    "tags": list of lowercase keywords,
    "emoji": one emoji that fits the text,
    "priority": one of [%s],
    "due_date": YYYY-MM-DD when the text names a date, otherwise omit
  }
}

Use entry_type "goal" only for a recurring target such as "run 3 times a week".
For goals also set metadata.title, metadata.target (a positive number),
metadata.unit and metadata.period_type ("weekly" or "monthly").
Resolve relative dates such as "tomorrow" against today's date.

Text:
%s`

// BuildPrompt renders the classification instructions for content.
func BuildPrompt(now time.Time, vocabulary Vocabulary, content string) string {
	return fmt.Sprintf(promptTemplate,
		now.Format("2006-01-02"),
		now.Weekday(),
		quoteList(vocabulary.Categories),
		quoteList(vocabulary.EntryTypes),
		quoteList(vocabulary.Priorities),
		content,
	)
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, ", ")
}
