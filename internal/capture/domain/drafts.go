package domain

import (
	"maps"
	"math"
	"strconv"
	"strings"
	"time"

	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
)

// Kind tells which path a capture took.
type Kind string

const (
	KindEntry Kind = "entry"
	KindGoal  Kind = "goal"
)

// KindOf picks the path for a classification.
func KindOf(c classifierDomain.Classification) Kind {
	if contract.IsGoal(c.EntryType()) {
		return KindGoal
	}
	return KindEntry
}

// GoalDraft is the goal a "goal" classification describes.
type GoalDraft struct {
	Title      string
	Emoji      string
	Target     int
	Unit       string
	PeriodType contract.PeriodType
}

// NewGoalDraft reads the goal fields from the classification metadata. The
// title falls back to the summary and then to the captured text; a missing or
// non-positive target becomes 1; the period falls back to weekly.
func NewGoalDraft(content string, c classifierDomain.Classification) GoalDraft {
	meta := c.Metadata()
	title := firstNonBlank(stringOf(meta[contract.MetaTitle]), stringOf(meta[contract.MetaSummary]), content)

	target := intOf(meta[contract.MetaTarget])
	if target <= 0 {
		target = 1
	}

	return GoalDraft{
		Title:      title,
		Emoji:      c.Emoji(),
		Target:     target,
		Unit:       strings.TrimSpace(stringOf(meta[contract.MetaUnit])),
		PeriodType: contract.NormalizePeriodType(stringOf(meta[contract.MetaPeriodType])),
	}
}

// CompanionMetadata is the metadata of the history entry written next to a
// new goal: the classification metadata plus the goal trigger flag and link.
func CompanionMetadata(metadata map[string]any, goalID string) map[string]any {
	out := maps.Clone(metadata)
	if out == nil {
		out = map[string]any{}
	}
	out[contract.MetaGoalTrigger] = true
	out[contract.MetaGoalID] = goalID
	return out
}

// EntryDraft is the entry an ordinary classification describes. Metadata is
// the classification's bag, unchanged.
type EntryDraft struct {
	CategorySlug string
	SubjectSlug  string
	Type         contract.EntryType
	Metadata     map[string]any
	Tags         []string
	Priority     contract.Priority
	DueDate      *time.Time
}

// NewEntryDraft projects a classification onto an entry. The category
// defaults to "ideas" and unknown kinds become notes.
func NewEntryDraft(c classifierDomain.Classification) EntryDraft {
	meta := c.Metadata()

	slug := contract.NormalizeSlug(c.CategorySlug())
	if slug == "" {
		slug = contract.DefaultCategorySlug
	}

	return EntryDraft{
		CategorySlug: slug,
		SubjectSlug:  contract.NormalizeSlug(stringOf(meta[contract.MetaSubject])),
		Type:         contract.NormalizeEntryType(c.EntryType()),
		Metadata:     meta,
		Tags:         stringsOf(meta[contract.MetaTags]),
		Priority:     contract.NormalizePriority(stringOf(meta[contract.MetaPriority])),
		DueDate:      dateOf(meta[contract.MetaDueDate]),
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

// intOf accepts JSON numbers and numeric strings ("3", "2.5").
func intOf(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		return n
	case int64:
		return int(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
		return 0
	}
	return int(math.Round(f))
}

func stringsOf(v any) []string {
	var raw []string
	switch list := v.(type) {
	case []string:
		raw = list
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(list, ",")
	default:
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// dateOf reads a YYYY-MM-DD or RFC 3339 date; anything else is ignored.
func dateOf(v any) *time.Time {
	s := strings.TrimSpace(stringOf(v))
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
