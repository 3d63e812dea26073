package healthscan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/netguru/dotty-dns/internal/model"
	"github.com/netguru/dotty-dns/internal/planner"
	"github.com/netguru/dotty-dns/pkg/errors"
)

type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

func (l Level) valid() bool {
	return l == LevelHigh || l == LevelMedium || l == LevelLow
}

type Category string

const (
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
	CategoryConfiguration Category = "configuration"
)

func (c Category) valid() bool {
	return c == CategorySecurity || c == CategoryPerformance || c == CategoryConfiguration
}

// Issue is one problem found in a zone.
type Issue struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Level    `json:"severity"`
	Category    Category `json:"category"`
	Fix         string   `json:"fix"`
}

// Recommendation is an optional improvement for a zone.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    Level  `json:"priority"`
}

// Report is the outcome of a health scan.
type Report struct {
	Success         bool             `json:"success"`
	Domain          string           `json:"domain"`
	Records         []model.Record   `json:"records"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
	ScanDate        time.Time        `json:"scanDate"`
}

type analysis struct {
	Issues          *[]Issue          `json:"issues"`
	Recommendations *[]Recommendation `json:"recommendations"`
}

// ParseAnalysis validates raw model output as a scan analysis.
func ParseAnalysis(raw string) ([]Issue, []Recommendation, error) {
	obj, ok := planner.ExtractJSONObject(raw)
	if !ok {
		return nil, nil, errors.ModelOutput("model response contains no JSON object", nil)
	}
	var a analysis
	if err := json.NewDecoder(strings.NewReader(obj)).Decode(&a); err != nil {
		return nil, nil, errors.ModelOutput("model response is not a valid scan analysis", err)
	}
	if a.Issues == nil || a.Recommendations == nil {
		return nil, nil, errors.ModelOutput("scan analysis must contain issues and recommendations", nil)
	}

	issues := make([]Issue, 0, len(*a.Issues))
	for i, is := range *a.Issues {
		is.Severity = Level(strings.ToLower(strings.TrimSpace(string(is.Severity))))
		is.Category = Category(strings.ToLower(strings.TrimSpace(string(is.Category))))
		switch {
		case strings.TrimSpace(is.Title) == "":
			return nil, nil, errors.ModelOutput(fmt.Sprintf("issue %d has no title", i), nil)
		case !is.Severity.valid():
			return nil, nil, errors.ModelOutput(fmt.Sprintf("issue %d has invalid severity %q", i, is.Severity), nil)
		case !is.Category.valid():
			return nil, nil, errors.ModelOutput(fmt.Sprintf("issue %d has invalid category %q", i, is.Category), nil)
		}
		issues = append(issues, is)
	}

	recs := make([]Recommendation, 0, len(*a.Recommendations))
	for i, r := range *a.Recommendations {
		r.Priority = Level(strings.ToLower(strings.TrimSpace(string(r.Priority))))
		switch {
		case strings.TrimSpace(r.Title) == "":
			return nil, nil, errors.ModelOutput(fmt.Sprintf("recommendation %d has no title", i), nil)
		case !r.Priority.valid():
			return nil, nil, errors.ModelOutput(fmt.Sprintf("recommendation %d has invalid priority %q", i, r.Priority), nil)
		}
		recs = append(recs, r)
	}
	return issues, recs, nil
}
