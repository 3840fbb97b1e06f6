package curriculum

import (
	"strings"
	"time"
)

// Status tells API consumers whether a curriculum came out of the model or
// is the degraded stub substituted after a failed generation.
type Status string

const (
	StatusGenerated Status = "generated"
	StatusFallback  Status = "fallback"
)

type CanonicalSource struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	URL          string  `json:"url"`
	Steward      string  `json:"steward"`
	Type         string  `json:"type"`
	Confidence   float64 `json:"confidence"`
	ShortSummary string  `json:"short_summary"`
}

type SourceReference struct {
	SourceID      string `json:"source_id"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	ShortEvidence string `json:"short_evidence"`
}

type LearningResource struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Type           string  `json:"type"`
	AuthorityScore float64 `json:"authority_score"`
	ShortSummary   string  `json:"short_summary"`
}

type Topic struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Order             int                `json:"order"`
	EstimatedHours    int                `json:"estimated_hours"`
	Prerequisites     []string           `json:"prerequisites"`
	Outcomes          []string           `json:"outcomes"`
	ExampleExercises  []string           `json:"example_exercises"`
	HelpfulReferences []SourceReference  `json:"helpful_references"`
	Explainability    []string           `json:"explainability"`
	Subtopics         []Topic            `json:"subtopics"`
	LearningResources []LearningResource `json:"learning_resources"`
}

type LearningLevel struct {
	Level          string  `json:"level"`
	EstimatedHours int     `json:"estimated_hours"`
	Topics         []Topic `json:"topics"`
}

type PracticeProject struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Difficulty     string   `json:"difficulty"`
	EstimatedHours int      `json:"estimated_hours"`
	Outcomes       []string `json:"outcomes"`
}

type Curriculum struct {
	Language            string            `json:"language"`
	Headline            string            `json:"headline,omitempty"`
	GeneratedAt         time.Time         `json:"generated_at"`
	CanonicalSources    []CanonicalSource `json:"canonical_sources"`
	OverallLearningPath []LearningLevel   `json:"overall_learning_path"`
	CoreSources         []string          `json:"core_sources"`
	SupplementalSources []string          `json:"supplemental_sources"`
	PracticeProjects    []PracticeProject `json:"practice_projects"`
	Explanation         string            `json:"explanation"`
	ModelVersion        string            `json:"model_version"`
	ConfigTopicsHash    string            `json:"config_topics_hash,omitempty"`
	Status              Status            `json:"status"`
}

// SourceBreakdown is the per-source view: which topics cite a source and
// the references that do the citing.
type SourceBreakdown struct {
	SourceID        string            `json:"source_id"`
	Title           string            `json:"title"`
	URL             string            `json:"url"`
	Summary         string            `json:"summary"`
	ExtractedTopics []Topic           `json:"extracted_topics"`
	References      []SourceReference `json:"references"`
}

// Key normalizes a language name into the cache/store key.
func Key(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}

func (c *Curriculum) IsFallback() bool {
	return c != nil && c.Status == StatusFallback
}

// FindSource returns the canonical source with the given id.
func (c *Curriculum) FindSource(sourceID string) (CanonicalSource, bool) {
	if c == nil {
		return CanonicalSource{}, false
	}
	for _, s := range c.CanonicalSources {
		if s.ID == sourceID {
			return s, true
		}
	}
	return CanonicalSource{}, false
}

// Normalize replaces nil slices with empty ones and clamps negative hour
// estimates so the JSON shape is stable ([] rather than null).
func (c *Curriculum) Normalize() {
	if c == nil {
		return
	}
	c.Language = Key(c.Language)
	if c.CanonicalSources == nil {
		c.CanonicalSources = []CanonicalSource{}
	}
	if c.OverallLearningPath == nil {
		c.OverallLearningPath = []LearningLevel{}
	}
	if c.CoreSources == nil {
		c.CoreSources = []string{}
	}
	if c.SupplementalSources == nil {
		c.SupplementalSources = []string{}
	}
	if c.PracticeProjects == nil {
		c.PracticeProjects = []PracticeProject{}
	}
	for i := range c.PracticeProjects {
		p := &c.PracticeProjects[i]
		if p.Outcomes == nil {
			p.Outcomes = []string{}
		}
		if p.EstimatedHours < 0 {
			p.EstimatedHours = 0
		}
	}
	for i := range c.OverallLearningPath {
		lvl := &c.OverallLearningPath[i]
		if lvl.EstimatedHours < 0 {
			lvl.EstimatedHours = 0
		}
		lvl.Topics = MapTopics(lvl.Topics, normalizeTopic)
	}
	if c.Status == "" {
		c.Status = StatusGenerated
	}
}

func normalizeTopic(t Topic) Topic {
	if t.EstimatedHours < 0 {
		t.EstimatedHours = 0
	}
	if t.Prerequisites == nil {
		t.Prerequisites = []string{}
	}
	if t.Outcomes == nil {
		t.Outcomes = []string{}
	}
	if t.ExampleExercises == nil {
		t.ExampleExercises = []string{}
	}
	if t.HelpfulReferences == nil {
		t.HelpfulReferences = []SourceReference{}
	}
	if t.Explainability == nil {
		t.Explainability = []string{}
	}
	if t.LearningResources == nil {
		t.LearningResources = []LearningResource{}
	}
	return t
}
