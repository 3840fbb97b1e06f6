package services

import (
	"math"
	"strings"

	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
)

// Wire shapes for model output. Field names follow what the prompt asks
// for; the few keys models habitually emit in both casings accept either.

type llmSource struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	URL          string  `json:"url"`
	Steward      string  `json:"steward"`
	Type         string  `json:"type"`
	Confidence   float64 `json:"confidence"`
	ShortSummary string  `json:"short_summary"`
}

type llmReference struct {
	SourceID       string `json:"sourceId"`
	SourceIDSnake  string `json:"source_id"`
	URL            string `json:"url"`
	Snippet        string `json:"snippet"`
	ShortEvidence  string `json:"short_evidence"`
	ShortEvidenceC string `json:"shortEvidence"`
}

type llmResource struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Type           string  `json:"type"`
	AuthorityScore float64 `json:"authority_score"`
	ShortSummary   string  `json:"short_summary"`
}

type llmTopic struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Order             float64        `json:"order"`
	EstimatedHours    float64        `json:"estimated_hours"`
	Prerequisites     []string       `json:"prerequisites"`
	Outcomes          []string       `json:"outcomes"`
	ExampleExercises  []string       `json:"example_exercises"`
	HelpfulReferences []llmReference `json:"helpful_references"`
	Explainability    []string       `json:"explainability"`
	Subtopics         []llmTopic     `json:"subtopics"`
	LearningResources []llmResource  `json:"learning_resources"`
}

type llmLevel struct {
	Level          string     `json:"level"`
	EstimatedHours float64    `json:"estimated_hours"`
	Topics         []llmTopic `json:"topics"`
}

type llmProject struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Difficulty     string   `json:"difficulty"`
	EstimatedHours float64  `json:"estimated_hours"`
	Outcomes       []string `json:"outcomes"`
}

type llmRecommendations struct {
	CoreSources         []string     `json:"coreSources"`
	SupplementalSources []string     `json:"supplementalSources"`
	PracticeProjects    []llmProject `json:"practiceProjects"`
}

type llmCurriculum struct {
	Language            *string             `json:"language"`
	Headline            *string             `json:"headline"`
	ModelVersion        string              `json:"model_version"`
	OverallLearningPath []llmLevel          `json:"overall_learning_path"`
	Recommendations     *llmRecommendations `json:"recommendations"`
	Explanation         string              `json:"explanation"`
	// present only in the bare single-object variant
	CanonicalSources []llmSource `json:"canonical_sources"`
}

type llmConsolidated struct {
	Language *string     `json:"language"`
	Headline *string     `json:"headline"`
	Sources  []llmSource `json:"sources"`
}

type llmEnvelope struct {
	ConsolidatedSources *llmConsolidated `json:"consolidated_sources"`
	CurriculumOverview  *llmCurriculum   `json:"curriculum_overview"`
}

func hours(f float64) int {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

func unit(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (s llmSource) toDomain() types.CanonicalSource {
	return types.CanonicalSource{
		ID:           strings.TrimSpace(s.ID),
		Title:        s.Title,
		URL:          s.URL,
		Steward:      s.Steward,
		Type:         s.Type,
		Confidence:   unit(s.Confidence),
		ShortSummary: s.ShortSummary,
	}
}

func (r llmResource) toDomain() types.LearningResource {
	return types.LearningResource{
		Title:          r.Title,
		URL:            r.URL,
		Type:           r.Type,
		AuthorityScore: unit(r.AuthorityScore),
		ShortSummary:   r.ShortSummary,
	}
}

func (t llmTopic) toDomain() types.Topic {
	refs := make([]types.SourceReference, 0, len(t.HelpfulReferences))
	for _, r := range t.HelpfulReferences {
		refs = append(refs, types.SourceReference{
			SourceID:      strings.TrimSpace(firstNonEmpty(r.SourceID, r.SourceIDSnake)),
			URL:           r.URL,
			Snippet:       r.Snippet,
			ShortEvidence: firstNonEmpty(r.ShortEvidence, r.ShortEvidenceC),
		})
	}
	subs := make([]types.Topic, 0, len(t.Subtopics))
	for _, s := range t.Subtopics {
		subs = append(subs, s.toDomain())
	}
	resources := make([]types.LearningResource, 0, len(t.LearningResources))
	for _, r := range t.LearningResources {
		resources = append(resources, r.toDomain())
	}
	return types.Topic{
		ID:                strings.TrimSpace(t.ID),
		Title:             t.Title,
		Description:       t.Description,
		Order:             int(t.Order),
		EstimatedHours:    hours(t.EstimatedHours),
		Prerequisites:     t.Prerequisites,
		Outcomes:          t.Outcomes,
		ExampleExercises:  t.ExampleExercises,
		HelpfulReferences: refs,
		Explainability:    t.Explainability,
		Subtopics:         subs,
		LearningResources: resources,
	}
}

func (l llmLevel) toDomain() types.LearningLevel {
	topics := make([]types.Topic, 0, len(l.Topics))
	for _, t := range l.Topics {
		topics = append(topics, t.toDomain())
	}
	return types.LearningLevel{
		Level:          l.Level,
		EstimatedHours: hours(l.EstimatedHours),
		Topics:         topics,
	}
}

func (p llmProject) toDomain() types.PracticeProject {
	return types.PracticeProject{
		Title:          p.Title,
		Description:    p.Description,
		Difficulty:     p.Difficulty,
		EstimatedHours: hours(p.EstimatedHours),
		Outcomes:       p.Outcomes,
	}
}
