package curriculum

import "time"

const (
	FallbackHeadline     = "Fallback Learning Hub"
	FallbackExplanation  = "Fallback explanation"
	FallbackModelVersion = "Fallback-Model-v0"
)

// Fallback is the minimal valid curriculum served when model output cannot
// be trusted.
func Fallback(language string, now time.Time) *Curriculum {
	return &Curriculum{
		Language:            Key(language),
		Headline:            FallbackHeadline,
		GeneratedAt:         now.UTC(),
		CanonicalSources:    []CanonicalSource{},
		OverallLearningPath: []LearningLevel{},
		CoreSources:         []string{},
		SupplementalSources: []string{},
		PracticeProjects:    []PracticeProject{},
		Explanation:         FallbackExplanation,
		ModelVersion:        FallbackModelVersion,
		Status:              StatusFallback,
	}
}
