package testutil

import (
	"time"

	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
)

// SampleCurriculum builds a small two-level curriculum with nested subtopics
// and cross-level source references.
func SampleCurriculum(language string) *types.Curriculum {
	c := &types.Curriculum{
		Language:    language,
		Headline:    "Learn " + language,
		GeneratedAt: time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC),
		CanonicalSources: []types.CanonicalSource{
			{ID: "docs-oracle-com-javase-tutorial", Title: "Oracle Documentation", URL: "https://docs.oracle.com/javase/tutorial/", Steward: "Oracle", Type: "Official Tutorial", Confidence: 0.95, ShortSummary: "Official tutorials"},
			{ID: "www-baeldung-com-java-basics", Title: "Baeldung Tutorials", URL: "https://www.baeldung.com/java-basics", Steward: "Baeldung", Type: "Community Tutorial", Confidence: 0.7},
			{ID: "openjdk-org-jeps", Title: "OpenJDK Documentation", URL: "https://openjdk.org/jeps/", Steward: "OpenJDK", Type: "Official Docs", Confidence: 0.8},
		},
		OverallLearningPath: []types.LearningLevel{
			{
				Level:          "Beginner",
				EstimatedHours: 20,
				Topics: []types.Topic{
					{
						ID:               "syntax",
						Title:            "Syntax",
						Description:      "Basic syntax",
						Order:            1,
						EstimatedHours:   5,
						Outcomes:         []string{"write a class"},
						ExampleExercises: []string{"hello world"},
						HelpfulReferences: []types.SourceReference{
							{SourceID: "docs-oracle-com-javase-tutorial", URL: "https://docs.oracle.com/javase/tutorial/java/nutsandbolts/", Snippet: "Language basics", ShortEvidence: "official"},
						},
						Explainability: []string{"first step"},
						Subtopics: []types.Topic{
							{ID: "variables", Title: "Variables", Order: 1, Prerequisites: []string{"syntax"}},
							{ID: "operators", Title: "Operators", Order: 2, Prerequisites: []string{"variables"}},
						},
						LearningResources: []types.LearningResource{
							{Title: "Trail", URL: "https://docs.oracle.com/javase/tutorial/", Type: "tutorial", AuthorityScore: 0.9},
						},
					},
				},
			},
			{
				Level:          "Intermediate",
				EstimatedHours: 40,
				Topics: []types.Topic{
					{
						ID:            "collections",
						Title:         "Collections",
						Order:         1,
						Prerequisites: []string{"syntax"},
						HelpfulReferences: []types.SourceReference{
							{SourceID: "www-baeldung-com-java-basics", Snippet: "Collections"},
							{SourceID: "docs-oracle-com-javase-tutorial", Snippet: "Collections trail"},
						},
					},
				},
			},
		},
		CoreSources:         []string{"docs-oracle-com-javase-tutorial"},
		SupplementalSources: []string{"www-baeldung-com-java-basics"},
		PracticeProjects: []types.PracticeProject{
			{Title: "CLI todo", Description: "Build a todo app", Difficulty: "easy", EstimatedHours: 6, Outcomes: []string{"file io"}},
		},
		Explanation:  "Ordered from fundamentals to collections.",
		ModelVersion: "gpt-test",
		Status:       types.StatusGenerated,
	}
	c.Normalize()
	return c
}
