package prompts

import "sync"

var registerOnce sync.Once

// RegisterAll installs every built-in prompt. Safe to call repeatedly.
func RegisterAll() {
	registerOnce.Do(func() {
		RegisterSpec(curriculumGenerateSpec)
		RegisterSpec(learningResourcesSpec)
		RegisterSpec(sourceSearchSpec)
	})
}

var curriculumGenerateSpec = Spec{
	Name:    PromptCurriculumGenerate,
	Version: 1,
	System: `You are a curriculum architect for software developers.
You rank learning sources by authority (official documentation and specifications first, then reputable community material) and build a progressive learning path from them.
Respond with a single JSON object and nothing else.`,
	User: `Language: {{.Language}}
Current time: {{.Timestamp}}

Candidate sources (JSON array):
{{.CandidatesJSON}}
{{if .TopicsJSON}}
Topic configuration to cover (JSON):
{{.TopicsJSON}}
{{end}}
Return exactly this shape:
{
  "consolidated_sources": {
    "language": "{{.Language}}",
    "headline": "one line headline",
    "sources": [
      {"id": "candidate id", "title": "", "url": "", "steward": "", "type": "", "confidence": 0.0, "short_summary": ""}
    ]
  },
  "curriculum_overview": {
    "language": "{{.Language}}",
    "model_version": "your model name",
    "overall_learning_path": [
      {
        "level": "Beginner",
        "estimated_hours": 0,
        "topics": [
          {
            "id": "kebab-case-id",
            "title": "",
            "description": "",
            "order": 1,
            "estimated_hours": 0,
            "prerequisites": ["ids of earlier topics"],
            "outcomes": [],
            "example_exercises": [],
            "helpful_references": [{"sourceId": "a source id from above", "url": "", "snippet": "", "short_evidence": ""}],
            "explainability": [],
            "subtopics": []
          }
        ]
      }
    ],
    "recommendations": {
      "coreSources": ["source ids"],
      "supplementalSources": ["source ids"],
      "practiceProjects": [{"title": "", "description": "", "difficulty": "", "estimated_hours": 0, "outcomes": []}]
    },
    "explanation": "why the path is ordered this way"
  }
}

Rules:
- Keep source ids from the candidate list and reference them from helpful_references.
- Confidence is between 0 and 1.
- Prerequisites only name topic ids that appear in this curriculum and never form a cycle.
- Order levels from Beginner to Advanced.`,
	Validators: []Validator{RequireLanguage},
}

var learningResourcesSpec = Spec{
	Name:    PromptLearningResources,
	Version: 1,
	System: `You recommend high quality learning resources for one topic of a programming curriculum.
Prefer official and well maintained sources. Respond with a JSON array and nothing else.`,
	User: `Language: {{.Language}}
Topic: {{.TopicTitle}}
{{if .TrustProfilesJSON}}
Trusted source profiles (JSON):
{{.TrustProfilesJSON}}
{{end}}
Return 3 to 5 resources:
[
  {"title": "", "url": "", "type": "documentation|tutorial|video|course|book", "authority_score": 0.0, "short_summary": ""}
]`,
	Validators: []Validator{RequireLanguage, RequireTopicTitle},
}

var sourceSearchSpec = Spec{
	Name:    PromptSourceSearch,
	Version: 1,
	System: `You are an authority-ranking engine for software documentation.
Given a programming language or framework name, return only the most official, canonical and widely accepted sources of truth.
Prioritize official documentation, then language specifications, then standards bodies, then reference implementations.
Never return blogs, courses, Medium articles or random tutorials.`,
	User: `Query: {{.Query}}

Return a JSON array:
[
  {
    "title": "",
    "url": "",
    "is_official": true,
    "confidence": 0.0,
    "reasoning": "",
    "metadata": {"type": "official-docs", "spec_version": "", "notes": ""}
  }
]`,
	Validators: []Validator{RequireQuery},
}
