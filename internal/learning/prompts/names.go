package prompts

type PromptName string

const (
	PromptCurriculumGenerate PromptName = "curriculum_generate"
	PromptLearningResources  PromptName = "learning_resources"
	PromptSourceSearch       PromptName = "source_search"
)
