package prompts

import (
	"fmt"
	"strings"
	"sync"
)

type Validator func(Input) error

type Template struct {
	Name     PromptName
	Version  int
	System   func(Input) string
	User     func(Input) string
	Validate Validator
}

var (
	registryMu sync.RWMutex
	registry   = map[PromptName]Template{}
)

// Register registers a compiled Template.
func Register(t Template) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t.Name] = t
}

// Build returns a Prompt ready to pass into the LLM client.
func Build(name PromptName, in Input) (Prompt, error) {
	RegisterAll()

	registryMu.RLock()
	t, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", string(name))
	}
	if t.System == nil || t.User == nil {
		return Prompt{}, fmt.Errorf("prompt %s missing system/user renderers", string(name))
	}
	if t.Validate != nil {
		if err := t.Validate(in); err != nil {
			return Prompt{}, fmt.Errorf("%s: %w", string(name), err)
		}
	}

	return Prompt{
		Name:    string(t.Name),
		Version: t.Version,
		System:  strings.TrimSpace(t.System(in)),
		User:    strings.TrimSpace(t.User(in)),
	}, nil
}

func RequireLanguage(in Input) error {
	if strings.TrimSpace(in.Language) == "" {
		return fmt.Errorf("missing language")
	}
	return nil
}

func RequireTopicTitle(in Input) error {
	if strings.TrimSpace(in.TopicTitle) == "" {
		return fmt.Errorf("missing topic title")
	}
	return nil
}

func RequireQuery(in Input) error {
	if strings.TrimSpace(in.Query) == "" {
		return fmt.Errorf("missing query")
	}
	return nil
}
