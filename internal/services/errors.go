package services

import "errors"

var (
	// ErrDataNotFound: no curriculum is stored for the language.
	ErrDataNotFound = errors.New("curriculum not found")
	// ErrSourceNotFound: the curriculum exists but has no source with that id.
	ErrSourceNotFound = errors.New("source not found")
	// ErrLanguageUnknown: the language feed has no entry for the language.
	ErrLanguageUnknown = errors.New("language not configured")

	ErrInvalidURL  = errors.New("invalid source url")
	ErrLLMCall     = errors.New("llm call failed")
	ErrLLMParse    = errors.New("llm response could not be parsed")
	ErrValidation  = errors.New("llm response failed validation")
	ErrPersistence = errors.New("curriculum persistence failed")
)
