package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	Language string
	// Curriculum generation
	CandidatesJSON string
	TopicsJSON     string
	Timestamp      string
	// Learning resources
	TopicTitle        string
	TrustProfilesJSON string
	// Search
	Query string
}
