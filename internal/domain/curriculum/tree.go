package curriculum

import (
	"fmt"
	"strings"
)

// MapTopics returns a new topic forest where every node (at any depth) is
// replaced by fn(node). fn sees the original node; the Subtopics of its
// result are always rebuilt from the original children, so fn cannot
// reshape the tree. Input slices are never written to.
func MapTopics(topics []Topic, fn func(Topic) Topic) []Topic {
	out := make([]Topic, 0, len(topics))
	for _, t := range topics {
		mapped := fn(t)
		mapped.Subtopics = MapTopics(t.Subtopics, fn)
		out = append(out, mapped)
	}
	return out
}

// WalkTopics visits every topic depth-first, parents before children.
func WalkTopics(topics []Topic, visit func(t Topic, depth int)) {
	var walk func(ts []Topic, depth int)
	walk = func(ts []Topic, depth int) {
		for _, t := range ts {
			visit(t, depth)
			walk(t.Subtopics, depth+1)
		}
	}
	walk(topics, 0)
}

// AllTopics flattens every level's topic tree.
func (c *Curriculum) AllTopics() []Topic {
	if c == nil {
		return nil
	}
	var out []Topic
	for _, lvl := range c.OverallLearningPath {
		WalkTopics(lvl.Topics, func(t Topic, _ int) { out = append(out, t) })
	}
	return out
}

func (t Topic) cites(sourceID string) bool {
	for _, ref := range t.HelpfulReferences {
		if ref.SourceID == sourceID {
			return true
		}
	}
	return false
}

// TopicsCitingSource returns, across all levels, the topics whose own
// helpful references cite sourceID. A matching topic is returned with its
// full subtree; descendants of a match are not searched again. Prerequisites
// are stripped from every returned node.
func (c *Curriculum) TopicsCitingSource(sourceID string) []Topic {
	out := []Topic{}
	if c == nil {
		return out
	}
	var search func(ts []Topic)
	search = func(ts []Topic) {
		for _, t := range ts {
			if t.cites(sourceID) {
				out = append(out, StripPrerequisites([]Topic{t})[0])
				continue
			}
			search(t.Subtopics)
		}
	}
	for _, lvl := range c.OverallLearningPath {
		search(lvl.Topics)
	}
	return out
}

// ReferencesTo collects every helpful reference pointing at sourceID.
func (c *Curriculum) ReferencesTo(sourceID string) []SourceReference {
	out := []SourceReference{}
	for _, t := range c.AllTopics() {
		for _, ref := range t.HelpfulReferences {
			if ref.SourceID == sourceID {
				out = append(out, ref)
			}
		}
	}
	return out
}

// StripPrerequisites clears prerequisites throughout the given forest.
func StripPrerequisites(topics []Topic) []Topic {
	return MapTopics(topics, func(t Topic) Topic {
		t.Prerequisites = []string{}
		return t
	})
}

// Breakdown derives the per-source view for a source that exists in c.
func (c *Curriculum) Breakdown(src CanonicalSource) SourceBreakdown {
	return SourceBreakdown{
		SourceID:        src.ID,
		Title:           src.Title,
		URL:             src.URL,
		Summary:         src.ShortSummary,
		ExtractedTopics: c.TopicsCitingSource(src.ID),
		References:      c.ReferencesTo(src.ID),
	}
}

// CycleError reports a topic that transitively requires itself.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("prerequisite cycle: %s", strings.Join(e.Path, " -> "))
}

// ValidatePrerequisites checks that the prerequisite graph across the whole
// curriculum is acyclic. References to unknown topic ids are ignored.
func (c *Curriculum) ValidatePrerequisites() error {
	edges := map[string][]string{}
	for _, t := range c.AllTopics() {
		if t.ID == "" {
			continue
		}
		edges[t.ID] = append(edges[t.ID], t.Prerequisites...)
	}

	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(edges))
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case done:
			return nil
		case inProgress:
			start := 0
			for i, s := range stack {
				if s == id {
					start = i
					break
				}
			}
			path := append(append([]string{}, stack[start:]...), id)
			return &CycleError{Path: path}
		}
		state[id] = inProgress
		stack = append(stack, id)
		for _, dep := range edges[id] {
			if _, known := edges[dep]; !known {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	for _, lvl := range c.OverallLearningPath {
		var err error
		WalkTopics(lvl.Topics, func(t Topic, _ int) {
			if err == nil && t.ID != "" {
				err = visit(t.ID)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}
