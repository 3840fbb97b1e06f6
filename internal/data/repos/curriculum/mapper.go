package curriculum

import (
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
)

type childRecords struct {
	sources  []*types.SourceRecord
	levels   []*types.LevelRecord
	topics   []*types.TopicRecord
	projects []*types.ProjectRecord
}

func toRecord(c *types.Curriculum, id uuid.UUID) *types.CurriculumRecord {
	return &types.CurriculumRecord{
		ID:                  id,
		Language:            types.Key(c.Language),
		Headline:            c.Headline,
		GeneratedAt:         c.GeneratedAt.UTC(),
		Explanation:         c.Explanation,
		ModelVersion:        c.ModelVersion,
		ConfigTopicsHash:    c.ConfigTopicsHash,
		Status:              string(c.Status),
		CoreSources:         datatypes.JSONSlice[string](c.CoreSources),
		SupplementalSources: datatypes.JSONSlice[string](c.SupplementalSources),
	}
}

func toChildRecords(c *types.Curriculum, curriculumID uuid.UUID) childRecords {
	var out childRecords
	for i, s := range c.CanonicalSources {
		out.sources = append(out.sources, &types.SourceRecord{
			ID:           uuid.New(),
			CurriculumID: curriculumID,
			SourceKey:    s.ID,
			Position:     i,
			Title:        s.Title,
			URL:          s.URL,
			Steward:      s.Steward,
			Type:         s.Type,
			Confidence:   s.Confidence,
			ShortSummary: s.ShortSummary,
		})
	}
	for i, lvl := range c.OverallLearningPath {
		levelID := uuid.New()
		out.levels = append(out.levels, &types.LevelRecord{
			ID:             levelID,
			CurriculumID:   curriculumID,
			Position:       i,
			Level:          lvl.Level,
			EstimatedHours: lvl.EstimatedHours,
		})
		out.topics = appendTopicRecords(out.topics, lvl.Topics, curriculumID, levelID, nil)
	}
	for i, p := range c.PracticeProjects {
		out.projects = append(out.projects, &types.ProjectRecord{
			ID:             uuid.New(),
			CurriculumID:   curriculumID,
			Position:       i,
			Title:          p.Title,
			Description:    p.Description,
			Difficulty:     p.Difficulty,
			EstimatedHours: p.EstimatedHours,
			Outcomes:       datatypes.JSONSlice[string](p.Outcomes),
		})
	}
	return out
}

func appendTopicRecords(dst []*types.TopicRecord, topics []types.Topic, curriculumID, levelID uuid.UUID, parentID *uuid.UUID) []*types.TopicRecord {
	for i, t := range topics {
		id := uuid.New()
		dst = append(dst, &types.TopicRecord{
			ID:                id,
			CurriculumID:      curriculumID,
			LevelID:           levelID,
			ParentTopicID:     parentID,
			Position:          i,
			TopicKey:          t.ID,
			Title:             t.Title,
			Description:       t.Description,
			TopicOrder:        t.Order,
			EstimatedHours:    t.EstimatedHours,
			Prerequisites:     datatypes.JSONSlice[string](t.Prerequisites),
			Outcomes:          datatypes.JSONSlice[string](t.Outcomes),
			ExampleExercises:  datatypes.JSONSlice[string](t.ExampleExercises),
			Explainability:    datatypes.JSONSlice[string](t.Explainability),
			HelpfulReferences: datatypes.JSONSlice[types.SourceReference](t.HelpfulReferences),
			LearningResources: datatypes.JSONSlice[types.LearningResource](t.LearningResources),
		})
		parent := id
		dst = appendTopicRecords(dst, t.Subtopics, curriculumID, levelID, &parent)
	}
	return dst
}

func fromRecords(rec *types.CurriculumRecord, children childRecords) *types.Curriculum {
	c := &types.Curriculum{
		Language:            rec.Language,
		Headline:            rec.Headline,
		GeneratedAt:         rec.GeneratedAt.UTC(),
		Explanation:         rec.Explanation,
		ModelVersion:        rec.ModelVersion,
		ConfigTopicsHash:    rec.ConfigTopicsHash,
		Status:              types.Status(rec.Status),
		CoreSources:         []string(rec.CoreSources),
		SupplementalSources: []string(rec.SupplementalSources),
	}

	sort.SliceStable(children.sources, func(i, j int) bool { return children.sources[i].Position < children.sources[j].Position })
	for _, s := range children.sources {
		c.CanonicalSources = append(c.CanonicalSources, types.CanonicalSource{
			ID:           s.SourceKey,
			Title:        s.Title,
			URL:          s.URL,
			Steward:      s.Steward,
			Type:         s.Type,
			Confidence:   s.Confidence,
			ShortSummary: s.ShortSummary,
		})
	}

	// subtopics keyed by parent topic id, level roots keyed by level id
	byParent := map[uuid.UUID][]*types.TopicRecord{}
	roots := map[uuid.UUID][]*types.TopicRecord{}
	for _, t := range children.topics {
		if t.ParentTopicID == nil {
			roots[t.LevelID] = append(roots[t.LevelID], t)
			continue
		}
		byParent[*t.ParentTopicID] = append(byParent[*t.ParentTopicID], t)
	}

	sort.SliceStable(children.levels, func(i, j int) bool { return children.levels[i].Position < children.levels[j].Position })
	for _, lvl := range children.levels {
		c.OverallLearningPath = append(c.OverallLearningPath, types.LearningLevel{
			Level:          lvl.Level,
			EstimatedHours: lvl.EstimatedHours,
			Topics:         buildTopics(roots[lvl.ID], byParent),
		})
	}

	sort.SliceStable(children.projects, func(i, j int) bool { return children.projects[i].Position < children.projects[j].Position })
	for _, p := range children.projects {
		c.PracticeProjects = append(c.PracticeProjects, types.PracticeProject{
			Title:          p.Title,
			Description:    p.Description,
			Difficulty:     p.Difficulty,
			EstimatedHours: p.EstimatedHours,
			Outcomes:       []string(p.Outcomes),
		})
	}

	c.Normalize()
	return c
}

func buildTopics(rows []*types.TopicRecord, byParent map[uuid.UUID][]*types.TopicRecord) []types.Topic {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	out := make([]types.Topic, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.Topic{
			ID:                r.TopicKey,
			Title:             r.Title,
			Description:       r.Description,
			Order:             r.TopicOrder,
			EstimatedHours:    r.EstimatedHours,
			Prerequisites:     []string(r.Prerequisites),
			Outcomes:          []string(r.Outcomes),
			ExampleExercises:  []string(r.ExampleExercises),
			HelpfulReferences: []types.SourceReference(r.HelpfulReferences),
			Explainability:    []string(r.Explainability),
			LearningResources: []types.LearningResource(r.LearningResources),
			Subtopics:         buildTopics(byParent[r.ID], byParent),
		})
	}
	return out
}
