package curriculum

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CurriculumRecord is the persisted root. One row per language; children
// are replaced wholesale on every regeneration.
type CurriculumRecord struct {
	ID                  uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Language            string                      `gorm:"column:language;not null;uniqueIndex" json:"language"`
	Headline            string                      `gorm:"column:headline" json:"headline"`
	GeneratedAt         time.Time                   `gorm:"column:generated_at;not null" json:"generated_at"`
	Explanation         string                      `gorm:"column:explanation;type:text" json:"explanation"`
	ModelVersion        string                      `gorm:"column:model_version" json:"model_version"`
	ConfigTopicsHash    string                      `gorm:"column:config_topics_hash;index" json:"config_topics_hash"`
	Status              string                      `gorm:"column:status;not null;default:'generated'" json:"status"`
	CoreSources         datatypes.JSONSlice[string] `gorm:"column:core_sources" json:"core_sources"`
	SupplementalSources datatypes.JSONSlice[string] `gorm:"column:supplemental_sources" json:"supplemental_sources"`
	CreatedAt           time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time                   `gorm:"not null" json:"updated_at"`
}

func (CurriculumRecord) TableName() string { return "curriculum" }

func (r *CurriculumRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type SourceRecord struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CurriculumID uuid.UUID         `gorm:"type:uuid;not null;index:idx_curriculum_source,priority:1" json:"curriculum_id"`
	Curriculum   *CurriculumRecord `gorm:"constraint:OnDelete:CASCADE;foreignKey:CurriculumID;references:ID" json:"-"`
	SourceKey    string            `gorm:"column:source_key;not null;index:idx_curriculum_source,priority:2" json:"source_key"`
	Position     int               `gorm:"column:position;not null" json:"position"`
	Title        string            `gorm:"column:title" json:"title"`
	URL          string            `gorm:"column:url" json:"url"`
	Steward      string            `gorm:"column:steward" json:"steward"`
	Type         string            `gorm:"column:type" json:"type"`
	Confidence   float64           `gorm:"column:confidence" json:"confidence"`
	ShortSummary string            `gorm:"column:short_summary;type:text" json:"short_summary"`
}

func (SourceRecord) TableName() string { return "curriculum_source" }

type LevelRecord struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CurriculumID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"curriculum_id"`
	Curriculum     *CurriculumRecord `gorm:"constraint:OnDelete:CASCADE;foreignKey:CurriculumID;references:ID" json:"-"`
	Position       int               `gorm:"column:position;not null" json:"position"`
	Level          string            `gorm:"column:level;not null" json:"level"`
	EstimatedHours int               `gorm:"column:estimated_hours" json:"estimated_hours"`
}

func (LevelRecord) TableName() string { return "curriculum_level" }

// TopicRecord stores one node of a level's topic tree. The tree is rebuilt
// from ParentTopicID + Position on load.
type TopicRecord struct {
	ID                uuid.UUID                             `gorm:"type:uuid;primaryKey" json:"id"`
	CurriculumID      uuid.UUID                             `gorm:"type:uuid;not null;index" json:"curriculum_id"`
	Curriculum        *CurriculumRecord                     `gorm:"constraint:OnDelete:CASCADE;foreignKey:CurriculumID;references:ID" json:"-"`
	LevelID           uuid.UUID                             `gorm:"type:uuid;not null;index" json:"level_id"`
	ParentTopicID     *uuid.UUID                            `gorm:"type:uuid;column:parent_topic_id;index" json:"parent_topic_id,omitempty"`
	Position          int                                   `gorm:"column:position;not null" json:"position"`
	TopicKey          string                                `gorm:"column:topic_key" json:"topic_key"`
	Title             string                                `gorm:"column:title" json:"title"`
	Description       string                                `gorm:"column:description;type:text" json:"description"`
	TopicOrder        int                                   `gorm:"column:topic_order" json:"order"`
	EstimatedHours    int                                   `gorm:"column:estimated_hours" json:"estimated_hours"`
	Prerequisites     datatypes.JSONSlice[string]           `gorm:"column:prerequisites" json:"prerequisites"`
	Outcomes          datatypes.JSONSlice[string]           `gorm:"column:outcomes" json:"outcomes"`
	ExampleExercises  datatypes.JSONSlice[string]           `gorm:"column:example_exercises" json:"example_exercises"`
	Explainability    datatypes.JSONSlice[string]           `gorm:"column:explainability" json:"explainability"`
	HelpfulReferences datatypes.JSONSlice[SourceReference]  `gorm:"column:helpful_references" json:"helpful_references"`
	LearningResources datatypes.JSONSlice[LearningResource] `gorm:"column:learning_resources" json:"learning_resources"`
}

func (TopicRecord) TableName() string { return "curriculum_topic" }

type ProjectRecord struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CurriculumID   uuid.UUID                   `gorm:"type:uuid;not null;index" json:"curriculum_id"`
	Curriculum     *CurriculumRecord           `gorm:"constraint:OnDelete:CASCADE;foreignKey:CurriculumID;references:ID" json:"-"`
	Position       int                         `gorm:"column:position;not null" json:"position"`
	Title          string                      `gorm:"column:title" json:"title"`
	Description    string                      `gorm:"column:description;type:text" json:"description"`
	Difficulty     string                      `gorm:"column:difficulty" json:"difficulty"`
	EstimatedHours int                         `gorm:"column:estimated_hours" json:"estimated_hours"`
	Outcomes       datatypes.JSONSlice[string] `gorm:"column:outcomes" json:"outcomes"`
}

func (ProjectRecord) TableName() string { return "curriculum_project" }

// Models lists every record type for AutoMigrate, parents first.
func Models() []any {
	return []any{
		&CurriculumRecord{},
		&SourceRecord{},
		&LevelRecord{},
		&TopicRecord{},
		&ProjectRecord{},
	}
}
