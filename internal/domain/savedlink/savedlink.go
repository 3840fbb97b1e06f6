package savedlink

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Metadata struct {
	Type        string `json:"type"`
	SpecVersion string `json:"spec_version"`
	Notes       string `json:"notes"`
}

// SavedLink is a ranked resource a visitor kept. Links are keyed by URL;
// saving the same URL again replaces the earlier entry.
type SavedLink struct {
	Title               string    `json:"title"`
	URL                 string    `json:"url"`
	IsOfficial          bool      `json:"is_official"`
	Confidence          float64   `json:"confidence"`
	Reasoning           string    `json:"reasoning"`
	Metadata            Metadata  `json:"metadata"`
	ResourceType        string    `json:"resource_type,omitempty"`
	ShortDescription    string    `json:"short_description,omitempty"`
	EstimatedDifficulty string    `json:"estimated_difficulty,omitempty"`
	SkillOutcomes       []string  `json:"skill_outcomes,omitempty"`
	SavedAt             time.Time `json:"saved_at"`
}

func Key(rawURL string) string { return strings.TrimSpace(rawURL) }

type Record struct {
	ID                  uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	URL                 string                      `gorm:"column:url;not null;uniqueIndex" json:"url"`
	Title               string                      `gorm:"column:title" json:"title"`
	IsOfficial          bool                        `gorm:"column:is_official;not null" json:"is_official"`
	Confidence          float64                     `gorm:"column:confidence" json:"confidence"`
	Reasoning           string                      `gorm:"column:reasoning;type:text" json:"reasoning"`
	MetadataType        string                      `gorm:"column:metadata_type" json:"metadata_type"`
	MetadataSpecVersion string                      `gorm:"column:metadata_spec_version" json:"metadata_spec_version"`
	MetadataNotes       string                      `gorm:"column:metadata_notes;type:text" json:"metadata_notes"`
	ResourceType        string                      `gorm:"column:resource_type" json:"resource_type"`
	ShortDescription    string                      `gorm:"column:short_description;type:text" json:"short_description"`
	EstimatedDifficulty string                      `gorm:"column:estimated_difficulty" json:"estimated_difficulty"`
	SkillOutcomes       datatypes.JSONSlice[string] `gorm:"column:skill_outcomes" json:"skill_outcomes"`
	CreatedAt           time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time                   `gorm:"not null;index" json:"updated_at"`
}

func (Record) TableName() string { return "saved_link" }

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func Models() []any {
	return []any{&Record{}}
}

func FromLink(l *SavedLink) *Record {
	return &Record{
		URL:                 Key(l.URL),
		Title:               l.Title,
		IsOfficial:          l.IsOfficial,
		Confidence:          l.Confidence,
		Reasoning:           l.Reasoning,
		MetadataType:        l.Metadata.Type,
		MetadataSpecVersion: l.Metadata.SpecVersion,
		MetadataNotes:       l.Metadata.Notes,
		ResourceType:        l.ResourceType,
		ShortDescription:    l.ShortDescription,
		EstimatedDifficulty: l.EstimatedDifficulty,
		SkillOutcomes:       datatypes.JSONSlice[string](l.SkillOutcomes),
	}
}

func (r *Record) ToLink() SavedLink {
	return SavedLink{
		Title:      r.Title,
		URL:        r.URL,
		IsOfficial: r.IsOfficial,
		Confidence: r.Confidence,
		Reasoning:  r.Reasoning,
		Metadata: Metadata{
			Type:        r.MetadataType,
			SpecVersion: r.MetadataSpecVersion,
			Notes:       r.MetadataNotes,
		},
		ResourceType:        r.ResourceType,
		ShortDescription:    r.ShortDescription,
		EstimatedDifficulty: r.EstimatedDifficulty,
		SkillOutcomes:       []string(r.SkillOutcomes),
		SavedAt:             r.UpdatedAt,
	}
}
