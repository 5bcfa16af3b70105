package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record carries the identity shared by every catalog table.
type Record struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
}

// BeforeCreate is a GORM hook that assigns a UUID before inserting
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// SpecRecord is one compiled entry file.
type SpecRecord struct {
	Record
	Entry string `gorm:"index"`
	App   string
	Title string
	Theme string
	Files string // newline separated, merge order

	Models  []ModelRecord  `gorm:"foreignKey:SpecID"`
	Screens []ScreenRecord `gorm:"foreignKey:SpecID"`
	Themes  []ThemeRecord  `gorm:"foreignKey:SpecID"`
}

func (SpecRecord) TableName() string { return "specs" }

type ModelRecord struct {
	Record
	SpecID   string `gorm:"index;size:36"`
	Name     string `gorm:"index"`
	Position int
	Fields   []FieldRecord `gorm:"foreignKey:ModelID"`
}

func (ModelRecord) TableName() string { return "models" }

type FieldRecord struct {
	Record
	ModelID     string `gorm:"index;size:36"`
	Name        string
	Type        string
	Default     *string
	IsTitle     bool
	IsReference bool
	Constraints string // JSON object, empty when the field has none
	Position    int
}

func (FieldRecord) TableName() string { return "fields" }

type ScreenRecord struct {
	Record
	SpecID   string `gorm:"index;size:36"`
	Name     string
	Model    string
	Position int
}

func (ScreenRecord) TableName() string { return "screens" }

// ThemeRecord is a resolved theme; its properties are stored flattened.
type ThemeRecord struct {
	Record
	SpecID   string `gorm:"index;size:36"`
	Name     string `gorm:"index"`
	Title    string
	Lineage  string // " -> " separated, the theme itself first
	Active   bool
	Position int
	Tokens   []ThemeTokenRecord `gorm:"foreignKey:ThemeID"`
}

func (ThemeRecord) TableName() string { return "themes" }

type ThemeTokenRecord struct {
	Record
	ThemeID string `gorm:"index;size:36"`
	Path    string `gorm:"index"`
	Value   string
}

func (ThemeTokenRecord) TableName() string { return "theme_tokens" }
