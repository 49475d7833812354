package entities

import (
	"time"

	"gorm.io/gorm"
)

// Entry provenance tags
const (
	SourceGlobal = "global"
	SourceSplit  = "split"
	SourceXLSX   = "xlsx"
)

// Attachment field tags
const (
	FieldCoverImage = "cover_image"
)

// StringFieldLimit is the maximum length of every bounded string column.
const StringFieldLimit = 255

// Entry is a calendar event. Identifier is unique across sources because
// every source except the primary feed namespaces it with a prefix.
type Entry struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Identifier      *string        `gorm:"uniqueIndex;size:255" json:"identifier,omitempty"`
	Title           string         `gorm:"index;size:255" json:"title"`
	Slug            string         `gorm:"uniqueIndex;size:255" json:"slug"`
	Start           *time.Time     `gorm:"column:starts_at;index" json:"start,omitempty"`
	End             *time.Time     `gorm:"column:ends_at;index" json:"end,omitempty"`
	AllDay          bool           `json:"all_day"`
	Description     string         `gorm:"type:text" json:"description"`
	Place           string         `gorm:"size:255" json:"place"`
	URL             string         `gorm:"size:255" json:"url"`
	CountryID       *uint          `gorm:"index" json:"country_id,omitempty"`
	Country         *Country       `gorm:"foreignKey:CountryID" json:"country,omitempty"`
	Institution     string         `gorm:"size:255" json:"institution"`
	Contact         string         `gorm:"size:255" json:"contact"`
	Email           string         `gorm:"size:255" json:"email"`
	Theme           string         `gorm:"size:255" json:"theme"`
	Target          string         `gorm:"size:255" json:"target"`
	Format          string         `gorm:"size:255" json:"format"`
	Tags            string         `gorm:"size:255" json:"tags"`
	Fee             string         `gorm:"size:255" json:"fee"`
	Remarks         string         `gorm:"size:255" json:"remarks"`
	MetaTitle       string         `gorm:"size:255" json:"meta_title"`
	MetaDescription string         `gorm:"size:255" json:"meta_description"`
	MetaKeywords    string         `gorm:"size:255" json:"meta_keywords"`
	IsPublic        bool           `gorm:"not null" json:"is_public"`
	IsInternal      bool           `gorm:"default:false" json:"is_internal"`
	ShowOnTimeline  bool           `gorm:"not null" json:"show_on_timeline"`
	Source          string         `gorm:"index;size:20" json:"source"`
	Categories      []Category     `gorm:"many2many:entry_categories;" json:"categories,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Entry) TableName() string {
	return "entries"
}

// IdentifierValue returns the identifier or an empty string when unset.
func (e *Entry) IdentifierValue() string {
	if e.Identifier == nil {
		return ""
	}
	return *e.Identifier
}

type Country struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"uniqueIndex;size:2" json:"code"`
	Name string `gorm:"index;size:100" json:"name"`
}

func (Country) TableName() string {
	return "countries"
}

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	Slug      string    `gorm:"size:100" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

// Attachment is the metadata row for a blob owned by an entry. The bytes
// themselves live in the configured blob backend under Key.
type Attachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EntryID     uint      `gorm:"uniqueIndex:idx_attachment_owner" json:"entry_id"`
	Field       string    `gorm:"uniqueIndex:idx_attachment_owner;size:50" json:"field"`
	Key         string    `gorm:"size:512" json:"key"`
	FileName    string    `gorm:"size:255" json:"file_name"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}
