package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Document is an uploaded file owned by a project. At most one document per
// project carries IsCurrent=true; the flag on the others is cleared at
// write time inside the repository transaction.
type Document struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"document_id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	Filename  string         `gorm:"type:varchar(300);not null" json:"filename"`
	Filepath  string         `gorm:"type:text;not null" json:"filepath"`
	IsCurrent bool           `gorm:"index;default:false" json:"is_current"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata"`

	UploadedAt time.Time `json:"uploaded_at"`
}

func NewDocument(projectID uuid.UUID, filename, filepath string, isCurrent bool) *Document {
	return &Document{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Filename:   filename,
		Filepath:   filepath,
		IsCurrent:  isCurrent,
		UploadedAt: time.Now().UTC(),
	}
}
