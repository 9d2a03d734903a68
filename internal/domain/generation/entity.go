package generation

import "time"

// ImageGeneration is one image-to-prompt run. Rows are written once, after
// inference succeeds, and never updated.
type ImageGeneration struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	UserID           int64     `json:"user_id" gorm:"not null;index:idx_image_generations_user_id"`
	ImagePath        string    `json:"image_path" gorm:"size:512;not null"`
	GeneratedPrompt  string    `json:"generated_prompt" gorm:"type:text;not null"`
	OriginalFilename string    `json:"original_filename" gorm:"size:255;not null"`
	FileSize         int64     `json:"file_size" gorm:"not null"`
	MimeType         string    `json:"mime_type" gorm:"size:100;not null"`
	CreatedAt        time.Time `json:"created_at" gorm:"index:idx_image_generations_created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (ImageGeneration) TableName() string { return "image_generations" }
