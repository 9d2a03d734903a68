package generation

import (
	"time"

	"promptstudio/internal/pkg/pagination"
)

type ListQuery struct {
	Search string
	Sort   Sort
	pagination.Params
}

type GenerationResponse struct {
	ID               int64     `json:"id"`
	ImagePath        string    `json:"image_path"`
	ImageURL         string    `json:"image_url"`
	GeneratedPrompt  string    `json:"generated_prompt"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
