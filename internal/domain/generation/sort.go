package generation

import (
	"strings"

	"gorm.io/gorm/clause"
)

// SortField is a column clients may order by. Only the constants below are
// ever sent to the database.
type SortField string

const (
	SortCreatedAt        SortField = "created_at"
	SortGeneratedPrompt  SortField = "generated_prompt"
	SortOriginalFilename SortField = "original_filename"
	SortFileSize         SortField = "file_size"
)

var sortFields = map[string]SortField{
	string(SortCreatedAt):        SortCreatedAt,
	string(SortGeneratedPrompt):  SortGeneratedPrompt,
	string(SortOriginalFilename): SortOriginalFilename,
	string(SortFileSize):         SortFileSize,
}

type Sort struct {
	Field SortField
	Desc  bool
}

var DefaultSort = Sort{Field: SortCreatedAt, Desc: true}

// ParseSort reads "field" (ascending) or "-field" (descending). Anything not
// in the allow-list yields DefaultSort.
func ParseSort(raw string) Sort {
	raw = strings.TrimSpace(raw)
	desc := strings.HasPrefix(raw, "-")
	name := strings.TrimPrefix(raw, "-")

	field, ok := sortFields[name]
	if !ok {
		return DefaultSort
	}
	return Sort{Field: field, Desc: desc}
}

// Columns orders by the field, then by id in the same direction so pages are
// stable when values tie.
func (s Sort) Columns() []clause.OrderByColumn {
	return []clause.OrderByColumn{
		{Column: clause.Column{Name: string(s.Field)}, Desc: s.Desc},
		{Column: clause.Column{Name: "id"}, Desc: s.Desc},
	}
}
