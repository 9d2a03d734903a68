package generation

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns the user's generations matching q and the total before paging.
func (r *Repository) List(ctx context.Context, userID int64, q ListQuery) ([]ImageGeneration, int64, error) {
	base := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&ImageGeneration{}).Where("user_id = ?", userID)
		if q.Search != "" {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(q.Search)) + "%"
			tx = tx.Where(`LOWER(generated_prompt) LIKE ? ESCAPE '\'`, pattern)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx := base()
	for _, col := range q.Sort.Columns() {
		tx = tx.Order(col)
	}

	items := make([]ImageGeneration, 0, q.Limit())
	if err := tx.Offset(q.Offset()).Limit(q.Limit()).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) Create(ctx context.Context, g *ImageGeneration) error {
	return r.db.WithContext(ctx).Create(g).Error
}
