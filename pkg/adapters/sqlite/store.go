package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/conform/pkg/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type definitionModel struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Format    string    `gorm:"column:format;not null"`
	Source    []byte    `gorm:"column:source;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (definitionModel) TableName() string {
	return "definitions"
}

// Repository implements ports.DefinitionRepository on SQLite.
type Repository struct {
	db *DB
}

// NewRepository wraps an opened database.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Save upserts the definition.
func (r *Repository) Save(ctx context.Context, def domain.Definition) error {
	updated := def.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	format := def.Format
	if format == "" {
		format = domain.DetectFormat(def.Source)
	}
	model := definitionModel{
		Name:      def.Name,
		Format:    string(format),
		Source:    def.Source,
		CreatedAt: updated,
		UpdatedAt: updated,
	}

	return r.db.writeTX(ctx, func(tx *tx) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"format", "source", "updated_at"}),
		}).Create(&model).Error
		if err != nil {
			return fmt.Errorf("upsert definition: %w", err)
		}
		return nil
	})
}

// Get loads a definition by name.
func (r *Repository) Get(ctx context.Context, name string) (domain.Definition, error) {
	var model definitionModel
	err := r.db.readTX(ctx, func(tx *tx) error {
		return tx.Where("name = ?", name).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Definition{}, domain.ErrDefinitionNotFound
		}
		return domain.Definition{}, fmt.Errorf("get definition: %w", err)
	}
	return domain.Definition{
		Name:      model.Name,
		Format:    domain.Format(model.Format),
		Source:    model.Source,
		UpdatedAt: model.UpdatedAt.UTC(),
	}, nil
}

// Delete removes a definition.
func (r *Repository) Delete(ctx context.Context, name string) error {
	var affected int64
	err := r.db.writeTX(ctx, func(tx *tx) error {
		res := tx.Where("name = ?", name).Delete(&definitionModel{})
		if res.Error != nil {
			return fmt.Errorf("delete definition: %w", res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrDefinitionNotFound
	}
	return nil
}

// List returns all names in order.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	names := []string{}
	err := r.db.readTX(ctx, func(tx *tx) error {
		return tx.Model(&definitionModel{}).Order("name").Pluck("name", &names).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	return names, nil
}
