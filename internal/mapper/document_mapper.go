package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/seed-hypermedia/mintter-sub004/internal/entity"
	"github.com/seed-hypermedia/mintter-sub004/internal/model"
	"github.com/seed-hypermedia/mintter-sub004/pkg/lexical"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) (*entity.Document, error) {
	if d == nil {
		return nil, nil
	}

	var content lexical.Document
	if len(d.Blocks) > 0 {
		if err := json.Unmarshal(d.Blocks, &content); err != nil {
			return nil, fmt.Errorf("document %s has corrupt blocks: %w", d.Id, err)
		}
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:        d.Id,
		Title:     d.Title,
		Content:   content,
		PlainText: d.PlainText,
		Version:   d.Version,
		UserId:    d.UserId,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: d.DeletedAt.Valid,
	}, nil
}

func (m *DocumentMapper) ToModel(d *entity.Document) (*model.Document, error) {
	if d == nil {
		return nil, nil
	}

	blocks, err := json.Marshal(d.Content)
	if err != nil {
		return nil, err
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:        d.Id,
		Title:     d.Title,
		Blocks:    datatypes.JSON(blocks),
		PlainText: d.PlainText,
		Version:   d.Version,
		UserId:    d.UserId,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}, nil
}

func (m *DocumentMapper) ToEntities(documents []*model.Document) ([]*entity.Document, error) {
	entities := make([]*entity.Document, len(documents))
	for i, d := range documents {
		e, err := m.ToEntity(d)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}
