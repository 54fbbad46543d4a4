package workorder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Repo is the GORM-backed Store implementation.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, wo *WorkOrder) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(wo).Error
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*WorkOrder, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var wo WorkOrder
	if err := db.Where("id = ?", id).First(&wo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// List returns all work orders, or those matching the query as a
// case-insensitive substring of any searchable field.
func (r *Repo) List(ctx context.Context, query string) ([]WorkOrder, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}

	q := db.Model(&WorkOrder{})
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		q = q.Where(
			"LOWER(customer_name) LIKE ? OR LOWER(vehicle) LIKE ? OR LOWER(status) LIKE ? OR LOWER(complaint) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var items []WorkOrder
	if err := q.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repo) Update(ctx context.Context, wo *WorkOrder) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	tx := db.Model(&WorkOrder{}).Where("id = ?", wo.ID).Updates(map[string]interface{}{
		"customer_name": wo.CustomerName,
		"vehicle":       wo.Vehicle,
		"complaint":     wo.Complaint,
		"status":        wo.Status,
		"updated_at":    wo.UpdatedAt,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		// MySQL reports zero affected rows both for a missing id and for
		// an update that changed nothing; only the former is an error.
		var n int64
		if err := db.Model(&WorkOrder{}).Where("id = ?", wo.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	tx := db.Delete(&WorkOrder{}, id)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
