package shopcarts

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nyudevops/shopcarts/pkg/db/models"
	pkgerrors "github.com/nyudevops/shopcarts/pkg/errors"
)

// ShopcartRepo persists shopcarts through GORM.
type ShopcartRepo struct {
	db *gorm.DB
}

// NewShopcartRepo binds the repository to the provided DB handle.
func NewShopcartRepo(db *gorm.DB) *ShopcartRepo {
	return &ShopcartRepo{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *ShopcartRepo) WithTx(tx *gorm.DB) ShopcartRepository {
	if tx == nil {
		return r
	}
	return &ShopcartRepo{db: tx}
}

// Create inserts a shopcart. Any id already set on record is discarded.
func (r *ShopcartRepo) Create(ctx context.Context, record *models.Shopcart) (*models.Shopcart, error) {
	record.ID = 0
	record.Items = nil
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *ShopcartRepo) Update(ctx context.Context, record *models.Shopcart) (*models.Shopcart, error) {
	if record == nil || record.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "update called with empty id")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Shopcart{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"user_id":     record.UserID,
			"update_time": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, record.ID)
}

// Delete removes the shopcart row only; items are removed by the caller or the FK cascade.
func (r *ShopcartRepo) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Shopcart{}).Error
}

func (r *ShopcartRepo) FindByID(ctx context.Context, id int) (*models.Shopcart, error) {
	var record models.Shopcart
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ShopcartRepo) All(ctx context.Context) ([]models.Shopcart, error) {
	var records []models.Shopcart
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ShopcartRepo) FindByUser(ctx context.Context, userID int) ([]models.Shopcart, error) {
	var records []models.Shopcart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
