package shopcarts

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nyudevops/shopcarts/pkg/db/models"
	pkgerrors "github.com/nyudevops/shopcarts/pkg/errors"
)

// ItemRepo persists shopcart items through GORM.
type ItemRepo struct {
	db *gorm.DB
}

// NewItemRepo binds the repository to the provided DB handle.
func NewItemRepo(db *gorm.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *ItemRepo) WithTx(tx *gorm.DB) ItemRepository {
	if tx == nil {
		return r
	}
	return &ItemRepo{db: tx}
}

// Create inserts a new item row without merging on SKU.
func (r *ItemRepo) Create(ctx context.Context, item *models.ShopcartItem) (*models.ShopcartItem, error) {
	item.ID = 0
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Add inserts the item, or when the cart already holds its SKU, adds the
// amount to the existing row and keeps its name and price.
func (r *ItemRepo) Add(ctx context.Context, item *models.ShopcartItem) (*models.ShopcartItem, error) {
	now := time.Now().UTC()
	item.ID = 0
	item.CreateTime = now
	item.UpdateTime = now

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "sid"}, {Name: "sku"}},
			DoUpdates: clause.Assignments(map[string]any{
				"amount":      gorm.Expr("shopcart_item.amount + excluded.amount"),
				"update_time": gorm.Expr("excluded.update_time"),
			}),
		}).
		Create(item).Error
	if err != nil {
		return nil, err
	}

	var stored models.ShopcartItem
	if err := r.db.WithContext(ctx).
		Where("sid = ? AND sku = ?", item.SID, item.SKU).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// Update replaces sku, name, price and amount of an existing item.
func (r *ItemRepo) Update(ctx context.Context, item *models.ShopcartItem) (*models.ShopcartItem, error) {
	if item == nil || item.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "update called with empty id")
	}

	res := r.db.WithContext(ctx).
		Model(&models.ShopcartItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"sku":         item.SKU,
			"name":        item.Name,
			"price":       item.Price,
			"amount":      item.Amount,
			"update_time": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, item.ID)
}

func (r *ItemRepo) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShopcartItem{}).Error
}

// DeleteByShopcart removes every item of the shopcart.
func (r *ItemRepo) DeleteByShopcart(ctx context.Context, sid int) error {
	return r.db.WithContext(ctx).Where("sid = ?", sid).Delete(&models.ShopcartItem{}).Error
}

func (r *ItemRepo) FindByID(ctx context.Context, id int) (*models.ShopcartItem, error) {
	var item models.ShopcartItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindInShopcart returns the item only if it belongs to the shopcart.
func (r *ItemRepo) FindInShopcart(ctx context.Context, sid, id int) (*models.ShopcartItem, error) {
	var item models.ShopcartItem
	if err := r.db.WithContext(ctx).Where("id = ? AND sid = ?", id, sid).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepo) All(ctx context.Context) ([]models.ShopcartItem, error) {
	return r.Query(ctx, ItemFilter{})
}

func (r *ItemRepo) FindByShopcartID(ctx context.Context, sid int) ([]models.ShopcartItem, error) {
	var items []models.ShopcartItem
	if err := r.db.WithContext(ctx).Where("sid = ?", sid).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Query returns the items matching every set field of filter.
func (r *ItemRepo) Query(ctx context.Context, filter ItemFilter) ([]models.ShopcartItem, error) {
	q := r.db.WithContext(ctx).Model(&models.ShopcartItem{})
	if filter.SKU != nil {
		q = q.Where("sku = ?", *filter.SKU)
	}
	if filter.Name != nil {
		q = q.Where("name = ?", *filter.Name)
	}
	if filter.Price != nil {
		q = q.Where("price = ?", *filter.Price)
	}
	if filter.Amount != nil {
		q = q.Where("amount = ?", *filter.Amount)
	}

	var items []models.ShopcartItem
	if err := q.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindBySKU, FindByName, FindByPrice and FindByAmount are single-field shortcuts over Query.

func (r *ItemRepo) FindBySKU(ctx context.Context, sku int) ([]models.ShopcartItem, error) {
	return r.Query(ctx, ItemFilter{SKU: &sku})
}

func (r *ItemRepo) FindByName(ctx context.Context, name string) ([]models.ShopcartItem, error) {
	return r.Query(ctx, ItemFilter{Name: &name})
}

func (r *ItemRepo) FindByPrice(ctx context.Context, price float64) ([]models.ShopcartItem, error) {
	return r.Query(ctx, ItemFilter{Price: &price})
}

func (r *ItemRepo) FindByAmount(ctx context.Context, amount int) ([]models.ShopcartItem, error) {
	return r.Query(ctx, ItemFilter{Amount: &amount})
}
