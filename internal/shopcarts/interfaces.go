package shopcarts

import (
	"context"

	"gorm.io/gorm"

	"github.com/nyudevops/shopcarts/pkg/db/models"
	"github.com/nyudevops/shopcarts/pkg/orders"
)

// ShopcartRepository defines the shopcart persistence surface required by the service.
type ShopcartRepository interface {
	WithTx(tx *gorm.DB) ShopcartRepository
	Create(ctx context.Context, record *models.Shopcart) (*models.Shopcart, error)
	Update(ctx context.Context, record *models.Shopcart) (*models.Shopcart, error)
	Delete(ctx context.Context, id int) error
	FindByID(ctx context.Context, id int) (*models.Shopcart, error)
	All(ctx context.Context) ([]models.Shopcart, error)
	FindByUser(ctx context.Context, userID int) ([]models.Shopcart, error)
}

// ItemRepository defines the shopcart item persistence surface required by the service.
type ItemRepository interface {
	WithTx(tx *gorm.DB) ItemRepository
	Create(ctx context.Context, item *models.ShopcartItem) (*models.ShopcartItem, error)
	Update(ctx context.Context, item *models.ShopcartItem) (*models.ShopcartItem, error)
	Delete(ctx context.Context, id int) error
	DeleteByShopcart(ctx context.Context, sid int) error
	FindByID(ctx context.Context, id int) (*models.ShopcartItem, error)
	FindInShopcart(ctx context.Context, sid, id int) (*models.ShopcartItem, error)
	All(ctx context.Context) ([]models.ShopcartItem, error)
	FindByShopcartID(ctx context.Context, sid int) ([]models.ShopcartItem, error)
	Query(ctx context.Context, filter ItemFilter) ([]models.ShopcartItem, error)
	Add(ctx context.Context, item *models.ShopcartItem) (*models.ShopcartItem, error)
}

// OrderPlacer hands a cart snapshot to the order service.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order orders.Order) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
