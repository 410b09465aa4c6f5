package shopcarts

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nyudevops/shopcarts/pkg/db"
	"github.com/nyudevops/shopcarts/pkg/db/models"
	pkgerrors "github.com/nyudevops/shopcarts/pkg/errors"
	"github.com/nyudevops/shopcarts/pkg/logger"
	"github.com/nyudevops/shopcarts/pkg/metrics"
	"github.com/nyudevops/shopcarts/pkg/orders"
)

const itemSKUConstraint = "ux_shopcart_item_sid_sku"

// Service exposes shopcart and shopcart item operations.
type Service interface {
	CreateShopcart(ctx context.Context, input ShopcartPayload) (*ShopcartDTO, error)
	ListShopcarts(ctx context.Context, userID *int) ([]ShopcartDTO, error)
	GetShopcart(ctx context.Context, id int) (*ShopcartDetailDTO, error)
	DeleteShopcart(ctx context.Context, id int) error

	ListItems(ctx context.Context, sid int) ([]ShopcartItemDTO, error)
	AddItem(ctx context.Context, sid int, input ShopcartItemPayload) (*ShopcartItemDTO, error)
	GetItem(ctx context.Context, sid, itemID int) (*ShopcartItemDTO, error)
	UpdateItem(ctx context.Context, sid, itemID int, input ShopcartItemPayload) (*ShopcartItemDTO, error)
	DeleteItem(ctx context.Context, sid, itemID int) error
	QueryItems(ctx context.Context, filter ItemFilter) ([]ShopcartItemDTO, error)

	PlaceOrder(ctx context.Context, sid int) error
}

// ServiceParams groups the service dependencies.
type ServiceParams struct {
	Shopcarts ShopcartRepository
	Items     ItemRepository
	Tx        txRunner
	Orders    OrderPlacer
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
}

type service struct {
	shopcarts ShopcartRepository
	items     ItemRepository
	tx        txRunner
	orders    OrderPlacer
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
}

// NewService builds the shopcart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Shopcarts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shopcart repository is required")
	}
	if params.Items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item repository is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order placer is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		shopcarts: params.Shopcarts,
		items:     params.Items,
		tx:        params.Tx,
		orders:    params.Orders,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

// CreateShopcart returns the user's existing shopcart or creates one. Two
// concurrent creates for one user collapse onto the same row via the unique
// user_id index.
func (s *service) CreateShopcart(ctx context.Context, input ShopcartPayload) (*ShopcartDTO, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id must be a positive integer")
	}

	if existing, err := s.findUserShopcart(ctx, input.UserID); err != nil || existing != nil {
		return existing, err
	}

	record, err := s.shopcarts.Create(ctx, &models.Shopcart{UserID: input.UserID})
	if err != nil {
		if db.IsUniqueViolation(err, "ux_shopcart_user_id") {
			if existing, findErr := s.findUserShopcart(ctx, input.UserID); findErr != nil || existing != nil {
				return existing, findErr
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create shopcart")
	}

	s.logg.Info(s.logg.WithShopcartID(ctx, record.ID), "shopcart created")
	dto := ToShopcartDTO(*record)
	return &dto, nil
}

func (s *service) findUserShopcart(ctx context.Context, userID int) (*ShopcartDTO, error) {
	records, err := s.shopcarts.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load shopcart")
	}
	if len(records) == 0 {
		return nil, nil
	}
	dto := ToShopcartDTO(records[0])
	return &dto, nil
}

func (s *service) ListShopcarts(ctx context.Context, userID *int) ([]ShopcartDTO, error) {
	var (
		records []models.Shopcart
		err     error
	)
	if userID != nil {
		records, err = s.shopcarts.FindByUser(ctx, *userID)
	} else {
		records, err = s.shopcarts.All(ctx)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list shopcarts")
	}
	return toShopcartDTOs(records), nil
}

func (s *service) GetShopcart(ctx context.Context, id int) (*ShopcartDetailDTO, error) {
	record, err := s.loadShopcart(ctx, s.shopcarts, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.FindByShopcartID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load shopcart items")
	}
	return &ShopcartDetailDTO{
		ShopcartDTO: ToShopcartDTO(*record),
		Items:       toShopcartItemDTOs(items),
	}, nil
}

// DeleteShopcart removes the shopcart and its items. Deleting a missing cart succeeds.
func (s *service) DeleteShopcart(ctx context.Context, id int) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.deleteShopcartTx(ctx, tx, id)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete shopcart")
	}
	s.logg.Info(s.logg.WithShopcartID(ctx, id), "shopcart deleted")
	return nil
}

func (s *service) deleteShopcartTx(ctx context.Context, tx *gorm.DB, id int) error {
	if err := s.items.WithTx(tx).DeleteByShopcart(ctx, id); err != nil {
		return err
	}
	return s.shopcarts.WithTx(tx).Delete(ctx, id)
}

func (s *service) ListItems(ctx context.Context, sid int) ([]ShopcartItemDTO, error) {
	if _, err := s.loadShopcart(ctx, s.shopcarts, sid); err != nil {
		return nil, err
	}
	items, err := s.items.FindByShopcartID(ctx, sid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list shopcart items")
	}
	return toShopcartItemDTOs(items), nil
}

// AddItem inserts the item into the shopcart, merging amounts when the SKU is already present.
func (s *service) AddItem(ctx context.Context, sid int, input ShopcartItemPayload) (*ShopcartItemDTO, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	var stored *models.ShopcartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.loadShopcart(ctx, s.shopcarts.WithTx(tx), sid); err != nil {
			return err
		}
		item := input.toModel(sid)
		added, err := s.items.WithTx(tx).Add(ctx, &item)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to add shopcart item")
		}
		stored = added
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ToShopcartItemDTO(*stored)
	return &dto, nil
}

func (s *service) GetItem(ctx context.Context, sid, itemID int) (*ShopcartItemDTO, error) {
	item, err := s.loadItem(ctx, s.items, sid, itemID)
	if err != nil {
		return nil, err
	}
	dto := ToShopcartItemDTO(*item)
	return &dto, nil
}

// UpdateItem replaces sku, name, price and amount of an item in the shopcart.
func (s *service) UpdateItem(ctx context.Context, sid, itemID int, input ShopcartItemPayload) (*ShopcartItemDTO, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	var updated *models.ShopcartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		items := s.items.WithTx(tx)
		if _, err := s.loadItem(ctx, items, sid, itemID); err != nil {
			return err
		}
		item := input.toModel(sid)
		item.ID = itemID
		result, err := items.Update(ctx, &item)
		if err != nil {
			if db.IsUniqueViolation(err, itemSKUConstraint) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("shopcart already holds an item with sku %d", input.SKU))
			}
			return mapRecordError(err, "shopcart item", "failed to update shopcart item")
		}
		updated = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ToShopcartItemDTO(*updated)
	return &dto, nil
}

// DeleteItem removes the item if it belongs to the shopcart. Missing items are not an error.
func (s *service) DeleteItem(ctx context.Context, sid, itemID int) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		items := s.items.WithTx(tx)
		if _, err := items.FindInShopcart(ctx, sid, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		return items.Delete(ctx, itemID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete shopcart item")
	}
	return nil
}

func (s *service) QueryItems(ctx context.Context, filter ItemFilter) ([]ShopcartItemDTO, error) {
	items, err := s.items.Query(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to query shopcart items")
	}
	return toShopcartItemDTOs(items), nil
}

// PlaceOrder sends the cart contents to the order service and deletes the
// cart once the order is accepted. A rejected order leaves the cart intact.
func (s *service) PlaceOrder(ctx context.Context, sid int) error {
	ctx = s.logg.WithShopcartID(ctx, sid)

	cart, err := s.loadShopcart(ctx, s.shopcarts, sid)
	if err != nil {
		return err
	}
	items, err := s.items.FindByShopcartID(ctx, sid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load shopcart items")
	}
	if len(items) == 0 {
		s.metrics.IncResult(metrics.OrderResultEmpty)
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("shopcart with id '%d' has no items", sid))
	}

	order := orders.Order{
		CustomerID: cart.UserID,
		Items:      make([]orders.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		order.Items = append(order.Items, orders.NewOrderItem(item.ID, item.SKU, item.Amount, item.Price))
	}

	if err := s.orders.PlaceOrder(ctx, order); err != nil {
		s.metrics.IncResult(metrics.OrderResultRejected)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "order service rejected shopcart")
		return err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.deleteShopcartTx(ctx, tx, sid)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order placed but shopcart cleanup failed")
	}

	s.metrics.IncResult(metrics.OrderResultPlaced)
	s.metrics.AddItems(len(items))
	s.logg.Info(s.logg.WithField(ctx, "item_count", len(items)), "order placed")
	return nil
}

func (s *service) loadShopcart(ctx context.Context, repo ShopcartRepository, id int) (*models.Shopcart, error) {
	record, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRecordError(err, fmt.Sprintf("shopcart with id '%d'", id), "failed to load shopcart")
	}
	return record, nil
}

func (s *service) loadItem(ctx context.Context, repo ItemRepository, sid, itemID int) (*models.ShopcartItem, error) {
	item, err := repo.FindInShopcart(ctx, sid, itemID)
	if err != nil {
		return nil, mapRecordError(err, fmt.Sprintf("item with id '%d' in shopcart '%d'", itemID, sid), "failed to load shopcart item")
	}
	return item, nil
}

func mapRecordError(err error, subject, fallback string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, subject+" was not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallback)
}

// validateItemInput guards callers that bypass request validation.
func validateItemInput(input ShopcartItemPayload) error {
	details := map[string]string{}
	if input.SKU <= 0 {
		details["sku"] = "must be a positive integer"
	}
	if input.Name == "" {
		details["name"] = "is required"
	} else if len(input.Name) > 255 {
		details["name"] = "must be at most 255"
	}
	if input.Price == nil {
		details["price"] = "is required"
	} else if *input.Price < 0 {
		details["price"] = "must be at least 0"
	}
	if input.Amount <= 0 {
		details["amount"] = "must be a positive integer"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}
