package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kaluste-backend/internal/domain"
	"kaluste-backend/pkg/logger"
	"kaluste-backend/pkg/utils"
)

// reservationHoldDays is how long an item stays held before staff follow-up.
const reservationHoldDays = 3

// ReservationUsecase handles customer holds on one-off items.
type ReservationUsecase struct {
	repo        domain.ReservationRepository
	productRepo domain.ProductRepository
}

func NewReservationUsecase(repo domain.ReservationRepository, productRepo domain.ProductRepository) *ReservationUsecase {
	return &ReservationUsecase{repo: repo, productRepo: productRepo}
}

func (uc *ReservationUsecase) Create(ctx context.Context, res *domain.Reservation) error {
	if strings.TrimSpace(res.CustomerName) == "" || strings.TrimSpace(res.CustomerEmail) == "" {
		return fmt.Errorf("customer name and email are required")
	}
	product, err := uc.productRepo.GetProductByID(ctx, res.ProductID)
	if err != nil {
		return fmt.Errorf("product not found")
	}
	if !product.IsActive || product.Stock < 1 {
		return fmt.Errorf("product %s is not available for reservation", product.Name)
	}

	res.ID = utils.GenerateUUID()
	res.ProductName = product.Name
	res.Status = domain.ReservationStatusPending
	expires := time.Now().AddDate(0, 0, reservationHoldDays)
	res.ExpiresAt = &expires

	if err := uc.repo.Create(ctx, res); err != nil {
		return err
	}
	logger.WithContext(ctx).Info().
		Str("reservation_id", res.ID).
		Str("product_id", res.ProductID).
		Msg("reservation created")
	return nil
}

func (uc *ReservationUsecase) List(ctx context.Context, status string, limit, offset int) ([]domain.Reservation, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.repo.GetAll(ctx, status, limit, offset)
}

func (uc *ReservationUsecase) UpdateStatus(ctx context.Context, id, status string) error {
	if !contains(domain.ReservationStatuses, status) {
		return fmt.Errorf("unknown reservation status %q", status)
	}
	return uc.repo.UpdateStatus(ctx, id, status)
}

// TradeInUsecase handles customer offers to sell furniture to the store.
type TradeInUsecase struct {
	repo domain.TradeInRepository
}

func NewTradeInUsecase(repo domain.TradeInRepository) *TradeInUsecase {
	return &TradeInUsecase{repo: repo}
}

func (uc *TradeInUsecase) Create(ctx context.Context, req *domain.TradeInRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerEmail) == "" {
		return fmt.Errorf("customer name and email are required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("a description of the item is required")
	}
	if req.Condition != "" && req.Condition != domain.ConditionUsed && req.Condition != domain.ConditionNew {
		return fmt.Errorf("unknown condition %q", req.Condition)
	}

	req.ID = utils.GenerateUUID()
	req.Status = domain.TradeInStatusPending
	// Customer-submitted requests never carry staff fields
	req.OfferedPrice = nil
	req.AdminNote = ""

	if err := uc.repo.Create(ctx, req); err != nil {
		return err
	}
	logger.WithContext(ctx).Info().Str("trade_in_id", req.ID).Msg("trade-in request received")
	return nil
}

func (uc *TradeInUsecase) List(ctx context.Context, status string, limit, offset int) ([]domain.TradeInRequest, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.repo.GetAll(ctx, status, limit, offset)
}

func (uc *TradeInUsecase) Get(ctx context.Context, id string) (*domain.TradeInRequest, error) {
	return uc.repo.GetByID(ctx, id)
}

// Review updates staff fields on a request: status, offered price, note.
func (uc *TradeInUsecase) Review(ctx context.Context, id, status string, offeredPrice *float64, adminNote string) (*domain.TradeInRequest, error) {
	if !contains(domain.TradeInStatuses, status) {
		return nil, fmt.Errorf("unknown trade-in status %q", status)
	}
	if offeredPrice != nil && *offeredPrice < 0 {
		return nil, fmt.Errorf("offered price must be >= 0")
	}
	if status == domain.TradeInStatusOfferMade && offeredPrice == nil {
		return nil, fmt.Errorf("an offer needs a price")
	}

	req, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Status = status
	if offeredPrice != nil {
		req.OfferedPrice = offeredPrice
	}
	if adminNote != "" {
		req.AdminNote = adminNote
	}
	if err := uc.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
