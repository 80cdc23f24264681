package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"jewelpos/internal/dto"
	"jewelpos/internal/infra"
	"jewelpos/internal/metrics"
	"jewelpos/internal/model"
	"jewelpos/internal/repository"

	"github.com/rs/zerolog/log"
)

// maxIDAttempts bounds the retries when a generated ID collides with an ID of
// another type sharing the same prefix (ring / ruby). After the first
// collision the sequence jumps past every ID of the prefix, so further
// collisions only come from concurrent inserts of another type.
const maxIDAttempts = 5

type OrnamentService interface {
	AddOrnament(ctx context.Context, req dto.AddOrnamentRequest) (*dto.AddOrnamentResponse, error)
	ScanItem(ctx context.Context, code string) (*dto.ScanResponse, error)
	ListAvailable(ctx context.Context, ornamentType string) ([]dto.AvailableItem, error)
	ListStock(ctx context.Context, filter dto.StockFilter) ([]dto.StockItem, error)
	// QRCodePNG renders the stored label payload of an ornament.
	QRCodePNG(ctx context.Context, ornamentID string) ([]byte, error)
}

type ornamentService struct {
	uow       repository.UnitOfWork
	ornaments repository.OrnamentRepository
	merchants repository.MerchantRepository
	timeout   time.Duration
}

func NewOrnamentService(
	uow repository.UnitOfWork,
	ornaments repository.OrnamentRepository,
	merchants repository.MerchantRepository,
	timeout time.Duration,
) OrnamentService {
	return &ornamentService{uow: uow, ornaments: ornaments, merchants: merchants, timeout: timeout}
}

// ── AddOrnament ───────────────────────────────────────────────────────────────
//   1. Validate input (type prefix, weight, cost, purity, merchant code)
//   2. Check the merchant exists
//   3. BEGIN TX: allocate the per-type sequence, build ID + QR payload, insert
//      behind a savepoint; on an ID collision jump the sequence past the
//      highest ID of the prefix and try again
//   4. COMMIT

func (s *ornamentService) AddOrnament(ctx context.Context, req dto.AddOrnamentRequest) (*dto.AddOrnamentResponse, error) {
	ornamentType := NormalizeType(req.Type)
	if _, err := typePrefix(ornamentType); err != nil {
		return nil, err
	}
	if !req.Weight.IsPositive() {
		return nil, ErrInvalidWeight
	}
	if !req.CostPrice.IsPositive() {
		return nil, ErrInvalidCostPrice
	}
	if err := checkStorable("weight", req.Weight, weightScale, maxWeight); err != nil {
		return nil, err
	}
	if err := checkStorable("cost price", req.CostPrice, moneyScale, maxMoney); err != nil {
		return nil, err
	}
	purity := strings.ToUpper(strings.TrimSpace(req.Purity))
	if !model.ValidPurity(purity) {
		return nil, ErrInvalidPurity
	}
	merchantCode := strings.TrimSpace(req.MerchantCode)
	if merchantCode == "" {
		return nil, ErrMissingMerchantCode
	}

	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.merchants.FindByCode(ctx, merchantCode); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMerchantNotFound.Withf("merchant %s not found", merchantCode)
		}
		return nil, storageError("find merchant", err)
	}

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, storageError("begin", err)
	}
	defer tx.Rollback()

	prefix, _ := typePrefix(ornamentType)
	seq, err := tx.Ornaments().NextSequence(ctx, ornamentType)
	if err != nil {
		return nil, storageError("next sequence", err)
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if attempt > 0 {
			if seq, err = tx.Ornaments().SkipTaken(ctx, ornamentType, prefix); err != nil {
				return nil, storageError("skip taken sequence", err)
			}
		}
		ornamentID, err := GenerateOrnamentID(ornamentType, seq)
		if err != nil {
			return nil, err
		}

		o := &model.Ornament{
			OrnamentID:   ornamentID,
			Type:         ornamentType,
			Weight:       req.Weight,
			Purity:       purity,
			CostPrice:    req.CostPrice,
			MerchantCode: merchantCode,
		}
		if o.QRCode, err = BuildQRPayload(o); err != nil {
			return nil, err
		}

		err = tx.Ornaments().Insert(ctx, o)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			log.Warn().Str("ornament_id", ornamentID).Str("type", ornamentType).
				Msg("ornament ID taken by another type, skipping past the prefix")
			continue
		case errors.Is(err, repository.ErrForeignKey):
			return nil, ErrMerchantNotFound.Withf("merchant %s not found", merchantCode)
		case err != nil:
			return nil, storageError("insert ornament", err)
		}

		if err := tx.Commit(); err != nil {
			return nil, storageError("commit", err)
		}
		metrics.RecordOrnament(ornamentType)
		log.Info().Str("ornament_id", ornamentID).Str("merchant", merchantCode).Msg("ornament added")
		return &dto.AddOrnamentResponse{Success: true, OrnamentID: ornamentID, QRCode: o.QRCode}, nil
	}
	return nil, ErrIDAllocation
}

// ── ScanItem ──────────────────────────────────────────────────────────────────

func (s *ornamentService) ScanItem(ctx context.Context, code string) (*dto.ScanResponse, error) {
	ornamentID, err := ParseScanCode(code)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	o, err := s.findOrnament(ctx, ornamentID)
	if err != nil {
		return nil, err
	}
	if o.IsSold {
		return nil, ErrAlreadySold.Withf("ornament %s is already sold", ornamentID)
	}
	return &dto.ScanResponse{
		OrnamentID:   o.OrnamentID,
		Type:         o.Type,
		Weight:       o.Weight,
		Purity:       o.Purity,
		SellingPrice: SuggestedSellingPrice(o.CostPrice),
	}, nil
}

func (s *ornamentService) findOrnament(ctx context.Context, ornamentID string) (*model.Ornament, error) {
	o, err := s.ornaments.FindByOrnamentID(ctx, ornamentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrnamentNotFound.Withf("ornament %s not found", ornamentID)
	}
	if err != nil {
		return nil, storageError("find ornament", err)
	}
	return o, nil
}

// ── Listings ──────────────────────────────────────────────────────────────────

func (s *ornamentService) ListAvailable(ctx context.Context, ornamentType string) ([]dto.AvailableItem, error) {
	ornamentType = NormalizeType(ornamentType)
	if ornamentType == "" {
		return nil, ErrInvalidType.Withf("type parameter is required")
	}

	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	ornaments, err := s.ornaments.ListAvailable(ctx, ornamentType)
	if err != nil {
		return nil, storageError("list available", err)
	}
	items := make([]dto.AvailableItem, 0, len(ornaments))
	for _, o := range ornaments {
		items = append(items, dto.AvailableItem{
			ID:           o.ID,
			OrnamentID:   o.OrnamentID,
			Type:         o.Type,
			Weight:       o.Weight,
			Purity:       o.Purity,
			CostPrice:    o.CostPrice,
			SellingPrice: SuggestedSellingPrice(o.CostPrice),
			CreatedAt:    o.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items, nil
}

func (s *ornamentService) ListStock(ctx context.Context, filter dto.StockFilter) ([]dto.StockItem, error) {
	filter.Type = NormalizeType(filter.Type)
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if filter.Status != "" && filter.Status != "sold" && filter.Status != "in_stock" {
		return nil, ErrInvalidStatus
	}
	filter.Purity = strings.ToUpper(strings.TrimSpace(filter.Purity))
	filter.Merchant = strings.TrimSpace(filter.Merchant)
	filter.Search = strings.TrimSpace(filter.Search)

	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	ornaments, err := s.ornaments.List(ctx, filter)
	if err != nil {
		return nil, storageError("list stock", err)
	}
	items := make([]dto.StockItem, 0, len(ornaments))
	for _, o := range ornaments {
		items = append(items, stockItem(o))
	}
	return items, nil
}

func stockItem(o model.Ornament) dto.StockItem {
	status := "in_stock"
	if o.IsSold {
		status = "sold"
	}
	merchantName := ""
	if o.Merchant != nil {
		merchantName = o.Merchant.Name
	}
	return dto.StockItem{
		ID:           o.ID,
		OrnamentID:   o.OrnamentID,
		Type:         o.Type,
		Weight:       o.Weight,
		CostPrice:    o.CostPrice,
		Merchant:     o.MerchantCode,
		MerchantName: merchantName,
		Status:       status,
		Purity:       o.Purity,
		AddedDate:    o.CreatedAt.UTC().Format("2006-01-02"),
	}
}

// ── QR label ──────────────────────────────────────────────────────────────────

func (s *ornamentService) QRCodePNG(ctx context.Context, ornamentID string) ([]byte, error) {
	ornamentID, err := ParseScanCode(ornamentID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	o, err := s.findOrnament(ctx, ornamentID)
	if err != nil {
		return nil, err
	}
	return infra.QRCodePNG(o.QRCode, infra.DefaultQRSize)
}
