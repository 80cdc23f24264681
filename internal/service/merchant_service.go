package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"jewelpos/internal/dto"
	"jewelpos/internal/model"
	"jewelpos/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type MerchantService interface {
	CreateMerchant(ctx context.Context, req dto.CreateMerchantRequest) (*dto.MerchantResponse, error)
	ListMerchants(ctx context.Context, filter dto.MerchantFilter) ([]dto.MerchantListItem, error)
	GetMerchant(ctx context.Context, code string) (*dto.MerchantDetail, error)
}

type merchantService struct {
	repo    repository.MerchantRepository
	timeout time.Duration
}

func NewMerchantService(repo repository.MerchantRepository, timeout time.Duration) MerchantService {
	return &merchantService{repo: repo, timeout: timeout}
}

func (s *merchantService) CreateMerchant(ctx context.Context, req dto.CreateMerchantRequest) (*dto.MerchantResponse, error) {
	m := &model.Merchant{
		MerchantCode: strings.TrimSpace(req.MerchantCode),
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if m.MerchantCode == "" {
		return nil, ErrMissingMerchantCode
	}
	if m.Name == "" {
		return nil, ErrMissingMerchantName
	}
	if m.Phone == "" {
		return nil, ErrMissingMerchantPhone
	}

	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateMerchant
		}
		return nil, storageError("create merchant", err)
	}
	log.Info().Str("merchant", m.MerchantCode).Msg("merchant created")
	resp := merchantResponse(m)
	return &resp, nil
}

func (s *merchantService) ListMerchants(ctx context.Context, filter dto.MerchantFilter) ([]dto.MerchantListItem, error) {
	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.List(ctx, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, storageError("list merchants", err)
	}
	items := make([]dto.MerchantListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.MerchantListItem{
			MerchantResponse: dto.MerchantResponse{
				MerchantCode: r.MerchantCode,
				Name:         r.Name,
				Phone:        r.Phone,
				CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
			},
			TotalOrnaments: int(r.TotalOrnaments),
			TotalValue:     r.TotalValue,
		})
	}
	return items, nil
}

// GetMerchant returns the merchant with its full inventory. TotalValue covers
// every ornament ever supplied, sold or not.
func (s *merchantService) GetMerchant(ctx context.Context, code string) (*dto.MerchantDetail, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMissingMerchantCode
	}

	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	m, err := s.repo.FindWithOrnaments(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMerchantNotFound.Withf("merchant %s not found", code)
	}
	if err != nil {
		return nil, storageError("find merchant", err)
	}

	detail := &dto.MerchantDetail{
		MerchantResponse: merchantResponse(m),
		TotalOrnaments:   len(m.Ornaments),
		TotalValue:       decimal.Zero,
		Ornaments:        make([]dto.MerchantOrnament, 0, len(m.Ornaments)),
	}
	for _, o := range m.Ornaments {
		if o.IsSold {
			detail.Sold++
		} else {
			detail.InStock++
		}
		detail.TotalValue = detail.TotalValue.Add(o.CostPrice)
		detail.Ornaments = append(detail.Ornaments, dto.MerchantOrnament{
			OrnamentID: o.OrnamentID,
			Type:       o.Type,
			Weight:     o.Weight,
			Purity:     o.Purity,
			CostPrice:  o.CostPrice,
			IsSold:     o.IsSold,
		})
	}
	return detail, nil
}

func merchantResponse(m *model.Merchant) dto.MerchantResponse {
	return dto.MerchantResponse{
		MerchantCode: m.MerchantCode,
		Name:         m.Name,
		Phone:        m.Phone,
		CreatedAt:    m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
