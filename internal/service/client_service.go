package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"jewelpos/internal/dto"
	"jewelpos/internal/model"
	"jewelpos/internal/repository"

	"github.com/shopspring/decimal"
)

type ClientService interface {
	CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	ListClients(ctx context.Context) ([]dto.ClientResponse, error)
	GetClient(ctx context.Context, id uint) (*dto.ClientDetail, error)
}

type clientService struct {
	repo    repository.ClientRepository
	timeout time.Duration
}

func NewClientService(repo repository.ClientRepository, timeout time.Duration) ClientService {
	return &clientService{repo: repo, timeout: timeout}
}

func (s *clientService) CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	c := &model.Client{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Email:   trimmedOrNil(req.Email),
		Address: trimmedOrNil(req.Address),
	}
	if c.Name == "" {
		return nil, ErrMissingClientName
	}
	if c.Phone == "" {
		return nil, ErrMissingClientPhone
	}

	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateClient
		}
		return nil, storageError("create client", err)
	}
	resp := clientResponse(c)
	return &resp, nil
}

func (s *clientService) ListClients(ctx context.Context) ([]dto.ClientResponse, error) {
	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError("list clients", err)
	}
	out := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, clientResponse(&clients[i]))
	}
	return out, nil
}

func (s *clientService) GetClient(ctx context.Context, id uint) (*dto.ClientDetail, error) {
	if id == 0 {
		return nil, ErrInvalidClientID
	}

	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.repo.FindWithBills(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrClientNotFound.Withf("client %d not found", id)
	}
	if err != nil {
		return nil, storageError("find client", err)
	}

	detail := &dto.ClientDetail{
		ClientResponse: clientResponse(c),
		TotalPurchases: len(c.Bills),
		TotalSpent:     decimal.Zero,
		Purchases:      make([]dto.ClientPurchase, 0, len(c.Bills)),
	}
	// bills arrive newest first
	for i, b := range c.Bills {
		if i == 0 {
			detail.LastPurchase = b.CreatedAt.UTC().Format(time.RFC3339)
		}
		detail.TotalSpent = detail.TotalSpent.Add(b.TotalAmount)
		detail.Purchases = append(detail.Purchases, dto.ClientPurchase{
			BillID:        b.Number(),
			Date:          b.CreatedAt.UTC().Format(time.RFC3339),
			Items:         len(b.Items),
			Amount:        b.TotalAmount,
			PaymentMethod: b.PaymentMethod,
		})
	}
	return detail, nil
}

func clientResponse(c *model.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
