package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/avdonin/contracts-lite/internal/config"
	"github.com/avdonin/contracts-lite/internal/model"
	"github.com/avdonin/contracts-lite/internal/repository"
	"github.com/avdonin/contracts-lite/internal/validate"
)

type ClientStore interface {
	Count(ctx context.Context, flt *repository.ClientFilter) (int64, error)
	List(ctx context.Context, page, size int, flt *repository.ClientFilter, sort *repository.ClientSort) ([]model.Client, error)
	GetByID(ctx context.Context, id int64) (*model.Client, error)
	Create(ctx context.Context, client model.Client) (*model.Client, error)
	Update(ctx context.Context, id int64, client model.Client) (*model.Client, error)
	Delete(ctx context.Context, id int64) error
}

type ClientService struct {
	clients ClientStore
	cfg     *config.Config
}

func NewClientService(clients ClientStore, cfg *config.Config) *ClientService {
	return &ClientService{clients: clients, cfg: cfg}
}

type ListClientsInput struct {
	Page   int
	Size   int
	Filter *repository.ClientFilter
	Sort   *repository.ClientSort
}

type ClientPage struct {
	Total   int64
	Page    int
	Size    int
	Clients []model.Client
}

func (s *ClientService) List(ctx context.Context, input ListClientsInput) (*ClientPage, error) {
	page, size := input.Page, input.Size
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = s.cfg.Contracts.DefaultPageSize
	}
	if size > s.cfg.Contracts.MaxPageSize {
		size = s.cfg.Contracts.MaxPageSize
	}

	total, err := s.clients.Count(ctx, input.Filter)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients.List(ctx, page, size, input.Filter, input.Sort)
	if err != nil {
		return nil, err
	}
	return &ClientPage{Total: total, Page: page, Size: size, Clients: clients}, nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (*model.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return client, nil
}

func (s *ClientService) Create(ctx context.Context, principal model.Principal, input validate.ClientInput) (*model.Client, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	client, err := validate.Client(input)
	if err != nil {
		return nil, invalid(err)
	}
	return s.clients.Create(ctx, client)
}

func (s *ClientService) Update(ctx context.Context, principal model.Principal, id int64, input validate.ClientInput) (*model.Client, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	client, err := validate.Client(input)
	if err != nil {
		return nil, invalid(err)
	}
	updated, err := s.clients.Update(ctx, id, client)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *ClientService) Delete(ctx context.Context, principal model.Principal, id int64) error {
	if !principal.IsManager() {
		return ErrPermissionDenied
	}
	err := s.clients.Delete(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return ErrNotFound
	}
	return err
}
