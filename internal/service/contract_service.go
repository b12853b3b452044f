package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/avdonin/contracts-lite/internal/config"
	"github.com/avdonin/contracts-lite/internal/model"
	"github.com/avdonin/contracts-lite/internal/repository"
)

type ContractStore interface {
	Count(ctx context.Context, flt *repository.ContractFilter) (int64, error)
	List(ctx context.Context, page, size int, flt *repository.ContractFilter, sort *repository.ContractSort) ([]model.Contract, error)
	GetByID(ctx context.Context, id int64) (*model.Contract, error)
	Create(ctx context.Context, contract model.Contract) (*model.Contract, error)
	Update(ctx context.Context, id int64, contract model.Contract) (*model.Contract, error)
	Close(ctx context.Context, id int64) (*model.Contract, error)
	Delete(ctx context.Context, id int64) error
}

type ClientDirectory interface {
	DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

type RegisterGenerator interface {
	Generate(register model.ContractRegister) ([]byte, error)
}

type CardGenerator interface {
	Generate(contract model.Contract) ([]byte, error)
}

type ContractService struct {
	contracts ContractStore
	clients   ClientDirectory
	excel     RegisterGenerator
	pdf       CardGenerator
	cfg       *config.Config
}

func NewContractService(
	contracts ContractStore,
	clients ClientDirectory,
	excel RegisterGenerator,
	pdf CardGenerator,
	cfg *config.Config,
) *ContractService {
	return &ContractService{
		contracts: contracts,
		clients:   clients,
		excel:     excel,
		pdf:       pdf,
		cfg:       cfg,
	}
}

type ContractInput struct {
	Number    string
	ClientID  int64
	Principal float64
	Status    model.Status
	StartDate time.Time
	EndDate   time.Time
}

type ListContractsInput struct {
	Page   int
	Size   int
	Filter *repository.ContractFilter
	Sort   *repository.ContractSort
}

type ContractPage struct {
	Total     int64
	Page      int
	Size      int
	Contracts []model.Contract
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// validateInput mirrors the schema constraints so obviously bad writes never
// reach the database; the engine still has the final word.
func validateInput(input ContractInput) error {
	number := strings.TrimSpace(input.Number)
	if number == "" {
		return fmt.Errorf("%w: number is required", ErrInvalidInput)
	}
	if len([]rune(number)) > 40 {
		return fmt.Errorf("%w: number must be at most 40 characters", ErrInvalidInput)
	}
	if input.ClientID <= 0 {
		return fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if input.Principal <= 0 {
		return fmt.Errorf("%w: principal must be greater than zero", ErrInvalidInput)
	}
	if !input.Status.Valid() {
		return fmt.Errorf("%w: status must be one of Draft, Active, Closed", ErrInvalidInput)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", ErrInvalidInput)
	}
	if input.EndDate.Before(input.StartDate) {
		return fmt.Errorf("%w: end_date must be on or after start_date", ErrInvalidInput)
	}
	return nil
}

func (s *ContractService) normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = s.cfg.Contracts.DefaultPageSize
	}
	if size > s.cfg.Contracts.MaxPageSize {
		size = s.cfg.Contracts.MaxPageSize
	}
	return page, size
}

func (s *ContractService) attachClientNames(ctx context.Context, contracts []model.Contract) error {
	ids := make([]int64, 0, len(contracts))
	for _, c := range contracts {
		ids = append(ids, c.ClientID)
	}
	names, err := s.clients.DisplayNames(ctx, ids)
	if err != nil {
		return err
	}
	for i := range contracts {
		contracts[i].ClientName = names[contracts[i].ClientID]
	}
	return nil
}

func (s *ContractService) List(ctx context.Context, input ListContractsInput) (*ContractPage, error) {
	page, size := s.normalizePage(input.Page, input.Size)

	total, err := s.contracts.Count(ctx, input.Filter)
	if err != nil {
		return nil, err
	}
	contracts, err := s.contracts.List(ctx, page, size, input.Filter, input.Sort)
	if err != nil {
		return nil, err
	}
	if err := s.attachClientNames(ctx, contracts); err != nil {
		return nil, err
	}
	return &ContractPage{
		Total:     total,
		Page:      page,
		Size:      size,
		Contracts: contracts,
	}, nil
}

func (s *ContractService) Get(ctx context.Context, id int64) (*model.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	names, err := s.clients.DisplayNames(ctx, []int64{contract.ClientID})
	if err != nil {
		return nil, err
	}
	contract.ClientName = names[contract.ClientID]
	return contract, nil
}

func (s *ContractService) Create(ctx context.Context, principal model.Principal, input ContractInput) (*model.Contract, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.contracts.Create(ctx, model.Contract{
		Number:    strings.TrimSpace(input.Number),
		ClientID:  input.ClientID,
		Principal: input.Principal,
		Status:    input.Status,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	})
}

func (s *ContractService) Update(ctx context.Context, principal model.Principal, id int64, input ContractInput) (*model.Contract, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	contract, err := s.contracts.Update(ctx, id, model.Contract{
		Number:    strings.TrimSpace(input.Number),
		ClientID:  input.ClientID,
		Principal: input.Principal,
		Status:    input.Status,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contract, nil
}

func (s *ContractService) Close(ctx context.Context, principal model.Principal, id int64) (*model.Contract, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	contract, err := s.contracts.Close(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contract, nil
}

func (s *ContractService) Delete(ctx context.Context, principal model.Principal, id int64) error {
	if !principal.IsManager() {
		return ErrPermissionDenied
	}
	err := s.contracts.Delete(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return ErrNotFound
	}
	return err
}

// ExportRegister builds the contract register workbook for everything
// matching the filter, fetched in MaxPageSize batches.
func (s *ContractService) ExportRegister(
	ctx context.Context,
	flt *repository.ContractFilter,
	sort *repository.ContractSort,
) (*ExportResult, error) {
	total, err := s.contracts.Count(ctx, flt)
	if err != nil {
		return nil, err
	}

	var all []model.Contract
	page := 1
	for {
		batch, err := s.contracts.List(ctx, page, s.cfg.Contracts.MaxPageSize, flt, sort)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < s.cfg.Contracts.MaxPageSize {
			break
		}
		page++
	}
	if err := s.attachClientNames(ctx, all); err != nil {
		return nil, err
	}

	now := time.Now()
	content, err := s.excel.Generate(model.ContractRegister{
		GeneratedAt: now,
		Total:       total,
		Contracts:   all,
	})
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("contracts-register-%s.xlsx", now.Format("20060102-150405")),
		Content:  content,
	}, nil
}

func (s *ContractService) ExportCard(ctx context.Context, id int64) (*ExportResult, error) {
	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*contract)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("contract-%s.pdf", sanitizeFileName(contract.Number)),
		Content:  content,
	}, nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
