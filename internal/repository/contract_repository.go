package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/avdonin/contracts-lite/internal/model"
)

type ContractFilter struct {
	NumberSubstr string
	ClientID     int64
	Status       model.Status
	StartFrom    *time.Time
	StartTo      *time.Time
	EndFrom      *time.Time
	EndTo        *time.Time
}

type ContractSort struct {
	By  string // id | number | end_date
	Asc bool
}

var contractSortColumns = map[string]string{
	"id":       "c.id",
	"number":   "c.number",
	"end_date": "c.end_date",
}

const contractColumns = `
	id,
	number,
	client_id,
	principal,
	status,
	start_date,
	end_date,
	created_at`

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func contractWhere(flt *ContractFilter) (string, []interface{}) {
	if flt == nil {
		return "", nil
	}
	var conds []string
	var args []interface{}
	if flt.NumberSubstr != "" {
		conds = append(conds, "c.number ILIKE ?")
		args = append(args, "%"+flt.NumberSubstr+"%")
	}
	if flt.ClientID > 0 {
		conds = append(conds, "c.client_id = ?")
		args = append(args, flt.ClientID)
	}
	if flt.Status != "" {
		conds = append(conds, "c.status = ?")
		args = append(args, string(flt.Status))
	}
	if flt.StartFrom != nil {
		conds = append(conds, "c.start_date >= ?")
		args = append(args, *flt.StartFrom)
	}
	if flt.StartTo != nil {
		conds = append(conds, "c.start_date <= ?")
		args = append(args, *flt.StartTo)
	}
	if flt.EndFrom != nil {
		conds = append(conds, "c.end_date >= ?")
		args = append(args, *flt.EndFrom)
	}
	if flt.EndTo != nil {
		conds = append(conds, "c.end_date <= ?")
		args = append(args, *flt.EndTo)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// contractOrder resolves the sort spec against the column whitelist; anything
// outside it falls back to newest-first by id.
func contractOrder(sort *ContractSort) string {
	if sort == nil {
		return "ORDER BY c.id DESC"
	}
	col, ok := contractSortColumns[strings.ToLower(sort.By)]
	if !ok {
		col = "c.id"
	}
	dir := "DESC"
	if sort.Asc {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s", col, dir)
}

func (r *ContractRepository) Count(ctx context.Context, flt *ContractFilter) (int64, error) {
	wsql, args := contractWhere(flt)
	var count int64
	err := r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM contracts c "+wsql, args...).
		Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// List returns page (1-based) of the given size.
func (r *ContractRepository) List(
	ctx context.Context,
	page, size int,
	flt *ContractFilter,
	sort *ContractSort,
) ([]model.Contract, error) {
	if page <= 0 || size <= 0 {
		return nil, fmt.Errorf("page and size must be positive")
	}
	wsql, args := contractWhere(flt)
	osql := contractOrder(sort)
	args = append(args, size, (page-1)*size)

	var contracts []model.Contract
	err := r.db.WithContext(ctx).
		Raw(fmt.Sprintf(`SELECT %s FROM contracts c %s %s LIMIT ? OFFSET ?`, contractColumns, wsql, osql), args...).
		Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id int64) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT %s
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, contractColumns), id).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (r *ContractRepository) Create(ctx context.Context, contract model.Contract) (*model.Contract, error) {
	var saved model.Contract
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		INSERT INTO contracts (number, client_id, principal, status, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING %s
	`, contractColumns),
		contract.Number,
		contract.ClientID,
		contract.Principal,
		string(contract.Status),
		contract.StartDate,
		contract.EndDate,
	).Scan(&saved).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &saved, nil
}

func (r *ContractRepository) Update(ctx context.Context, id int64, contract model.Contract) (*model.Contract, error) {
	var saved model.Contract
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		UPDATE contracts
		SET number = ?, client_id = ?, principal = ?, status = ?, start_date = ?, end_date = ?
		WHERE id = ?
		RETURNING %s
	`, contractColumns),
		contract.Number,
		contract.ClientID,
		contract.Principal,
		string(contract.Status),
		contract.StartDate,
		contract.EndDate,
		id,
	).Scan(&saved).Error
	if err != nil {
		return nil, translateError(err)
	}
	if saved.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}

// Close marks the contract Closed regardless of its current status.
func (r *ContractRepository) Close(ctx context.Context, id int64) (*model.Contract, error) {
	var saved model.Contract
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		UPDATE contracts
		SET status = ?
		WHERE id = ?
		RETURNING %s
	`, contractColumns), string(model.StatusClosed), id).Scan(&saved).Error
	if err != nil {
		return nil, translateError(err)
	}
	if saved.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}

func (r *ContractRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM contracts WHERE id = ?`, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
