package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/avdonin/contracts-lite/internal/model"
)

type ClientFilter struct {
	LastNameSubstr   string
	FirstNameSubstr  string
	MiddleNameSubstr string
	PhoneSubstr      string
	EmailSubstr      string
	PassportSeries   string
	PassportNumber   string
	BirthFrom        *time.Time
	BirthTo          *time.Time
}

type ClientSort struct {
	By  string // id | last_name | birth_date
	Asc bool
}

var clientSortColumns = map[string]string{
	"id":         "id",
	"last_name":  "last_name",
	"birth_date": "birth_date",
}

const clientColumns = `
	id,
	last_name,
	first_name,
	middle_name,
	TRIM(passport_series) AS passport_series,
	TRIM(passport_number) AS passport_number,
	birth_date,
	phone,
	email,
	address`

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func clientWhere(flt *ClientFilter) (string, []interface{}) {
	if flt == nil {
		return "", nil
	}
	var conds []string
	var args []interface{}
	ilike := func(col, substr string) {
		if substr != "" {
			conds = append(conds, col+" ILIKE ?")
			args = append(args, "%"+substr+"%")
		}
	}
	ilike("last_name", flt.LastNameSubstr)
	ilike("first_name", flt.FirstNameSubstr)
	ilike("middle_name", flt.MiddleNameSubstr)
	ilike("phone", flt.PhoneSubstr)
	ilike("email", flt.EmailSubstr)
	if flt.PassportSeries != "" {
		conds = append(conds, "passport_series = ?")
		args = append(args, flt.PassportSeries)
	}
	if flt.PassportNumber != "" {
		conds = append(conds, "passport_number = ?")
		args = append(args, flt.PassportNumber)
	}
	if flt.BirthFrom != nil {
		conds = append(conds, "birth_date >= ?")
		args = append(args, *flt.BirthFrom)
	}
	if flt.BirthTo != nil {
		conds = append(conds, "birth_date <= ?")
		args = append(args, *flt.BirthTo)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func clientOrder(sort *ClientSort) string {
	if sort == nil {
		return "ORDER BY id ASC"
	}
	col, ok := clientSortColumns[strings.ToLower(sort.By)]
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if !sort.Asc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", col, dir)
}

func (r *ClientRepository) Count(ctx context.Context, flt *ClientFilter) (int64, error) {
	wsql, args := clientWhere(flt)
	var count int64
	err := r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM clients "+wsql, args...).
		Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ClientRepository) List(
	ctx context.Context,
	page, size int,
	flt *ClientFilter,
	sort *ClientSort,
) ([]model.Client, error) {
	if page <= 0 || size <= 0 {
		return nil, fmt.Errorf("page and size must be positive")
	}
	wsql, args := clientWhere(flt)
	osql := clientOrder(sort)
	args = append(args, size, (page-1)*size)

	var clients []model.Client
	err := r.db.WithContext(ctx).
		Raw(fmt.Sprintf(`SELECT %s FROM clients %s %s LIMIT ? OFFSET ?`, clientColumns, wsql, osql), args...).
		Scan(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT %s
		FROM clients
		WHERE id = ?
		LIMIT 1
	`, clientColumns), id).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &client, nil
}

func (r *ClientRepository) Create(ctx context.Context, client model.Client) (*model.Client, error) {
	var saved model.Client
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		INSERT INTO clients (
			last_name, first_name, middle_name,
			passport_series, passport_number,
			birth_date, phone, email, address
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING %s
	`, clientColumns),
		client.LastName,
		client.FirstName,
		client.MiddleName,
		client.PassportSeries,
		client.PassportNumber,
		client.BirthDate,
		client.Phone,
		client.Email,
		client.Address,
	).Scan(&saved).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &saved, nil
}

func (r *ClientRepository) Update(ctx context.Context, id int64, client model.Client) (*model.Client, error) {
	var saved model.Client
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		UPDATE clients
		SET last_name = ?, first_name = ?, middle_name = ?,
			passport_series = ?, passport_number = ?,
			birth_date = ?, phone = ?, email = ?, address = ?
		WHERE id = ?
		RETURNING %s
	`, clientColumns),
		client.LastName,
		client.FirstName,
		client.MiddleName,
		client.PassportSeries,
		client.PassportNumber,
		client.BirthDate,
		client.Phone,
		client.Email,
		client.Address,
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

// Delete fails with ErrForeignKeyViolation while contracts still reference
// the client; the restriction lives in the schema, not here.
func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM clients WHERE id = ?`, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DisplayNames resolves client ids to display names in one query.
func (r *ClientRepository) DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	placeholders := make([]string, len(unique))
	args := make([]interface{}, len(unique))
	for i, id := range unique {
		placeholders[i] = "?"
		args[i] = id
	}

	var rows []struct {
		ID   int64
		Name string
	}
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT
			id,
			TRIM(CONCAT(
				COALESCE(last_name, ''), ' ',
				COALESCE(first_name, ''), ' ',
				COALESCE(middle_name, '')
			)) AS name
		FROM clients
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", ")), args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}
