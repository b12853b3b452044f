package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avdonin/contracts-lite/internal/model"
	"github.com/avdonin/contracts-lite/internal/repository"
	"github.com/avdonin/contracts-lite/internal/validate"
)

type fakeClientStore struct {
	clients   map[int64]model.Client
	nextID    int64
	deleteErr error
}

func newFakeClientStore() *fakeClientStore {
	return &fakeClientStore{clients: map[int64]model.Client{}, nextID: 1}
}

func (f *fakeClientStore) Count(_ context.Context, _ *repository.ClientFilter) (int64, error) {
	return int64(len(f.clients)), nil
}

func (f *fakeClientStore) List(_ context.Context, page, size int, _ *repository.ClientFilter, _ *repository.ClientSort) ([]model.Client, error) {
	var all []model.Client
	for id := int64(1); id < f.nextID; id++ {
		if c, ok := f.clients[id]; ok {
			all = append(all, c)
		}
	}
	start := (page - 1) * size
	if start >= len(all) {
		return nil, nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (f *fakeClientStore) GetByID(_ context.Context, id int64) (*model.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeClientStore) Create(_ context.Context, client model.Client) (*model.Client, error) {
	client.ID = f.nextID
	f.clients[client.ID] = client
	f.nextID++
	return &client, nil
}

func (f *fakeClientStore) Update(_ context.Context, id int64, client model.Client) (*model.Client, error) {
	if _, ok := f.clients[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	client.ID = id
	f.clients[id] = client
	return &client, nil
}

func (f *fakeClientStore) Delete(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.clients[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.clients, id)
	return nil
}

func validClientInput() validate.ClientInput {
	return validate.ClientInput{
		LastName:       "Ivanov",
		FirstName:      "Ivan",
		MiddleName:     "Ivanovich",
		PassportSeries: "1234",
		PassportNumber: "567890",
		BirthDate:      "01-01-1990",
		Phone:          "+79990000001",
		Email:          "ivanov@example.com",
		Address:        "Moscow, Tverskaya st. 1",
	}
}

func TestCreateClient(t *testing.T) {
	svc := NewClientService(newFakeClientStore(), testConfig())

	created, err := svc.Create(context.Background(), manager, validClientInput())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Ivanov", created.LastName)
}

func TestCreateClient_InvalidField(t *testing.T) {
	svc := NewClientService(newFakeClientStore(), testConfig())

	input := validClientInput()
	input.PassportSeries = "12"
	_, err := svc.Create(context.Background(), manager, input)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateClient_ViewerDenied(t *testing.T) {
	svc := NewClientService(newFakeClientStore(), testConfig())

	_, err := svc.Create(context.Background(), viewer, validClientInput())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDeleteClient_ReferencedByContract(t *testing.T) {
	store := newFakeClientStore()
	store.deleteErr = repository.ErrForeignKeyViolation
	svc := NewClientService(store, testConfig())

	err := svc.Delete(context.Background(), manager, 1)
	assert.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestGetClient_NotFound(t *testing.T) {
	svc := NewClientService(newFakeClientStore(), testConfig())

	_, err := svc.Get(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListClients(t *testing.T) {
	store := newFakeClientStore()
	svc := NewClientService(store, testConfig())

	for i := 0; i < 3; i++ {
		input := validClientInput()
		input.PassportNumber = string(rune('1'+i)) + "67890"
		_, err := svc.Create(context.Background(), manager, input)
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), ListClientsInput{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Clients, 2)

	page, err = svc.List(context.Background(), ListClientsInput{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Len(t, page.Clients, 1)
}
