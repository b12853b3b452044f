package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avdonin/contracts-lite/internal/auth"
	"github.com/avdonin/contracts-lite/internal/config"
	"github.com/avdonin/contracts-lite/internal/http/middleware"
	"github.com/avdonin/contracts-lite/internal/model"
	"github.com/avdonin/contracts-lite/internal/repository"
	"github.com/avdonin/contracts-lite/internal/service"
)

type memContractStore struct {
	contracts map[int64]model.Contract
	nextID    int64
	createErr error
}

func newMemContractStore() *memContractStore {
	return &memContractStore{contracts: map[int64]model.Contract{}, nextID: 1}
}

func (m *memContractStore) Count(_ context.Context, _ *repository.ContractFilter) (int64, error) {
	return int64(len(m.contracts)), nil
}

func (m *memContractStore) List(_ context.Context, page, size int, _ *repository.ContractFilter, _ *repository.ContractSort) ([]model.Contract, error) {
	var all []model.Contract
	for id := int64(1); id < m.nextID; id++ {
		if c, ok := m.contracts[id]; ok {
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

func (m *memContractStore) GetByID(_ context.Context, id int64) (*model.Contract, error) {
	c, ok := m.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (m *memContractStore) Create(_ context.Context, contract model.Contract) (*model.Contract, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	contract.ID = m.nextID
	contract.CreatedAt = time.Now()
	m.contracts[contract.ID] = contract
	m.nextID++
	return &contract, nil
}

func (m *memContractStore) Update(_ context.Context, id int64, contract model.Contract) (*model.Contract, error) {
	existing, ok := m.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	contract.ID = id
	contract.CreatedAt = existing.CreatedAt
	m.contracts[id] = contract
	return &contract, nil
}

func (m *memContractStore) Close(_ context.Context, id int64) (*model.Contract, error) {
	existing, ok := m.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	existing.Status = model.StatusClosed
	m.contracts[id] = existing
	return &existing, nil
}

func (m *memContractStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.contracts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.contracts, id)
	return nil
}

type memClientStore struct {
	names     map[int64]string
	deleteErr error
}

func (m *memClientStore) DisplayNames(_ context.Context, ids []int64) (map[int64]string, error) {
	result := map[int64]string{}
	for _, id := range ids {
		if name, ok := m.names[id]; ok {
			result[id] = name
		}
	}
	return result, nil
}

func (m *memClientStore) Count(_ context.Context, _ *repository.ClientFilter) (int64, error) {
	return 0, nil
}

func (m *memClientStore) List(_ context.Context, _, _ int, _ *repository.ClientFilter, _ *repository.ClientSort) ([]model.Client, error) {
	return nil, nil
}

func (m *memClientStore) GetByID(_ context.Context, _ int64) (*model.Client, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memClientStore) Create(_ context.Context, client model.Client) (*model.Client, error) {
	client.ID = 1
	return &client, nil
}

func (m *memClientStore) Update(_ context.Context, _ int64, _ model.Client) (*model.Client, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memClientStore) Delete(_ context.Context, _ int64) error {
	return m.deleteErr
}

type nopRegisterGenerator struct{}

func (nopRegisterGenerator) Generate(_ model.ContractRegister) ([]byte, error) {
	return []byte("workbook"), nil
}

type nopCardGenerator struct{}

func (nopCardGenerator) Generate(_ model.Contract) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func testRouter(t *testing.T, contracts *memContractStore, clients *memClientStore, principal model.Principal) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Contracts: config.ContractsConfig{DefaultPageSize: 10, MaxPageSize: 100},
	}
	contractService := service.NewContractService(contracts, clients, nopRegisterGenerator{}, nopCardGenerator{}, cfg)
	clientService := service.NewClientService(clients, cfg)
	handler := NewHandler(contractService, clientService, zerolog.Nop())

	stubAuth := func(c *gin.Context) {
		c.Set("principal", principal)
		c.Next()
	}
	return NewRouter(handler, stubAuth, "test")
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

var managerPrincipal = model.Principal{UserID: 1, Role: model.RoleManager}
var viewerPrincipal = model.Principal{UserID: 2, Role: model.RoleViewer}

func validContractBody() map[string]interface{} {
	return map[string]interface{}{
		"number":     "C-001",
		"client_id":  1,
		"principal":  1000.00,
		"status":     "Draft",
		"start_date": "2024-01-01",
		"end_date":   "2024-12-31",
	}
}

func TestHealth(t *testing.T) {
	router := testRouter(t, newMemContractStore(), &memClientStore{}, managerPrincipal)

	resp := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCreateContract_Created(t *testing.T) {
	store := newMemContractStore()
	router := testRouter(t, store, &memClientStore{names: map[int64]string{1: "Ivanov Ivan"}}, managerPrincipal)

	resp := doJSON(t, router, http.MethodPost, "/contracts", validContractBody())
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var body contractResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.ID)
	assert.Equal(t, "C-001", body.Number)
	assert.Equal(t, "Draft", body.Status)
	assert.NotEmpty(t, body.CreatedAt)
}

func TestCreateContract_InvalidStatus(t *testing.T) {
	router := testRouter(t, newMemContractStore(), &memClientStore{}, managerPrincipal)

	body := validContractBody()
	body["status"] = "Suspended"
	resp := doJSON(t, router, http.MethodPost, "/contracts", body)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateContract_DatesOutOfOrder(t *testing.T) {
	router := testRouter(t, newMemContractStore(), &memClientStore{}, managerPrincipal)

	body := validContractBody()
	body["start_date"] = "2024-12-31"
	body["end_date"] = "2024-01-01"
	resp := doJSON(t, router, http.MethodPost, "/contracts", body)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateContract_ViewerForbidden(t *testing.T) {
	router := testRouter(t, newMemContractStore(), &memClientStore{}, viewerPrincipal)

	resp := doJSON(t, router, http.MethodPost, "/contracts", validContractBody())
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestCreateContract_DuplicateNumberConflict(t *testing.T) {
	store := newMemContractStore()
	store.createErr = repository.ErrUniqueViolation
	router := testRouter(t, store, &memClientStore{}, managerPrincipal)

	resp := doJSON(t, router, http.MethodPost, "/contracts", validContractBody())
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestListContracts(t *testing.T) {
	store := newMemContractStore()
	router := testRouter(t, store, &memClientStore{names: map[int64]string{1: "Ivanov Ivan"}}, managerPrincipal)

	resp := doJSON(t, router, http.MethodPost, "/contracts", validContractBody())
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/contracts?page=1&size=10&status=Draft", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Total int64              `json:"total"`
		Items []contractResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Total)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Ivanov Ivan", body.Items[0].ClientName)
}

func TestListContracts_BadStatusFilter(t *testing.T) {
	router := testRouter(t, newMemContractStore(), &memClientStore{}, managerPrincipal)

	resp := doJSON(t, router, http.MethodGet, "/contracts?status=Open", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetContract_NotFound(t *testing.T) {
	router := testRouter(t, newMemContractStore(), &memClientStore{}, managerPrincipal)

	resp := doJSON(t, router, http.MethodGet, "/contracts/42", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetContract_BadID(t *testing.T) {
	router := testRouter(t, newMemContractStore(), &memClientStore{}, managerPrincipal)

	resp := doJSON(t, router, http.MethodGet, "/contracts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCloseContract(t *testing.T) {
	store := newMemContractStore()
	router := testRouter(t, store, &memClientStore{}, managerPrincipal)

	resp := doJSON(t, router, http.MethodPost, "/contracts", validContractBody())
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doJSON(t, router, http.MethodPost, "/contracts/1/close", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body contractResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Closed", body.Status)
}

func TestDeleteContract(t *testing.T) {
	store := newMemContractStore()
	router := testRouter(t, store, &memClientStore{}, managerPrincipal)

	resp := doJSON(t, router, http.MethodPost, "/contracts", validContractBody())
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doJSON(t, router, http.MethodDelete, "/contracts/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = doJSON(t, router, http.MethodDelete, "/contracts/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteClient_ReferencedConflict(t *testing.T) {
	clients := &memClientStore{deleteErr: repository.ErrForeignKeyViolation}
	router := testRouter(t, newMemContractStore(), clients, managerPrincipal)

	resp := doJSON(t, router, http.MethodDelete, "/clients/1", nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestExportContracts(t *testing.T) {
	store := newMemContractStore()
	router := testRouter(t, store, &memClientStore{}, managerPrincipal)

	resp := doJSON(t, router, http.MethodGet, "/contracts/export", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "workbook", resp.Body.String())
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "contracts-register-")
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Contracts: config.ContractsConfig{DefaultPageSize: 10, MaxPageSize: 100}}
	contractService := service.NewContractService(newMemContractStore(), &memClientStore{}, nopRegisterGenerator{}, nopCardGenerator{}, cfg)
	clientService := service.NewClientService(&memClientStore{}, cfg)
	handler := NewHandler(contractService, clientService, zerolog.Nop())
	router := NewRouter(handler, middleware.Auth(auth.NewParser("secret")), "test")

	resp := doJSON(t, router, http.MethodGet, "/contracts", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
