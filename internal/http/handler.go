package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avdonin/contracts-lite/internal/http/middleware"
	"github.com/avdonin/contracts-lite/internal/model"
	"github.com/avdonin/contracts-lite/internal/repository"
	"github.com/avdonin/contracts-lite/internal/service"
)

const dateLayout = "2006-01-02"

type Handler struct {
	contracts *service.ContractService
	clients   *service.ClientService
	log       zerolog.Logger
}

func NewHandler(contracts *service.ContractService, clients *service.ClientService, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, clients: clients, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/contracts", h.listContracts)
	protected.GET("/contracts/export", h.exportContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts/:id/card", h.contractCard)
	protected.POST("/contracts", h.createContract)
	protected.PUT("/contracts/:id", h.updateContract)
	protected.POST("/contracts/:id/close", h.closeContract)
	protected.DELETE("/contracts/:id", h.deleteContract)

	protected.GET("/clients", h.listClients)
	protected.GET("/clients/:id", h.getClient)
	protected.POST("/clients", h.createClient)
	protected.PUT("/clients/:id", h.updateClient)
	protected.DELETE("/clients/:id", h.deleteClient)
}

type contractRequest struct {
	Number    string  `json:"number" binding:"required"`
	ClientID  int64   `json:"client_id" binding:"required"`
	Principal float64 `json:"principal" binding:"required"`
	Status    string  `json:"status" binding:"required"`
	StartDate string  `json:"start_date" binding:"required"`
	EndDate   string  `json:"end_date" binding:"required"`
}

type contractResponse struct {
	ID         int64   `json:"id"`
	Number     string  `json:"number"`
	ClientID   int64   `json:"client_id"`
	ClientName string  `json:"client_name,omitempty"`
	Principal  float64 `json:"principal"`
	Status     string  `json:"status"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	CreatedAt  string  `json:"created_at"`
}

func toContractResponse(c model.Contract) contractResponse {
	return contractResponse{
		ID:         c.ID,
		Number:     c.Number,
		ClientID:   c.ClientID,
		ClientName: c.ClientName,
		Principal:  c.Principal,
		Status:     string(c.Status),
		StartDate:  c.StartDate.Format(dateLayout),
		EndDate:    c.EndDate.Format(dateLayout),
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) listContracts(c *gin.Context) {
	input, err := parseContractListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.contracts.List(c.Request.Context(), *input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	items := make([]contractResponse, 0, len(page.Contracts))
	for _, contract := range page.Contracts {
		items = append(items, toContractResponse(contract))
	}
	c.JSON(http.StatusOK, gin.H{
		"total": page.Total,
		"page":  page.Page,
		"size":  page.Size,
		"items": items,
	})
}

func (h *Handler) getContract(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	contract, err := h.contracts.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(*contract))
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	input, err := bindContractRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.contracts.Create(c.Request.Context(), principal, *input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toContractResponse(*contract))
}

func (h *Handler) updateContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	input, err := bindContractRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.contracts.Update(c.Request.Context(), principal, id, *input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(*contract))
}

func (h *Handler) closeContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	contract, err := h.contracts.Close(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(*contract))
}

func (h *Handler) deleteContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.contracts.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportContracts(c *gin.Context) {
	input, err := parseContractListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.contracts.ExportRegister(c.Request.Context(), input.Filter, input.Sort)
	if err != nil {
		h.handleError(c, err)
		return
	}
	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) contractCard(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	result, err := h.contracts.ExportCard(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrUniqueViolation),
		errors.Is(err, repository.ErrCheckViolation),
		errors.Is(err, repository.ErrForeignKeyViolation),
		errors.Is(err, repository.ErrNotNullViolation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func bindContractRequest(c *gin.Context) (*service.ContractInput, error) {
	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, errors.New("invalid start_date")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, errors.New("invalid end_date")
	}
	return &service.ContractInput{
		Number:    req.Number,
		ClientID:  req.ClientID,
		Principal: req.Principal,
		Status:    status,
		StartDate: start,
		EndDate:   end,
	}, nil
}

func parseContractListQuery(c *gin.Context) (*service.ListContractsInput, error) {
	page, err := parsePositiveInt(c.Query("page"), 1)
	if err != nil {
		return nil, errors.New("invalid page")
	}
	size, err := parsePositiveInt(c.Query("size"), 0)
	if err != nil {
		return nil, errors.New("invalid size")
	}

	flt := &repository.ContractFilter{
		NumberSubstr: strings.TrimSpace(c.Query("number")),
	}
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || clientID <= 0 {
			return nil, errors.New("invalid client_id")
		}
		flt.ClientID = clientID
	}
	if raw := c.Query("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		flt.Status = status
	}
	for query, dest := range map[string]**time.Time{
		"start_from": &flt.StartFrom,
		"start_to":   &flt.StartTo,
		"end_from":   &flt.EndFrom,
		"end_to":     &flt.EndTo,
	} {
		if raw := c.Query(query); raw != "" {
			parsed, err := parseDate(raw)
			if err != nil {
				return nil, errors.New("invalid " + query)
			}
			*dest = &parsed
		}
	}

	sort := &repository.ContractSort{
		By:  strings.TrimSpace(c.DefaultQuery("sort_by", "id")),
		Asc: strings.EqualFold(c.DefaultQuery("sort_dir", "desc"), "asc"),
	}

	return &service.ListContractsInput{
		Page:   page,
		Size:   size,
		Filter: flt,
		Sort:   sort,
	}, nil
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func parsePositiveInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return value, nil
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(raw))
}
