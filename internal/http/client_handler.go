package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avdonin/contracts-lite/internal/http/middleware"
	"github.com/avdonin/contracts-lite/internal/model"
	"github.com/avdonin/contracts-lite/internal/repository"
	"github.com/avdonin/contracts-lite/internal/service"
	"github.com/avdonin/contracts-lite/internal/validate"
)

type clientRequest struct {
	LastName       string `json:"last_name" binding:"required"`
	FirstName      string `json:"first_name" binding:"required"`
	MiddleName     string `json:"middle_name" binding:"required"`
	PassportSeries string `json:"passport_series" binding:"required"`
	PassportNumber string `json:"passport_number" binding:"required"`
	BirthDate      string `json:"birth_date" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	Email          string `json:"email" binding:"required"`
	Address        string `json:"address" binding:"required"`
}

func (r clientRequest) toInput() validate.ClientInput {
	return validate.ClientInput{
		LastName:       r.LastName,
		FirstName:      r.FirstName,
		MiddleName:     r.MiddleName,
		PassportSeries: r.PassportSeries,
		PassportNumber: r.PassportNumber,
		BirthDate:      r.BirthDate,
		Phone:          r.Phone,
		Email:          r.Email,
		Address:        r.Address,
	}
}

type clientResponse struct {
	ID             int64  `json:"id"`
	LastName       string `json:"last_name"`
	FirstName      string `json:"first_name"`
	MiddleName     string `json:"middle_name"`
	PassportSeries string `json:"passport_series"`
	PassportNumber string `json:"passport_number"`
	BirthDate      string `json:"birth_date"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
}

type clientShortResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Passport  string `json:"passport"`
	BirthDate string `json:"birth_date"`
	Contact   string `json:"contact"`
}

func toClientResponse(c model.Client) clientResponse {
	return clientResponse{
		ID:             c.ID,
		LastName:       c.LastName,
		FirstName:      c.FirstName,
		MiddleName:     c.MiddleName,
		PassportSeries: c.PassportSeries,
		PassportNumber: c.PassportNumber,
		BirthDate:      validate.FormatBirthDate(c.BirthDate),
		Phone:          c.Phone,
		Email:          c.Email,
		Address:        c.Address,
	}
}

func toClientShortResponse(c model.Client, preferContact string) clientShortResponse {
	short := c.Short(preferContact)
	return clientShortResponse{
		ID:        short.ID,
		Name:      short.Name,
		Passport:  short.Passport,
		BirthDate: validate.FormatBirthDate(short.BirthDate),
		Contact:   short.Contact,
	}
}

func (h *Handler) listClients(c *gin.Context) {
	input, err := parseClientListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.clients.List(c.Request.Context(), *input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// The short view collapses each record into the list representation.
	if strings.EqualFold(c.Query("view"), "short") {
		preferContact := c.DefaultQuery("prefer_contact", "phone")
		items := make([]clientShortResponse, 0, len(page.Clients))
		for _, client := range page.Clients {
			items = append(items, toClientShortResponse(client, preferContact))
		}
		c.JSON(http.StatusOK, gin.H{
			"total": page.Total,
			"page":  page.Page,
			"size":  page.Size,
			"items": items,
		})
		return
	}

	items := make([]clientResponse, 0, len(page.Clients))
	for _, client := range page.Clients {
		items = append(items, toClientResponse(client))
	}
	c.JSON(http.StatusOK, gin.H{
		"total": page.Total,
		"page":  page.Page,
		"size":  page.Size,
		"items": items,
	})
}

func (h *Handler) getClient(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	client, err := h.clients.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(*client))
}

func (h *Handler) createClient(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.clients.Create(c.Request.Context(), principal, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toClientResponse(*client))
}

func (h *Handler) updateClient(c *gin.Context) {
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
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.clients.Update(c.Request.Context(), principal, id, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(*client))
}

func (h *Handler) deleteClient(c *gin.Context) {
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
	if err := h.clients.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseClientListQuery(c *gin.Context) (*service.ListClientsInput, error) {
	page, err := parsePositiveInt(c.Query("page"), 1)
	if err != nil {
		return nil, errors.New("invalid page")
	}
	size, err := parsePositiveInt(c.Query("size"), 0)
	if err != nil {
		return nil, errors.New("invalid size")
	}

	flt := &repository.ClientFilter{
		LastNameSubstr:   strings.TrimSpace(c.Query("last_name")),
		FirstNameSubstr:  strings.TrimSpace(c.Query("first_name")),
		MiddleNameSubstr: strings.TrimSpace(c.Query("middle_name")),
		PhoneSubstr:      strings.TrimSpace(c.Query("phone")),
		EmailSubstr:      strings.TrimSpace(c.Query("email")),
		PassportSeries:   strings.TrimSpace(c.Query("passport_series")),
		PassportNumber:   strings.TrimSpace(c.Query("passport_number")),
	}
	for query, dest := range map[string]**time.Time{
		"birth_from": &flt.BirthFrom,
		"birth_to":   &flt.BirthTo,
	} {
		if raw := c.Query(query); raw != "" {
			parsed, err := validate.BirthDate(raw)
			if err != nil {
				return nil, errors.New("invalid " + query)
			}
			*dest = &parsed
		}
	}

	sort := &repository.ClientSort{
		By:  strings.TrimSpace(c.DefaultQuery("sort_by", "id")),
		Asc: strings.EqualFold(c.DefaultQuery("sort_dir", "asc"), "asc"),
	}

	return &service.ListClientsInput{
		Page:   page,
		Size:   size,
		Filter: flt,
		Sort:   sort,
	}, nil
}
