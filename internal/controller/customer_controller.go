// internal/controller/customer_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/crm-backend/internal/model"
	"github.com/unclebandit/crm-backend/internal/repository"
	"github.com/unclebandit/crm-backend/internal/service"
)

type CustomerController struct {
	Store *service.CustomerStore
	Audit *repository.AuditRepository // optional
	Log   *zap.Logger
}

// ListCustomers returns the filtered, sorted and paginated view.
func (c *CustomerController) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filters service.Filters
	if s := q.Get("status"); s != "" && s != "All" {
		st, ok := model.ParseStatus(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown status "+strconv.Quote(s))
			return
		}
		filters.Status = st
	}
	if s := q.Get("source"); s != "" && s != "All" {
		src, ok := model.ParseSource(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown source "+strconv.Quote(s))
			return
		}
		filters.Source = src
	}
	for param, dst := range map[string]**float64{"min_value": &filters.MinValue, "max_value": &filters.MaxValue} {
		if s := q.Get(param); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+param)
				return
			}
			*dst = &v
		}
	}

	var page, pageSize int
	for param, dst := range map[string]*int{"page": &page, "page_size": &pageSize} {
		if s := q.Get(param); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+param)
				return
			}
			*dst = v
		}
	}

	customers := c.Store.Filter(q.Get("q"), filters)
	sort := service.SortSpec{Field: q.Get("sort"), Desc: q.Get("order") == "desc"}
	if err := service.SortCustomers(customers, sort); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, pagination := service.Paginate(customers, page, pageSize)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       data,
		"pagination": pagination,
	})
}

func (c *CustomerController) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	customer, err := c.Store.Get(id)
	if err != nil {
		writeError(w, statusFor(err), errorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (c *CustomerController) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var body model.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	customer, err := c.Store.Add(r.Context(), body)
	if err != nil {
		c.Log.Info("create customer rejected", zap.Error(err))
		writeError(w, statusFor(err), errorMessage(err))
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (c *CustomerController) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var body model.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	customer, err := c.Store.Update(r.Context(), id, body)
	if err != nil {
		writeError(w, statusFor(err), errorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (c *CustomerController) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	n, err := c.Store.Delete(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), errorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (c *CustomerController) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	n, err := c.Store.DeleteMany(r.Context(), body.IDs)
	if err != nil {
		writeError(w, statusFor(err), errorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// RecentAudit lists the latest change events, newest first.
func (c *CustomerController) RecentAudit(w http.ResponseWriter, r *http.Request) {
	if c.Audit == nil {
		writeError(w, http.StatusNotFound, "audit trail is not enabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	events, err := c.Audit.Recent(r.Context(), limit)
	if err != nil {
		c.Log.Error("failed to read audit trail", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": events})
}
