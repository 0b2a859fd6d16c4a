package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/daniil11ru/lastseen/cli/locator/api/dto/request"
	"github.com/daniil11ru/lastseen/cli/locator/api/dto/response"
	"github.com/daniil11ru/lastseen/cli/locator/domain"
	"github.com/daniil11ru/lastseen/cli/locator/errs"
	"github.com/daniil11ru/lastseen/cli/locator/model"
	"github.com/daniil11ru/lastseen/cli/locator/view"
)

// Service is the orchestrator surface the handlers call into.
type Service interface {
	GetOne(ctx context.Context, id string) (*model.Position, error)
	GetBatch(ctx context.Context, ids []string) ([]*model.Position, domain.BatchSummary, error)
	List(ctx context.Context, limit, offset int, v view.View) ([]interface{}, domain.ListSummary, error)
	CheckExists(ctx context.Context, id string) (bool, error)
	Status(ctx context.Context) domain.NamespaceStatus
}

type Handler struct {
	Namespaces map[string]Service
}

func NewHandler(namespaces map[string]Service) *Handler {
	return &Handler{Namespaces: namespaces}
}

func (h *Handler) lookupFor(c *gin.Context) (Service, bool) {
	service, ok := h.Namespaces[c.Param("namespace")]
	if !ok {
		c.JSON(http.StatusNotFound, response.Error{
			Code:  string(errs.NotFound),
			Error: "unknown namespace: " + c.Param("namespace"),
		})
	}
	return service, ok
}

func (h *Handler) GetPosition(c *gin.Context) {
	service, ok := h.lookupFor(c)
	if !ok {
		return
	}

	record, err := service.GetOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, view.Project(record, view.Parse(c.Query("view"))))
}

func (h *Handler) BatchPositions(c *gin.Context) {
	service, ok := h.lookupFor(c)
	if !ok {
		return
	}

	var req request.Batch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error{
			Code:  string(errs.InvalidBatch),
			Error: "malformed batch request body",
		})
		return
	}

	records, summary, err := service.GetBatch(c.Request.Context(), req.IDs)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Batch{
		Data:    view.ProjectAll(records, view.Parse(req.View)),
		Summary: summary,
	})
}

func (h *Handler) GetPositions(c *gin.Context) {
	service, ok := h.lookupFor(c)
	if !ok {
		return
	}

	limit, ok := parseQueryInt(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := parseQueryInt(c, "offset", 0)
	if !ok {
		return
	}

	data, summary, err := service.List(c.Request.Context(), limit, offset, view.Parse(c.Query("view")))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.List{Data: data, Summary: summary})
}

func (h *Handler) GetExists(c *gin.Context) {
	service, ok := h.lookupFor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	exists, err := service.CheckExists(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Exists{ID: id, Exists: exists})
}

func (h *Handler) GetStatus(c *gin.Context) {
	status := response.Status{Healthy: true, Namespaces: make(map[string]domain.NamespaceStatus, len(h.Namespaces))}
	for name, service := range h.Namespaces {
		ns := service.Status(c.Request.Context())
		status.Namespaces[name] = ns
		if !ns.Healthy {
			status.Healthy = false
		}
	}

	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

func parseQueryInt(c *gin.Context, name string, defaultValue int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error{
			Code:  string(errs.InvalidPagination),
			Error: name + " must be an integer",
		})
		return 0, false
	}
	return v, true
}

func renderError(c *gin.Context, err error) {
	code := errs.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case errs.InvalidIdentifier, errs.InvalidBatch, errs.InvalidPagination:
		status = http.StatusBadRequest
	case errs.NotFound:
		status = http.StatusNotFound
	case errs.StoreUnavailable:
		status = http.StatusServiceUnavailable
	case errs.DecodeError:
		status = http.StatusInternalServerError
	}

	resp := response.Error{Code: string(code), Error: err.Error()}
	if code == "" {
		resp.Code = "INTERNAL"
	}
	var coded *errs.Error
	if errors.As(err, &coded) {
		resp.Error = coded.Message
		resp.Details = coded.Details
	}

	c.JSON(status, resp)
}
