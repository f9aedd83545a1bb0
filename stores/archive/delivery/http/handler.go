package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/delivery"
	"github.com/x-xyz/goauction/domain/archive"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/middleware"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

type handler struct {
	archive archive.UseCase
}

func New(e *echo.Echo, uc archive.UseCase) {
	h := &handler{
		archive: uc,
	}
	g := e.Group("/auctions")
	g.GET("/:id/events", h.history, middleware.IsValidId("id"))
}

func (h *handler) history(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Types  []string `query:"type"`
		Since  string   `query:"since"`
		Offset int32    `query:"offset"`
		Limit  int32    `query:"limit"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if p.Offset < 0 || p.Limit < 0 {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid pagination")
	}
	if p.Limit == 0 {
		p.Limit = defaultLimit
	} else if p.Limit > maxLimit {
		p.Limit = maxLimit
	}

	opts := []archive.FindAllOptionsFunc{archive.WithPagination(p.Offset, p.Limit)}
	if len(p.Types) > 0 {
		types := make([]auction.EventType, 0, len(p.Types))
		for _, t := range p.Types {
			types = append(types, auction.EventType(t))
		}
		opts = append(opts, archive.WithTypes(types...))
	}
	if len(p.Since) > 0 {
		since, err := time.Parse(time.RFC3339, p.Since)
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid since")
		}
		opts = append(opts, archive.WithSince(since))
	}

	if res, err := h.archive.History(ctx, c.Param("id"), opts...); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}
