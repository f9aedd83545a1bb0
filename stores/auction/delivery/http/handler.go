package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/delivery"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/middleware"
	authMiddleware "github.com/x-xyz/goauction/stores/auth/delivery/http/middleware"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type handler struct {
	auction auction.UseCase
}

type listResult struct {
	Items []*auction.Auction `json:"items"`
	Total int                `json:"total"`
}

type finalizeResult struct {
	*auction.Outcome
	AlreadyFinalized bool `json:"alreadyFinalized"`
}

func New(e *echo.Echo, au auction.UseCase, am *authMiddleware.AuthMiddleware) {
	h := &handler{
		auction: au,
	}

	g := e.Group("/auctions")
	g.GET("", h.findAll)
	g.POST("", h.create, am.Auth())
	g.GET("/:id", h.get, middleware.IsValidId("id"))
	g.POST("/:id/cancel", h.cancel, middleware.IsValidId("id"), am.Auth())
	g.GET("/:id/bids", h.listBids, middleware.IsValidId("id"))
	g.POST("/:id/bids", h.placeBid, middleware.IsValidId("id"), am.Auth())
	g.PUT("/:id/proxy", h.setProxy, middleware.IsValidId("id"), am.Auth())
	g.DELETE("/:id/proxy", h.cancelProxy, middleware.IsValidId("id"), am.Auth())
	g.POST("/:id/views", h.recordView, middleware.IsValidId("id"), am.OptionalAuth())

	// admin
	g.DELETE("/:id/bids/:bidId", h.voidBid, middleware.IsValidId("id", "bidId"), am.Auth(), am.IsAdmin())
	g.POST("/:id/finalize", h.finalize, middleware.IsValidId("id"), am.Auth(), am.IsAdmin())
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	req := auction.CreateAuctionRequest{}
	if err := c.Bind(&req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(&req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	req.SellerId = authMiddleware.UserId(c)

	if a, err := h.auction.CreateAuction(ctx, req); err != nil {
		ctx.WithFields(log.Fields{"err": err}).Error("auction.CreateAuction failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, a)
	}
}

func (h *handler) findAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Status   *auction.Status      `query:"status"`
		SellerId *domain.UserId       `query:"sellerId"`
		Category *string              `query:"category"`
		Sort     *auction.AuctionSort `query:"sort"`
		Offset   int32                `query:"offset"`
		Limit    int32                `query:"limit"`
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

	filters := []auction.FindAllOptionsFunc{}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid status")
		}
		filters = append(filters, auction.WithStatus(*p.Status))
	}
	if p.SellerId != nil {
		filters = append(filters, auction.WithSellerId(*p.SellerId))
	}
	if p.Category != nil {
		filters = append(filters, auction.WithCategory(*p.Category))
	}

	opts := append([]auction.FindAllOptionsFunc{auction.WithPagination(p.Offset, p.Limit)}, filters...)
	if p.Sort != nil {
		if !p.Sort.IsValid() {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid sort")
		}
		opts = append(opts, auction.WithSort(*p.Sort))
	}

	items, err := h.auction.FindAll(ctx, opts...)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err}).Error("auction.FindAll failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	total, err := h.auction.Count(ctx, filters...)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err}).Error("auction.Count failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, listResult{Items: items, Total: total})
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if a, err := h.auction.GetAuction(ctx, c.Param("id")); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, a)
	}
}

func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if a, err := h.auction.CancelAuction(ctx, c.Param("id"), authMiddleware.UserId(c)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, a)
	}
}

func (h *handler) placeBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	req := auction.PlaceBidRequest{}
	if err := c.Bind(&req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(&req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	req.AuctionId = c.Param("id")
	req.BidderId = authMiddleware.UserId(c)

	if res, err := h.auction.PlaceBid(ctx, req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, res)
	}
}

func (h *handler) listBids(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		BidderId *domain.UserId    `query:"bidderId"`
		Active   *bool             `query:"active"`
		Order    *auction.BidOrder `query:"order"`
		Offset   int32             `query:"offset"`
		Limit    int32             `query:"limit"`
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

	opts := []auction.BidFindAllOptionsFunc{auction.WithBidPagination(p.Offset, p.Limit)}
	if p.BidderId != nil {
		opts = append(opts, auction.WithBidderId(*p.BidderId))
	}
	if p.Active != nil {
		opts = append(opts, auction.WithIsActive(*p.Active))
	}
	if p.Order != nil {
		opts = append(opts, auction.WithBidOrder(*p.Order))
	}

	if bids, err := h.auction.ListBids(ctx, c.Param("id"), opts...); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, bids)
	}
}

func (h *handler) voidBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if b, err := h.auction.VoidBid(ctx, c.Param("id"), c.Param("bidId")); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, b)
	}
}

func (h *handler) setProxy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	req := auction.SetProxyRequest{}
	if err := c.Bind(&req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(&req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	req.AuctionId = c.Param("id")
	req.BidderId = authMiddleware.UserId(c)

	if res, err := h.auction.SetProxy(ctx, req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) cancelProxy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if err := h.auction.CancelProxy(ctx, c.Param("id"), authMiddleware.UserId(c)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) recordView(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if stats, err := h.auction.RecordView(ctx, c.Param("id"), authMiddleware.UserId(c).String()); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, stats)
	}
}

func (h *handler) finalize(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	out, err := h.auction.Finalize(ctx, c.Param("id"))
	if errors.Is(err, auction.ErrFinalizationConflict) && out != nil {
		return delivery.MakeJsonResp(c, http.StatusOK, finalizeResult{Outcome: out, AlreadyFinalized: true})
	} else if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, finalizeResult{Outcome: out})
}
