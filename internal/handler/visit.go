package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/repository"
	"github.com/imovelhub/unit-sales/internal/service"
)

// VisitHandler serves the visit-scheduling endpoints: booking, listing,
// answering and withdrawing listing visits.
type VisitHandler struct {
	Svc    *service.VisitService
	Visits *repository.VisitRepo
}

func NewVisitHandler(svc *service.VisitService, v *repository.VisitRepo) *VisitHandler {
	return &VisitHandler{Svc: svc, Visits: v}
}

type requestVisitReq struct {
	ListingID  uint64 `json:"listing_id"`
	VisitAt    string `json:"visit_at"` // RFC 3339
	StandVisit *bool  `json:"stand_visit"`
	UnitNumber string `json:"unit_number"`
	Notes      string `json:"notes"`
}

// Request books a visit for the authenticated client. stand_visit defaults
// to true when omitted.
func (h *VisitHandler) Request(c echo.Context) error {
	var req requestVisitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	visitAt, err := time.Parse(time.RFC3339, req.VisitAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "visit_at must be an RFC 3339 timestamp"})
	}
	standVisit := true
	if req.StandVisit != nil {
		standVisit = *req.StandVisit
	}

	v, err := h.Svc.RequestVisit(c.Request().Context(), currentUserID(c), service.VisitRequest{
		ListingID:  req.ListingID,
		VisitAt:    visitAt,
		StandVisit: standVisit,
		UnitNumber: req.UnitNumber,
		Notes:      req.Notes,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"visit": visitJSON(v)})
}

// ListMine lists the caller's visits: a client sees the visits they booked,
// most recent date first; a builder sees every visit on their listings,
// soonest first. Optional status and listing_id query parameters filter.
func (h *VisitHandler) ListMine(c echo.Context) error {
	uid := currentUserID(c)
	ctx := c.Request().Context()

	status := model.VisitStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
	}
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	var (
		details []repository.VisitDetail
		err     error
	)
	if currentRole(c) == model.RoleBuilder {
		var listingID uint64
		if s := c.QueryParam("listing_id"); s != "" {
			listingID, err = strconv.ParseUint(s, 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing_id filter"})
			}
		}
		details, err = h.Visits.ListByBuilder(ctx, uid, status, listingID, limit)
	} else {
		details, err = h.Visits.ListByClient(ctx, uid, status, limit)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]echo.Map, 0, len(details))
	for i := range details {
		out = append(out, visitDetailJSON(&details[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"visits": out})
}

type setVisitStatusReq struct {
	Status string `json:"status"` // CONFIRMED | CANCELLED | COMPLETED
}

// SetStatus is the builder's answer to a visit request.
func (h *VisitHandler) SetStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid visit id"})
	}
	var req setVisitStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	v, err := h.Svc.SetStatus(c.Request().Context(), currentUserID(c), id, model.VisitStatus(req.Status))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"visit": visitJSON(v)})
}

// Cancel withdraws a still-unanswered visit booked by the caller.
func (h *VisitHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid visit id"})
	}

	v, err := h.Svc.Cancel(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"visit": visitJSON(v)})
}

func visitJSON(v *model.Visit) echo.Map {
	return echo.Map{
		"id":          v.ID,
		"listing_id":  v.ListingID,
		"visit_at":    v.VisitAt,
		"stand_visit": v.StandVisit,
		"unit_number": v.UnitNumber,
		"notes":       v.Notes,
		"status":      v.Status,
		"created_at":  v.CreatedAt,
	}
}

func visitDetailJSON(d *repository.VisitDetail) echo.Map {
	out := visitJSON(&d.Visit)
	out["listing"] = echo.Map{"id": d.Visit.ListingID, "name": d.ListingName}
	out["client"] = echo.Map{"id": d.Visit.ClientID, "name": d.ClientName, "email": d.ClientEmail}
	return out
}
