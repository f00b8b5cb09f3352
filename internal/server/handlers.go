package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/guimove/tablefit/internal/allocation"
	"github.com/guimove/tablefit/internal/model"
	"github.com/guimove/tablefit/internal/orchestrator"
)

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// upstream reports a failure to fetch the snapshot.
func upstream(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("loading snapshot")
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

func queryPeople(c *gin.Context) (int, bool) {
	raw := c.Query("people")
	if raw == "" {
		badRequest(c, "people is required")
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "people must be an integer")
		return 0, false
	}
	return n, true
}

// queryDate parses an optional date; absent means today.
func queryDate(c *gin.Context, key string) (model.Date, bool) {
	raw := c.Query(key)
	if raw == "" {
		return model.Date{}, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		badRequest(c, err.Error())
		return model.Date{}, false
	}
	return d, true
}

// GET /api/v1/settings
func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.backend.CurrentSettings(c.Request.Context())
	if err != nil {
		upstream(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GET /api/v1/calendar?from=&days=&people=
func (s *Server) getCalendar(c *gin.Context) {
	people, ok := queryPeople(c)
	if !ok {
		return
	}
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "days must be a positive integer")
			return
		}
		days = n
	}
	if days > s.cfg.MaxDays {
		badRequest(c, fmt.Sprintf("days must be at most %d", s.cfg.MaxDays))
		return
	}

	ctx := c.Request.Context()
	p, from, err := s.backend.LoadDays(ctx, from, days)
	if err != nil {
		upstream(c, err)
		return
	}
	cal, err := p.Calendar(ctx, from, days, people)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":   from,
		"people": people,
		"days":   cal,
	})
}

// GET /api/v1/slots?date=&people=
func (s *Server) getSlots(c *gin.Context) {
	people, ok := queryPeople(c)
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	p, date, err := s.backend.LoadDays(c.Request.Context(), date, 1)
	if err != nil {
		upstream(c, err)
		return
	}
	c.JSON(http.StatusOK, p.Day(date, people))
}

type allocationBody struct {
	Date   *model.Date      `json:"date"`
	Time   *model.TimeOfDay `json:"time"`
	People int              `json:"people"`
	Tables []string         `json:"tables"`
}

// POST /api/v1/allocations
func (s *Server) postAllocation(c *gin.Context) {
	var body allocationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if body.Date == nil || body.Time == nil {
		badRequest(c, "date and time are required")
		return
	}

	d, err := s.backend.Decide(c.Request.Context(), orchestrator.AllocationRequest{
		Date:   *body.Date,
		Time:   *body.Time,
		People: body.People,
		Tables: body.Tables,
	})
	if err != nil {
		upstream(c, err)
		return
	}

	switch {
	case d.OK():
		c.JSON(http.StatusCreated, d.Request)
	case d.Reason == string(allocation.ReasonInvalidParty):
		c.JSON(http.StatusBadRequest, gin.H{"reason": d.Reason})
	default:
		c.JSON(http.StatusConflict, gin.H{"reason": d.Reason})
	}
}
