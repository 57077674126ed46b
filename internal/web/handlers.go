package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colonyops/zenflow/internal/core/notify"
	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/core/tasksync"
	"github.com/colonyops/zenflow/internal/zen"
)

const monthLayout = "2006-01"

type calendarResponse struct {
	Month string          `json:"month"`
	Days  []task.DayCount `json:"days"`
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleListTasks(c *gin.Context) {
	f := task.Filter{
		Match:   c.Query("q"),
		Pending: c.Query("pending") == "true",
	}

	if raw := c.Query("date"); raw != "" {
		date, err := task.ParseDate(raw)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}
		f.Date = &date
	}

	tasks, err := s.tasks.List(f)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleAddTask(c *gin.Context) {
	var req zen.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	in, err := req.Parse()
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	t, ok := s.tasks.Add(c.Request.Context(), in)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "nothing to add"})
		return
	}

	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleToggleTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	t, err := s.tasks.Toggle(c.Request.Context(), id)
	if err != nil {
		taskError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

func (s *Server) handleRemoveTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.tasks.Remove(c.Request.Context(), id); err != nil {
		taskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleCalendar(c *gin.Context) {
	month := s.now()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.ParseInLocation(monthLayout, raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month: expected YYYY-MM"})
			return
		}
		month = parsed
	}

	c.JSON(http.StatusOK, calendarResponse{
		Month: month.Format(monthLayout),
		Days:  s.tasks.Calendar(month.Year(), month.Month()),
	})
}

func (s *Server) handleSyncState(c *gin.Context) {
	c.JSON(http.StatusOK, s.sync.State())
}

func (s *Server) handleSyncRetry(c *gin.Context) {
	err := s.sync.Retry(c.Request.Context())
	state := s.sync.State()

	if err != nil && !errors.Is(err, tasksync.ErrSuperseded) {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "state": state})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (s *Server) handleListBanners(c *gin.Context) {
	banners, err := s.banners.Active(c.Request.Context())
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	if banners == nil {
		banners = []notify.Banner{}
	}

	c.JSON(http.StatusOK, banners)
}

func (s *Server) handleDismissBanner(c *gin.Context) {
	err := s.banners.Dismiss(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, notify.ErrNotFound):
		errorJSON(c, http.StatusNotFound, err)
	case err != nil:
		errorJSON(c, http.StatusInternalServerError, err)
	default:
		c.Status(http.StatusNoContent)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}

func taskError(c *gin.Context, err error) {
	if errors.Is(err, task.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, err)
		return
	}
	errorJSON(c, http.StatusInternalServerError, err)
}
