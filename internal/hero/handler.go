package hero

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"herohub/internal/heroes"
	"herohub/internal/present"
	"herohub/internal/viewstate"
)

type Handler struct {
	Source   heroes.Source
	View     viewstate.Options
	Sessions *Sessions
	Log      *zap.Logger
}

// NewHandler wires the list/detail/live routes to src. view carries the page
// size, debounce and seed; Remote is forced from the provider.
func NewHandler(src heroes.Source, view viewstate.Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	view.Remote = src.Provider().RemoteSearch()
	view.OnChange = nil
	view.Logger = logger
	return &Handler{
		Source:   src,
		View:     view,
		Sessions: NewSessions(),
		Log:      logger,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.list)           // GET /?q=&page=
	r.GET("/hero/", h.detail)    // no id: missing-id view model
	r.GET("/hero/:id", h.detail) // GET /hero/:id
	r.GET("/ws", h.live)         // live list session
	r.GET("/health", h.health)
	r.GET("/ready", h.ready)
}

func (h *Handler) list(c *gin.Context) {
	q := c.Query("q")
	page := parseInt(c.Query("page"), 1)

	ctl := viewstate.New(c.Request.Context(), h.Source, h.View)
	defer ctl.Unmount()

	// a remote search replaces the seeded list, so the seed fetch is skipped
	if !h.View.Remote || viewstate.NormalizeQuery(q) == "" {
		ctl.Mount()
	}
	ctl.SetQuery(q)
	ctl.Settle()
	ctl.GoTo(page)

	c.JSON(http.StatusOK, present.List(ctl.Snapshot()))
}

func (h *Handler) detail(c *gin.Context) {
	d := viewstate.LoadDetail(c.Request.Context(), h.Source, c.Param("id"))
	status := statusFor(d.Err)
	if status >= http.StatusInternalServerError {
		h.Log.Warn("hero detail failed", zap.String("id", d.ID), zap.Error(d.Err))
	}
	c.JSON(status, present.Detail(d))
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ready(c *gin.Context) {
	p := h.Source.Provider()
	c.JSON(http.StatusOK, gin.H{
		"status":        "ready",
		"provider":      string(p),
		"remote_search": p.RemoteSearch(),
		"ws_sessions":   h.Sessions.Count(),
	})
}

// statusFor maps a detail error onto an HTTP status.
func statusFor(err error) int {
	var cfgErr *heroes.ConfigurationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, viewstate.ErrMissingID), errors.Is(err, heroes.ErrEmptyID):
		return http.StatusBadRequest
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case heroes.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
