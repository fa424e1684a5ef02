// Package mirror serves an open-provider dataset from a local JSON file so
// herohub can run without network access, and writes such files from
// normalized heroes.
package mirror

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"herohub/pkg/models"
)

type Handler struct {
	// Path is re-read on every request so edits show up without a restart.
	Path string
	Log  *zap.Logger
}

func NewHandler(path string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Path: path, Log: logger}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/all.json", h.all)  // whole dataset
	r.GET("/id/:file", h.byID) // /id/{id}.json
}

func (h *Handler) all(c *gin.Context) {
	b, _, err := h.load()
	if err != nil {
		h.Log.Error("mirror unreadable", zap.String("path", h.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", b)
}

func (h *Handler) byID(c *gin.Context) {
	file := c.Param("file")
	id, ok := strings.CutSuffix(file, ".json")
	if !ok || id == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	_, records, err := h.load()
	if err != nil {
		h.Log.Error("mirror unreadable", zap.String("path", h.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, rec := range records {
		var head struct {
			ID json.RawMessage `json:"id"`
		}
		if json.Unmarshal(rec, &head) != nil {
			continue
		}
		if strings.Trim(string(head.ID), `"`) == id {
			c.Data(http.StatusOK, "application/json", rec)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

// load reads the file and checks that it holds a JSON array.
func (h *Handler) load() ([]byte, []json.RawMessage, error) {
	b, err := os.ReadFile(h.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read %s: %w", filepath.Base(h.Path), err)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, nil, fmt.Errorf("%s is not a JSON array: %w", filepath.Base(h.Path), err)
	}
	return bytes.TrimSpace(b), records, nil
}

// Images mirrors the open provider's image set. Only sm is written.
type Images struct {
	XS string `json:"xs,omitempty"`
	SM string `json:"sm,omitempty"`
	MD string `json:"md,omitempty"`
	LG string `json:"lg,omitempty"`
}

// Record is one hero in the open provider's layout.
type Record struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Images      Images         `json:"images"`
	Powerstats  models.Section `json:"powerstats,omitempty"`
	Biography   models.Section `json:"biography,omitempty"`
	Appearance  models.Section `json:"appearance,omitempty"`
	Work        models.Section `json:"work,omitempty"`
	Connections models.Section `json:"connections,omitempty"`
}

// FromHero converts a normalized hero back to the open layout. The open
// provider keys records by number, so a non-numeric id is rejected.
func FromHero(h models.Hero) (Record, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(h.ID), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("hero %q: id is not numeric", h.ID)
	}
	return Record{
		ID:          id,
		Name:        h.Name,
		Images:      Images{SM: h.Image.URL},
		Powerstats:  h.Powerstats,
		Biography:   h.Biography,
		Appearance:  h.Appearance,
		Work:        h.Work,
		Connections: h.Connections,
	}, nil
}

// WriteFile writes records as an indented JSON array, creating parent dirs.
func WriteFile(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
