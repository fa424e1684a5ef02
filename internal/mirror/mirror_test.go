package mirror

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herohub/internal/heroes"
	"herohub/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const sample = `[
  {"id": 1, "name": "A-Bomb", "images": {"sm": "http://x/a.png"}},
  {"id": 70, "name": "Batman", "images": {"md": "http://x/b.png"}, "powerstats": {"combat": 100}}
]`

func serve(t *testing.T, content string) *httptest.Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mirror.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := gin.New()
	NewHandler(path, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestAll(t *testing.T) {
	srv := serve(t, sample)
	code, body := get(t, srv.URL+"/all.json")
	require.Equal(t, http.StatusOK, code)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(body, &records))
	assert.Len(t, records, 2)
}

func TestByID(t *testing.T) {
	srv := serve(t, sample)

	code, body := get(t, srv.URL+"/id/70.json")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "Batman")

	code, _ = get(t, srv.URL+"/id/999.json")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, srv.URL+"/id/70")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestInvalidFile(t *testing.T) {
	srv := serve(t, `{"not":"an array"}`)
	code, _ := get(t, srv.URL+"/all.json")
	assert.Equal(t, http.StatusInternalServerError, code)
}

// The open adapter must read what the mirror serves.
func TestServesOpenProvider(t *testing.T) {
	srv := serve(t, sample)
	src, err := heroes.New(heroes.Config{BaseURL: srv.URL, Provider: heroes.ProviderOpen})
	require.NoError(t, err)

	list, err := src.ListHeroes(testContext(t), "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "http://x/b.png", list[1].Image.URL)

	h, err := src.GetHeroByID(testContext(t), "70")
	require.NoError(t, err)
	assert.Equal(t, "100", h.Powerstats.Get("combat").String())
}

func TestWriteFileRoundTrip(t *testing.T) {
	rec, err := FromHero(models.Hero{
		HeroSummary: models.HeroSummary{ID: "70", Name: "Batman", Image: models.HeroImage{URL: "http://x/b.png"}},
		Biography:   models.Section{"aliases": models.List("Dark Knight")},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "mirror.json")
	require.NoError(t, WriteFile(path, []Record{rec}))

	srv := httptest.NewServer(func() http.Handler {
		r := gin.New()
		NewHandler(path, nil).RegisterRoutes(r)
		return r
	}())
	defer srv.Close()

	src, err := heroes.New(heroes.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	h, err := src.GetHeroByID(testContext(t), "70")
	require.NoError(t, err)
	assert.Equal(t, "Batman", h.Name)
	assert.Equal(t, "http://x/b.png", h.Image.URL)
	assert.Equal(t, []string{"Dark Knight"}, h.Biography.Get("aliases").List)

	_, err = FromHero(models.Hero{HeroSummary: models.HeroSummary{ID: "abc"}})
	assert.Error(t, err)
}
