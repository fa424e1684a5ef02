package main

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herohub/internal/hero"
	"herohub/internal/heroes"
	"herohub/internal/viewstate"
)

const allJSON = `[
  {"id":1,"name":"A-Bomb","images":{"sm":"http://x/a.png"}},
  {"id":2,"name":"Abe Sapien","images":{}},
  {"id":3,"name":"Abin Sur","images":{"lg":"http://x/c.png"}},
  {"id":70,"name":"Batman","images":{"md":"http://x/b.png"}},
  {"id":644,"name":"Superman","images":{}}
]`

// apiServer runs the real HTTP shell over a fake open-provider upstream.
func apiServer(t *testing.T, pageSize int) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(allJSON))
	}))
	t.Cleanup(up.Close)

	src, err := heroes.New(heroes.Config{BaseURL: up.URL})
	require.NoError(t, err)
	r := gin.New()
	hero.NewHandler(src, viewstate.Options{PageSize: pageSize}, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAllCardsWalksPages(t *testing.T) {
	srv := apiServer(t, 2)

	cards, err := fetchAllCards(testContext(t), srv.URL, "")
	require.NoError(t, err)
	require.Len(t, cards, 5)
	assert.Equal(t, "A-Bomb", cards[0].Name)
	assert.Equal(t, "/hero/644", cards[4].Href)

	cards, err = fetchAllCards(testContext(t), srv.URL, "ab")
	require.NoError(t, err)
	assert.Len(t, cards, 2, "Abe Sapien and Abin Sur")
}

func TestWriteCSV(t *testing.T) {
	srv := apiServer(t, 20)
	cards, err := fetchAllCards(testContext(t), srv.URL, "man")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "heroes.csv")
	require.NoError(t, writeCSV(path, cards))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "name", "image_url", "href"},
		{"70", "Batman", "http://x/b.png", "/hero/70"},
		{"644", "Superman", "", "/hero/644"},
	}, rows)
}

func TestPrintListPage(t *testing.T) {
	srv := apiServer(t, 2)
	page, err := fetchListPage(testContext(t), srv.URL, "", 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	printListPage(&buf, page)
	assert.Contains(t, buf.String(), "Superman")
	assert.Contains(t, buf.String(), "Página 3 de 3")
}

func TestParseWatchLine(t *testing.T) {
	tests := []struct {
		line    string
		want    hero.ClientMessage
		wantErr bool
	}{
		{":next", hero.ClientMessage{Type: "page", Action: "next"}, false},
		{" :prev ", hero.ClientMessage{Type: "page", Action: "prev"}, false},
		{":goto 3", hero.ClientMessage{Type: "goto", Page: 3}, false},
		{":goto x", hero.ClientMessage{}, true},
		{":quit", hero.ClientMessage{}, true},
		{"spider man", hero.ClientMessage{Type: "query", Q: "spider man"}, false},
		{"", hero.ClientMessage{Type: "query", Q: ""}, false},
	}
	for _, tt := range tests {
		got, err := parseWatchLine(tt.line)
		if tt.wantErr {
			assert.Error(t, err, tt.line)
			continue
		}
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestWebsocketURL(t *testing.T) {
	u, err := websocketURL("https://heroes.example:8443/base", "/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://heroes.example:8443/ws", u)

	u, err = websocketURL("http://localhost:8080", "/ws")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", u)
}

// safeBuffer lets the test read output while runWatch is still writing.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch(t *testing.T) {
	srv := apiServer(t, 20)
	wsURL, err := websocketURL(srv.URL, "/ws")
	require.NoError(t, err)

	// the pipe stays open until the query result has been printed
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	out := &safeBuffer{}

	done := make(chan error, 1)
	go func() { done <- runWatch(testContext(t), wsURL, pr, out) }()

	_, err = pw.WriteString("super\n")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), `q="super"`)
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, pw.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch did not return after stdin closed")
	}
	_ = pr.Close()
	assert.Contains(t, out.String(), "Superman")
}
