package viewstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"herohub/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSource answers from fixed data. Queries listed in gates block until
// their channel is closed; every call is reported on started.
type fakeSource struct {
	list    []models.HeroSummary
	listErr error
	results map[string][]models.HeroSummary
	failing map[string]error
	gates   map[string]chan struct{}
	started chan string

	mu       sync.Mutex
	searches []string
}

func (f *fakeSource) ListHeroes(ctx context.Context, seed string) ([]models.HeroSummary, error) {
	f.wait(ctx, "list:"+seed)
	return f.list, f.listErr
}

func (f *fakeSource) SearchHeroes(ctx context.Context, q string) ([]models.HeroSummary, error) {
	f.mu.Lock()
	f.searches = append(f.searches, q)
	f.mu.Unlock()
	f.wait(ctx, q)
	if err := f.failing[q]; err != nil {
		return nil, err
	}
	return f.results[q], nil
}

func (f *fakeSource) wait(ctx context.Context, key string) {
	if f.started != nil {
		f.started <- key
	}
	if gate, ok := f.gates[key]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			<-gate
		}
	}
}

func (f *fakeSource) searchCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func heroesNamed(names ...string) []models.HeroSummary {
	out := make([]models.HeroSummary, 0, len(names))
	for i, n := range names {
		out = append(out, models.HeroSummary{ID: fmt.Sprint(i + 1), Name: n})
	}
	return out
}

func manyHeroes(n int) []models.HeroSummary {
	out := make([]models.HeroSummary, n)
	for i := range out {
		out[i] = models.HeroSummary{ID: fmt.Sprint(i + 1), Name: fmt.Sprintf("Hero %03d", i+1)}
	}
	return out
}

func newController(t *testing.T, src Source, opts Options) *Controller {
	t.Helper()
	c := New(context.Background(), src, opts)
	t.Cleanup(c.Unmount)
	return c
}

func names(items []models.HeroSummary) []string {
	out := make([]string, 0, len(items))
	for _, h := range items {
		out = append(out, h.Name)
	}
	return out
}

func TestTotalPages(t *testing.T) {
	for n, want := range map[int]int{0: 1, 1: 1, 20: 1, 21: 2, 40: 2, 41: 3, 731: 37} {
		assert.Equal(t, want, TotalPages(n, 20), "n=%d", n)
	}
}

func TestMountLoadsList(t *testing.T) {
	var states []State
	src := &fakeSource{list: manyHeroes(45)}
	c := newController(t, src, Options{OnChange: func(s State) { states = append(states, s) }})

	c.Mount()

	s := c.Snapshot()
	assert.Equal(t, 45, s.Records)
	assert.Equal(t, 45, s.Total)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 3, s.TotalPages)
	assert.Len(t, s.Items, 20)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)

	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Loading)
}

func TestMountFailureClearsRecords(t *testing.T) {
	src := &fakeSource{listErr: errors.New("HTTP 500 Internal Server Error (http://x/all.json)")}
	c := newController(t, src, Options{})

	c.Mount()

	s := c.Snapshot()
	assert.Equal(t, "HTTP 500 Internal Server Error (http://x/all.json)", s.Error)
	assert.Zero(t, s.Records)
	assert.Empty(t, s.Items)
	assert.NotNil(t, s.Items)
	assert.False(t, s.Loading)
	assert.Equal(t, 1, s.TotalPages)
}

func TestPaginationBoundaries(t *testing.T) {
	c := newController(t, &fakeSource{list: manyHeroes(45)}, Options{})
	c.Mount()

	c.Prev()
	assert.Equal(t, 1, c.Snapshot().Page, "prev on first page is a no-op")

	c.Next()
	c.Next()
	s := c.Snapshot()
	assert.Equal(t, 3, s.Page)
	assert.Len(t, s.Items, 5)
	assert.False(t, s.HasNext())
	assert.True(t, s.HasPrev())

	c.Next()
	assert.Equal(t, 3, c.Snapshot().Page, "next on last page is a no-op")

	c.GoTo(99)
	assert.Equal(t, 3, c.Snapshot().Page)
	c.GoTo(-4)
	assert.Equal(t, 1, c.Snapshot().Page)
}

func TestLocalFilter(t *testing.T) {
	src := &fakeSource{list: heroesNamed("Batman", "Superman", "Batgirl", "Wonder Woman")}
	c := newController(t, src, Options{PageSize: 2})
	c.Mount()
	c.Next()
	require.Equal(t, 2, c.Snapshot().Page)

	c.SetQuery("  BAT ")
	s := c.Snapshot()
	assert.Equal(t, 1, s.Page, "query change resets the page")
	assert.Equal(t, []string{"Batman", "Batgirl"}, names(s.Items))
	assert.Equal(t, 4, s.Records)

	c.SetQuery("zzz")
	s = c.Snapshot()
	assert.Empty(t, s.Items)
	assert.Zero(t, s.Total)
	assert.Equal(t, 4, s.Records, "filtering never alters the records")
	assert.False(t, s.HasNext())
	assert.False(t, s.HasPrev())

	c.SetQuery("")
	assert.Equal(t, 4, c.Snapshot().Total)
	assert.Empty(t, src.searchCalls(), "local mode never searches upstream")
}

func TestUnchangedNormalizedQueryKeepsPage(t *testing.T) {
	c := newController(t, &fakeSource{list: manyHeroes(60)}, Options{})
	c.Mount()
	c.SetQuery("hero")
	c.Next()
	require.Equal(t, 2, c.Snapshot().Page)

	c.SetQuery("HERO ")
	s := c.Snapshot()
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, "HERO ", s.Query)
}

func TestRemoteSearchIsDebounced(t *testing.T) {
	src := &fakeSource{
		list:    heroesNamed("A-Bomb"),
		results: map[string][]models.HeroSummary{"bat": heroesNamed("Batman", "Batgirl")},
	}
	c := newController(t, src, Options{Remote: true, Debounce: 30 * time.Millisecond})
	c.Mount()

	c.SetQuery("b")
	c.SetQuery("ba")
	c.SetQuery("Bat")
	assert.Equal(t, 1, c.Snapshot().Page)

	assert.Eventually(t, func() bool {
		return c.Snapshot().Total == 2
	}, time.Second, 5*time.Millisecond)
	c.Settle()

	assert.Equal(t, []string{"bat"}, src.searchCalls())
	s := c.Snapshot()
	assert.Equal(t, []string{"Batman", "Batgirl"}, names(s.Items))
	assert.False(t, s.Loading)
}

func TestRemoteSearchRace(t *testing.T) {
	for _, order := range [][]string{{"man", "bat"}, {"bat", "man"}} {
		t.Run(fmt.Sprintf("%s arrives first", order[0]), func(t *testing.T) {
			src := &fakeSource{
				results: map[string][]models.HeroSummary{
					"bat": heroesNamed("Batman"),
					"man": heroesNamed("Superman", "Spider-Man"),
				},
				gates: map[string]chan struct{}{
					"bat": make(chan struct{}),
					"man": make(chan struct{}),
				},
				started: make(chan string, 4),
			}
			c := newController(t, src, Options{Remote: true, Debounce: time.Millisecond})

			c.SetQuery("bat")
			require.Equal(t, "bat", <-src.started)
			assert.True(t, c.Snapshot().Loading)

			c.SetQuery("man")
			require.Equal(t, "man", <-src.started)

			for _, q := range order {
				close(src.gates[q])
			}
			c.Settle()

			s := c.Snapshot()
			assert.Equal(t, []string{"Superman", "Spider-Man"}, names(s.Items))
			assert.Equal(t, "man", s.Query)
			assert.False(t, s.Loading)
			assert.Empty(t, s.Error)
		})
	}
}

func TestRemoteEmptyQueryRestoresBaseline(t *testing.T) {
	src := &fakeSource{
		list:    heroesNamed("A-Bomb", "Abe Sapien", "Abin Sur"),
		results: map[string][]models.HeroSummary{"bat": heroesNamed("Batman")},
	}
	c := newController(t, src, Options{Remote: true, Debounce: time.Hour})
	c.Mount()

	c.SetQuery("bat")
	c.Settle()
	assert.Equal(t, []string{"Batman"}, names(c.Snapshot().Items))

	c.SetQuery("   ")
	c.Settle()
	s := c.Snapshot()
	assert.Equal(t, []string{"A-Bomb", "Abe Sapien", "Abin Sur"}, names(s.Items))
	assert.Equal(t, []string{"bat"}, src.searchCalls(), "restoring the baseline makes no request")
}

func TestLateListKeepsRemoteResults(t *testing.T) {
	src := &fakeSource{
		list:    heroesNamed("A-Bomb", "Abe Sapien"),
		results: map[string][]models.HeroSummary{"bat": heroesNamed("Batman")},
		gates:   map[string]chan struct{}{"list:a": make(chan struct{})},
		started: make(chan string, 4),
	}
	c := newController(t, src, Options{Remote: true, SeedQuery: "a", Debounce: time.Hour})

	mounted := make(chan struct{})
	go func() {
		defer close(mounted)
		c.Mount()
	}()
	require.Equal(t, "list:a", <-src.started)

	c.SetQuery("bat")
	c.Settle()
	require.Equal(t, "bat", <-src.started)
	assert.Equal(t, []string{"Batman"}, names(c.Snapshot().Items))

	close(src.gates["list:a"])
	<-mounted
	s := c.Snapshot()
	assert.Equal(t, []string{"Batman"}, names(s.Items))
	assert.False(t, s.Loading)

	c.SetQuery("")
	c.Settle()
	assert.Equal(t, []string{"A-Bomb", "Abe Sapien"}, names(c.Snapshot().Items))
}

func TestRemoteSearchFailure(t *testing.T) {
	src := &fakeSource{
		list:    heroesNamed("A-Bomb"),
		failing: map[string]error{"bat": errors.New("HTTP 502 Bad Gateway (http://x/***/search/bat)")},
	}
	c := newController(t, src, Options{Remote: true, Debounce: time.Hour})
	c.Mount()

	c.SetQuery("bat")
	c.Settle()
	s := c.Snapshot()
	assert.Equal(t, "HTTP 502 Bad Gateway (http://x/***/search/bat)", s.Error)
	assert.Zero(t, s.Records)
	assert.False(t, s.Loading)

	c.SetQuery("")
	c.Settle()
	s = c.Snapshot()
	assert.Empty(t, s.Error)
	assert.Equal(t, 1, s.Records)
}

func TestUnmountSuppressesInFlightList(t *testing.T) {
	var (
		mu      sync.Mutex
		updates int
	)
	src := &fakeSource{
		list:    heroesNamed("A-Bomb"),
		gates:   map[string]chan struct{}{"list:": make(chan struct{})},
		started: make(chan string, 1),
	}
	c := New(context.Background(), src, Options{OnChange: func(State) {
		mu.Lock()
		updates++
		mu.Unlock()
	}})

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Mount()
	}()
	<-src.started
	c.Unmount()
	close(src.gates["list:"])
	<-done

	s := c.Snapshot()
	assert.Zero(t, s.Records)
	assert.False(t, s.Loading)
	mu.Lock()
	assert.Equal(t, 1, updates, "only the loading transition is published")
	mu.Unlock()

	c.SetQuery("a")
	c.Next()
	assert.Equal(t, "", c.Snapshot().Query, "an unmounted view ignores input")
}

func TestCancelledContextSuppressesSearch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{
		list:    heroesNamed("A-Bomb"),
		results: map[string][]models.HeroSummary{"bat": heroesNamed("Batman")},
		gates:   map[string]chan struct{}{"bat": make(chan struct{})},
		started: make(chan string, 2),
	}
	c := New(ctx, src, Options{Remote: true, Debounce: time.Millisecond})
	defer c.Unmount()

	c.SetQuery("bat")
	require.Equal(t, "bat", <-src.started)
	cancel()
	close(src.gates["bat"])
	c.Settle()

	s := c.Snapshot()
	assert.Zero(t, s.Records)
	assert.False(t, s.Loading)
}

func TestUnmountStopsPendingDebounce(t *testing.T) {
	src := &fakeSource{results: map[string][]models.HeroSummary{"bat": heroesNamed("Batman")}}
	c := New(context.Background(), src, Options{Remote: true, Debounce: 20 * time.Millisecond})

	c.SetQuery("bat")
	c.Unmount()
	c.Settle()
	time.Sleep(40 * time.Millisecond)

	assert.Empty(t, src.searchCalls())
}

func TestLoadDetail(t *testing.T) {
	ctx := context.Background()

	st := LoadDetail(ctx, detailFunc(func(context.Context, string) (models.Hero, error) {
		t.Fatal("no request expected for a blank id")
		return models.Hero{}, nil
	}), "  ")
	assert.ErrorIs(t, st.Err, ErrMissingID)
	assert.Nil(t, st.Hero)

	st = LoadDetail(ctx, detailFunc(func(_ context.Context, id string) (models.Hero, error) {
		return models.Hero{HeroSummary: models.HeroSummary{ID: id, Name: "Spectre"}}, nil
	}), " 1 ")
	require.NotNil(t, st.Hero)
	assert.Equal(t, "1", st.ID)
	assert.Equal(t, "Spectre", st.Hero.Name)
	assert.Empty(t, st.Error)

	boom := errors.New("invalid id")
	st = LoadDetail(ctx, detailFunc(func(context.Context, string) (models.Hero, error) {
		return models.Hero{}, boom
	}), "0")
	assert.ErrorIs(t, st.Err, boom)
	assert.Equal(t, "invalid id", st.Error)
}

type detailFunc func(ctx context.Context, id string) (models.Hero, error)

func (f detailFunc) GetHeroByID(ctx context.Context, id string) (models.Hero, error) {
	return f(ctx, id)
}
