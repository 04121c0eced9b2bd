package portal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myschoolct/portal-assistant/internal/enhancer"
	"github.com/myschoolct/portal-assistant/internal/metrics"
)

// fakeSearcher answers from a fixed table and records every call.
type fakeSearcher struct {
	mu     sync.Mutex
	hits   map[string][]Result
	fail   map[string]bool
	calls  []string
	onCall func(term string)
}

func (f *fakeSearcher) Search(_ context.Context, term string, _ int) ([]Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, term)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(term)
	}
	if f.fail[term] {
		return nil, errors.New("connection reset")
	}
	return f.hits[term], nil
}

func (f *fakeSearcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func one(path string) []Result { return []Result{{Path: path, Title: path}} }

func TestSearchWithFallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		expanded  []string
		hits      map[string][]Result
		fail      map[string]bool
		wantTerm  string
		wantCalls []string
	}{
		{
			name:      "first candidate wins",
			expanded:  []string{"monkey pictures", "monkey", "ape"},
			hits:      map[string][]Result{"monkey pictures": one("/a"), "monkey": one("/b")},
			wantTerm:  "monkey pictures",
			wantCalls: []string{"monkey pictures"},
		},
		{
			name:      "stops at first non-empty",
			expanded:  []string{"monkey pictures", "monkey", "ape", "primate"},
			hits:      map[string][]Result{"ape": one("/ape"), "primate": one("/p")},
			wantTerm:  "ape",
			wantCalls: []string{"monkey pictures", "monkey", "ape"},
		},
		{
			name:      "error downgraded to empty",
			expanded:  []string{"dog", "puppy"},
			hits:      map[string][]Result{"puppy": one("/puppy")},
			fail:      map[string]bool{"dog": true},
			wantTerm:  "puppy",
			wantCalls: []string{"dog", "puppy"},
		},
		{
			name:      "exhausted",
			expanded:  []string{"zzz", "yyy"},
			wantTerm:  "",
			wantCalls: []string{"zzz", "yyy"},
		},
		{
			name:     "no candidates",
			expanded: nil,
			wantTerm: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := &fakeSearcher{hits: tt.hits, fail: tt.fail}
			f := NewFetcher(fs, nil, nil)
			out := f.SearchWithFallbackChain(context.Background(), enhancer.EnhancedQuery{Expanded: tt.expanded}, 6)

			assert.Equal(t, tt.wantTerm, out.Term)
			assert.Equal(t, tt.wantCalls, fs.Calls())
			assert.Equal(t, len(tt.wantCalls), out.Attempts)
			if tt.wantTerm == "" {
				assert.Empty(t, out.Results)
			} else {
				assert.Equal(t, tt.hits[tt.wantTerm], out.Results)
			}
		})
	}
}

func TestSearchWithFallbackChain_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	fs := &fakeSearcher{onCall: func(string) { cancel() }}
	f := NewFetcher(fs, nil, nil)

	out := f.SearchWithFallbackChain(ctx, enhancer.EnhancedQuery{Expanded: []string{"a", "b", "c"}}, 6)
	assert.Equal(t, []string{"a"}, fs.Calls())
	assert.Equal(t, 1, out.Attempts)
	assert.Empty(t, out.Results)
}

func TestSearchWithTopicFallback(t *testing.T) {
	t.Parallel()

	t.Run("second topic", func(t *testing.T) {
		t.Parallel()
		fs := &fakeSearcher{hits: map[string][]Result{"flowers": one("/flowers"), "shapes": one("/shapes")}}
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		out := NewFetcher(fs, nil, m).SearchWithTopicFallback(context.Background(), DefaultFallbackTopics, 6)

		assert.Equal(t, "flowers", out.Term)
		assert.Equal(t, one("/flowers"), out.Results)
		assert.Equal(t, []string{"animals", "flowers"}, fs.Calls())
		assert.InDelta(t, 1, testutil.ToFloat64(m.FallbackTopicsTotal.WithLabelValues("flowers")), 0)
	})

	t.Run("all empty", func(t *testing.T) {
		t.Parallel()
		fs := &fakeSearcher{fail: map[string]bool{"animals": true}}
		out := NewFetcher(fs, nil, nil).SearchWithTopicFallback(context.Background(), DefaultFallbackTopics, 6)

		assert.Equal(t, NoResultsTopic, out.Term)
		assert.Empty(t, out.Results)
		assert.Equal(t, DefaultFallbackTopics, fs.Calls())
		assert.Equal(t, 4, out.Attempts)
	})
}

func TestFetchByTerm_Metrics(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	fs := &fakeSearcher{
		hits: map[string][]Result{"cat": one("/cat")},
		fail: map[string]bool{"bad": true},
	}
	f := NewFetcher(fs, nil, m)

	assert.Len(t, f.FetchByTerm(context.Background(), "cat", 6), 1)
	assert.Empty(t, f.FetchByTerm(context.Background(), "dog", 6))
	assert.Empty(t, f.FetchByTerm(context.Background(), "bad", 6))
	assert.Empty(t, f.FetchByTerm(context.Background(), "", 6))

	assert.InDelta(t, 1, testutil.ToFloat64(m.PortalRequestsTotal.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PortalRequestsTotal.WithLabelValues("empty")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PortalRequestsTotal.WithLabelValues("error")), 0)
	assert.Equal(t, []string{"cat", "dog", "bad"}, fs.Calls())
}

// blockingSearcher holds every call until release is closed, honouring the
// call's context the way the HTTP client does.
type blockingSearcher struct {
	started chan struct{}
	once    sync.Once
	release chan struct{}
	hits    []Result
}

func (b *blockingSearcher) Search(ctx context.Context, _ string, _ int) ([]Result, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return b.hits, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestFetchByTerm_CanceledCallerDoesNotEmptySharedSearch(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	bs := &blockingSearcher{
		started: make(chan struct{}),
		release: make(chan struct{}),
		hits:    one("/monkey"),
	}
	f := NewFetcher(bs, nil, m)

	ctxA, cancelA := context.WithCancel(context.Background())
	doneA := make(chan []Result, 1)
	go func() { doneA <- f.FetchByTerm(ctxA, "monkey", 6) }()
	<-bs.started

	doneB := make(chan []Result, 1)
	go func() { doneB <- f.FetchByTerm(context.Background(), "monkey", 6) }()
	// let B join the in-flight search
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case got := <-doneA:
		assert.Empty(t, got)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "canceled caller still waiting on the shared search")
	}

	close(bs.release)
	select {
	case got := <-doneB:
		assert.Equal(t, one("/monkey"), got)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "live caller never got its results")
	}

	assert.InDelta(t, 1, testutil.ToFloat64(m.PortalRequestsTotal.WithLabelValues("canceled")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PortalRequestsTotal.WithLabelValues("hit")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.PortalRequestsTotal.WithLabelValues("error")), 0)
}

func TestFetchByTerm_AlreadyCanceled(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	fs := &fakeSearcher{hits: map[string][]Result{"cat": one("/cat")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, NewFetcher(fs, nil, m).FetchByTerm(ctx, "cat", 6))
	assert.Empty(t, fs.Calls())
	assert.InDelta(t, 1, testutil.ToFloat64(m.PortalRequestsTotal.WithLabelValues("canceled")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.PortalRequestsTotal.WithLabelValues("error")), 0)
}
