package portal

import (
	"context"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/myschoolct/portal-assistant/internal/config"
	"github.com/myschoolct/portal-assistant/internal/enhancer"
	"github.com/myschoolct/portal-assistant/internal/logger"
	"github.com/myschoolct/portal-assistant/internal/metrics"
)

// NoResultsTopic labels a topic fallback in which every topic came back empty.
const NoResultsTopic = "educational resources"

// DefaultFallbackTopics are tried in order once every candidate is exhausted.
var DefaultFallbackTopics = []string{"animals", "flowers", "shapes", "numbers"}

// Outcome describes how a fallback stage ended.
type Outcome struct {
	// Term is the candidate (or topic) whose results were returned. Empty
	// for an exhausted chain; NoResultsTopic for an exhausted topic list.
	Term     string
	Results  []Result
	Attempts int
}

// Fetcher runs the candidate fallback strategy against a Searcher.
//
// A failing candidate never fails the pipeline: errors are logged and the
// candidate counts as empty.
type Fetcher struct {
	searcher Searcher
	logger   *logger.Logger
	metrics  *metrics.Metrics
	group    singleflight.Group
}

// NewFetcher creates a fetcher. log and m may be nil.
func NewFetcher(searcher Searcher, log *logger.Logger, m *metrics.Metrics) *Fetcher {
	if log == nil {
		log = logger.Discard()
	}
	return &Fetcher{
		searcher: searcher,
		logger:   log.WithModule("portal"),
		metrics:  m,
	}
}

// FetchByTerm runs one search. Identical concurrent searches share a single
// upstream call, which runs detached from any one caller so an aborted
// request cannot empty the results of the others. Failures are swallowed
// and reported as no results.
func (f *Fetcher) FetchByTerm(ctx context.Context, term string, size int) []Result {
	if term == "" {
		return nil
	}

	start := time.Now()
	if err := ctx.Err(); err != nil {
		f.canceled(term, err, start)
		return nil
	}

	key := term + "\x00" + strconv.Itoa(size)
	ch := f.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.PortalRequest)
		defer cancel()
		return f.searcher.Search(callCtx, term, size)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		f.canceled(term, ctx.Err(), start)
		return nil
	}
	if res.Shared {
		f.metrics.RecordSingleflightDedup("portal")
	}

	if res.Err != nil {
		if errors.Is(res.Err, context.Canceled) {
			f.canceled(term, res.Err, start)
			return nil
		}
		f.metrics.RecordPortalRequest("error", time.Since(start).Seconds())
		f.logger.WithError(res.Err).
			WithField("term", term).
			Warn("Portal search failed, treating as empty")
		return nil
	}

	results, _ := res.Val.([]Result)
	status := "hit"
	if len(results) == 0 {
		status = "empty"
	}
	f.metrics.RecordPortalRequest(status, time.Since(start).Seconds())
	return results
}

// canceled records a search the caller abandoned. It is not a portal fault.
func (f *Fetcher) canceled(term string, err error, start time.Time) {
	f.metrics.RecordPortalRequest("canceled", time.Since(start).Seconds())
	f.logger.WithError(err).
		WithField("term", term).
		Debug("Portal search abandoned by caller")
}

// SearchWithFallbackChain tries eq.Expanded in order and stops at the first
// candidate with results. The whole query comes first, so precision is
// preferred over recall. Cancellation stops further candidates.
func (f *Fetcher) SearchWithFallbackChain(ctx context.Context, eq enhancer.EnhancedQuery, size int) Outcome {
	var out Outcome
	for _, candidate := range eq.Expanded {
		if ctx.Err() != nil {
			f.logger.WithField("attempts", out.Attempts).Debug("Fallback chain abandoned: context done")
			break
		}
		out.Attempts++
		if results := f.FetchByTerm(ctx, candidate, size); len(results) > 0 {
			out.Term = candidate
			out.Results = results
			f.metrics.RecordFallback("chain", out.Attempts, true)
			return out
		}
	}
	f.metrics.RecordFallback("chain", out.Attempts, false)
	return out
}

// SearchWithTopicFallback tries each generic topic in order. When none yields
// results the outcome carries NoResultsTopic and no results.
func (f *Fetcher) SearchWithTopicFallback(ctx context.Context, topics []string, size int) Outcome {
	out := Outcome{Term: NoResultsTopic}
	for _, topic := range topics {
		if ctx.Err() != nil {
			break
		}
		out.Attempts++
		if results := f.FetchByTerm(ctx, topic, size); len(results) > 0 {
			out.Term = topic
			out.Results = results
			f.metrics.RecordFallback("topic", out.Attempts, true)
			f.metrics.RecordFallbackTopic(topic)
			return out
		}
	}
	f.metrics.RecordFallback("topic", out.Attempts, false)
	f.metrics.RecordFallbackTopic(NoResultsTopic)
	return out
}
