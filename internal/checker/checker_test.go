package checker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagewatch/internal/seo"
	"pagewatch/internal/storage/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// fakeFetcher returns a canned response or error per URL.
type fakeFetcher struct {
	responses map[string]seo.FetchResponse
	errs      map[string]error
	calls     int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (seo.FetchResponse, error) {
	f.calls++
	if err, ok := f.errs[url]; ok {
		return seo.FetchResponse{}, err
	}
	resp, ok := f.responses[url]
	if !ok {
		return seo.FetchResponse{}, &seo.FetchError{URL: url, Err: errors.New("no canned response")}
	}
	return resp, nil
}

func newTestChecker(fetcher seo.Fetcher) (*Checker, *memory.Store) {
	store := memory.NewStore(fixedClock{now: time.Unix(1700000000, 0).UTC()})
	return New(store, fetcher, zap.NewNop()), store
}

func TestRegisterURLNormalizesInput(t *testing.T) {
	t.Parallel()

	c, _ := newTestChecker(&fakeFetcher{})
	rec, created, err := c.RegisterURL(context.Background(), "https://Example.COM/some/path?q=1")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "https://example.com", rec.Name)
}

func TestRegisterURLTwiceResolvesToSameRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, _ := newTestChecker(&fakeFetcher{})

	first, created, err := c.RegisterURL(ctx, "https://example.com/path")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := c.RegisterURL(ctx, "https://EXAMPLE.com")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)

	urls, err := c.store.ListURLs(ctx)
	require.NoError(t, err)
	require.Len(t, urls, 1)
}

func TestRegisterURLInvalidInput(t *testing.T) {
	t.Parallel()

	c, _ := newTestChecker(&fakeFetcher{})
	_, _, err := c.RegisterURL(context.Background(), "not a url")
	require.ErrorIs(t, err, seo.ErrInvalidURL)
}

func TestRegisterURLResolvesCreateConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore(fixedClock{now: time.Unix(1700000000, 0).UTC()})
	existing, err := store.CreateURL(ctx, "https://example.com")
	require.NoError(t, err)

	// Simulate losing the create race: lookup misses, create conflicts.
	c := New(&racingStore{Store: store, missFirstLookup: true}, &fakeFetcher{}, zap.NewNop())
	rec, created, err := c.RegisterURL(ctx, "https://example.com")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, existing.ID, rec.ID)
}

// racingStore reports a miss on the first GetURLByName so that CreateURL
// hits the uniqueness constraint, as a concurrent registration would.
type racingStore struct {
	*memory.Store
	missFirstLookup bool
}

func (s *racingStore) GetURLByName(ctx context.Context, name string) (seo.URL, error) {
	if s.missFirstLookup {
		s.missFirstLookup = false
		return seo.URL{}, seo.ErrNotFound
	}
	return s.Store.GetURLByName(ctx, name)
}

func TestRunCheckPersistsExtractedMarkers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	body := `<html><head><title>T</title><meta name="description" content="D"></head><body><h1>H</h1></body></html>`
	fetcher := &fakeFetcher{responses: map[string]seo.FetchResponse{
		"https://example.com": {StatusCode: 200, Body: []byte(body)},
	}}
	c, store := newTestChecker(fetcher)

	rec, _, err := c.RegisterURL(ctx, "https://example.com")
	require.NoError(t, err)

	check, err := c.RunCheck(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, 200, check.StatusCode)
	require.Equal(t, "T", check.Title)
	require.Equal(t, "H", check.H1)
	require.Equal(t, "D", check.Description)
	require.Equal(t, rec.ID, check.URLID)

	checks, err := store.ListChecks(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, checks, 1)
}

func TestRunCheckMissingMarkersAreEmptyNotFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fetcher := &fakeFetcher{responses: map[string]seo.FetchResponse{
		"https://example.com": {StatusCode: 200, Body: []byte(`<html><head><title>only title</title></head></html>`)},
	}}
	c, _ := newTestChecker(fetcher)

	rec, _, err := c.RegisterURL(ctx, "https://example.com")
	require.NoError(t, err)

	check, err := c.RunCheck(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, "only title", check.Title)
	require.Equal(t, "", check.H1)
	require.Equal(t, "", check.Description)
}

func TestRunCheckRecordsNon2xxStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fetcher := &fakeFetcher{responses: map[string]seo.FetchResponse{
		"https://example.com": {StatusCode: 503, Body: []byte(`<html><title>maintenance</title></html>`)},
	}}
	c, _ := newTestChecker(fetcher)

	rec, _, err := c.RegisterURL(ctx, "https://example.com")
	require.NoError(t, err)

	check, err := c.RunCheck(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, 503, check.StatusCode)
}

func TestRunCheckFetchFailurePersistsNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fetcher := &fakeFetcher{errs: map[string]error{
		"https://unreachable.example": &seo.FetchError{URL: "https://unreachable.example", Err: errors.New("connection refused")},
	}}
	c, store := newTestChecker(fetcher)

	rec, _, err := c.RegisterURL(ctx, "https://unreachable.example")
	require.NoError(t, err)

	_, err = c.RunCheck(ctx, rec.ID)
	var fetchErr *seo.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, 1, fetcher.calls)

	checks, err := store.ListChecks(ctx, rec.ID)
	require.NoError(t, err)
	require.Empty(t, checks)
}

func TestRunCheckUnknownURL(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	c, _ := newTestChecker(fetcher)

	_, err := c.RunCheck(context.Background(), 12345)
	require.ErrorIs(t, err, seo.ErrNotFound)
	require.Zero(t, fetcher.calls)
}
