// Package checker composes the fetcher, analyzer and store into the
// register-URL and run-check use cases.
package checker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pagewatch/internal/seo"
)

// Checker orchestrates URL registration and check runs. One RunCheck call
// performs at most one outbound fetch and persists at most one check.
type Checker struct {
	store   seo.Store
	fetcher seo.Fetcher
	logger  *zap.Logger
}

// New constructs a Checker.
func New(store seo.Store, fetcher seo.Fetcher, logger *zap.Logger) *Checker {
	return &Checker{
		store:   store,
		fetcher: fetcher,
		logger:  logger,
	}
}

// RegisterURL normalizes raw input and registers the canonical URL,
// resolving duplicates to the existing record. The returned bool reports
// whether a new record was created.
func (c *Checker) RegisterURL(ctx context.Context, rawInput string) (seo.URL, bool, error) {
	name, err := seo.NormalizeURL(rawInput)
	if err != nil {
		return seo.URL{}, false, err
	}

	existing, err := c.store.GetURLByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, seo.ErrNotFound) {
		return seo.URL{}, false, fmt.Errorf("lookup url: %w", err)
	}

	created, err := c.store.CreateURL(ctx, name)
	if errors.Is(err, seo.ErrConflict) {
		// Lost a race with a concurrent registration of the same name.
		existing, err := c.store.GetURLByName(ctx, name)
		if err != nil {
			return seo.URL{}, false, fmt.Errorf("resolve conflicting url: %w", err)
		}
		return existing, false, nil
	}
	if err != nil {
		return seo.URL{}, false, fmt.Errorf("create url: %w", err)
	}

	seo.URLsRegistered.Inc()
	c.logger.Info("url registered", zap.Int64("id", created.ID), zap.String("name", created.Name))
	return created, true, nil
}

// RunCheck fetches the URL's page, extracts its SEO markers and persists a
// check record. A fetch failure aborts the check: nothing is persisted and
// the *seo.FetchError is returned to the caller.
func (c *Checker) RunCheck(ctx context.Context, urlID int64) (seo.Check, error) {
	rec, err := c.store.GetURL(ctx, urlID)
	if err != nil {
		if errors.Is(err, seo.ErrNotFound) {
			return seo.Check{}, err
		}
		return seo.Check{}, fmt.Errorf("load url: %w", err)
	}

	resp, err := c.fetcher.Fetch(ctx, rec.Name)
	if err != nil {
		seo.CheckFailures.Inc()
		c.logger.Warn("check failed",
			zap.Int64("url_id", rec.ID),
			zap.String("url", rec.Name),
			zap.Error(err),
		)
		return seo.Check{}, err
	}

	meta, err := seo.AnalyzePage(resp.Body)
	if err != nil {
		seo.CheckFailures.Inc()
		return seo.Check{}, fmt.Errorf("analyze %s: %w", rec.Name, err)
	}

	check, err := c.store.CreateCheck(ctx, seo.Check{
		URLID:       rec.ID,
		StatusCode:  resp.StatusCode,
		Title:       meta.Title,
		H1:          meta.H1,
		Description: meta.Description,
	})
	if err != nil {
		return seo.Check{}, fmt.Errorf("persist check: %w", err)
	}

	seo.ChecksSucceeded.Inc()
	c.logger.Info("check persisted",
		zap.Int64("url_id", rec.ID),
		zap.Int64("check_id", check.ID),
		zap.Int("status_code", check.StatusCode),
		zap.Duration("fetch_duration", resp.Duration),
	)
	return check, nil
}
