package siteconf

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/wikimark/wikiconf/internal/cache"
	"github.com/wikimark/wikiconf/internal/extract"
	"github.com/wikimark/wikiconf/internal/siteinfo"
)

// Result is the outcome of one wiki's extraction.
type Result struct {
	Domain string
	Source *extract.ConfigurationSource
}

// Fetch runs the whole pipeline for one wiki: cache lookup, siteinfo
// query, configuration extraction.
func Fetch(ctx context.Context, logger *zap.Logger, domain string, cfg Config) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var store *cache.Cache
	if !cfg.Cache.Disabled {
		var err error
		store, err = cache.New(cfg.Cache.Dir, time.Duration(cfg.Cache.MaxAge))
		if err != nil {
			logger.Warn("cache unavailable",
				zap.String("dir", cfg.Cache.Dir),
				zap.Error(err))
			store = nil
		}
	}

	var q *siteinfo.Query
	if store != nil {
		if cached, ok := store.Get(domain); ok {
			logger.Info("using cached siteinfo", zap.String("domain", domain))
			q = cached
		}
	}

	if q == nil {
		logger.Info("connecting to wiki domain", zap.String("domain", domain))
		opts := []siteinfo.Option{siteinfo.WithLogger(logger)}
		if cfg.UserAgent != "" {
			opts = append(opts, siteinfo.WithUserAgent(cfg.UserAgent))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, siteinfo.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Timeout),
			}))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, siteinfo.WithBaseURL(cfg.BaseURL))
		}

		endpoint, err := siteinfo.NewEndpoint(domain, opts...)
		if err != nil {
			return nil, err
		}
		q, err = endpoint.FetchQuery(ctx)
		if err != nil {
			return nil, err
		}
		logQuerySections(logger, q)

		if store != nil {
			if err := store.Put(domain, q); err != nil {
				logger.Warn("cannot write cache", zap.Error(err))
			}
		}
	}

	src, err := extract.Source(logger, q)
	if err != nil {
		return nil, fmt.Errorf("cannot extract configuration data: %w", err)
	}

	return &Result{Domain: domain, Source: src}, nil
}

func logQuerySections(logger *zap.Logger, q *siteinfo.Query) {
	logger.Debug("query sections",
		zap.Int("extensiontags", len(q.ExtensionTags)),
		zap.String("linktrail", q.General.LinkTrail),
		zap.Int("magicwords", len(q.MagicWords)),
		zap.Int("namespacealiases", len(q.NamespaceAliases)),
		zap.Int("namespaces", len(q.Namespaces)),
		zap.Int("protocols", len(q.Protocols)))
}

// FetchAll fans Fetch out over several domains with a bounded worker pool
// and a progress bar. Results arrive in completion order; the first failure
// is returned after every worker finishes.
func FetchAll(ctx context.Context, logger *zap.Logger, domains []string, cfg Config) ([]Result, error) {
	if len(domains) == 1 {
		res, err := Fetch(ctx, logger, domains[0], cfg)
		if err != nil {
			return nil, err
		}
		return []Result{*res}, nil
	}

	// channels for results and errors
	resultChan := make(chan *Result, len(domains))
	errorChan := make(chan error, len(domains))

	// limit the number of workers
	maxWorkers := runtime.NumCPU()
	if maxWorkers > len(domains) {
		maxWorkers = len(domains)
	}
	sem := make(chan struct{}, maxWorkers)

	bar := progressbar.NewOptions(len(domains),
		progressbar.OptionSetDescription(fmt.Sprintf("fetching %d wikis", len(domains))),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	for _, domain := range domains {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			sem <- struct{}{}
			go func(d string) {
				defer func() { <-sem }()

				res, err := Fetch(ctx, logger, d, cfg)
				if err != nil {
					if logger != nil {
						logger.Error("Error fetching domain", zap.String("domain", d), zap.Error(err))
					}
					errorChan <- fmt.Errorf("%s: %w", d, err)
					resultChan <- nil
				} else {
					resultChan <- res
					errorChan <- nil
				}
				bar.Add(1)
			}(domain)
		}
	}

	// collect all results
	var results []Result
	var firstErr error
	for range domains {
		if err := <-errorChan; err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if res := <-resultChan; res != nil {
			results = append(results, *res)
		}
	}

	fmt.Println()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
