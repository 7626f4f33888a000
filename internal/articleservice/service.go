// Package articleservice coordinates loading, storing and analysing episode
// articles.
package articleservice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/podlex/internal/apperr"
	"github.com/starford/podlex/internal/article"
	"github.com/starford/podlex/internal/corpus"
	"github.com/starford/podlex/internal/extract"
	"github.com/starford/podlex/internal/fetch"
	"github.com/starford/podlex/internal/models"
	"github.com/starford/podlex/internal/report"
	"github.com/starford/podlex/internal/storage"
	"github.com/starford/podlex/internal/tokenizer"
)

const lockFileName = ".podlex.lock"

// SyncResult summarises one sync or reload run.
type SyncResult struct {
	RunID    string               `json:"run_id"`
	Written  int                  `json:"written"`
	Skipped  int                  `json:"skipped"`
	Failures []models.ItemFailure `json:"failures"`
}

// Service coordinates the loader, the article store and report output.
type Service struct {
	store      storage.Provider
	loader     fetch.Loader
	stored     fetch.Loader
	ex         *extract.Extractor
	logger     *slog.Logger
	lockPath   string
	reportPath string
	workers    int
}

// Option configures a Service.
type Option func(*Service)

// WithExtractor sets the transcript extractor used for new articles.
func WithExtractor(ex *extract.Extractor) Option {
	return func(s *Service) { s.ex = ex }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithReportPath sets where Analyze writes its JSON report.
func WithReportPath(path string) Option {
	return func(s *Service) { s.reportPath = path }
}

// WithLockPath sets the file guarding runs against each other.
func WithLockPath(path string) Option {
	return func(s *Service) { s.lockPath = path }
}

// WithWorkers bounds the number of articles re-derived concurrently by Reload.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a Service. loader may be nil for read-only use.
func New(store storage.Provider, loader fetch.Loader, opts ...Option) *Service {
	s := &Service{
		store:      store,
		loader:     loader,
		stored:     fetch.NewStoreLoader(store),
		ex:         extract.New(""),
		logger:     slog.Default(),
		lockPath:   filepath.Join(store.Root(), lockFileName),
		reportPath: filepath.Join(filepath.Dir(store.Root()), "first_occurrences.json"),
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReportPath returns where Analyze writes its report.
func (s *Service) ReportPath() string {
	return s.reportPath
}

// lock takes the run lock or fails with apperr.ErrLocked.
func (s *Service) lock() (*flock.Flock, error) {
	fl := flock.New(s.lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("articleservice: acquire lock: %w", err)
	}
	if !ok {
		return nil, apperr.ErrLocked
	}
	return fl, nil
}

// Sync loads and stores every identifier in order. Identifiers whose
// record already exists are skipped unless reload is set. Malformed
// identifiers and load failures are reported per item and do not stop the
// run; only cancellation or a store write failure aborts it.
func (s *Service) Sync(ctx context.Context, identifiers []string, reload bool) (SyncResult, error) {
	if s.loader == nil {
		return SyncResult{}, errors.New("articleservice: sync: no loader configured")
	}
	fl, err := s.lock()
	if err != nil {
		return SyncResult{}, err
	}
	defer fl.Unlock() //nolint:errcheck // released on process exit anyway

	res := SyncResult{RunID: uuid.NewString(), Failures: []models.ItemFailure{}}
	logger := s.logger.With(slog.String("run_id", res.RunID))
	logger.Info("sync started", slog.Int("identifiers", len(identifiers)), slog.Bool("reload", reload))

	for _, id := range identifiers {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		seq, err := article.ParseSequenceNumber(id)
		if err != nil {
			logger.Warn("sync: skipping malformed identifier", slog.String("identifier", id), slog.String("error", err.Error()))
			res.Failures = append(res.Failures, models.ItemFailure{Identifier: id, Error: err.Error()})
			continue
		}
		if !reload && s.store.Exists(seq) {
			logger.Debug("sync: already stored", slog.String("identifier", id), slog.Int("episode", seq))
			res.Skipped++
			continue
		}

		raw, err := s.loader.Load(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			logger.Warn("sync: load failed", slog.String("identifier", id), slog.String("error", err.Error()))
			res.Failures = append(res.Failures, models.ItemFailure{Identifier: id, Error: err.Error()})
			continue
		}

		a, err := article.NewWithExtractor(id, raw, s.ex)
		if err != nil {
			res.Failures = append(res.Failures, models.ItemFailure{Identifier: id, Error: err.Error()})
			continue
		}
		if err := s.store.Write(a.Record()); err != nil {
			return res, fmt.Errorf("articleservice: sync: %w", err)
		}
		logger.Info("sync: stored", slog.Int("episode", seq), slog.Int("words", len(a.WordCount())))
		res.Written++
	}

	logger.Info("sync finished",
		slog.Int("written", res.Written),
		slog.Int("skipped", res.Skipped),
		slog.Int("failures", len(res.Failures)))
	return res, nil
}

// Reload re-derives every stored article from its stored page text and
// writes it back. Derivation runs concurrently; writes happen afterwards in
// episode order.
func (s *Service) Reload(ctx context.Context) (SyncResult, error) {
	fl, err := s.lock()
	if err != nil {
		return SyncResult{}, err
	}
	defer fl.Unlock() //nolint:errcheck // released on process exit anyway

	res := SyncResult{RunID: uuid.NewString(), Failures: []models.ItemFailure{}}
	logger := s.logger.With(slog.String("run_id", res.RunID))

	metas, err := s.store.List()
	if err != nil {
		return res, fmt.Errorf("articleservice: reload: %w", err)
	}
	logger.Info("reload started", slog.Int("records", len(metas)))

	rebuilt := make([]*article.Article, len(metas))
	errs := make([]error, len(metas))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, m := range metas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := s.rederive(gctx, m.Name)
			if err != nil {
				errs[i] = err
				return nil
			}
			rebuilt[i] = &a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	type rederived struct {
		name string
		a    article.Article
	}
	var ok []rederived
	for i, m := range metas {
		if errs[i] != nil {
			logger.Warn("reload: skipping record", slog.String("name", m.Name), slog.String("error", errs[i].Error()))
			res.Failures = append(res.Failures, models.ItemFailure{Identifier: m.Name, Error: errs[i].Error()})
			continue
		}
		ok = append(ok, rederived{name: m.Name, a: *rebuilt[i]})
	}
	slices.SortStableFunc(ok, func(x, y rederived) int { return article.Compare(x.a, y.a) })

	for _, r := range ok {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.store.Write(r.a.Record()); err != nil {
			return res, fmt.Errorf("articleservice: reload: %w", err)
		}
		res.Written++
		// A record stored under another episode's name now lives under its own.
		if want := storage.FileName(r.a.SequenceNumber()); r.name != want {
			if err := s.store.Delete(r.name); err != nil {
				return res, fmt.Errorf("articleservice: reload: %w", err)
			}
			logger.Info("reload: renamed record", slog.String("from", r.name), slog.String("to", want))
		}
	}

	logger.Info("reload finished", slog.Int("written", res.Written), slog.Int("failures", len(res.Failures)))
	return res, nil
}

// rederive rebuilds an article from the page text kept in the store. The
// stored identifier is kept; records whose identifier cannot be parsed fall
// back to the file name.
func (s *Service) rederive(ctx context.Context, name string) (article.Article, error) {
	rec, err := s.store.Read(name)
	if err != nil {
		return article.Article{}, err
	}
	text, err := s.stored.Load(ctx, name)
	if err != nil {
		return article.Article{}, err
	}
	id := rec.Identifier
	if id == "" {
		id = rec.FileName
	}
	a, err := article.NewWithExtractor(id, text, s.ex)
	if errors.Is(err, article.ErrMalformedIdentifier) {
		a, err = article.NewWithExtractor(name, text, s.ex)
	}
	return a, err
}

// Articles loads every stored article sorted by episode. Records that cannot
// be decoded are returned as failures.
func (s *Service) Articles(ctx context.Context) ([]article.Article, []models.ItemFailure, error) {
	metas, err := s.store.List()
	if err != nil {
		return nil, nil, fmt.Errorf("articleservice: articles: %w", err)
	}
	out := make([]article.Article, 0, len(metas))
	var failures []models.ItemFailure
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rec, err := s.store.Read(m.Name)
		if err == nil {
			var a article.Article
			a, err = article.FromRecordWithExtractor(rec, s.ex)
			if err == nil {
				out = append(out, a)
				continue
			}
		}
		s.logger.Warn("articles: skipping record", slog.String("name", m.Name), slog.String("error", err.Error()))
		failures = append(failures, models.ItemFailure{Identifier: m.Name, Error: err.Error()})
	}
	slices.SortStableFunc(out, article.Compare)
	return out, failures, nil
}

// Article returns the stored article for episode seq.
func (s *Service) Article(_ context.Context, seq int) (article.Article, error) {
	rec, err := s.store.Read(storage.FileName(seq))
	if err != nil {
		return article.Article{}, err
	}
	return article.FromRecordWithExtractor(rec, s.ex)
}

// Transcript returns the plain transcript paragraphs of a.
func (s *Service) Transcript(a article.Article) []string {
	return s.ex.Paragraphs(a.Text())
}

// FirstOccurrences computes the first-occurrence report over all stored
// articles without writing it.
func (s *Service) FirstOccurrences(ctx context.Context) ([]corpus.EpisodeWords, error) {
	articles, _, err := s.Articles(ctx)
	if err != nil {
		return nil, err
	}
	return corpus.AnalyzeArticles(articles), nil
}

// Analyze computes the first-occurrence report over all stored articles and
// writes it to the report path.
func (s *Service) Analyze(ctx context.Context) ([]corpus.EpisodeWords, error) {
	articles, _, err := s.Articles(ctx)
	if err != nil {
		return nil, err
	}
	res := corpus.AnalyzeArticles(articles)
	if err := report.WriteJSON(s.reportPath, res); err != nil {
		return nil, err
	}
	s.logger.Info("analysis written",
		slog.String("path", s.reportPath),
		slog.Int("articles", len(articles)),
		slog.Int("words", report.Total(res)))
	return res, nil
}

// Frequencies ranks every word of the corpus by total count. limit <= 0
// returns the full ranking.
func (s *Service) Frequencies(ctx context.Context, limit int) ([]corpus.WordFrequency, error) {
	articles, _, err := s.Articles(ctx)
	if err != nil {
		return nil, err
	}
	return corpus.TopWords(corpus.SumCounts(articles), limit), nil
}

// FirstOccurrence returns the episode where word first appears. The word is
// folded like transcript text before lookup. apperr.ErrNotFound is returned
// when no article contains it.
func (s *Service) FirstOccurrence(ctx context.Context, word string) (int, error) {
	articles, _, err := s.Articles(ctx)
	if err != nil {
		return 0, err
	}
	ep, ok := corpus.WordOccursFirstIn(tokenizer.Normalize(word), articles)
	if !ok {
		return 0, apperr.ErrNotFound
	}
	return ep, nil
}

// ReadIdentifiers reads one identifier per line from path. Lines are trimmed
// and blank lines skipped.
func ReadIdentifiers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("articleservice: open identifiers: %w", err)
	}
	defer f.Close()
	return ParseIdentifiers(f)
}

// ParseIdentifiers is ReadIdentifiers over an arbitrary reader.
func ParseIdentifiers(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("articleservice: read identifiers: %w", err)
	}
	return out, nil
}
