// Package butler implements the editor actions: listing candidate modules and
// adding, removing or sorting the dependencies of a define call.
package butler

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tristendillon/amdbutler/core/config"
	"github.com/tristendillon/amdbutler/core/crawler"
	"github.com/tristendillon/amdbutler/core/document"
	"github.com/tristendillon/amdbutler/core/index"
	"github.com/tristendillon/amdbutler/core/logger"
	"github.com/tristendillon/amdbutler/core/models"
	"github.com/tristendillon/amdbutler/core/naming"
	"github.com/tristendillon/amdbutler/core/rewriter"
	"github.com/tristendillon/amdbutler/core/walker"
	"github.com/tristendillon/amdbutler/core/zipper"
)

var ErrNotDeclared = errors.New("module is not declared in this file")

// Picker is the selection UI: it shows labels and returns the chosen index.
type Picker interface {
	Pick(prompt string, labels []string) (int, error)
}

// Session holds the state of one editing session. The crawler is created on
// first use and torn down by Close.
type Session struct {
	cfg     *config.Config
	finder  document.BoundaryFinder
	crawler *crawler.Crawler
	closed  bool
}

func NewSession(cfg *config.Config, finder document.BoundaryFinder) *Session {
	return &Session{cfg: cfg, finder: finder}
}

// Index is nil until EnsureModulesLoaded succeeded.
func (s *Session) Index() *index.ModuleIndex {
	if s.crawler == nil {
		return nil
	}
	return s.crawler.Index()
}

// EnsureModulesLoaded crawls the project of filePath unless this session
// already did.
func (s *Session) EnsureModulesLoaded(filePath string) error {
	if s.closed {
		return errors.New("session is closed")
	}
	if s.crawler != nil && s.crawler.Crawled() {
		return nil
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", filePath, err)
	}
	basePath, err := crawler.GetBaseFolderPath(absPath, s.cfg.BaseFolders)
	if err != nil {
		return err
	}

	pkg, err := crawler.CurrentPackage(basePath, absPath)
	if err != nil {
		logger.Warn("Not watching for changes: %v", err)
		pkg = ""
	}

	filter, err := walker.NewFilter(s.cfg.ModuleGlob, s.cfg.CrawlExcludes)
	if err != nil {
		return err
	}

	rm := rewriter.LoadReplaceMap(s.cfg.RequireJSConfigPath(filepath.Dir(basePath)))
	s.crawler = crawler.New(crawler.Options{
		BasePath:       basePath,
		CurrentPackage: pkg,
		ReplaceMap:     rm,
		Deriver:        naming.NewDeriver(s.cfg.PreferredAliases),
		Filter:         filter,
	})

	if err := s.crawler.Crawl(); err != nil {
		s.crawler = nil
		return err
	}
	logger.Info("Indexed %d modules under %s", s.crawler.Index().Len(), basePath)
	return nil
}

type declaration struct {
	imports document.Range
	params  document.Range
	pairs   []models.Pair
}

func (s *Session) read(buf document.Buffer) (*declaration, error) {
	importsRange, err := s.finder.ImportsRange(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to find imports in %s: %w", buf.Path(), err)
	}
	paramsRange, err := s.finder.ParamsRange(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to find params in %s: %w", buf.Path(), err)
	}

	pairs, err := zipper.Zip(buf.GetTextInRange(importsRange), buf.GetTextInRange(paramsRange))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", buf.Path(), err)
	}
	return &declaration{imports: importsRange, params: paramsRange, pairs: pairs}, nil
}

// Pairs returns the declared dependencies in document order.
func (s *Session) Pairs(buf document.Buffer) ([]models.Pair, error) {
	decl, err := s.read(buf)
	if err != nil {
		return nil, err
	}
	return decl.pairs, nil
}

// Candidates lists the indexed modules that are neither declared in buf nor
// excluded by configuration.
func (s *Session) Candidates(buf document.Buffer) ([]models.Module, error) {
	if err := s.EnsureModulesLoaded(buf.Path()); err != nil {
		return nil, err
	}
	pairs, err := s.Pairs(buf)
	if err != nil {
		return nil, err
	}

	declared := make([]string, len(pairs))
	for i, p := range pairs {
		declared[i] = p.Path
	}
	exclude := index.NewExcludeSet(declared, s.cfg.ExcludePathsMatching)
	return s.crawler.Index().Candidates(exclude), nil
}

func (s *Session) Add(buf document.Buffer, mod models.Module) error {
	decl, err := s.read(buf)
	if err != nil {
		return err
	}
	logger.Debug("Adding %s as %s to %s", mod.Path, mod.Name, buf.Path())
	return s.write(buf, decl, zipper.Add(decl.pairs, mod.Pair()))
}

func (s *Session) Remove(buf document.Buffer, path string) error {
	decl, err := s.read(buf)
	if err != nil {
		return err
	}
	pairs := zipper.Remove(decl.pairs, path)
	if len(pairs) == len(decl.pairs) {
		return fmt.Errorf("%s: %w", path, ErrNotDeclared)
	}
	logger.Debug("Removing %s from %s", path, buf.Path())
	return s.write(buf, decl, pairs)
}

func (s *Session) Sort(buf document.Buffer) error {
	decl, err := s.read(buf)
	if err != nil {
		return err
	}
	return s.write(buf, decl, zipper.Sort(decl.pairs))
}

// write renders both lists before touching the buffer, then replaces them as
// one undoable change.
func (s *Session) write(buf document.Buffer, decl *declaration, pairs []models.Pair) error {
	blocks := zipper.Render(pairs, zipper.Options{
		Indent:           s.cfg.Indentation,
		SeparatePackages: s.cfg.SeparatePackages,
		Quote:            s.cfg.Quote,
	})

	err := document.ReplaceRanges(buf,
		document.Edit{Range: decl.imports, Text: blocks.Imports},
		document.Edit{Range: decl.params, Text: blocks.Params},
	)
	if err != nil {
		return err
	}
	if cache, ok := s.finder.(interface{ Invalidate(path string) }); ok {
		cache.Invalidate(buf.Path())
	}
	return nil
}

// PickCandidate asks picker to choose one of the candidates for buf.
func (s *Session) PickCandidate(buf document.Buffer, picker Picker) (models.Module, error) {
	candidates, err := s.Candidates(buf)
	if err != nil {
		return models.Module{}, err
	}
	if len(candidates) == 0 {
		return models.Module{}, errors.New("no modules left to add")
	}

	labels := make([]string, len(candidates))
	for i, m := range candidates {
		labels[i] = fmt.Sprintf("%s (%s)", m.Path, m.Name)
	}
	choice, err := pick(picker, "Add module", labels)
	if err != nil {
		return models.Module{}, err
	}
	return candidates[choice], nil
}

// PickDeclared asks picker to choose one of the pairs declared in buf.
func (s *Session) PickDeclared(buf document.Buffer, picker Picker) (models.Pair, error) {
	pairs, err := s.Pairs(buf)
	if err != nil {
		return models.Pair{}, err
	}
	if len(pairs) == 0 {
		return models.Pair{}, errors.New("no modules declared")
	}

	labels := make([]string, len(pairs))
	for i, p := range pairs {
		labels[i] = fmt.Sprintf("%s (%s)", p.Path, p.Name)
	}
	choice, err := pick(picker, "Remove module", labels)
	if err != nil {
		return models.Pair{}, err
	}
	return pairs[choice], nil
}

func pick(picker Picker, prompt string, labels []string) (int, error) {
	choice, err := picker.Pick(prompt, labels)
	if err != nil {
		return 0, err
	}
	if choice < 0 || choice >= len(labels) {
		return 0, fmt.Errorf("selection %d out of range", choice)
	}
	return choice, nil
}

func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if stats, ok := s.finder.(interface{ LogStats() }); ok {
		stats.LogStats()
	}
	if s.crawler == nil {
		return nil
	}
	return s.crawler.Destroy()
}
