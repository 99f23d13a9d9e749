package outline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/scopekit/pkg/domain"
)

const (
	// DefaultWorkers indicates that the scanner should use GOMAXPROCS as the worker count.
	DefaultWorkers = 0
	// DefaultTimeout is the default scan timeout duration.
	DefaultTimeout = 5 * time.Minute
	// MaxWorkers is the maximum number of concurrent workers allowed.
	MaxWorkers = 1024
	// DefaultMaxFileSize is the default maximum file size for scanning (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// DefaultSkipPatterns contains directory names that are skipped by default during scanning.
var DefaultSkipPatterns = []string{
	".git",
	"testdata",
	"vendor",
}

var (
	// ErrScanCancelled is returned when scanning is cancelled via context.
	ErrScanCancelled = errors.New("outline: scan cancelled")
	// ErrScanTimeout is returned when scanning exceeds the timeout duration.
	ErrScanTimeout = errors.New("outline: scan timeout")
)

// Phases reported in ScanError.
const (
	PhaseDiscovery = "discovery"
	PhaseParsing   = "parsing"
)

// Scanner outlines every test file under a directory.
type Scanner struct {
	options *Options
}

// Result contains the outcome of a scan operation.
type Result struct {
	// Inventory contains the outlines of files that register tests.
	Inventory *domain.Inventory

	// Errors contains non-fatal errors encountered during scanning.
	Errors []ScanError

	// Stats provides scan statistics.
	Stats Stats
}

// ScanError represents an error that occurred during a specific phase of scanning.
type ScanError struct {
	// Err is the underlying error.
	Err error

	// Path is the file path where the error occurred (may be empty for non-file errors).
	Path string

	// Phase is PhaseDiscovery or PhaseParsing.
	Phase string
}

// Error implements the error interface.
func (e ScanError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Phase, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e ScanError) Unwrap() error {
	return e.Err
}

// Stats provides statistics about the scan operation.
type Stats struct {
	// FilesScanned is the total number of test file candidates discovered.
	FilesScanned int
	// FilesMatched is the number of files that register at least one group, test or hook.
	FilesMatched int
	// FilesFailed is the number of files that could not be read or parsed.
	FilesFailed int
	// FilesSkipped is the number of candidates that register nothing.
	FilesSkipped int
	// Duration is the total scan duration.
	Duration time.Duration
}

// NewScanner creates a new scanner with the given options.
func NewScanner(opts ...Option) *Scanner {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)

	return &Scanner{options: options}
}

// Scan discovers *_test.go files under root and outlines them in parallel.
// Files in Result.Inventory are sorted by path, relative to root.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	result := &Result{
		Inventory: &domain.Inventory{
			RootPath: root,
			Files:    []domain.TestFile{},
		},
		Errors: []ScanError{},
	}

	files, errs := s.discover(ctx, root)
	for _, err := range errs {
		result.Errors = append(result.Errors, ScanError{
			Err:   err,
			Phase: PhaseDiscovery,
		})
	}
	result.Stats.FilesScanned = len(files)

	if len(files) > 0 {
		parsed, scanErrors := s.parseFilesParallel(ctx, root, files)
		result.Inventory.Files = parsed
		result.Errors = append(result.Errors, scanErrors...)

		result.Stats.FilesMatched = len(parsed)
		result.Stats.FilesFailed = len(scanErrors)
		result.Stats.FilesSkipped = result.Stats.FilesScanned - result.Stats.FilesMatched - result.Stats.FilesFailed
	}
	result.Stats.Duration = time.Since(startTime)

	s.options.Logger.Debug("scan finished",
		"root", root,
		"scanned", result.Stats.FilesScanned,
		"matched", result.Stats.FilesMatched,
		"failed", result.Stats.FilesFailed,
		"duration", result.Stats.Duration,
	)

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return result, ErrScanTimeout
		}
		return result, ErrScanCancelled
	}

	return result, nil
}

func (s *Scanner) discover(ctx context.Context, root string) ([]string, []error) {
	skipSet := buildSkipSet(append(append([]string{}, DefaultSkipPatterns...), s.options.ExcludePatterns...))

	var (
		files []string
		errs  []error
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if walkErr != nil {
			errs = append(errs, fmt.Errorf("access error at %s: %w", path, walkErr))
			return nil
		}

		if d.IsDir() {
			if path != root && skipSet[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("compute relative path for %s: %w", path, err))
			return nil
		}

		if len(s.options.Patterns) > 0 && !matchesAnyPattern(filepath.ToSlash(relPath), s.options.Patterns) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get file info for %s: %w", path, err))
			return nil
		}
		if info.Size() > s.options.MaxFileSize {
			s.options.Logger.Debug("file too large", "path", relPath, "size", info.Size())
			return nil
		}

		files = append(files, relPath)
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		errs = append(errs, err)
	}

	return files, errs
}

func (s *Scanner) parseFilesParallel(ctx context.Context, root string, files []string) ([]domain.TestFile, []ScanError) {
	workers := s.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	var (
		mu         sync.Mutex
		testFiles  = make([]domain.TestFile, 0, len(files))
		scanErrors = make([]ScanError, 0)
	)

	for _, file := range files {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			testFile, err := s.parseFile(gCtx, root, file)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				s.options.Logger.Debug("parse failed", "path", file, "error", err)
				scanErrors = append(scanErrors, ScanError{Err: err, Path: file, Phase: PhaseParsing})
				return nil
			}
			if testFile != nil {
				testFiles = append(testFiles, *testFile)
			}
			return nil
		})
	}

	_ = g.Wait()

	// Goroutines finish in arbitrary order.
	sort.Slice(testFiles, func(i, j int) bool {
		return testFiles[i].Path < testFiles[j].Path
	})

	return testFiles, scanErrors
}

func (s *Scanner) parseFile(ctx context.Context, root, path string) (*domain.TestFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filepath.Join(root, path))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return ParseFile(ctx, content, filepath.ToSlash(path))
}

func buildSkipSet(patterns []string) map[string]bool {
	skipSet := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		skipSet[p] = true
	}
	return skipSet
}

func matchesAnyPattern(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// Scan outlines the test files under root with a new Scanner.
func Scan(ctx context.Context, root string, opts ...Option) (*Result, error) {
	return NewScanner(opts...).Scan(ctx, root)
}
