package sweep

import (
	"context"
	"os"
	"runtime"
	"sync"

	"cloudeng.io/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lilleviklofoten/webcamsweep/internal/imagefile"
)

// Compressor rewrites one file at the given quality and reports its size
// before and after.
type Compressor interface {
	Compress(path string, quality int) (before, after int64, err error)
}

// CompressorFunc adapts a plain function to Compressor.
type CompressorFunc func(path string, quality int) (int64, int64, error)

func (f CompressorFunc) Compress(path string, quality int) (int64, int64, error) {
	return f(path, quality)
}

// Executor carries out a Plan.
type Executor struct {
	opts       Options
	compressor Compressor
	logger     *zap.SugaredLogger

	mu    sync.Mutex
	stats *Stats
}

// NewExecutor returns an executor. compressor may be nil when opts does not
// ask for compression.
func NewExecutor(opts Options, compressor Compressor, logger *zap.SugaredLogger) *Executor {
	return &Executor{opts: opts, compressor: compressor, logger: logger}
}

// Execute deletes and recompresses the files in plan. In a dry run only
// sizes are gathered. Failures on single files are logged and returned
// together once everything else has been processed.
func (e *Executor) Execute(ctx context.Context, plan *Plan) (*Stats, error) {
	e.stats = &Stats{
		TotalFiles:    plan.Examined,
		FilesToDelete: len(plan.Delete),
		DryRun:        e.opts.DryRun(),
		Compressing:   e.opts.Compressing(),
	}
	errs := &errors.M{}

	e.deleteFiles(ctx, plan.Delete, errs)
	if err := ctx.Err(); err != nil {
		return e.stats, err
	}

	if e.opts.Compressing() {
		if err := e.compressFiles(ctx, plan.Compress, errs); err != nil {
			return e.stats, err
		}
	}
	return e.stats, errs.Err()
}

func (e *Executor) deleteFiles(ctx context.Context, paths []string, errs *errors.M) {
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		info, err := os.Stat(path)
		if err != nil {
			e.logger.Warnw("cannot stat file", "path", path, "error", err)
			errs.Append(err)
			continue
		}
		e.stats.SizeToDelete += info.Size()

		if e.opts.DryRun() {
			e.logger.Debugw("would delete", "path", path, "size", info.Size())
			continue
		}
		if err := os.Remove(path); err != nil {
			e.logger.Warnw("delete failed", "path", path, "error", err)
			errs.Append(err)
			continue
		}
		e.stats.Deleted++
		e.logger.Infow("deleted", "path", path, "size", info.Size())
	}
}

func (e *Executor) compressFiles(ctx context.Context, paths []string, errs *errors.M) error {
	workers := e.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.compressFrame(path, errs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// compressFrame handles one frame and its thumbnail. A frame that fails is
// left alone together with its thumbnail.
func (e *Executor) compressFrame(path string, errs *errors.M) {
	files := []string{path}
	if mini := imagefile.MiniPath(path); exists(mini) {
		files = append(files, mini)
	}

	if e.opts.DryRun() {
		for _, f := range files {
			info, err := os.Stat(f)
			if err != nil {
				errs.Append(err)
				return
			}
			e.record(info.Size(), 0, false)
		}
		return
	}

	for _, f := range files {
		before, after, err := e.compressor.Compress(f, e.opts.CompressQuality)
		if err != nil {
			e.logger.Warnw("compression failed", "path", f, "error", err)
			errs.Append(err)
			return
		}
		e.record(before, after, true)
		e.logger.Infow("compressed", "path", f, "before", before, "after", after)
	}
}

func (e *Executor) record(before, after int64, done bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.FilesToCompress++
	e.stats.SizeBeforeCompress += before
	if done {
		e.stats.SizeAfterCompress += after
		if before > 0 {
			e.stats.Ratios = append(e.stats.Ratios, float64(after)/float64(before))
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
