// Package app runs one snapshot: connect, pin the block, build and write every report.
package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/hydra-snapshot/internal/config"
	"github.com/rovshanmuradov/hydra-snapshot/internal/export"
	"github.com/rovshanmuradov/hydra-snapshot/internal/hydradx"
	"github.com/rovshanmuradov/hydra-snapshot/internal/metrics"
	"github.com/rovshanmuradov/hydra-snapshot/internal/report"
)

// ErrInvalidHeight is returned by ParseHeight for anything but a positive integer
var ErrInvalidHeight = errors.New("block height must be a positive integer")

// ParseHeight parses the block height argument
func ParseHeight(arg string) (uint64, error) {
	height, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 64)
	if err != nil || height == 0 {
		return 0, errors.Wrapf(ErrInvalidHeight, "%q", arg)
	}
	return height, nil
}

// Summary describes a finished run
type Summary struct {
	Height   uint64
	Head     uint64
	Hash     common.Hash
	Files    []string
	Decimals int32
	Treasury string
	RPCCalls int
}

// Message is the closing note printed after a run
func (s *Summary) Message() string {
	return fmt.Sprintf("All DOT / vDOT balances are formatted to %d decimal places\n"+
		"Kindly please send all unallocated funds to the Treasury %s", s.Decimals, s.Treasury)
}

// Runner produces the reports of one block
type Runner struct {
	cfg     *config.Config
	logger  *zap.Logger
	dial    Dialer
	metrics *metrics.Collector
}

// NewRunner creates a runner. A nil dial connects with DialSubstrate.
func NewRunner(cfg *config.Config, logger *zap.Logger, dial Dialer) *Runner {
	if dial == nil {
		dial = DialSubstrate
	}
	return &Runner{
		cfg:     cfg,
		logger:  logger,
		dial:    dial,
		metrics: metrics.NewCollector(),
	}
}

// Metrics returns the collector of the runner
func (r *Runner) Metrics() *metrics.Collector {
	return r.metrics
}

// pass builds one group of reports and returns the written files
type pass func(ctx context.Context) ([]string, error)

// Run connects, pins the block at height and writes every report read at that block
func (r *Runner) Run(ctx context.Context, height uint64) (*Summary, error) {
	r.logger.Info("🔌 Connecting", zap.String("endpoint", r.cfg.Endpoint), zap.Uint64("block", height))

	chain, err := r.dial(ctx, r.cfg, r.logger, r.metrics)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	defer chain.Close()

	head, err := chain.HeadNumber(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch chain head")
	}
	hash, err := chain.BlockHash(ctx, height)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve block #%d", height)
	}
	r.logger.Info("✅ Connected",
		zap.Uint64("head", head),
		zap.Uint64("block", height),
		zap.String("hash", hash.Hex()))
	r.metrics.SetBlock(height, hash.Hex())

	layout := hydradx.ScheduleLayoutBasic
	if r.cfg.ExtendedSchedules {
		layout = hydradx.ScheduleLayoutExtended
	}
	store := hydradx.NewStore(chain.At(hash), layout)
	builder := report.NewBuilder(r.cfg, store, r.logger)
	exporter := export.NewExporter(r.cfg.OutputDir, r.cfg.Formats, r.logger)

	passes := []pass{
		func(ctx context.Context) ([]string, error) { return r.writeSchedules(ctx, builder, exporter) },
		func(ctx context.Context) ([]string, error) { return r.writeHolders(ctx, builder, exporter) },
		func(ctx context.Context) ([]string, error) { return r.writePositions(ctx, builder, exporter) },
	}

	var files []string
	if r.cfg.Parallel {
		files, err = runParallel(ctx, passes)
	} else {
		files, err = runSequential(ctx, passes)
	}
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Height:   height,
		Head:     head,
		Hash:     hash,
		Files:    files,
		Decimals: r.cfg.Decimals,
		Treasury: r.cfg.TreasuryAddress,
		RPCCalls: r.metrics.RPCCalls(),
	}

	if r.cfg.MetricsFile != "" {
		if err := r.metrics.WriteTextfile(r.cfg.MetricsFile); err != nil {
			return nil, errors.Wrap(err, "write metrics file")
		}
		r.logger.Debug("Metrics written", zap.String("file", r.cfg.MetricsFile))
	}

	r.logger.Info("🏁 Snapshot complete",
		zap.Int("files", len(files)),
		zap.Int("rpc_calls", summary.RPCCalls),
		zap.Uint64("block", height))
	return summary, nil
}

func runSequential(ctx context.Context, passes []pass) ([]string, error) {
	var files []string
	for _, p := range passes {
		written, err := p(ctx)
		if err != nil {
			return files, err
		}
		files = append(files, written...)
	}
	return files, nil
}

// runParallel runs the passes concurrently; they read disjoint storage and write
// disjoint files. The first error cancels the rest.
func runParallel(ctx context.Context, passes []pass) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range passes {
		p := p
		g.Go(func() error {
			written, err := p(gctx)
			if err != nil {
				return err
			}
			mu.Lock()
			files = append(files, written...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (r *Runner) writeSchedules(ctx context.Context, b *report.Builder, e *export.Exporter) ([]string, error) {
	rows, err := b.Schedules(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "build DCA schedule report")
	}
	r.metrics.SetReportRows(export.YieldSchedulesFile, len(rows))
	files, err := export.Write(e, export.YieldSchedulesFile, rows)
	return files, errors.Wrap(err, "write DCA schedule report")
}

func (r *Runner) writeHolders(ctx context.Context, b *report.Builder, e *export.Exporter) ([]string, error) {
	reports, err := b.Holders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "build holder reports")
	}

	var files []string
	for _, rep := range reports {
		name := export.HoldersFile(rep.Asset.Slug())
		r.metrics.SetReportRows(name, len(rep.Rows))
		written, err := export.Write(e, name, rep.Rows)
		if err != nil {
			return files, errors.Wrapf(err, "write %s holder report", rep.Asset.Symbol)
		}
		files = append(files, written...)
	}
	return files, nil
}

func (r *Runner) writePositions(ctx context.Context, b *report.Builder, e *export.Exporter) ([]string, error) {
	reports, err := b.Positions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "build position reports")
	}

	var files []string
	for _, rep := range reports {
		name := export.PositionsFile(rep.Asset.Slug())
		r.metrics.SetReportRows(name, len(rep.Rows))
		written, err := export.Write(e, name, rep.Rows)
		if err != nil {
			return files, errors.Wrapf(err, "write %s position report", rep.Asset.Symbol)
		}
		files = append(files, written...)
	}
	return files, nil
}
