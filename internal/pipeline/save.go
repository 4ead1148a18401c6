package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/blockedit/internal/blocks"
	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/tools"
)

// BlockLister returns the live blocks in order.
type BlockLister interface {
	Blocks() []*blocks.Block
}

// BatchSanitizer cleans the data of a save batch.
type BatchSanitizer interface {
	SanitizeBlocks(list []document.ValidatedBlock) []document.ValidatedBlock
}

// Switch pauses change notifications while saving.
type Switch interface {
	Enable()
	Disable()
}

// SaveStats describes one save.
type SaveStats struct {
	Blocks   int
	Dropped  int
	ToolTime time.Duration
}

// Saver is the Saver module.
type Saver struct {
	policy config.InvalidBlockPolicy
	log    *slog.Logger

	blocks    BlockLister
	sanitizer BatchSanitizer
	observer  Switch

	// OnSave is called after every successful save.
	OnSave func(SaveStats, time.Duration)
}

// NewSaver creates the module.
func NewSaver(cfg *config.Config, log *slog.Logger) *Saver {
	return &Saver{
		policy: cfg.InvalidBlocks,
		log:    logging.ForModule(log, string(module.Saver)),
	}
}

// Name implements module.Module.
func (s *Saver) Name() module.Name {
	return module.Saver
}

// Wire implements module.Wirer.
func (s *Saver) Wire(sib module.Siblings) {
	s.blocks, _ = module.Lookup[BlockLister](sib, module.BlockManager)
	s.sanitizer, _ = module.Lookup[BatchSanitizer](sib, module.Sanitizer)
	s.observer, _ = module.Lookup[Switch](sib, module.ModificationsObserver)
}

// Save extracts every live block and returns the document. Change
// notifications are off for the duration.
func (s *Saver) Save(ctx context.Context) (document.Output, error) {
	if s.blocks == nil {
		return document.Output{}, fmt.Errorf("save: %w", ErrMissingModule)
	}
	if s.observer != nil {
		s.observer.Disable()
		defer s.observer.Enable()
	}
	start := time.Now()

	live := s.blocks.Blocks()
	validated := make([]document.ValidatedBlock, len(live))

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range live {
		i, b := i, b
		g.Go(func() error {
			vb, err := b.Save(gctx)
			if err != nil {
				s.log.Warn("block save failed", "index", i, "tool", b.Tool(), "error", err)
			}
			validated[i] = vb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return document.Output{}, err
	}
	if err := ctx.Err(); err != nil {
		return document.Output{}, err
	}

	if s.sanitizer != nil {
		validated = s.sanitizer.SanitizeBlocks(validated)
	}

	out, stats, err := s.reduce(validated)
	if err != nil {
		return document.Output{}, err
	}
	if s.OnSave != nil {
		s.OnSave(stats, time.Since(start))
	}
	return out, nil
}

func (s *Saver) reduce(validated []document.ValidatedBlock) (document.Output, SaveStats, error) {
	var stats SaveStats
	list := make([]document.Block, 0, len(validated))

	for i, vb := range validated {
		if !vb.IsValid {
			if s.policy == config.InvalidBlocksFail {
				return document.Output{}, stats, &InvalidBlockError{Index: i, Tool: vb.Tool}
			}
			s.log.Warn("block skipped because saved data is invalid", "index", i, "tool", vb.Tool)
			stats.Dropped++
			continue
		}

		stats.ToolTime += vb.Time
		if vb.Tool == tools.StubTool {
			if typ, data, ok := tools.SavedBlock(vb.Data); ok {
				list = append(list, document.NewBlock(typ, data))
				continue
			}
		}
		list = append(list, document.NewBlock(vb.Tool, vb.Data))
	}
	stats.Blocks = len(list)

	return document.Output{
		Time:    document.Now(),
		Blocks:  list,
		Version: document.Version,
	}, stats, nil
}
