package controller

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/screenlate/screenlate/internal/config"
	apperrors "github.com/screenlate/screenlate/internal/errors"
	"github.com/screenlate/screenlate/internal/fingerprint"
	"github.com/screenlate/screenlate/internal/imaging"
	"github.com/screenlate/screenlate/internal/ocr"
	"github.com/screenlate/screenlate/internal/region"
	"github.com/screenlate/screenlate/internal/screen"
	"github.com/screenlate/screenlate/internal/syncx"
	"github.com/screenlate/screenlate/internal/textnorm"
	"github.com/screenlate/screenlate/internal/trace"
	"github.com/screenlate/screenlate/internal/translate"
)

// Display receives user-visible output. Implementations must marshal calls
// onto their own scheduling context; the controller invokes both methods from
// the polling goroutine.
type Display interface {
	SetText(s string)
	SetStatus(s string)
}

// Snapshot is the externally readable loop state.
type Snapshot struct {
	Region  *region.CaptureRegion `json:"region,omitempty"`
	Running bool                  `json:"running"`
	Status  string                `json:"status"`
	Text    string                `json:"text"`
}

// Controller owns the loop state: the last frame fingerprint, the last
// normalized text, and the translation cache. All three are mutated only from
// the polling goroutine. The running flag is the single cross-thread field;
// control callers flip it, the loop reads it as its continuation condition.
type Controller struct {
	cfg        *config.Config
	capturer   screen.Capturer
	hasher     fingerprint.Hasher
	preprocess func(image.Image) *image.Gray
	engine     ocr.Engine
	translator translate.Translator
	cache      *translate.Cache
	display    Display

	running atomic.Bool
	wg      sync.WaitGroup

	mu     sync.Mutex // serializes Start/Stop/SelectRegion; guards stopCh and region
	stopCh chan struct{}
	region *region.CaptureRegion

	lastFingerprint fingerprint.Fingerprint
	lastText        string

	snapshot *syncx.RWGuard[Snapshot]
}

// New creates a controller wired to its collaborators.
func New(cfg *config.Config, capturer screen.Capturer, engine ocr.Engine, translator translate.Translator, display Display) *Controller {
	return &Controller{
		cfg:        cfg,
		capturer:   capturer,
		hasher:     fingerprint.ForMode(cfg.FingerprintMode, cfg.PerceptualMaxDistance),
		preprocess: imaging.ForOCR,
		engine:     engine,
		translator: translator,
		cache:      translate.NewCache(),
		display:    display,
		snapshot:   syncx.NewGuard(Snapshot{Status: StatusSelectRegion}),
	}
}

// SelectRegion replaces the capture region. Allowed only while stopped; it
// invalidates the fingerprint/text memory and discards the translation cache,
// since cached translations are meaningless for a different region.
func (c *Controller) SelectRegion(r region.CaptureRegion) error {
	if err := r.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.running.Load() {
		c.mu.Unlock()
		return apperrors.New(apperrors.CodeInvalidState, "stop capture before selecting a new region")
	}
	c.region = &r
	c.lastFingerprint = nil
	c.lastText = ""
	c.cache.Clear()
	c.snapshot.Write(func(s *Snapshot) { s.Region = &r })
	c.setStatus(StatusRegionSet + r.String())
	c.mu.Unlock()
	return nil
}

// Start launches the polling goroutine. A no-op if already running.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.region == nil {
		return apperrors.New(apperrors.CodeInvalidState, "no capture region selected")
	}
	if !c.running.CompareAndSwap(false, true) {
		return nil
	}

	c.stopCh = make(chan struct{})
	c.snapshot.Write(func(s *Snapshot) { s.Running = true })
	c.setStatus(StatusRunning)

	c.wg.Add(1)
	go c.run(ctx, *c.region, c.stopCh)
	return nil
}

// Stop requests a cooperative stop and waits for the loop to exit. The tick in
// flight finishes; there is no hard cancellation of capture, OCR, or
// translation calls. Waiting under the lock means a concurrent Start cannot
// launch a second loop until the old one has fully drained.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.CompareAndSwap(true, false) {
		return
	}
	close(c.stopCh)
	c.wg.Wait()
	c.snapshot.Write(func(s *Snapshot) { s.Running = false })
	c.setStatus(StatusStopped)
}

// Running reports whether the loop is active.
func (c *Controller) Running() bool { return c.running.Load() }

// State returns the current externally visible state.
func (c *Controller) State() Snapshot { return c.snapshot.Get() }

func (c *Controller) run(ctx context.Context, r region.CaptureRegion, stopCh <-chan struct{}) {
	defer c.wg.Done()

	ctx, span := trace.StartSpan(ctx, "polling_loop")
	defer span.End()
	log := trace.Logger(ctx)
	log.Info("polling loop started", "region", r.String(), "interval", c.cfg.PollInterval)

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for c.running.Load() {
		if !c.tick(ctx, r, log) {
			// Tick-fatal failure: surface via status and terminate the worker.
			c.running.Store(false)
			c.snapshot.Write(func(s *Snapshot) { s.Running = false })
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
		}
	}
}

// tick runs one loop iteration. It returns false when the worker must
// terminate. Evaluation order is the three-tier dedup: frame fingerprint,
// then text length floor, then text equality - each tier filters a cheaper
// signal before the next stage runs.
func (c *Controller) tick(ctx context.Context, r region.CaptureRegion, log *slog.Logger) bool {
	frame, err := c.capturer.Capture(r)
	if err != nil {
		log.Error("screen capture failed", "error", err)
		c.setStatus(StatusCaptureFailed)
		return false
	}

	fp, err := c.hasher.Sum(frame)
	if err != nil {
		log.Error("fingerprint failed", "error", err)
		c.setStatus(StatusCaptureFailed)
		return false
	}
	if c.lastFingerprint != nil && fp.Equal(c.lastFingerprint) {
		// Unchanged pixels: publish nothing, keep the last informative status.
		return true
	}
	c.lastFingerprint = fp

	raw, err := c.engine.Recognize(ctx, c.preprocess(frame))
	if err != nil {
		log.Error("ocr failed", "error", err)
		c.setStatus(StatusOCRFailed)
		return false
	}
	text := textnorm.Normalize(raw)

	if utf8.RuneCountInString(text) < c.cfg.MinTextChars {
		c.setStatus(StatusNotEnoughText)
		return true
	}
	if text == c.lastText {
		c.setStatus(StatusTextUnchanged)
		return true
	}
	c.lastText = text

	output, status := c.translateText(ctx, text, log)
	c.setStatus(status)
	c.setText(output)
	return true
}

func (c *Controller) translateText(ctx context.Context, text string, log *slog.Logger) (output, status string) {
	if cached, ok := c.cache.Lookup(text); ok {
		return cached, StatusCached
	}

	translated, err := c.translator.Translate(ctx, text, c.cfg.SourceLang, c.cfg.TargetLang)
	if err != nil {
		log.Warn("translation failed", "error", err)
		// Show the failure alongside the recognized text so the user still
		// has something actionable. Failures are never cached.
		return fmt.Sprintf("[translation error]\n%v\n\n--- OCR ---\n%s", err, text), StatusTranslateErr
	}
	c.cache.Store(text, translated)
	return translated, StatusTranslated
}

func (c *Controller) setStatus(s string) {
	c.snapshot.Write(func(sn *Snapshot) { sn.Status = s })
	c.display.SetStatus(s)
}

func (c *Controller) setText(s string) {
	c.snapshot.Write(func(sn *Snapshot) { sn.Text = s })
	c.display.SetText(s)
}
