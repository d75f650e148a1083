package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"wardrobe-client/internal/model"
	"wardrobe-client/internal/session"
	"wardrobe-client/pkg/apierror"
)

// Capture messages shown to the user.
const (
	MsgInvalidLink     = "Please paste a valid link."
	MsgEmptyLink       = "Please paste a link first."
	MsgCaptureInFlight = "A save is already in progress."
)

var linkPattern = regexp.MustCompile(`^https?://\S+$`)

// State is the capture pipeline's position in a submission.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateDuplicateCheck
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateDuplicateCheck:
		return "duplicate_check"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// CaptureResult describes a submission that did not fail.
// Duplicate is set when the link was already in the list and nothing was sent.
type CaptureResult struct {
	Item      *model.Item `json:"item,omitempty"`
	Duplicate bool        `json:"duplicate"`
}

// CapturePipeline turns pasted links into saved items. It owns the loaded
// item list (most recent first) and the pending input.
type CapturePipeline struct {
	backend  ItemBackend
	sessions *session.Store
	logger   *slog.Logger

	mu    sync.Mutex
	state State
	input string
	items []model.Item
	// gen changes on Reset. Results started under an older generation
	// belong to a previous session and are not merged.
	gen uint64
}

// NewCapturePipeline creates a pipeline with an empty item list.
func NewCapturePipeline(backend ItemBackend, sessions *session.Store, logger *slog.Logger) *CapturePipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &CapturePipeline{
		backend:  backend,
		sessions: sessions,
		logger:   logger.With("component", "capture"),
		items:    []model.Item{},
	}
}

// State returns the current pipeline state.
func (p *CapturePipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetInput replaces the pending input.
func (p *CapturePipeline) SetInput(s string) {
	p.mu.Lock()
	p.input = s
	p.mu.Unlock()
}

// Input returns the pending input.
func (p *CapturePipeline) Input() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input
}

// Items returns a copy of the loaded items.
func (p *CapturePipeline) Items() []model.Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Item, len(p.items))
	copy(out, p.items)
	return out
}

// Submit stores input as the pending input and runs it through validation,
// the duplicate check and submission. Only one submission runs at a time.
//
// Duplicates are checked against the loaded list only; a link saved from
// another device is not detected until the list is refreshed.
func (p *CapturePipeline) Submit(ctx context.Context, input string) (*CaptureResult, error) {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return nil, apierror.Validation(MsgCaptureInFlight)
	}
	p.input = input
	p.state = StateValidating
	gen := p.gen
	link := strings.TrimSpace(input)
	p.mu.Unlock()

	if link == "" {
		p.toIdle()
		return nil, apierror.Validation(MsgEmptyLink)
	}
	userID, err := p.sessions.UserID(ctx)
	if err != nil {
		p.toIdle()
		return nil, err
	}
	if !linkPattern.MatchString(link) {
		p.toIdle()
		return nil, apierror.Validation(MsgInvalidLink)
	}

	p.mu.Lock()
	p.state = StateDuplicateCheck
	for _, item := range p.items {
		if item.SourceURL == link {
			p.input = ""
			p.state = StateIdle
			p.mu.Unlock()
			p.logger.Debug("Skipping duplicate link", "url", link)
			return &CaptureResult{Duplicate: true}, nil
		}
	}
	p.state = StateSubmitting
	p.mu.Unlock()

	item, err := p.backend.SaveItem(ctx, link, userID)
	if err != nil {
		p.toIdle()
		p.logger.Warn("Failed to save link", "url", link, "kind", apierror.KindOf(err), "error", err)
		return nil, err
	}

	// The item exists on the server, but if the caller went away or the
	// session changed while the save was in flight the list is not ours.
	p.mu.Lock()
	if ctx.Err() != nil || p.gen != gen {
		p.state = StateIdle
		p.mu.Unlock()
		p.logger.Debug("Discarding save result for closed view", "item_id", item.ID)
		return &CaptureResult{Item: item}, nil
	}
	p.items = append([]model.Item{*item}, p.items...)
	p.input = ""
	p.state = StateIdle
	p.mu.Unlock()

	p.logger.Info("Item saved", "item_id", item.ID, "url", link)
	return &CaptureResult{Item: item}, nil
}

// Refresh reloads the full list from the backend. A result that arrives
// after ctx is done is dropped.
func (p *CapturePipeline) Refresh(ctx context.Context) ([]model.Item, error) {
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()

	userID, err := p.sessions.UserID(ctx)
	if err != nil {
		return nil, err
	}
	items, err := p.backend.ListItems(ctx, userID)
	if err != nil {
		p.logger.Warn("Failed to refresh items", "kind", apierror.KindOf(err), "error", err)
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.gen != gen {
		return nil, context.Canceled
	}
	p.items = make([]model.Item, len(items))
	copy(p.items, items)
	p.logger.Debug("Items refreshed", "count", len(items))

	out := make([]model.Item, len(p.items))
	copy(out, p.items)
	return out, nil
}

// Find returns the loaded item with the given id.
func (p *CapturePipeline) Find(id string) (model.Item, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, item := range p.items {
		if item.ID == id {
			return item, true
		}
	}
	return model.Item{}, false
}

// Update replaces the loaded copy of an item after a local change.
func (p *CapturePipeline) Update(id string, fn func(*model.Item)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.items {
		if p.items[i].ID == id {
			fn(&p.items[i])
			return true
		}
	}
	return false
}

// Remove drops an item from the loaded list.
func (p *CapturePipeline) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, item := range p.items {
		if item.ID == id {
			p.items = append(p.items[:i:i], p.items[i+1:]...)
			return true
		}
	}
	return false
}

// Reset clears the list and input when the signed-in user changes.
// Saves and refreshes still in flight are not merged afterwards.
func (p *CapturePipeline) Reset() {
	p.mu.Lock()
	p.items = []model.Item{}
	p.input = ""
	p.gen++
	p.mu.Unlock()
}

func (p *CapturePipeline) toIdle() {
	p.mu.Lock()
	p.state = StateIdle
	p.mu.Unlock()
}
