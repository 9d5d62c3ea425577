package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rendis/vizor/internal/renderer"
	"github.com/rendis/vizor/internal/scene"
	"github.com/rendis/vizor/internal/streaming"
	"github.com/rendis/vizor/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine is a controllable Renderer for pipeline tests. When gate
// is non-nil, Render blocks until the gate closes, so tests can hold a
// render in flight while submitting a newer request.
type fakeEngine struct {
	name string
	gate chan struct{}
	err  error

	mu    sync.Mutex
	calls int
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Render(ctx context.Context, markup string, palette schema.Palette) (*scene.Tree, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &scene.Tree{
		Backend: schema.BackendPrimary,
		Elements: []*scene.Element{
			{ID: "flowchart-A-1", Markers: []string{scene.MarkerNode}, Text: markup},
		},
		SVG:    []byte("<svg/>"),
		Width:  100,
		Height: 50,
	}, nil
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func payload(id string) *schema.DiagramPayload {
	return &schema.DiagramPayload{
		ID:          id,
		Markup:      "flowchart TD\n  A --> B",
		DiagramType: schema.TypeFlowchart,
		Backend:     schema.BackendPrimary,
	}
}

func newTestPipeline(eng renderer.Renderer, hub streaming.EventHub) (*Pipeline, *scene.Container) {
	container := scene.NewContainer()
	registry := renderer.NewRegistry(eng, eng)
	return NewPipeline(registry, container, hub, nil), container
}

func waitOutcome(t *testing.T, done <-chan Outcome) Outcome {
	t.Helper()
	select {
	case out := <-done:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("render outcome not delivered")
		return Outcome{}
	}
}

func TestPipelineRenderSuccess(t *testing.T) {
	eng := &fakeEngine{name: "fake"}
	p, container := newTestPipeline(eng, nil)

	assert.Equal(t, StateIdle, p.State())

	token, done := p.Submit(context.Background(), payload("d1"), schema.ThemeLight)
	out := waitOutcome(t, done)

	assert.Equal(t, token, out.Token)
	assert.Equal(t, "d1", out.PayloadID)
	assert.False(t, out.Discarded)
	assert.Nil(t, out.Err)

	assert.Equal(t, StateRendered, p.State())
	assert.Nil(t, p.LastError())
	require.NotNil(t, container.Tree())
	assert.Len(t, container.Tree().Elements, 1)

	// The outcome carries the tree this attempt installed.
	require.NotNil(t, out.Tree)
	assert.Same(t, container.Tree(), out.Tree)
}

func TestPipelineRenderError(t *testing.T) {
	eng := &fakeEngine{name: "fake", err: errors.New("Parse error on line 2")}
	p, container := newTestPipeline(eng, nil)

	_, done := p.Submit(context.Background(), payload("d1"), schema.ThemeLight)
	out := waitOutcome(t, done)

	require.NotNil(t, out.Err)
	assert.Equal(t, schema.ErrCodeEngineRender, out.Err.Code)
	// Engine message is reported verbatim.
	assert.Equal(t, "Parse error on line 2", out.Err.Message)

	assert.Equal(t, StateErrored, p.State())
	assert.Equal(t, out.Err, p.LastError())
	assert.Nil(t, container.Tree())
}

func TestPipelineErrorNotRetried(t *testing.T) {
	eng := &fakeEngine{name: "fake", err: errors.New("boom")}
	p, _ := newTestPipeline(eng, nil)

	_, done := p.Submit(context.Background(), payload("d1"), schema.ThemeLight)
	waitOutcome(t, done)

	// One submission, one engine call. No retry loop.
	assert.Equal(t, 1, eng.callCount())
}

func TestPipelineStaleRenderDiscarded(t *testing.T) {
	gate := make(chan struct{})
	slow := &fakeEngine{name: "slow", gate: gate}
	p, container := newTestPipeline(slow, nil)

	// First request blocks inside the engine.
	stale := payload("old")
	stale.Markup = "flowchart TD\n  Old --> Result"
	tok1, done1 := p.Submit(context.Background(), stale, schema.ThemeLight)

	// Second request supersedes it.
	fast := payload("new")
	fast.Markup = "flowchart TD\n  New --> Result"
	tok2, done2 := p.Submit(context.Background(), fast, schema.ThemeLight)
	require.Greater(t, tok2, tok1)

	// The second request also blocks on the same gate; release both.
	close(gate)

	out2 := waitOutcome(t, done2)
	assert.False(t, out2.Discarded)
	assert.Nil(t, out2.Err)

	out1 := waitOutcome(t, done1)
	assert.True(t, out1.Discarded)
	assert.Equal(t, "old", out1.PayloadID)
	assert.Nil(t, out1.Err)
	assert.Nil(t, out1.Tree, "a discarded attempt installs nothing")

	// Only the latest result is installed.
	require.NotNil(t, container.Tree())
	assert.Equal(t, fast.Markup, container.Tree().Elements[0].Text)
	assert.Equal(t, StateRendered, p.State())
}

func TestPipelineStaleErrorDiscardedSilently(t *testing.T) {
	gate := make(chan struct{})
	failing := &fakeEngine{name: "failing", gate: gate, err: errors.New("stale failure")}
	p, _ := newTestPipeline(failing, nil)

	_, done1 := p.Submit(context.Background(), payload("old"), schema.ThemeLight)
	_, done2 := p.Submit(context.Background(), payload("new"), schema.ThemeLight)
	close(gate)

	out1 := waitOutcome(t, done1)
	assert.True(t, out1.Discarded)
	// A superseded failure carries no error: the stale check runs first.
	assert.Nil(t, out1.Err)

	waitOutcome(t, done2)
}

func TestPipelineConcurrentSubmitsInstallLatest(t *testing.T) {
	eng := &fakeEngine{name: "fake"}
	p, container := newTestPipeline(eng, nil)

	type attempt struct {
		token  uint64
		markup string
		done   <-chan Outcome
	}

	const submits = 24
	results := make(chan attempt, submits)
	var wg sync.WaitGroup
	for i := 0; i < submits; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pl := payload(fmt.Sprintf("d%d", i))
			pl.Markup = fmt.Sprintf("flowchart TD\n  N%d --> Result", i)
			tok, done := p.Submit(context.Background(), pl, schema.ThemeLight)
			results <- attempt{token: tok, markup: pl.Markup, done: done}
		}(i)
	}
	wg.Wait()
	close(results)

	outcomes := make(map[uint64]Outcome, submits)
	markups := make(map[uint64]string, submits)
	var latest uint64
	for a := range results {
		outcomes[a.token] = waitOutcome(t, a.done)
		markups[a.token] = a.markup
		if a.token > latest {
			latest = a.token
		}
	}

	// The highest token is by definition the latest request; it is
	// never superseded.
	final := outcomes[latest]
	assert.False(t, final.Discarded)
	assert.Nil(t, final.Err)

	// Whatever the completion interleaving, the installed tree belongs
	// to the latest request; a stale result applied after a newer one
	// would surface here as a mismatched markup.
	require.NotNil(t, container.Tree())
	assert.Equal(t, markups[latest], container.Tree().Elements[0].Text)
	assert.Equal(t, StateRendered, p.State())
}

func TestPipelineTokensMonotonic(t *testing.T) {
	eng := &fakeEngine{name: "fake"}
	p, _ := newTestPipeline(eng, nil)

	var prev uint64
	for i := 0; i < 5; i++ {
		tok, done := p.Submit(context.Background(), payload("d"), schema.ThemeDark)
		assert.Greater(t, tok, prev)
		prev = tok
		waitOutcome(t, done)
	}
}

func TestPipelineEvents(t *testing.T) {
	hub := streaming.NewMemoryHub()
	ctx := context.Background()
	events, cancel, err := hub.Subscribe(ctx, streaming.Filter{})
	require.NoError(t, err)
	defer cancel()

	eng := &fakeEngine{name: "fake"}
	p, _ := newTestPipeline(eng, hub)

	_, done := p.Submit(ctx, payload("d1"), schema.ThemeLight)
	waitOutcome(t, done)

	var types []string
	deadline := time.After(time.Second)
	for len(types) < 2 {
		select {
		case ev := <-events:
			types = append(types, ev.Type)
		case <-deadline:
			t.Fatalf("expected 2 events, got %v", types)
		}
	}
	assert.Equal(t, []string{schema.EventRenderStarted, schema.EventRenderCompleted}, types)
}

func TestPipelineSyncSelection(t *testing.T) {
	eng := &fakeEngine{name: "fake"}
	p, container := newTestPipeline(eng, nil)

	_, done := p.Submit(context.Background(), payload("d1"), schema.ThemeLight)
	waitOutcome(t, done)

	p.SyncSelection([]schema.SelectedElement{
		{ID: "flowchart-A-1", Label: "A", Kind: schema.KindNode},
		{ID: "gone-from-old-tree", Label: "B", Kind: schema.KindNode},
	})

	// Present id highlighted, stale id skipped without error.
	assert.Equal(t, []string{"flowchart-A-1"}, container.HighlightedIDs())

	// Clearing the selection clears all markers.
	p.SyncSelection(nil)
	assert.Empty(t, container.HighlightedIDs())
}
