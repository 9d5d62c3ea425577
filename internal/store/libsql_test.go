package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/vizor/pkg/schema"
)

func newTestStore(t *testing.T) *LibSQLStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := NewLibSQLStore("file:" + dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(dir)
	})
	return s
}

func seedDiagram(t *testing.T, s *LibSQLStore) *Diagram {
	t.Helper()
	d := &Diagram{
		ID:          uuid.New().String(),
		Title:       "Checkout flow",
		DiagramType: schema.TypeFlowchart,
		Backend:     schema.BackendPrimary,
		Markup:      "flowchart TD\n  A --> B",
		Theme:       schema.ThemeLight,
	}
	require.NoError(t, s.SaveDiagram(context.Background(), d))
	return d
}

// --- Diagram Tests ---

func TestSaveAndGetDiagram(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := seedDiagram(t, s)

	got, err := s.GetDiagram(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, "Checkout flow", got.Title)
	assert.Equal(t, schema.TypeFlowchart, got.DiagramType)
	assert.Equal(t, schema.BackendPrimary, got.Backend)
	assert.Equal(t, d.Markup, got.Markup)
	assert.Nil(t, got.RenderedAt)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetDiagramNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetDiagram(context.Background(), "missing")
	require.Error(t, err)
	verr, ok := err.(*schema.VizorError)
	require.True(t, ok)
	assert.Equal(t, schema.ErrCodeNotFound, verr.Code)
}

func TestSaveDiagramUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := seedDiagram(t, s)
	d.Title = "Revised title"
	d.SVG = []byte("<svg/>")
	require.NoError(t, s.SaveDiagram(ctx, d))

	got, err := s.GetDiagram(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revised title", got.Title)
	assert.Equal(t, []byte("<svg/>"), got.SVG)
}

func TestUpdateDiagram(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := seedDiagram(t, s)
	now := time.Now().UTC().Truncate(time.Second)
	dark := schema.ThemeDark
	require.NoError(t, s.UpdateDiagram(ctx, d.ID, DiagramUpdate{
		SVG:        []byte("<svg>dark</svg>"),
		Theme:      &dark,
		RenderedAt: &now,
	}))

	got, err := s.GetDiagram(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, schema.ThemeDark, got.Theme)
	assert.Equal(t, []byte("<svg>dark</svg>"), got.SVG)
	require.NotNil(t, got.RenderedAt)
}

func TestUpdateDiagramNoFields(t *testing.T) {
	s := newTestStore(t)
	d := seedDiagram(t, s)

	// Empty update is a no-op, not an error.
	assert.NoError(t, s.UpdateDiagram(context.Background(), d.ID, DiagramUpdate{}))
}

func TestUpdateDiagramNotFound(t *testing.T) {
	s := newTestStore(t)
	dark := schema.ThemeDark

	err := s.UpdateDiagram(context.Background(), "missing", DiagramUpdate{Theme: &dark})
	require.Error(t, err)
}

func TestListDiagramsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	flow := seedDiagram(t, s)
	pie := &Diagram{
		ID:          uuid.New().String(),
		DiagramType: schema.TypePie,
		Backend:     schema.BackendFallback,
		Markup:      "pie\n  \"a\" : 1",
		Theme:       schema.ThemeLight,
		SessionID:   "sess-1",
	}
	require.NoError(t, s.SaveDiagram(ctx, pie))

	all, err := s.ListDiagrams(ctx, DiagramFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	flows, err := s.ListDiagrams(ctx, DiagramFilter{DiagramType: schema.TypeFlowchart})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, flow.ID, flows[0].ID)

	bySession, err := s.ListDiagrams(ctx, DiagramFilter{SessionID: "sess-1"})
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	assert.Equal(t, pie.ID, bySession[0].ID)

	limited, err := s.ListDiagrams(ctx, DiagramFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDeleteDiagram(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := seedDiagram(t, s)
	require.NoError(t, s.DeleteDiagram(ctx, d.ID))

	_, err := s.GetDiagram(ctx, d.ID)
	require.Error(t, err)

	err = s.DeleteDiagram(ctx, d.ID)
	require.Error(t, err)
}

// --- Render log tests ---

func TestAppendRenderEventSequence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := seedDiagram(t, s)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AppendRenderEvent(ctx, &RenderEvent{
			DiagramID: d.ID,
			Type:      schema.EventRenderCompleted,
			Payload:   []byte(`{"elements": 2}`),
		}))
	}

	events, err := s.GetRenderEvents(ctx, d.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, int64(i+1), e.Sequence)
		assert.Equal(t, schema.EventRenderCompleted, e.Type)
	}
}

func TestGetRenderEventsSince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := seedDiagram(t, s)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.AppendRenderEvent(ctx, &RenderEvent{DiagramID: d.ID, Type: schema.EventRenderStarted}))
	}

	events, err := s.GetRenderEvents(ctx, d.ID, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(3), events[0].Sequence)
	assert.Equal(t, int64(4), events[1].Sequence)
}

func TestRenderEventsCascadeOnDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := seedDiagram(t, s)

	require.NoError(t, s.AppendRenderEvent(ctx, &RenderEvent{DiagramID: d.ID, Type: schema.EventRenderStarted}))
	require.NoError(t, s.DeleteDiagram(ctx, d.ID))

	events, err := s.GetRenderEvents(ctx, d.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

// --- Retention tests ---

func TestPruneBefore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := &Diagram{
		ID:          uuid.New().String(),
		DiagramType: schema.TypePie,
		Backend:     schema.BackendFallback,
		Markup:      "pie",
		Theme:       schema.ThemeLight,
		CreatedAt:   time.Now().UTC().Add(-48 * time.Hour),
	}
	require.NoError(t, s.SaveDiagram(ctx, old))
	fresh := seedDiagram(t, s)

	pruned, err := s.PruneBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	_, err = s.GetDiagram(ctx, old.ID)
	require.Error(t, err)
	_, err = s.GetDiagram(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Second run applies nothing.
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestVacuum(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Vacuum(context.Background()))
}
