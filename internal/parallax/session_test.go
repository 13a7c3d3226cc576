package parallax

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/greek-portfolio/internal/clock"
	"github.com/Zachkp/greek-portfolio/internal/glyph"
	"github.com/Zachkp/greek-portfolio/internal/reveal"
)

type recorder struct {
	mu   sync.Mutex
	msgs []any
}

func (r *recorder) send(v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, v)
	return nil
}

func (r *recorder) take() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.msgs
	r.msgs = nil
	return out
}

func frames(msgs []any) []frameMessage {
	var out []frameMessage
	for _, m := range msgs {
		if f, ok := m.(frameMessage); ok {
			out = append(out, f)
		}
	}
	return out
}

var testCards = []reveal.Card{
	{ID: "project-1", Animate: true},
	{ID: "project-2", Delay: 150 * time.Millisecond, Animate: true},
}

func newTestSession(t *testing.T) (*Session, *recorder, *clock.Fake) {
	t.Helper()
	c := clock.NewFake(time.Unix(0, 0))
	rec := &recorder{}
	s := NewSession(SessionConfig{
		Clock:         c,
		FrameInterval: 16 * time.Millisecond,
		Generator:     glyph.NewGenerator(glyph.WithSeed(9)),
		Cards:         testCards,
	}, rec.send)
	t.Cleanup(s.Close)
	return s, rec, c
}

func TestSessionHello(t *testing.T) {
	s, rec, _ := newTestSession(t)
	require.NoError(t, s.Start())
	msgs := rec.take()
	require.Len(t, msgs, 1)
	hello := msgs[0].(helloMessage)
	assert.Equal(t, testCards, hello.Cards)
	assert.Empty(t, hello.Visible)
}

func TestSessionViewportGeneratesBatchOnce(t *testing.T) {
	s, rec, c := newTestSession(t)

	viewport := []byte(`{"type":"viewport","documentHeight":4200,"viewportHeight":900,"viewportWidth":1440}`)
	require.NoError(t, s.HandleMessage(viewport))
	require.NoError(t, s.HandleMessage(viewport))

	msgs := rec.take()
	require.Len(t, msgs, 1)
	batch := msgs[0].(batchMessage).Batch
	assert.Equal(t, 4200.0, batch.PageHeight)
	assert.False(t, batch.Compact)
	assert.Len(t, batch.Glyphs, glyph.ConfigFor(false).Size())

	c.Advance(16 * time.Millisecond)
	fs := frames(rec.take())
	require.Len(t, fs, 1)
	assert.Zero(t, fs[0].Scroll)
	assert.Len(t, fs[0].Transforms, len(batch.Glyphs))

	// A taller document replaces the batch wholesale.
	require.NoError(t, s.HandleMessage([]byte(`{"type":"viewport","documentHeight":5000,"viewportHeight":900,"viewportWidth":1440}`)))
	next := rec.take()[0].(batchMessage).Batch
	assert.NotEqual(t, batch.ID, next.ID)
	assert.Equal(t, 5000.0, next.PageHeight)
}

func TestSessionCompactFromTouch(t *testing.T) {
	s, rec, _ := newTestSession(t)
	require.NoError(t, s.HandleMessage([]byte(`{"type":"viewport","documentHeight":3000,"viewportHeight":700,"viewportWidth":1024,"touchPoints":5}`)))
	batch := rec.take()[0].(batchMessage).Batch
	assert.True(t, batch.Compact)
	assert.Len(t, batch.Glyphs, glyph.ConfigFor(true).Size())
}

func TestSessionScrollBurstCoalesces(t *testing.T) {
	s, rec, c := newTestSession(t)
	require.NoError(t, s.HandleMessage([]byte(`{"type":"viewport","documentHeight":4000,"viewportHeight":800,"viewportWidth":1280}`)))
	batch := rec.take()[0].(batchMessage).Batch

	for _, offset := range []string{"10", "40", "90", "120"} {
		require.NoError(t, s.HandleMessage([]byte(`{"type":"scroll","offset":`+offset+`}`)))
		c.Advance(3 * time.Millisecond)
	}
	c.Advance(16 * time.Millisecond)

	fs := frames(rec.take())
	require.Len(t, fs, 1)
	assert.Equal(t, 120.0, fs[0].Scroll)
	want := glyph.TransformFor(batch.Glyphs[0], 120, false)
	assert.Equal(t, want, fs[0].Transforms[0])
}

func TestSessionScrollWithoutBatchIsIgnored(t *testing.T) {
	s, rec, c := newTestSession(t)
	require.NoError(t, s.HandleMessage([]byte(`{"type":"scroll","offset":50}`)))
	c.Advance(time.Second)
	assert.Empty(t, rec.take())
}

func TestSessionReducedMotion(t *testing.T) {
	s, rec, c := newTestSession(t)
	require.NoError(t, s.HandleMessage([]byte(`{"type":"viewport","documentHeight":4000,"viewportHeight":800,"viewportWidth":1280}`)))
	rec.take()
	c.Advance(time.Second)
	rec.take()

	require.NoError(t, s.HandleMessage([]byte(`{"type":"viewport","documentHeight":4000,"viewportHeight":800,"viewportWidth":1280,"reducedMotion":true}`)))
	msgs := rec.take()
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].(batchMessage).Batch.Glyphs)

	require.NoError(t, s.HandleMessage([]byte(`{"type":"scroll","offset":300}`)))
	c.Advance(time.Second)
	assert.Empty(t, rec.take())
}

func TestSessionReveal(t *testing.T) {
	s, rec, c := newTestSession(t)
	require.NoError(t, s.HandleMessage([]byte(`{"type":"viewport","viewportHeight":1000,"reducedMotion":true}`)))
	rec.take()

	require.NoError(t, s.HandleMessage([]byte(`{"type":"visibility","card":"project-1","visible":true}`)))
	assert.Equal(t, []any{revealMessage{Type: typeReveal, Card: "project-1"}}, rec.take())

	// Bounds inside the detection region arm the delayed card.
	require.NoError(t, s.HandleMessage([]byte(`{"type":"visibility","card":"project-2","bounds":{"top":300,"height":200}}`)))
	assert.Empty(t, rec.take())
	require.NoError(t, s.HandleMessage([]byte(`{"type":"visibility","card":"project-2","visible":false}`)))
	require.NoError(t, s.HandleMessage([]byte(`{"type":"visibility","card":"project-2","visible":true}`)))
	c.Advance(150 * time.Millisecond)
	assert.Equal(t, []any{revealMessage{Type: typeReveal, Card: "project-2"}}, rec.take())

	require.NoError(t, s.HandleMessage([]byte(`{"type":"visibility","card":"project-1","visible":true}`)))
	assert.Empty(t, rec.take())
}

func TestSessionRejectsBadInput(t *testing.T) {
	s, rec, _ := newTestSession(t)
	inputs := []string{
		`{not json`,
		`{"type":"teleport"}`,
		`{"type":"visibility","card":"ghost","visible":true}`,
		`{"type":"visibility","card":"project-1"}`,
	}
	for _, in := range inputs {
		require.NoError(t, s.HandleMessage([]byte(in)))
	}
	msgs := rec.take()
	require.Len(t, msgs, len(inputs))
	for _, m := range msgs {
		assert.Equal(t, typeError, m.(errorMessage).Type)
	}
}

func TestSessionCloseCancelsTimers(t *testing.T) {
	s, rec, c := newTestSession(t)
	require.NoError(t, s.HandleMessage([]byte(`{"type":"viewport","documentHeight":4000,"viewportHeight":800}`)))
	require.NoError(t, s.HandleMessage([]byte(`{"type":"visibility","card":"project-2","visible":true}`)))
	rec.take()

	s.Close()
	assert.Zero(t, c.Pending())
	c.Advance(time.Second)
	assert.Empty(t, rec.take())
}
