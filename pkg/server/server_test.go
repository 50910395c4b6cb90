package server

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/dexpad/pkg/catalog"
	"github.com/bastiangx/dexpad/pkg/config"
	"github.com/bastiangx/dexpad/pkg/keypad"
)

func intPtr(v int) *int { return &v }

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Entity{
		{ID: 1, Name: "bulbasaur", GenerationID: intPtr(1)},
		{ID: 4, Name: "charmander", GenerationID: intPtr(1)},
		{ID: 6, Name: "charizard", GenerationID: intPtr(1)},
		{ID: 146, Name: "moltres", GenerationID: intPtr(1), IsLegendary: true},
		{ID: 250, Name: "ho-oh", GenerationID: intPtr(2), IsLegendary: true},
	}, catalog.TypeLookup{
		1:   {"grass", "poison"},
		4:   {"fire"},
		6:   {"fire", "flying"},
		146: {"fire", "flying"},
		250: {"fire", "flying"},
	})
}

func newTestServer(t *testing.T, cfg *config.Config, input []byte, opts ...Option) (*Server, *bytes.Buffer) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	searcher, err := NewSearcher(testCatalog(), cfg.Server.CacheSize)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	s, err := NewServer(searcher, cfg, "", bytes.NewReader(input), out, opts...)
	require.NoError(t, err)
	return s, out
}

func encodeRequests(t *testing.T, reqs ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	return buf.Bytes()
}

func decodeNext[T any](t *testing.T, dec *msgpack.Decoder) T {
	t.Helper()
	var v T
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestStartServesRequests(t *testing.T) {
	input := encodeRequests(t,
		Request{ID: "q1", Action: ActionSearch, Query: "fire legendary"},
		Request{ID: "t1", Action: ActionTypes, Types: []string{"fire"}},
		Request{ID: "l1", Action: ActionLookup, Name: "Charizard"},
		Request{ID: "l2", Action: ActionLookup, DexID: 999},
		Request{ID: "x1", Action: "dance"},
		Request{ID: "h1", Action: ActionHealth},
	)
	s, out := newTestServer(t, nil, input)
	require.NoError(t, s.Start(context.Background()))

	dec := msgpack.NewDecoder(out)

	ready := decodeNext[StatusResponse](t, dec)
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, 5, ready.Species)

	search := decodeNext[SearchResponse](t, dec)
	assert.Equal(t, "q1", search.ID)
	assert.Equal(t, 2, search.Count)
	require.Len(t, search.Results, 2)
	assert.Equal(t, "moltres", search.Results[0].Name)
	assert.Equal(t, []string{"fire", "flying"}, search.Results[0].Types)
	assert.Equal(t, []string{"fire"}, search.Filters.Types)

	types := decodeNext[TypesResponse](t, dec)
	assert.Equal(t, "t1", types.ID)
	assert.Len(t, types.Effectiveness.Weaknesses, 3)
	assert.Len(t, types.Effectiveness.Resistances, 6)

	lookup := decodeNext[LookupResponse](t, dec)
	assert.Equal(t, 6, lookup.Species.ID)
	require.NotEmpty(t, lookup.Effectiveness.Weaknesses)
	assert.Equal(t, "rock", lookup.Effectiveness.Weaknesses[0].Type)
	assert.Equal(t, 4.0, lookup.Effectiveness.Weaknesses[0].Multiplier)

	notFound := decodeNext[ErrorResponse](t, dec)
	assert.Equal(t, "l2", notFound.ID)
	assert.Equal(t, CodeNotFound, notFound.Code)

	unknown := decodeNext[ErrorResponse](t, dec)
	assert.Equal(t, CodeBadRequest, unknown.Code)

	health := decodeNext[StatusResponse](t, dec)
	assert.Equal(t, "ok", health.Status)

	assert.Zero(t, out.Len())
}

func TestSearchLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxResults = 3
	s, out := newTestServer(t, cfg, nil)
	dec := msgpack.NewDecoder(out)

	s.Handle(context.Background(), Request{ID: "a", Action: ActionSearch, Query: ""})
	all := decodeNext[SearchResponse](t, dec)
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, 5, all.Total)

	s.Handle(context.Background(), Request{ID: "b", Action: ActionSearch, Query: "fire", Limit: 1})
	one := decodeNext[SearchResponse](t, dec)
	assert.Equal(t, 1, one.Count)
	assert.Equal(t, 4, one.Total)
	assert.Equal(t, "charmander", one.Results[0].Name)
}

func TestTypesValidation(t *testing.T) {
	s, out := newTestServer(t, nil, nil)
	dec := msgpack.NewDecoder(out)

	for _, types := range [][]string{nil, {"fire", "water", "grass"}, {"sound"}} {
		s.Handle(context.Background(), Request{ID: "t", Action: ActionTypes, Types: types})
		resp := decodeNext[ErrorResponse](t, dec)
		assert.Equal(t, CodeBadRequest, resp.Code, "%v", types)
	}
}

func TestInvalidRequestContinues(t *testing.T) {
	input := encodeRequests(t,
		map[string]any{"id": "bad", "action": 5},
		Request{ID: "h", Action: ActionHealth},
	)
	s, out := newTestServer(t, nil, input)
	require.NoError(t, s.Start(context.Background()))

	dec := msgpack.NewDecoder(out)
	decodeNext[StatusResponse](t, dec)

	bad := decodeNext[ErrorResponse](t, dec)
	assert.Equal(t, CodeBadRequest, bad.Code)

	health := decodeNext[StatusResponse](t, dec)
	assert.Equal(t, "h", health.ID)
}

func TestCorruptStreamStops(t *testing.T) {
	input := append(encodeRequests(t, Request{ID: "h", Action: ActionHealth}), 0xc1)
	s, _ := newTestServer(t, nil, input)
	assert.Error(t, s.Start(context.Background()))
}

func TestCanceledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := encodeRequests(t, Request{ID: "h", Action: ActionHealth})
	s, out := newTestServer(t, nil, input)
	require.NoError(t, s.Start(ctx))

	dec := msgpack.NewDecoder(out)
	decodeNext[StatusResponse](t, dec)
	assert.Zero(t, out.Len())
}

func TestKeypadSession(t *testing.T) {
	sched := keypad.NewFakeScheduler(time.Unix(0, 0))
	s, out := newTestServer(t, nil, nil, WithScheduler(sched))
	dec := msgpack.NewDecoder(out)
	ctx := context.Background()

	s.Handle(ctx, Request{ID: "o", Action: ActionSessionOpen})
	opened := decodeNext[SessionResponse](t, dec)
	require.NotEmpty(t, opened.SessionID)
	sid := opened.SessionID

	s.Handle(ctx, Request{ID: "k1", Action: ActionKey, SessionID: sid, Key: 4})
	ev := decodeNext[SessionEvent](t, dec)
	assert.Equal(t, "4", ev.Display)
	resp := decodeNext[SessionResponse](t, dec)
	assert.Equal(t, "4", resp.Display)
	assert.Empty(t, resp.Committed)

	sched.Advance(800 * time.Millisecond)
	ev = decodeNext[SessionEvent](t, dec)
	assert.Equal(t, "change", ev.Event)
	assert.Equal(t, sid, ev.SessionID)
	assert.Equal(t, "4", ev.Display)

	s.Handle(ctx, Request{ID: "st", Action: ActionSetText, SessionID: sid, Text: "char", WithResults: true})
	decodeNext[SessionEvent](t, dec)
	withResults := decodeNext[SessionResponse](t, dec)
	assert.Equal(t, "char", withResults.Committed)
	assert.Len(t, withResults.Results, 2)

	s.Handle(ctx, Request{ID: "dp", Action: ActionDualPress, SessionID: sid})
	decodeNext[SessionResponse](t, dec)
	sched.Advance(500 * time.Millisecond)
	ev = decodeNext[SessionEvent](t, dec)
	assert.Equal(t, "cha", ev.Display)
	s.Handle(ctx, Request{ID: "dr", Action: ActionDualRelease, SessionID: sid})
	released := decodeNext[SessionResponse](t, dec)
	assert.Equal(t, "cha", released.Display)

	s.Handle(ctx, Request{ID: "c", Action: ActionSessionClose, SessionID: sid})
	closed := decodeNext[SessionResponse](t, dec)
	assert.True(t, closed.Closed)

	s.Handle(ctx, Request{ID: "k2", Action: ActionKey, SessionID: sid, Key: 2})
	gone := decodeNext[ErrorResponse](t, dec)
	assert.Equal(t, CodeNotFound, gone.Code)
	assert.Zero(t, out.Len())
}

func TestSessionDualKeyTap(t *testing.T) {
	sched := keypad.NewFakeScheduler(time.Unix(0, 0))
	s, out := newTestServer(t, nil, nil, WithScheduler(sched))
	dec := msgpack.NewDecoder(out)
	ctx := context.Background()

	s.Handle(ctx, Request{ID: "o", Action: ActionSessionOpen})
	sid := decodeNext[SessionResponse](t, dec).SessionID

	s.Handle(ctx, Request{ID: "k", Action: ActionKey, SessionID: sid, Key: 10})
	decodeNext[SessionEvent](t, dec)
	resp := decodeNext[SessionResponse](t, dec)
	assert.Equal(t, " ", resp.Display)
}

func TestSessionLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxSessions = 1
	s, out := newTestServer(t, cfg, nil, WithScheduler(keypad.NewFakeScheduler(time.Unix(0, 0))))
	dec := msgpack.NewDecoder(out)
	ctx := context.Background()

	s.Handle(ctx, Request{ID: "1", Action: ActionSessionOpen})
	decodeNext[SessionResponse](t, dec)

	s.Handle(ctx, Request{ID: "2", Action: ActionSessionOpen})
	resp := decodeNext[ErrorResponse](t, dec)
	assert.Equal(t, CodeTooManySessions, resp.Code)
}

func TestConfigUpdate(t *testing.T) {
	cfg := config.DefaultConfig()
	path := filepath.Join(t.TempDir(), config.FileName)

	searcher, err := NewSearcher(testCatalog(), cfg.Server.CacheSize)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	s, err := NewServer(searcher, cfg, path, bytes.NewReader(nil), out)
	require.NoError(t, err)
	dec := msgpack.NewDecoder(out)
	ctx := context.Background()

	s.Handle(ctx, Request{ID: "c", Action: ActionConfig, MaxResults: intPtr(2), CacheSize: intPtr(0)})
	resp := decodeNext[StatusResponse](t, dec)
	assert.Equal(t, "updated", resp.Status)
	assert.Equal(t, 2, resp.MaxResults)

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Server.MaxResults)

	s.Handle(ctx, Request{ID: "s", Action: ActionSearch, Query: "fire"})
	search := decodeNext[SearchResponse](t, dec)
	assert.Equal(t, 2, search.Count)
	assert.Zero(t, searcher.CacheLen())

	s.Handle(ctx, Request{ID: "bad", Action: ActionConfig, MaxResults: intPtr(0)})
	bad := decodeNext[ErrorResponse](t, dec)
	assert.Equal(t, CodeBadRequest, bad.Code)

	s.Handle(ctx, Request{ID: "empty", Action: ActionConfig})
	empty := decodeNext[ErrorResponse](t, dec)
	assert.Equal(t, CodeBadRequest, empty.Code)
}
