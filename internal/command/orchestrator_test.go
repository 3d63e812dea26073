package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/netguru/dotty-dns/internal/executor"
	"github.com/netguru/dotty-dns/internal/history/inmem"
	"github.com/netguru/dotty-dns/internal/model"
	"github.com/netguru/dotty-dns/internal/planner"
	"github.com/netguru/dotty-dns/pkg/errors"
)

// fakeGateway is an in-memory DNS provider holding one zone per domain.
type fakeGateway struct {
	mu        sync.Mutex
	zones     map[string]string // domain -> zone id
	records   map[string][]model.Record
	nextID    int
	failOnDel map[string]bool
	calls     []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		zones:     map[string]string{},
		records:   map[string][]model.Record{},
		failOnDel: map[string]bool{},
	}
}

func (g *fakeGateway) addZone(domain string, records ...model.Record) {
	zoneID := "zone-" + domain
	g.zones[domain] = zoneID
	g.records[zoneID] = append(g.records[zoneID], records...)
}

func (g *fakeGateway) record(call string) {
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) ResolveZone(_ context.Context, domain string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("resolve " + domain)
	id, ok := g.zones[domain]
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrDomainNotFound, domain)
	}
	return id, nil
}

func (g *fakeGateway) ListRecords(ctx context.Context, domain string) ([]model.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("list " + domain)
	id, ok := g.zones[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrDomainNotFound, domain)
	}
	return append([]model.Record(nil), g.records[id]...), nil
}

func (g *fakeGateway) CreateRecord(_ context.Context, zoneID string, rec model.Record) (*model.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("create " + rec.Content)
	g.nextID++
	rec.ID = fmt.Sprintf("rec-%d", g.nextID)
	g.records[zoneID] = append(g.records[zoneID], rec)
	return &rec, nil
}

func (g *fakeGateway) UpdateRecord(_ context.Context, zoneID, recordID string, rec model.Record) (*model.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("update " + recordID)
	for i, r := range g.records[zoneID] {
		if r.ID == recordID {
			rec.ID = recordID
			g.records[zoneID][i] = rec
			return &rec, nil
		}
	}
	return nil, errors.NotFound("record not found", nil)
}

func (g *fakeGateway) DeleteRecord(_ context.Context, zoneID, recordID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("delete " + recordID)
	if g.failOnDel[recordID] {
		return errors.NotFound("record not found", nil)
	}
	kept := g.records[zoneID][:0]
	for _, r := range g.records[zoneID] {
		if r.ID != recordID {
			kept = append(kept, r)
		}
	}
	g.records[zoneID] = kept
	return nil
}

type fakeModel struct {
	response string
	err      error
	prompts  []string
}

func (m *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

type failingStore struct {
	attempts int
}

func (s *failingStore) Append(context.Context, *model.HistoryEntry) error {
	s.attempts++
	return fmt.Errorf("database is locked")
}

func (s *failingStore) List(context.Context, string, string, int) ([]*model.HistoryEntry, error) {
	return nil, nil
}

type fixture struct {
	gw      *fakeGateway
	model   *fakeModel
	history *inmem.Store
	orch    *Orchestrator
}

var testBackoff = wait.Backoff{Duration: time.Millisecond, Factor: 1, Steps: 3}

func newFixture(t *testing.T, withModel bool) *fixture {
	t.Helper()
	f := &fixture{gw: newFakeGateway(), model: &fakeModel{}, history: inmem.NewStore()}
	var m planner.Model
	if withModel {
		m = f.model
	}
	logger := zap.NewNop()
	f.orch = New(logger, f.gw, planner.New(logger, m), executor.New(logger, f.gw, 0), f.history,
		Config{SerializeDomains: true, HistoryBackoff: testBackoff})
	return f
}

func user() *model.Identity {
	return &model.Identity{UID: "user-1", Email: "owner@example.com", ExpiresAt: time.Now().Add(time.Hour)}
}

func mxRecord(id, host string, prio uint16) model.Record {
	return model.Record{ID: id, Type: model.RecordTypeMX, Name: "example.com", Content: host, TTL: 3600, Priority: model.Uint16(prio)}
}

var gmailHosts = []struct {
	host string
	prio uint16
}{
	{"aspmx.l.google.com", 1},
	{"alt1.aspmx.l.google.com", 5},
	{"alt2.aspmx.l.google.com", 5},
	{"alt3.aspmx.l.google.com", 10},
	{"alt4.aspmx.l.google.com", 10},
}

func TestGmailSetupOnEmptyDomain(t *testing.T) {
	f := newFixture(t, true)
	f.gw.addZone("example.com")

	res, err := f.orch.ExecuteCommand(context.Background(), user(), "Set up email for Gmail", "example.com")
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, res.Actions, 5)
	require.Len(t, res.Results, 5)
	for i, want := range gmailHosts {
		a := res.Actions[i]
		assert.Equal(t, model.ActionCreate, a.Type)
		assert.Equal(t, model.RecordTypeMX, a.Record.Type)
		assert.Equal(t, want.host, a.Record.Content)
		require.NotNil(t, a.Record.Priority)
		assert.Equal(t, want.prio, *a.Record.Priority)
		assert.True(t, res.Results[i].Success, res.Results[i].Error)
	}
	assert.Empty(t, f.model.prompts, "preset answers without the model")

	entries, err := f.orch.ListHistory(context.Background(), user(), "example.com", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Set up email for Gmail", entries[0].Command)
	assert.Len(t, entries[0].Results, 5)
}

func TestGmailSetupReplacesExistingMX(t *testing.T) {
	f := newFixture(t, true)
	f.gw.addZone("example.com", mxRecord("mx-1", "mx1.old.net", 10), mxRecord("mx-2", "mx2.old.net", 20))
	f.gw.failOnDel["mx-2"] = true

	res, err := f.orch.ExecuteCommand(context.Background(), user(), "Set up email for Gmail", "example.com")
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, res.Actions, 7)
	require.Len(t, res.Results, 7)

	assert.Equal(t, model.ActionDelete, res.Actions[0].Type)
	assert.Equal(t, model.ActionDelete, res.Actions[1].Type)
	ids := []string{res.Actions[0].Record.ID, res.Actions[1].Record.ID}
	sort.Strings(ids)
	assert.Equal(t, []string{"mx-1", "mx-2"}, ids)

	for i, r := range res.Results {
		if res.Actions[i].Record.ID == "mx-2" {
			assert.False(t, r.Success)
			assert.NotEmpty(t, r.Error)
			continue
		}
		assert.True(t, r.Success, "action %d: %s", i, r.Error)
	}
	for i := 2; i < 7; i++ {
		assert.Equal(t, model.ActionCreate, res.Actions[i].Type)
	}

	// deletes hit the provider before any create
	var mutations []string
	for _, c := range f.gw.calls {
		if strings.HasPrefix(c, "delete ") || strings.HasPrefix(c, "create ") {
			mutations = append(mutations, c)
		}
	}
	require.Len(t, mutations, 7)
	assert.True(t, strings.HasPrefix(mutations[0], "delete "))
	assert.True(t, strings.HasPrefix(mutations[1], "delete "))
	assert.Equal(t, 1, f.history.Len())
}

func TestEmptyCommandIsRejected(t *testing.T) {
	f := newFixture(t, true)
	f.gw.addZone("example.com")

	_, err := f.orch.ExecuteCommand(context.Background(), user(), "   ", "example.com")
	assert.True(t, errors.IsKind(err, errors.KindValidation))
	assert.Empty(t, f.gw.calls)
	assert.Empty(t, f.model.prompts)
	assert.Equal(t, 0, f.history.Len())
}

func TestEmptyDomainIsRejected(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.orch.ExecuteCommand(context.Background(), user(), "add a record", "")
	assert.True(t, errors.IsKind(err, errors.KindValidation))
	assert.Empty(t, f.gw.calls)
}

func TestUnauthenticatedCaller(t *testing.T) {
	f := newFixture(t, true)
	f.gw.addZone("example.com")

	for name, id := range map[string]*model.Identity{
		"nil":     nil,
		"no uid":  {},
		"expired": {UID: "user-1", ExpiresAt: time.Now().Add(-time.Minute)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.orch.ExecuteCommand(context.Background(), id, "Set up email for Gmail", "example.com")
			assert.True(t, errors.IsKind(err, errors.KindAuthentication))
		})
	}
	assert.Empty(t, f.gw.calls)
}

func TestMissingModelKey(t *testing.T) {
	f := newFixture(t, false)
	f.gw.addZone("example.com")

	_, err := f.orch.ExecuteCommand(context.Background(), user(), "Set up email for Gmail", "example.com")
	assert.ErrorIs(t, err, errors.ErrMissingModelKey)
	for _, c := range f.gw.calls {
		assert.False(t, strings.HasPrefix(c, "create ") || strings.HasPrefix(c, "delete "), c)
	}
	assert.Equal(t, 0, f.history.Len())
}

func TestUnknownDomain(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.orch.ExecuteCommand(context.Background(), user(), "Set up email for Gmail", "missing.example")
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
	assert.Equal(t, 0, f.history.Len())
}

func TestModelPlanIsExecuted(t *testing.T) {
	f := newFixture(t, true)
	f.gw.addZone("example.com")
	f.model.response = "Sure! Here you go:\n" + `{
		"interpretation": "Point www at 192.0.2.10",
		"actions": [{"type": "create", "record": {"type": "A", "name": "www", "content": "192.0.2.10", "ttl": 300}}],
		"warnings": [],
		"confirmationMessage": "Created www"
	}`

	res, err := f.orch.ExecuteCommand(context.Background(), user(), "point www to 192.0.2.10", "Example.com")
	require.NoError(t, err)
	require.Len(t, f.model.prompts, 1)
	require.Len(t, res.Results, 1)
	assert.True(t, res.Results[0].Success, res.Results[0].Error)
	assert.Equal(t, "Created www", res.ConfirmationMessage)
	assert.NotNil(t, res.Warnings)

	// round trip: the created record is listed back unchanged
	records, err := f.gw.ListRecords(context.Background(), "example.com")
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, model.RecordTypeA, got.Type)
	assert.Equal(t, "www", got.Name)
	assert.Equal(t, "192.0.2.10", got.Content)
	assert.Equal(t, 300, got.TTL)
	require.NotNil(t, got.Proxied)
	assert.False(t, *got.Proxied)
}

func TestModelOutputErrorWritesNoHistory(t *testing.T) {
	f := newFixture(t, true)
	f.gw.addZone("example.com")
	f.model.response = "I cannot help with that."

	_, err := f.orch.ExecuteCommand(context.Background(), user(), "do something", "example.com")
	assert.True(t, errors.IsKind(err, errors.KindModelOutput))
	assert.Equal(t, 0, f.history.Len())
}

func TestHistoryFailureDoesNotFailCommand(t *testing.T) {
	gw := newFakeGateway()
	gw.addZone("example.com")
	store := &failingStore{}
	logger := zap.NewNop()
	orch := New(logger, gw, planner.New(logger, &fakeModel{}), executor.New(logger, gw, 0), store,
		Config{HistoryBackoff: testBackoff})

	res, err := orch.ExecuteCommand(context.Background(), user(), "Set up email for Gmail", "example.com")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Greater(t, store.attempts, 1, "append is retried")
	assert.LessOrEqual(t, store.attempts, testBackoff.Steps)
}

func TestListHistoryRequiresDomain(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.orch.ListHistory(context.Background(), user(), " ", 10)
	assert.True(t, errors.IsKind(err, errors.KindValidation))

	_, err = f.orch.ListHistory(context.Background(), nil, "example.com", 10)
	assert.True(t, errors.IsKind(err, errors.KindAuthentication))
}

func TestDomainLocksSerialize(t *testing.T) {
	l := newDomainLocks()
	ctx := context.Background()
	unlock, err := l.Lock(ctx, "example.com")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		u, err := l.Lock(ctx, "example.com")
		if err == nil {
			close(acquired)
			u()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(20 * time.Millisecond):
	}

	other, err := l.Lock(ctx, "other.com")
	require.NoError(t, err)
	other()

	unlock()
	<-acquired
	assert.Eventually(t, func() bool { return l.size() == 0 }, time.Second, time.Millisecond)
}

func TestDomainLocksHonorContext(t *testing.T) {
	l := newDomainLocks()
	unlock, err := l.Lock(context.Background(), "example.com")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "example.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Equal(t, 0, l.size())
}

func TestCommandGivesUpWaitingForBusyDomain(t *testing.T) {
	gw := newFakeGateway()
	gw.addZone("example.com")
	store := inmem.NewStore()
	logger := zap.NewNop()
	orch := New(logger, gw, planner.New(logger, &fakeModel{}), executor.New(logger, gw, 0), store,
		Config{Timeout: 20 * time.Millisecond, SerializeDomains: true, HistoryBackoff: testBackoff})

	unlock, err := orch.locks.Lock(context.Background(), "example.com")
	require.NoError(t, err)
	defer unlock()

	_, err = orch.ExecuteCommand(context.Background(), user(), "Set up email for Gmail", "example.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, gw.calls)
	assert.Equal(t, 0, store.Len())
}

func TestRemovalCommandIsPlannedByModel(t *testing.T) {
	f := newFixture(t, true)
	f.gw.addZone("example.com", mxRecord("mx-1", "aspmx.l.google.com", 1))
	f.model.response = `{
		"interpretation": "Remove the Gmail MX record",
		"actions": [{"type": "delete", "record": {"id": "mx-1", "type": "MX"}}],
		"warnings": [],
		"confirmationMessage": "Removed Gmail MX"
	}`

	res, err := f.orch.ExecuteCommand(context.Background(), user(), "Remove the Gmail MX records", "example.com")
	require.NoError(t, err)
	require.Len(t, f.model.prompts, 1)
	require.Len(t, res.Results, 1)
	assert.Equal(t, model.ActionDelete, res.Actions[0].Type)
	assert.True(t, res.Results[0].Success, res.Results[0].Error)
	for _, c := range f.gw.calls {
		assert.False(t, strings.HasPrefix(c, "create "), "unexpected %s", c)
	}

	records, err := f.gw.ListRecords(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Empty(t, records)
}
