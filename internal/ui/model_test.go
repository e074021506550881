package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geographia/internal/api"
	"geographia/internal/domain"
	"geographia/internal/eventbus"
	"geographia/internal/geocode"
	"geographia/internal/logging"
	"geographia/internal/storage"
	"geographia/internal/ui/coordinator"
	"geographia/internal/ui/services/focus"
	"geographia/internal/ui/services/navigation"
)

type fakeBackend struct {
	mu        sync.Mutex
	calls     []string
	locations []domain.Location
	detail    *api.LocationDetail
	rating    *domain.Rating
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBackend) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeBackend) Locations(context.Context) ([]domain.Location, error) {
	f.record("locations")
	return f.locations, nil
}

func (f *fakeBackend) SearchLocations(_ context.Context, q string) ([]domain.Location, error) {
	f.record("search:" + q)
	var out []domain.Location
	for _, l := range f.locations {
		if strings.Contains(strings.ToLower(l.Name), strings.ToLower(q)) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeBackend) Profile(_ context.Context, id int) (*domain.User, error) {
	f.record("profile")
	return &domain.User{ID: id, FirstName: "Luis", ShowEmail: true, Email: "luis@example.com"}, nil
}

func (f *fakeBackend) DeleteAccount(context.Context) error {
	f.record("deleteAccount")
	return nil
}

func (f *fakeBackend) DeleteLocation(context.Context, int) error {
	f.record("deleteLocation")
	return nil
}

func (f *fakeBackend) MyRating(context.Context, int) (*domain.Rating, error) {
	f.record("myRating")
	return f.rating, nil
}

func (f *fakeBackend) AddRating(context.Context, int, int) error {
	f.record("addRating")
	return nil
}

func (f *fakeBackend) UpdateRating(context.Context, int, int) error {
	f.record("updateRating")
	return nil
}

func (f *fakeBackend) AddComment(_ context.Context, id int, text, address string) (*domain.Comment, error) {
	f.record("addComment")
	return &domain.Comment{LocationID: id, Text: text, Address: address}, nil
}

func (f *fakeBackend) Me(context.Context) (*domain.User, error) {
	return &domain.User{ID: 7, FirstName: "Ana", ShowLocation: true}, nil
}

func (f *fakeBackend) SaveCurrentLocation(context.Context, string) error {
	f.record("saveLocation")
	return nil
}

func (f *fakeBackend) LoadLocationDetail(_ context.Context, id int) (*api.LocationDetail, error) {
	f.record("detail")
	return f.detail, nil
}

type stubProvider struct{}

func (stubProvider) Forward(_ context.Context, text string) ([]geocode.Candidate, error) {
	return []geocode.Candidate{{Label: text + ", Argentina", Point: domain.Point{Lat: -31.4, Lng: -64.2}}}, nil
}

func (stubProvider) Reverse(context.Context, float64, float64) ([]geocode.Candidate, error) {
	return []geocode.Candidate{{Label: "Salta, Salta"}}, nil
}

type harness struct {
	m       *Model
	coord   *coordinator.Coordinator
	backend *fakeBackend
	events  []eventbus.DomainEvent
}

func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()
	log := logging.Discard()
	bus := eventbus.New(log)

	session := storage.NewSession(storage.NewMemoryStore(), storage.NewMemoryStore())
	if loggedIn {
		require.NoError(t, session.SaveToken("tok", false))
	}
	pipeline, err := geocode.NewPipeline(stubProvider{}, geocode.Options{Debounce: time.Millisecond}, log)
	require.NoError(t, err)

	backend := &fakeBackend{
		locations: []domain.Location{
			{ID: 1, Name: "Cerro Uritorco", Type: domain.TypeGeographic, Latitude: -30.8, Longitude: -64.5},
			{ID: 2, Name: "Cabildo", Type: domain.TypeHistoric},
			{ID: 3, Name: "Estancia", Type: domain.TypeRural},
			{ID: 4, Name: "Obelisco", Type: domain.TypeDefault},
		},
		detail: &api.LocationDetail{
			Location: domain.Location{ID: 1, Name: "Cerro Uritorco", UserID: 7},
			Comments: []domain.Comment{{ID: 9, UserID: 12, Text: "Hermoso", UserFirstName: "Luis"}},
			Viewer:   &domain.User{ID: 7},
		},
	}

	sched := focus.NewFrameScheduler()
	els := NewElements()
	coord := coordinator.New(coordinator.Deps{
		Bus:           bus,
		Backend:       backend,
		Session:       session,
		Geocode:       pipeline,
		Scheduler:     sched,
		FocusFallback: els.Map(),
		Log:           log,
	})

	h := &harness{coord: coord, backend: backend}
	for _, et := range ForwardedEvents {
		bus.Subscribe(et, func(e eventbus.DomainEvent) { h.events = append(h.events, e) })
	}
	h.m = NewModel(Options{
		Coordinator: coord,
		Backend:     backend,
		Geolocator:  geocode.StaticGeolocator{Lat: -24.8, Lng: -65.4},
		Scheduler:   sched,
		Elements:    els,
		Log:         log,
	})
	t.Cleanup(h.m.Close)

	h.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	h.send(locationsMsg{locations: backend.locations})
	return h
}

// send updates the model with msg and then with every bus event it caused
func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.m.Update(msg)
	h.pump()
	return cmd
}

func (h *harness) pump() {
	for len(h.events) > 0 {
		e := h.events[0]
		h.events = h.events[1:]
		h.m.Update(EventMsg{Event: e})
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) openLocation(t *testing.T) {
	t.Helper()
	require.NoError(t, h.coord.OpenLocation(1))
	h.pump()
	h.send(detailMsg{id: 1, detail: h.backend.detail})
}

func TestTypeChangeFiltersLocations(t *testing.T) {
	h := newHarness(t, false)
	require.Len(t, h.m.visible, 1)
	assert.Equal(t, "Obelisco", h.m.visible[0].Name)

	h.send(keyMsg("t"))
	require.Len(t, h.m.visible, 1)
	assert.Equal(t, domain.TypeRural, h.m.visible[0].Type)
}

func TestOverlayFocusMovesAfterPaint(t *testing.T) {
	h := newHarness(t, false)
	assert.Equal(t, FocusMap, h.m.els.FocusedID())

	h.openLocation(t)
	assert.Equal(t, FocusMap, h.m.els.FocusedID(), "focus waits for the frame")

	h.send(frameMsg(time.Now()))
	assert.Equal(t, overlayID(navigation.SlotPopup, navigation.ViewLocation), h.m.els.FocusedID())

	h.send(keyMsg("esc"))
	assert.Empty(t, h.coord.Router.CurrentState().Active(navigation.SlotPopup))
	assert.Equal(t, FocusMap, h.m.els.FocusedID())
}

func TestFocusSkippedWhenOverlayClosesBeforePaint(t *testing.T) {
	h := newHarness(t, false)
	h.openLocation(t)
	h.send(keyMsg("esc"))

	h.send(frameMsg(time.Now()))
	assert.Equal(t, FocusMap, h.m.els.FocusedID())
}

func TestEscapeClosesOnlyTopmostSlot(t *testing.T) {
	h := newHarness(t, true)
	h.openLocation(t)
	h.send(frameMsg(time.Now()))

	h.send(keyMsg("r"))
	s := h.coord.Router.CurrentState()
	require.Equal(t, navigation.ViewRateLocation, s.Active(navigation.SlotModal))
	h.send(frameMsg(time.Now()))
	assert.Equal(t, overlayID(navigation.SlotModal, navigation.ViewRateLocation), h.m.els.FocusedID())

	h.send(keyMsg("esc"))
	s = h.coord.Router.CurrentState()
	assert.Empty(t, s.Active(navigation.SlotModal))
	assert.Equal(t, navigation.ViewLocation, s.Active(navigation.SlotPopup))
	assert.Equal(t, overlayID(navigation.SlotPopup, navigation.ViewLocation), h.m.els.FocusedID())
}

func TestRateModalSubmitsScore(t *testing.T) {
	h := newHarness(t, true)
	h.openLocation(t)

	h.send(keyMsg("r"))
	h.send(keyMsg("4"))
	assert.Equal(t, 4, h.m.rating)

	cmd := h.send(keyMsg("enter"))
	require.NotNil(t, cmd)
	msg := findMsg[flowMsg](cmd)
	require.NotNil(t, msg)
	assert.NoError(t, msg.err)
	h.pump()

	assert.True(t, h.backend.called("addRating"))
	s := h.coord.Router.CurrentState()
	assert.Empty(t, s.Active(navigation.SlotModal))
	assert.Equal(t, navigation.ViewLocation, s.Active(navigation.SlotPopup))
	require.NotNil(t, h.m.notice)
	assert.Equal(t, domain.NoticeSuccess, h.m.notice.Level)
}

func TestDeleteKeyOnlyForOwner(t *testing.T) {
	h := newHarness(t, true)
	h.openLocation(t)

	h.send(keyMsg("d"))
	assert.Equal(t, navigation.ViewDeleteLocationConfirmation, h.coord.Router.CurrentState().Active(navigation.SlotModal))

	h.send(keyMsg("n"))
	assert.Empty(t, h.coord.Router.CurrentState().Active(navigation.SlotModal))

	h.m.detail.Viewer = &domain.User{ID: 99}
	h.send(keyMsg("d"))
	assert.Empty(t, h.coord.Router.CurrentState().Active(navigation.SlotModal))
}

func TestProfileKeyOpensCommentAuthor(t *testing.T) {
	h := newHarness(t, false)
	h.openLocation(t)

	h.send(keyMsg("p"))
	s := h.coord.Router.CurrentState()
	assert.Equal(t, navigation.ViewProfileResume, s.Active(navigation.SlotModal))
	uid, _ := s.Params.Int(navigation.ParamUserID)
	assert.Equal(t, 12, uid)
	assert.Equal(t, 12, h.m.profileID)
}

func TestStaleDetailIgnored(t *testing.T) {
	h := newHarness(t, false)
	h.openLocation(t)

	h.send(detailMsg{id: 2, detail: &api.LocationDetail{Location: domain.Location{ID: 2, Name: "Otro"}}})
	assert.Equal(t, "Cerro Uritorco", h.m.detail.Location.Name)
}

func TestSearchShowsCandidatesAndMatches(t *testing.T) {
	h := newHarness(t, false)
	h.send(keyMsg("/"))
	assert.Equal(t, FocusSearch, h.m.els.FocusedID())

	for _, r := range "cab" {
		h.send(keyMsg(string(r)))
	}
	assert.Equal(t, "cab", h.m.searchInput.Value())

	var result geocode.Result
	deadline := time.After(time.Second)
	for result.Query != "cab" {
		select {
		case result = <-h.m.search.Results():
		case <-deadline:
			t.Fatal("no search result")
		}
	}

	cmd := h.send(searchMsg{result: result})
	require.Len(t, h.m.candidates, 1)
	assert.Equal(t, "cab, Argentina", h.m.candidates[0].Label)

	matches := findMsg[matchesMsg](cmd)
	require.NotNil(t, matches)
	h.send(*matches)
	require.Len(t, h.m.matches, 1)
	assert.Equal(t, "Cabildo", h.m.matches[0].Name)

	h.send(keyMsg("enter"))
	s := h.coord.Router.CurrentState()
	assert.Equal(t, navigation.ViewLocation, s.Active(navigation.SlotPopup))
	id, _ := s.Params.Int(navigation.ParamLocationID)
	assert.Equal(t, 2, id)
	assert.Equal(t, FocusMap, h.m.els.FocusedID())

	recent, err := h.coord.Session().RecentSearches()
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 2, recent[0].ID)
}

func TestSearchEscapeClearsInput(t *testing.T) {
	h := newHarness(t, false)
	h.send(keyMsg("/"))
	h.send(keyMsg("x"))
	h.send(keyMsg("esc"))

	assert.Equal(t, FocusMap, h.m.els.FocusedID())
	assert.Empty(t, h.m.searchInput.Value())
	assert.Empty(t, h.m.candidates)
}

func TestCommentFlow(t *testing.T) {
	h := newHarness(t, true)
	h.openLocation(t)

	h.send(keyMsg("c"))
	assert.Equal(t, FocusComment, h.m.els.FocusedID())
	for _, r := range "Lindo" {
		h.send(keyMsg(string(r)))
	}
	cmd := h.send(keyMsg("enter"))
	msg := findMsg[commentMsg](cmd)
	require.NotNil(t, msg)
	require.NoError(t, msg.err)
	assert.Equal(t, "Salta, Salta", msg.comment.Address)

	h.send(*msg)
	assert.Empty(t, h.m.commentInput.Value())
	assert.Len(t, h.m.detail.Comments, 2)
	assert.Equal(t, overlayID(navigation.SlotPopup, navigation.ViewLocation), h.m.els.FocusedID())
}

func TestAddLocationLooksUpAddress(t *testing.T) {
	h := newHarness(t, true)
	h.m.center = domain.Point{Lat: -24.8, Lng: -65.4}

	h.send(keyMsg("a"))
	assert.Equal(t, navigation.ViewAddLocation, h.coord.Router.CurrentState().Active(navigation.SlotPopup))

	addr := h.m.lookupAddress(-24.8, -65.4)()
	h.send(addr)
	assert.Equal(t, "Salta, Salta", h.m.addAddress)
}

func TestAddLocationLoggedOutNotifies(t *testing.T) {
	h := newHarness(t, false)
	h.send(keyMsg("a"))

	assert.Empty(t, h.coord.Router.CurrentState().Active(navigation.SlotPopup))
	require.NotNil(t, h.m.notice)
	assert.Equal(t, "Inicio de sesión requerido", h.m.notice.Title)
}

func TestNoticeExpires(t *testing.T) {
	h := newHarness(t, false)
	h.send(EventMsg{Event: domain.NoticeEvent{Level: domain.NoticeInfo, Title: "uno"}})
	first := h.m.noticeSeq
	h.send(EventMsg{Event: domain.NoticeEvent{Level: domain.NoticeInfo, Title: "dos"}})

	h.send(noticeExpiredMsg{seq: first})
	require.NotNil(t, h.m.notice)
	assert.Equal(t, "dos", h.m.notice.Title)

	h.send(noticeExpiredMsg{seq: h.m.noticeSeq})
	assert.Nil(t, h.m.notice)
}

func TestLogoutFromSessionPopup(t *testing.T) {
	h := newHarness(t, true)
	h.send(keyMsg("o"))
	require.Equal(t, navigation.ViewCloseSession, h.coord.Router.CurrentState().Active(navigation.SlotPopup))

	h.send(keyMsg("y"))
	assert.False(t, h.coord.Session().HasToken())
	assert.Empty(t, h.coord.Router.CurrentState().Active(navigation.SlotPopup))
}

func TestDeleteAccountFromProfileMenu(t *testing.T) {
	h := newHarness(t, true)
	h.openLocation(t)

	h.send(keyMsg("X"))
	require.Equal(t, navigation.ViewDeleteConfirmation, h.coord.Router.CurrentState().Active(navigation.SlotPopup))
	assert.Contains(t, h.m.View(), "Eliminar cuenta")

	cmd := h.send(keyMsg("y"))
	msg := findMsg[flowMsg](cmd)
	require.NotNil(t, msg)
	require.NoError(t, msg.err)
	h.pump()

	assert.True(t, h.backend.called("deleteAccount"))
	assert.False(t, h.coord.Session().HasToken())
	assert.Empty(t, h.coord.Router.CurrentState().Active(navigation.SlotPopup))
	require.NotNil(t, h.m.notice)
	assert.Equal(t, "Cuenta eliminada", h.m.notice.Title)
}

func TestProfileMenuKeysOpenAccountPopups(t *testing.T) {
	h := newHarness(t, true)
	for k, view := range map[string]navigation.ViewID{
		"E": navigation.ViewEditProfile,
		"P": navigation.ViewChangePassword,
		"V": navigation.ViewPrivacySettings,
	} {
		h.send(keyMsg(k))
		assert.Equal(t, view, h.m.nav.Active(navigation.SlotPopup), "key %s", k)
		h.send(keyMsg("esc"))
		assert.Empty(t, h.m.nav.Active(navigation.SlotPopup))
	}
}

func TestProfileMenuNeedsLogin(t *testing.T) {
	h := newHarness(t, false)
	h.send(keyMsg("X"))

	assert.Empty(t, h.coord.Router.CurrentState().Active(navigation.SlotPopup))
	require.NotNil(t, h.m.notice)
	assert.Equal(t, "Inicio de sesión requerido", h.m.notice.Title)
}

func TestStaleNavigationIgnored(t *testing.T) {
	h := newHarness(t, false)
	require.NoError(t, h.coord.OpenLocation(1))
	older := h.coord.Router.Latest()
	require.NoError(t, h.coord.OpenListLocations())
	h.pump()
	require.Equal(t, navigation.ViewListLocations, h.m.nav.Active(navigation.SlotPopup))

	h.send(EventMsg{Event: older})
	assert.Equal(t, navigation.ViewListLocations, h.m.nav.Active(navigation.SlotPopup))
	assert.True(t, h.m.nav.Equal(h.coord.Router.CurrentState()))
}

func TestResyncReadsRouter(t *testing.T) {
	h := newHarness(t, false)
	require.NoError(t, h.coord.OpenLocation(1))
	// the event never reaches the model
	h.events = nil

	cmd := h.send(resyncMsg{})
	assert.Equal(t, navigation.ViewLocation, h.m.nav.Active(navigation.SlotPopup))
	assert.Equal(t, 1, h.m.detailID)
	assert.NotNil(t, findMsg[locationsMsg](cmd), "a missed reset reloads the locations")
}

func TestViewDrawsPopupOverMap(t *testing.T) {
	h := newHarness(t, false)
	h.openLocation(t)

	out := h.m.View()
	assert.Contains(t, out, "Comentarios (1)")
	assert.Contains(t, out, "Hermoso")
	assert.Contains(t, out, "geographia")
}

func TestForwardDeliversEvents(t *testing.T) {
	bus := eventbus.New(logging.Discard())
	got := make(chan tea.Msg, 4)
	stop := Forward(bus, func(m tea.Msg) { got <- m }, logging.Discard())

	bus.Publish(domain.NoticeEvent{Title: "hola"})
	select {
	case m := <-got:
		ev, ok := m.(EventMsg)
		require.True(t, ok)
		assert.Equal(t, "hola", ev.Event.(domain.NoticeEvent).Title)
	case <-time.After(time.Second):
		t.Fatal("event not forwarded")
	}

	stop()
	stop()
	bus.Publish(domain.NoticeEvent{Title: "tarde"})
	select {
	case m := <-got:
		t.Fatalf("unexpected message after stop: %v", m)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestForwardResyncsAfterDrop(t *testing.T) {
	bus := eventbus.New(logging.Discard())
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	got := make(chan tea.Msg, 200)
	stop := Forward(bus, func(m tea.Msg) {
		once.Do(func() {
			close(entered)
			<-release
		})
		got <- m
	}, logging.Discard())
	defer stop()

	bus.Publish(domain.NoticeEvent{Title: "primero"})
	<-entered
	for i := 0; i < 101; i++ {
		bus.Publish(domain.NoticeEvent{Title: "lleno"})
	}
	close(release)

	deadline := time.After(time.Second)
	for {
		select {
		case m := <-got:
			if _, ok := m.(resyncMsg); ok {
				return
			}
		case <-deadline:
			t.Fatal("no resync after a dropped event")
		}
	}
}

func TestElementsFollowRouter(t *testing.T) {
	h := newHarness(t, false)
	el := h.m.els.Overlay(navigation.SlotPopup, navigation.ViewLocation)
	assert.False(t, el.Attached())

	h.openLocation(t)
	assert.True(t, el.Attached())
	assert.True(t, h.m.els.Comment().Attached())
	assert.Same(t, el, h.m.els.Overlay(navigation.SlotPopup, navigation.ViewLocation))

	h.coord.Router.Navigate(navigation.PathLogin)
	assert.False(t, el.Attached())
	assert.False(t, h.m.els.Map().Attached())
}

// findMsg runs cmd, expanding batches, and returns the first message of type T.
// Ticks are skipped so the test never sleeps.
func findMsg[T any](cmd tea.Cmd) *T {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(100 * time.Millisecond):
		return nil
	}
	switch m := msg.(type) {
	case T:
		return &m
	case tea.BatchMsg:
		for _, c := range m {
			if found := findMsg[T](c); found != nil {
				return found
			}
		}
	}
	return nil
}
