package ui

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"geographia/internal/api"
	"geographia/internal/domain"
	"geographia/internal/geocode"
	"geographia/internal/ui/coordinator"
	"geographia/internal/ui/services/focus"
	"geographia/internal/ui/services/maptype"
	"geographia/internal/ui/services/navigation"
	"geographia/internal/ui/views"
)

const (
	noticeTTL     = 4 * time.Second
	frameInterval = 16 * time.Millisecond
)

// Backend is the part of the REST client the screen reads from directly
type Backend interface {
	Locations(ctx context.Context) ([]domain.Location, error)
	SearchLocations(ctx context.Context, query string) ([]domain.Location, error)
	Profile(ctx context.Context, userID int) (*domain.User, error)
	DeleteAccount(ctx context.Context) error
}

// Options configure a Model
type Options struct {
	Coordinator *coordinator.Coordinator
	Backend     Backend
	Geolocator  geocode.Geolocator
	Scheduler   *focus.FrameScheduler
	Elements    *Elements
	Center      domain.Point
	Log         logrus.FieldLogger
}

// Model represents the UI state
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	coord    *coordinator.Coordinator
	backend  Backend
	geo      geocode.Geolocator
	sched    *focus.FrameScheduler
	els      *Elements
	log      logrus.FieldLogger
	renderer *views.Renderer
	helpView *HelpRenderer
	pager    *Pager

	width    int
	height   int
	keys     keyMap
	help     help.Model
	showHelp bool

	nav    navigation.State
	navSeq int
	center domain.Point

	all     []domain.Location
	visible []domain.Location
	cursor  int
	loading bool

	searchInput textinput.Model
	search      *geocode.Search
	candidates  []geocode.Candidate
	matches     []domain.Location
	recent      []domain.Location
	candidate   int

	detailID      int
	detail        *api.LocationDetail
	detailErr     string
	commentInput  textinput.Model
	commentCursor int
	rating        int
	profileID     int
	profile       *domain.User
	addAddress    string

	notice    *domain.NoticeEvent
	noticeSeq int

	framePending bool
}

// NewModel creates a new UI model
func NewModel(opts Options) *Model {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = focus.NewFrameScheduler()
	}
	els := opts.Elements
	if els == nil {
		els = NewElements()
	}
	els.Bind(opts.Coordinator.Router)

	search := textinput.New()
	search.Placeholder = "Buscar lugares o direcciones"
	search.Prompt = "⌕ "
	search.CharLimit = 120

	comment := textinput.New()
	comment.Placeholder = "Escribí un comentario"
	comment.Prompt = "› "
	comment.CharLimit = 500

	latest := opts.Coordinator.Router.Latest()
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		ctx:          ctx,
		cancel:       cancel,
		coord:        opts.Coordinator,
		backend:      opts.Backend,
		geo:          opts.Geolocator,
		sched:        sched,
		els:          els,
		log:          log.WithField("component", "ui"),
		renderer:     views.NewRenderer(),
		helpView:     NewHelpRenderer(),
		keys:         newKeyMap(),
		help:         help.New(),
		nav:          latest.State,
		navSeq:       latest.Seq,
		center:       opts.Center,
		loading:      true,
		searchInput:  search,
		commentInput: comment,
	}
	if opts.Coordinator.Geocode != nil {
		m.search = opts.Coordinator.Geocode.NewSearch()
	}
	m.refilter()
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.pager = NewPager(p)
}

// Close stops the search session and cancels in-flight requests
func (m *Model) Close() {
	if m.search != nil {
		m.search.Close()
	}
	m.cancel()
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	m.coord.ShareDeviceLocation(m.ctx, m.geo)
	cmds := []tea.Cmd{m.loadLocations()}
	if m.search != nil {
		cmds = append(cmds, waitForSearch(m.search.Results()))
	}
	cmds = append(cmds, m.onNavigated(navigation.InitialState(), m.nav))
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	return m, tea.Batch(cmd, m.syncFocus(), m.scheduleFrame())
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.searchInput.Width = max(msg.Width/2, 20)
		m.commentInput.Width = 50
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		return m.handleEvent(msg)

	case resyncMsg:
		return m.resync()

	case frameMsg:
		m.framePending = false
		m.sched.Flush()
		return nil

	case locationsMsg:
		m.loading = false
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("failed to load locations")
			m.coord.Notice(msg.err)
			return nil
		}
		m.all = msg.locations
		m.refilter()
		return nil

	case detailMsg:
		if msg.id != m.detailID {
			return nil
		}
		if msg.err != nil {
			m.detailErr = "No se pudo cargar la ubicación."
			return nil
		}
		m.detail = msg.detail
		m.detailErr = ""
		m.commentCursor = min(m.commentCursor, max(len(msg.detail.Comments)-1, 0))
		return nil

	case profileMsg:
		if msg.userID != m.profileID {
			return nil
		}
		if msg.err != nil {
			m.coord.Notice(msg.err)
			return nil
		}
		m.profile = msg.user
		return nil

	case addressMsg:
		m.addAddress = msg.addr.Label
		return nil

	case searchMsg:
		return m.handleSearchResult(msg.result)

	case matchesMsg:
		if msg.query != m.searchInput.Value() {
			return nil
		}
		if msg.err != nil {
			m.log.WithError(msg.err).Debug("location search failed")
			m.matches = nil
			return nil
		}
		m.matches = msg.locations
		m.clampCandidate()
		return nil

	case commentMsg:
		if msg.err != nil {
			if errors.Is(msg.err, coordinator.ErrEmptyComment) {
				m.coord.Notify(domain.NoticeInfo, "Comentario vacío", "Escribí algo antes de enviar.")
			}
			return nil
		}
		m.commentInput.Reset()
		m.els.Overlay(navigation.SlotPopup, navigation.ViewLocation).Focus()
		if m.detail != nil && msg.comment != nil {
			m.detail.Comments = append(m.detail.Comments, *msg.comment)
		}
		return nil

	case flowMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).WithField("flow", msg.name).Debug("flow did not complete")
			if errors.Is(msg.err, coordinator.ErrInvalidScore) {
				m.coord.Notify(domain.NoticeInfo, "Calificación", "Elegí un puntaje de 1 a 5.")
			}
		}
		return nil

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return nil

	case pagerMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("pager failed")
		}
		return nil
	}

	// Cursor blinking and other text input messages
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	cmds = append(cmds, cmd)
	m.commentInput, cmd = m.commentInput.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

// handleEvent processes domain events
func (m *Model) handleEvent(msg EventMsg) tea.Cmd {
	switch e := msg.Event.(type) {
	case navigation.NavigatedEvent:
		// concurrent flows may publish transitions out of commit order
		if e.Seq <= m.navSeq {
			return nil
		}
		prev := m.nav
		m.nav, m.navSeq = e.State, e.Seq
		return m.onNavigated(prev, e.State)

	case domain.ResetEvent:
		cmds := []tea.Cmd{m.loadLocations()}
		switch m.nav.Active(navigation.SlotPopup) {
		case navigation.ViewLocation, navigation.ViewResumeLocation:
			if id, ok := m.nav.Params.Int(navigation.ParamLocationID); ok {
				cmds = append(cmds, m.loadDetail(id, true))
			}
		}
		m.recent = m.recentSearches()
		return tea.Batch(cmds...)

	case domain.TypeChangedEvent:
		m.refilter()
		return nil

	case domain.NoticeEvent:
		return m.showNotice(e)

	case domain.LocationSavedEvent:
		return m.showNotice(domain.NoticeEvent{Level: domain.NoticeInfo, Title: "Ubicación compartida", Message: e.Address})
	}
	return nil
}

// resync reads the router and type services after forwarded events were
// dropped, and reloads what a missed reset would have refreshed
func (m *Model) resync() tea.Cmd {
	m.log.Debug("resyncing after dropped events")
	cmds := []tea.Cmd{m.handleEvent(EventMsg{Event: m.coord.Router.Latest()})}
	m.refilter()
	cmds = append(cmds, m.handleEvent(EventMsg{Event: domain.ResetEvent{}}))
	return tea.Batch(cmds...)
}

// onNavigated moves focus into overlays that opened and loads their content
func (m *Model) onNavigated(prev, next navigation.State) tea.Cmd {
	for _, slot := range navigation.Slots {
		view := next.Active(slot)
		if view != "" && view != prev.Active(slot) {
			m.coord.Focus.OnOverlayOpened(slot, m.els.Overlay(slot, view))
		}
	}
	if next.Path != navigation.PathMap {
		m.els.Map().Focus()
		return nil
	}

	var cmds []tea.Cmd
	popup := next.Active(navigation.SlotPopup)
	locID, hasLoc := next.Params.Int(navigation.ParamLocationID)
	switch popup {
	case navigation.ViewLocation, navigation.ViewResumeLocation:
		if hasLoc && (locID != m.detailID || (m.detail == nil && m.detailErr != "")) {
			cmds = append(cmds, m.loadDetail(locID, false))
		}
	case navigation.ViewAddLocation:
		lat, _ := next.Params.Float(navigation.ParamLat)
		lng, _ := next.Params.Float(navigation.ParamLng)
		if popup != prev.Active(navigation.SlotPopup) || !maps.Equal(next.Params, prev.Params) {
			m.addAddress = ""
			cmds = append(cmds, m.lookupAddress(lat, lng))
		}
	case "":
		m.detailID, m.detail, m.detailErr = 0, nil, ""
	}

	switch next.Active(navigation.SlotModal) {
	case navigation.ViewProfileResume:
		if uid, ok := next.Params.Int(navigation.ParamUserID); ok && uid != m.profileID {
			cmds = append(cmds, m.loadProfile(uid))
		}
	case navigation.ViewRateLocation:
		if prev.Active(navigation.SlotModal) != navigation.ViewRateLocation {
			m.rating = 0
			if m.detail != nil && m.detail.MyRating != nil {
				m.rating = m.detail.MyRating.Score
			}
		}
	case "":
		m.profileID, m.profile = 0, nil
	}
	return tea.Batch(cmds...)
}

// handleKey routes a key press to the focused element
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.els.FocusedID() {
	case FocusSearch:
		if m.els.Search().Attached() {
			return m.handleSearchKey(msg)
		}
		m.els.Map().Focus()
	case FocusComment:
		if m.els.Comment().Attached() {
			return m.handleCommentKey(msg)
		}
		m.els.Map().Focus()
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Close, m.keys.Quit) {
			m.showHelp = false
		}
		return nil
	}

	if m.nav.Path != navigation.PathMap {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Close):
			m.coord.Router.Navigate(navigation.PathMap)
		}
		return nil
	}

	if modal := m.nav.Active(navigation.SlotModal); modal != "" {
		return m.handleModalKey(modal, msg)
	}
	if popup := m.nav.Active(navigation.SlotPopup); popup != "" {
		if cmd, handled := m.handlePopupKey(popup, msg); handled {
			return cmd
		}
	}
	return m.handleMapKey(msg)
}

func (m *Model) handleMapKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case msg.String() == "H":
		if m.pager != nil {
			return pagerCmd(m.pager, m.helpView.RenderHelpContentPlain())
		}
	case key.Matches(msg, m.keys.Search):
		m.recent = m.recentSearches()
		m.candidate = 0
		m.els.Search().Focus()
		m.coord.Focus.SetFocused(m.els.Search())
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Open):
		if loc, ok := m.selected(); ok {
			m.report(m.coord.OpenResumeLocation(loc.ID))
		}
	case key.Matches(msg, m.keys.Add):
		m.report(m.coord.OpenAddLocation(m.center.Lat, m.center.Lng))
	case key.Matches(msg, m.keys.List):
		m.report(m.coord.OpenListLocations())
	case key.Matches(msg, m.keys.Type):
		m.coord.Types.Cycle()
	case key.Matches(msg, m.keys.Session):
		if m.coord.Session().HasToken() {
			m.report(m.coord.OpenPopup(navigation.ViewCloseSession))
		}
	case key.Matches(msg, m.keys.EditProfile):
		m.report(m.coord.OpenAccount(navigation.ViewEditProfile))
	case key.Matches(msg, m.keys.ChangePassword):
		m.report(m.coord.OpenAccount(navigation.ViewChangePassword))
	case key.Matches(msg, m.keys.Privacy):
		m.report(m.coord.OpenAccount(navigation.ViewPrivacySettings))
	case key.Matches(msg, m.keys.DeleteAccount):
		m.report(m.coord.OpenAccount(navigation.ViewDeleteConfirmation))
	case key.Matches(msg, m.keys.Close):
		m.escape()
	}
	return nil
}

// handlePopupKey handles keys of the open popup and reports whether it used the key
func (m *Model) handlePopupKey(popup navigation.ViewID, msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keys.Close) {
		m.escape()
		return nil, true
	}
	locID, hasLoc := m.nav.Params.Int(navigation.ParamLocationID)

	switch popup {
	case navigation.ViewLocation:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.commentCursor = max(m.commentCursor-1, 0)
		case key.Matches(msg, m.keys.Down):
			if m.detail != nil {
				m.commentCursor = min(m.commentCursor+1, max(len(m.detail.Comments)-1, 0))
			}
		case key.Matches(msg, m.keys.Comment):
			m.els.Comment().Focus()
			m.coord.Focus.SetFocused(m.els.Comment())
		case key.Matches(msg, m.keys.Rate):
			if hasLoc {
				m.report(m.coord.RequestRateLocation(locID))
			}
		case key.Matches(msg, m.keys.Delete):
			if hasLoc && m.detail != nil && m.detail.Owned() {
				m.report(m.coord.RequestDeleteLocation(locID))
			}
		case key.Matches(msg, m.keys.Profile):
			if c, ok := m.selectedComment(); ok && hasLoc {
				m.report(m.coord.OpenProfileResume(c.UserID, locID))
			}
		case msg.String() == "v":
			if m.detail != nil && m.pager != nil {
				return pagerCmd(m.pager, RenderDetailPlain(m.detail)), true
			}
		default:
			return nil, false
		}
		return nil, true

	case navigation.ViewResumeLocation:
		if key.Matches(msg, m.keys.Open) && hasLoc {
			m.report(m.coord.OpenLocation(locID))
			return nil, true
		}

	case navigation.ViewListLocations:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(1)
		case key.Matches(msg, m.keys.Open):
			if loc, ok := m.selected(); ok {
				m.report(m.coord.OpenLocation(loc.ID))
			}
		default:
			return nil, false
		}
		return nil, true

	case navigation.ViewCloseSession:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.report(m.coord.Logout())
			return nil, true
		case key.Matches(msg, m.keys.Cancel):
			m.escape()
			return nil, true
		}

	case navigation.ViewDeleteConfirmation:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.deleteAccount(), true
		case key.Matches(msg, m.keys.Cancel):
			m.escape()
			return nil, true
		}
	}
	return nil, false
}

func (m *Model) handleModalKey(modal navigation.ViewID, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Close):
		m.escape()
		return nil
	}

	switch modal {
	case navigation.ViewRateLocation:
		switch {
		case key.Matches(msg, m.keys.Score):
			m.rating = int(msg.String()[0] - '0')
		case key.Matches(msg, m.keys.Open):
			score := m.rating
			return m.flow("rate", func(ctx context.Context) error {
				return m.coord.SubmitRating(ctx, score)
			})
		case key.Matches(msg, m.keys.Cancel):
			m.report(m.coord.CancelModal())
		}

	case navigation.ViewDeleteLocationConfirmation:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.flow("delete location", m.coord.ConfirmDeleteLocation)
		case key.Matches(msg, m.keys.Cancel):
			m.report(m.coord.CancelModal())
		}
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.blurSearch()
		return nil
	case tea.KeyUp:
		m.candidate = max(m.candidate-1, 0)
		return nil
	case tea.KeyDown:
		m.candidate = min(m.candidate+1, max(m.searchRows()-1, 0))
		return nil
	case tea.KeyEnter:
		return m.selectCandidate()
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if after := m.searchInput.Value(); after != before {
		m.candidate = 0
		if m.search != nil {
			m.search.Query(after)
		}
	}
	return cmd
}

func (m *Model) handleCommentKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.els.Overlay(navigation.SlotPopup, navigation.ViewLocation).Focus()
		return nil
	case tea.KeyEnter:
		text := m.commentInput.Value()
		ctx, geo := m.ctx, m.geo
		return func() tea.Msg {
			c, err := m.coord.PostComment(ctx, text, geo)
			return commentMsg{comment: c, err: err}
		}
	}
	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(msg)
	return cmd
}

// handleSearchResult shows geocoding candidates and asks the backend for
// locations matching the same settled text
func (m *Model) handleSearchResult(r geocode.Result) tea.Cmd {
	next := waitForSearch(m.search.Results())
	if r.Query != m.searchInput.Value() {
		return next
	}
	if r.Err != nil {
		m.log.WithError(r.Err).WithField("query", r.Query).Debug("geocoding failed")
	}
	m.candidates = r.Candidates
	if isBlankQuery(r.Query) {
		m.matches = nil
		m.clampCandidate()
		return next
	}
	m.clampCandidate()
	return tea.Batch(next, m.searchLocations(r.Query))
}

func (m *Model) selectCandidate() tea.Cmd {
	row := m.candidate
	if m.showingRecent() {
		if row < len(m.recent) {
			loc := m.recent[row]
			m.blurSearch()
			m.center = domain.Point{Lat: loc.Latitude, Lng: loc.Longitude}
			m.report(m.coord.SelectSearchResult(loc))
		}
		return nil
	}
	if row < len(m.matches) {
		loc := m.matches[row]
		m.blurSearch()
		m.center = domain.Point{Lat: loc.Latitude, Lng: loc.Longitude}
		m.report(m.coord.SelectSearchResult(loc))
		return nil
	}
	row -= len(m.matches)
	if row < len(m.candidates) {
		m.center = m.candidates[row].Point
		m.blurSearch()
	}
	return nil
}

func (m *Model) blurSearch() {
	m.searchInput.Reset()
	if m.search != nil {
		m.search.Query("")
	}
	m.candidates, m.matches, m.candidate = nil, nil, 0
	m.els.Map().Focus()
	m.coord.Focus.SetFocused(m.els.Map())
}

func (m *Model) showingRecent() bool {
	return len(m.matches) == 0 && len(m.candidates) == 0 && len(m.recent) > 0
}

func (m *Model) searchRows() int {
	if m.showingRecent() {
		return len(m.recent)
	}
	return len(m.matches) + len(m.candidates)
}

func (m *Model) clampCandidate() {
	m.candidate = max(0, min(m.candidate, m.searchRows()-1))
}

func (m *Model) escape() {
	if _, _, err := m.coord.Escape(); err != nil {
		m.log.WithError(err).Warn("escape failed")
	}
}

func (m *Model) quit() tea.Cmd {
	m.Close()
	return tea.Quit
}

// report logs a failed transition; flows publish their own notices
func (m *Model) report(err error) {
	if err != nil && !errors.Is(err, coordinator.ErrLoginRequired) {
		m.log.WithError(err).Warn("navigation failed")
	}
}

func (m *Model) showNotice(n domain.NoticeEvent) tea.Cmd {
	m.notice = &n
	m.noticeSeq++
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func (m *Model) refilter() {
	m.visible = maptype.Filter(m.all, m.coord.Types.CurrentType())
	m.cursor = max(0, min(m.cursor, len(m.visible)-1))
}

func (m *Model) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = max(0, min(m.cursor+delta, len(m.visible)-1))
	loc := m.visible[m.cursor]
	m.center = domain.Point{Lat: loc.Latitude, Lng: loc.Longitude}
}

func (m *Model) selected() (domain.Location, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return domain.Location{}, false
	}
	return m.visible[m.cursor], true
}

func (m *Model) selectedComment() (domain.Comment, bool) {
	if m.detail == nil || m.commentCursor >= len(m.detail.Comments) {
		return domain.Comment{}, false
	}
	return m.detail.Comments[m.commentCursor], true
}

func (m *Model) recentSearches() []domain.Location {
	recent, err := m.coord.Session().RecentSearches()
	if err != nil {
		m.log.WithError(err).Debug("failed to read recent searches")
	}
	return recent
}

// syncFocus focuses the text input matching the focused element
func (m *Model) syncFocus() tea.Cmd {
	id := m.els.FocusedID()
	var cmd tea.Cmd
	if id == FocusSearch {
		if !m.searchInput.Focused() {
			cmd = m.searchInput.Focus()
		}
	} else {
		m.searchInput.Blur()
	}
	if id == FocusComment {
		if !m.commentInput.Focused() {
			cmd = tea.Batch(cmd, m.commentInput.Focus())
		}
	} else {
		m.commentInput.Blur()
	}
	return cmd
}

// scheduleFrame asks for a frame tick while focus work is deferred
func (m *Model) scheduleFrame() tea.Cmd {
	if m.framePending || m.sched.Pending() == 0 {
		return nil
	}
	m.framePending = true
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Cargando..."
	}

	state := views.ViewState{
		Width:         m.width,
		Height:        m.height,
		Nav:           m.nav,
		Type:          m.coord.Types.CurrentType(),
		MapStyle:      maptype.StyleFor(m.coord.Types.CurrentType()),
		LoggedIn:      m.coord.Session().HasToken(),
		Center:        m.center,
		Locations:     m.visible,
		Cursor:        m.cursor,
		Loading:       m.loading,
		SearchInput:   m.searchInput.View(),
		SearchFocused: m.els.FocusedID() == FocusSearch,
		Candidates:    m.candidates,
		Matches:       m.matches,
		Recent:        m.recent,
		Candidate:     m.candidate,
		Detail:        m.detail,
		DetailErr:     m.detailErr,
		CommentInput:  m.commentInput.View(),
		CommentCursor: m.commentCursor,
		Rating:        m.rating,
		Profile:       m.profile,
		AddAddress:    m.addAddress,
		Notice:        m.notice,
		HelpView:      m.help.View(m.keys),
	}
	screen := m.renderer.Render(state)
	if m.showHelp {
		screen = m.renderer.Overlay(screen, m.helpView.RenderHelpContent(m.height, 0), m.width, m.height)
	}
	return screen
}
