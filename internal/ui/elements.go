package ui

import (
	"sync"

	"geographia/internal/ui/services/focus"
	"geographia/internal/ui/services/navigation"
)

// Focus targets outside the overlays
const (
	FocusMap     = "map"
	FocusSearch  = "search"
	FocusComment = "comment"
)

// focusRing holds the id of the element with keyboard focus. Elements are
// focused from the focus service, which may run outside the update loop, so
// the model only reads the ring and never hands out its own fields.
type focusRing struct {
	mu sync.Mutex
	id string
}

func newFocusRing() *focusRing {
	return &focusRing{id: FocusMap}
}

func (r *focusRing) set(id string) {
	r.mu.Lock()
	r.id = id
	r.mu.Unlock()
}

// ID returns the focused element id
func (r *focusRing) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// element is a focus target of the terminal UI
type element struct {
	id       string
	ring     *focusRing
	attached func() bool
}

var _ focus.Element = (*element)(nil)

func (e *element) ID() string { return e.id }

func (e *element) Attached() bool {
	if e.attached == nil {
		return true
	}
	return e.attached()
}

func (e *element) Focus() { e.ring.set(e.id) }

// overlayID is the focus id of the view shown in slot
func overlayID(slot navigation.SlotName, view navigation.ViewID) string {
	return string(slot) + ":" + string(view)
}

// Elements creates the focus targets of the terminal UI. Overlay targets
// are attached while the router shows their view.
type Elements struct {
	ring   *focusRing
	mu     sync.Mutex
	router interface{ CurrentState() navigation.State }
	cache  map[string]*element
}

// NewElements creates the targets with focus on the map
func NewElements() *Elements {
	return &Elements{ring: newFocusRing(), cache: make(map[string]*element)}
}

// Bind attaches the router used to decide whether an overlay is still shown
func (es *Elements) Bind(router interface{ CurrentState() navigation.State }) {
	es.mu.Lock()
	es.router = router
	es.mu.Unlock()
}

// FocusedID returns the id of the element holding focus
func (es *Elements) FocusedID() string {
	return es.ring.ID()
}

// Map is the fallback focus target
func (es *Elements) Map() focus.Element {
	return es.get(FocusMap, es.onMap)
}

// Search is the search bar
func (es *Elements) Search() focus.Element {
	return es.get(FocusSearch, es.onMap)
}

// Comment is the comment box of the location popup
func (es *Elements) Comment() focus.Element {
	return es.get(FocusComment, func() bool {
		return es.shows(navigation.SlotPopup, navigation.ViewLocation)
	})
}

// Overlay is the root of the view shown in slot
func (es *Elements) Overlay(slot navigation.SlotName, view navigation.ViewID) focus.Element {
	return es.get(overlayID(slot, view), func() bool {
		return es.shows(slot, view)
	})
}

func (es *Elements) state() (navigation.State, bool) {
	es.mu.Lock()
	router := es.router
	es.mu.Unlock()
	if router == nil {
		return navigation.State{}, false
	}
	return router.CurrentState(), true
}

func (es *Elements) onMap() bool {
	s, ok := es.state()
	return !ok || s.Path == navigation.PathMap
}

func (es *Elements) shows(slot navigation.SlotName, view navigation.ViewID) bool {
	s, ok := es.state()
	return ok && s.Path == navigation.PathMap && s.Active(slot) == view
}

func (es *Elements) get(id string, attached func() bool) *element {
	es.mu.Lock()
	defer es.mu.Unlock()
	if el, ok := es.cache[id]; ok {
		return el
	}
	el := &element{id: id, ring: es.ring, attached: attached}
	es.cache[id] = el
	return el
}
