package navigation

import (
	"fmt"
	"maps"
	"strconv"

	"geographia/internal/domain"
)

// SlotName identifies a region that shows at most one overlay
type SlotName string

const (
	SlotPopup SlotName = "popup"
	SlotModal SlotName = "modal"
)

// Slots lists the slots from bottom to top
var Slots = []SlotName{SlotPopup, SlotModal}

// ViewID identifies a registered overlay view
type ViewID string

// Popup views
const (
	ViewAddLocation        ViewID = "addLocation"
	ViewChangePassword     ViewID = "changePassword"
	ViewEditProfile        ViewID = "editProfile"
	ViewPrivacySettings    ViewID = "privacySettings"
	ViewDeleteConfirmation ViewID = "deleteConfirmation"
	ViewCloseSession       ViewID = "closeSesion"
	ViewResumeLocation     ViewID = "resumeLocation"
	ViewLocation           ViewID = "location"
	ViewListLocations      ViewID = "listLocations"
)

// Modal views
const (
	ViewDeleteLocationConfirmation ViewID = "deleteLocationConfirmation"
	ViewRateLocation               ViewID = "rateLocation"
	ViewProfileResume              ViewID = "profileResume"
)

// Primary paths
const (
	PathWelcome         = "/"
	PathRegister        = "/register"
	PathLogin           = "/login"
	PathRecoverPassword = "/recover-password"
	PathTerms           = "/terms-and-privacy"
	PathMap             = "/map"
)

// Parameter keys used by the overlays
const (
	ParamLocationID = "locationId"
	ParamLat        = "lat"
	ParamLng        = "lng"
	ParamUserID     = "userId"
	ParamElemX      = "elemX"
	ParamElemY      = "elemY"
)

// MergeStrategy controls how the params of a transition combine with the current bag
type MergeStrategy int

const (
	// ReplaceAll discards every current param before applying the new ones
	ReplaceAll MergeStrategy = iota
	// MergeKeys keeps current params and overwrites the keys given
	MergeKeys
)

func (m MergeStrategy) String() string {
	if m == MergeKeys {
		return "merge-keys"
	}
	return "replace-all"
}

// Params is the flat parameter bag shared by every slot
type Params map[string]string

// Clone returns an independent copy
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// Int parses the value stored under key
func (p Params) Int(key string) (int, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float parses the value stored under key
func (p Params) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// SetInt stores n under key and returns p for chaining
func (p Params) SetInt(key string, n int) Params {
	p[key] = strconv.Itoa(n)
	return p
}

// SetFloat stores f under key using the shortest exact representation
func (p Params) SetFloat(key string, f float64) Params {
	p[key] = strconv.FormatFloat(f, 'f', -1, 64)
	return p
}

// State is the full navigation state: primary path, slot contents and params.
// An empty ViewID means the slot is empty.
type State struct {
	Path   string
	Slots  map[SlotName]ViewID
	Params Params
}

// InitialState is the state at navigation start
func InitialState() State {
	return State{
		Path:   PathMap,
		Slots:  map[SlotName]ViewID{},
		Params: Params{},
	}
}

// Clone returns a deep copy
func (s State) Clone() State {
	slots := make(map[SlotName]ViewID, len(s.Slots))
	for k, v := range s.Slots {
		if v != "" {
			slots[k] = v
		}
	}
	return State{Path: s.Path, Slots: slots, Params: s.Params.Clone()}
}

// Active returns the view shown in slot, or "" when empty
func (s State) Active(slot SlotName) ViewID {
	return s.Slots[slot]
}

// Topmost returns the highest open slot
func (s State) Topmost() (SlotName, bool) {
	for i := len(Slots) - 1; i >= 0; i-- {
		if s.Slots[Slots[i]] != "" {
			return Slots[i], true
		}
	}
	return "", false
}

// Equal compares path, every slot and every param
func (s State) Equal(o State) bool {
	if s.Path != o.Path {
		return false
	}
	for _, slot := range Slots {
		if s.Slots[slot] != o.Slots[slot] {
			return false
		}
	}
	return maps.Equal(s.Params, o.Params)
}

func (s State) String() string {
	return FormatURL(s)
}

// InvalidViewError is returned for navigation to a view not registered for a slot
type InvalidViewError struct {
	Slot SlotName
	View ViewID
}

func (e *InvalidViewError) Error() string {
	return fmt.Sprintf("view %q is not registered for slot %q", e.View, e.Slot)
}

// NavigatedEvent is published on the bus after every transition. Seq is the
// commit number of State; an event with a lower Seq than one already seen is
// stale.
type NavigatedEvent struct {
	State State
	Seq   int
}

func (e NavigatedEvent) Type() domain.EventType { return domain.EventNavigated }
