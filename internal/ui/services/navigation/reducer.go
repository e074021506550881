package navigation

import "maps"

// Transition is one navigation call. The router state is always the fold of
// Reduce over every transition applied so far.
type Transition interface {
	apply(r Registry, s State) (State, error)
}

// Open activates View in Slot
type Open struct {
	Slot     SlotName
	View     ViewID
	Params   Params
	Strategy MergeStrategy
}

// Close empties Slot. Params stay in the shared bag.
type Close struct {
	Slot SlotName
}

// ReplaceBoth sets popup and modal in a single transition, merging Params by key.
// An empty ViewID clears that slot.
type ReplaceBoth struct {
	Popup  ViewID
	Modal  ViewID
	Params Params
}

// Navigate moves to a primary path and resets slots and params
type Navigate struct {
	Path string
}

// Reduce applies t to s without mutating s
func Reduce(r Registry, s State, t Transition) (State, error) {
	next, err := t.apply(r, s.Clone())
	if err != nil {
		return s, err
	}
	return next, nil
}

// Fold applies every transition in order, stopping at the first error
func Fold(r Registry, s State, ts ...Transition) (State, error) {
	var err error
	for _, t := range ts {
		if s, err = Reduce(r, s, t); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (o Open) apply(r Registry, s State) (State, error) {
	if err := r.Validate(o.Slot, o.View); err != nil {
		return s, err
	}
	s.Path = PathMap
	s.Slots[o.Slot] = o.View
	s.Params = mergeParams(s.Params, o.Params, o.Strategy)
	return s, nil
}

func (c Close) apply(r Registry, s State) (State, error) {
	if _, ok := r[c.Slot]; !ok {
		return s, &InvalidViewError{Slot: c.Slot}
	}
	delete(s.Slots, c.Slot)
	return s, nil
}

func (rb ReplaceBoth) apply(r Registry, s State) (State, error) {
	if rb.Popup != "" {
		if err := r.Validate(SlotPopup, rb.Popup); err != nil {
			return s, err
		}
	}
	if rb.Modal != "" {
		if err := r.Validate(SlotModal, rb.Modal); err != nil {
			return s, err
		}
	}
	s.Path = PathMap
	setSlot(s.Slots, SlotPopup, rb.Popup)
	setSlot(s.Slots, SlotModal, rb.Modal)
	s.Params = mergeParams(s.Params, rb.Params, MergeKeys)
	return s, nil
}

func (n Navigate) apply(_ Registry, _ State) (State, error) {
	s := InitialState()
	s.Path = resolvePath(n.Path)
	return s, nil
}

func setSlot(slots map[SlotName]ViewID, slot SlotName, view ViewID) {
	if view == "" {
		delete(slots, slot)
		return
	}
	slots[slot] = view
}

func mergeParams(current, incoming Params, strategy MergeStrategy) Params {
	var out Params
	if strategy == MergeKeys {
		out = current.Clone()
	} else {
		out = make(Params, len(incoming))
	}
	maps.Copy(out, incoming)
	return out
}
