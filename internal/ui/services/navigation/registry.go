package navigation

// Registry holds the views each slot may show
type Registry map[SlotName]map[ViewID]bool

// DefaultRegistry returns the overlays available under the map
func DefaultRegistry() Registry {
	return Registry{
		SlotPopup: {
			ViewAddLocation:        true,
			ViewChangePassword:     true,
			ViewEditProfile:        true,
			ViewPrivacySettings:    true,
			ViewDeleteConfirmation: true,
			ViewCloseSession:       true,
			ViewResumeLocation:     true,
			ViewLocation:           true,
			ViewListLocations:      true,
		},
		SlotModal: {
			ViewDeleteLocationConfirmation: true,
			ViewRateLocation:               true,
			ViewProfileResume:              true,
		},
	}
}

// Allows reports whether view is registered for slot
func (r Registry) Allows(slot SlotName, view ViewID) bool {
	return r[slot][view]
}

// Validate returns an InvalidViewError unless view is registered for slot
func (r Registry) Validate(slot SlotName, view ViewID) error {
	if !r.Allows(slot, view) {
		return &InvalidViewError{Slot: slot, View: view}
	}
	return nil
}

var primaryPaths = map[string]bool{
	PathWelcome:         true,
	PathRegister:        true,
	PathLogin:           true,
	PathRecoverPassword: true,
	PathTerms:           true,
	PathMap:             true,
}

// resolvePath redirects unknown paths to the map
func resolvePath(path string) string {
	if primaryPaths[path] {
		return path
	}
	return PathMap
}
