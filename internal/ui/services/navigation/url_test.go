package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatURL(t *testing.T) {
	s := InitialState()
	assert.Equal(t, "/map", FormatURL(s))

	s.Slots[SlotPopup] = ViewLocation
	s.Slots[SlotModal] = ViewRateLocation
	s.Params[ParamLocationID] = "7"
	assert.Equal(t, "/map/(popup:location//modal:rateLocation)?locationId=7", FormatURL(s))
}

func TestParseURLRoundTrip(t *testing.T) {
	s := InitialState()
	s.Slots[SlotPopup] = ViewAddLocation
	s.Params.SetFloat(ParamLat, -34.6).SetFloat(ParamLng, -58.4)

	parsed, err := ParseURL(DefaultRegistry(), FormatURL(s))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(s), "got %s", parsed)
}

func TestParseURLPlainPaths(t *testing.T) {
	cases := map[string]string{
		"/":         PathWelcome,
		"/login":    PathLogin,
		"/map":      PathMap,
		"/whatever": PathMap,
	}
	for raw, want := range cases {
		s, err := ParseURL(DefaultRegistry(), raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, s.Path, raw)
		assert.Empty(t, s.Slots, raw)
	}
}

func TestParseURLRejectsUnknownView(t *testing.T) {
	_, err := ParseURL(DefaultRegistry(), "/map/(modal:location)")
	var invalid *InvalidViewError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, ViewLocation, invalid.View)
}

func TestParseURLRejectsMalformedOutlets(t *testing.T) {
	_, err := ParseURL(DefaultRegistry(), "/map/(popup:location")
	require.Error(t, err)

	_, err = ParseURL(DefaultRegistry(), "/map/(location)")
	require.Error(t, err)

	_, err = ParseURL(DefaultRegistry(), "/login/(popup:location)")
	require.Error(t, err, "overlays only live under the map")
}

func TestNavigateURLEmits(t *testing.T) {
	r, seen := newTestRouter(t)

	require.NoError(t, r.NavigateURL("/map/(popup:location)?locationId=12"))

	require.Len(t, *seen, 1)
	assert.Equal(t, ViewLocation, r.CurrentState().Active(SlotPopup))
	id, ok := r.CurrentState().Params.Int(ParamLocationID)
	require.True(t, ok)
	assert.Equal(t, 12, id)
	assert.Equal(t, "/map/(popup:location)?locationId=12", r.URL())
}
