package navigation

import (
	"fmt"
	"net/url"
	"strings"
)

// FormatURL renders s in the router URL form, e.g.
// /map/(popup:location//modal:rateLocation)?locationId=7
func FormatURL(s State) string {
	var b strings.Builder
	b.WriteString(s.Path)

	var outlets []string
	for _, slot := range Slots {
		if view := s.Slots[slot]; view != "" {
			outlets = append(outlets, string(slot)+":"+string(view))
		}
	}
	if len(outlets) > 0 {
		if !strings.HasSuffix(s.Path, "/") {
			b.WriteString("/")
		}
		b.WriteString("(")
		b.WriteString(strings.Join(outlets, "//"))
		b.WriteString(")")
	}

	if len(s.Params) > 0 {
		values := url.Values{}
		for k, v := range s.Params {
			values.Set(k, v)
		}
		b.WriteString("?")
		b.WriteString(values.Encode())
	}
	return b.String()
}

// ParseURL is the inverse of FormatURL. Views are checked against r.
func ParseURL(r Registry, raw string) (State, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return State{}, fmt.Errorf("parse navigation url: %w", err)
	}

	s := InitialState()
	path := u.Path
	if i := strings.Index(path, "("); i >= 0 {
		if !strings.HasSuffix(path, ")") {
			return State{}, fmt.Errorf("parse navigation url %q: unterminated outlet group", raw)
		}
		group := path[i+1 : len(path)-1]
		path = strings.TrimSuffix(path[:i], "/")
		for _, outlet := range strings.Split(group, "//") {
			slot, view, ok := strings.Cut(outlet, ":")
			if !ok {
				return State{}, fmt.Errorf("parse navigation url %q: bad outlet %q", raw, outlet)
			}
			if err := r.Validate(SlotName(slot), ViewID(view)); err != nil {
				return State{}, err
			}
			s.Slots[SlotName(slot)] = ViewID(view)
		}
	}
	if path == "" {
		path = PathWelcome
	}
	s.Path = resolvePath(path)
	if len(s.Slots) > 0 && s.Path != PathMap {
		return State{}, fmt.Errorf("parse navigation url %q: overlays are only available under %s", raw, PathMap)
	}

	for k, vs := range u.Query() {
		if len(vs) > 0 {
			s.Params[k] = vs[len(vs)-1]
		}
	}
	return s, nil
}
