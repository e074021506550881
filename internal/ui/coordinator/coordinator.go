package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"geographia/internal/api"
	"geographia/internal/domain"
	"geographia/internal/eventbus"
	"geographia/internal/geocode"
	"geographia/internal/storage"
	"geographia/internal/ui/services/focus"
	"geographia/internal/ui/services/maptype"
	"geographia/internal/ui/services/navigation"
	"geographia/internal/ui/services/reset"
)

var (
	// ErrLoginRequired is returned by flows that need an authenticated user
	ErrLoginRequired = errors.New("login required")
	// ErrNoLocation is returned when a flow needs a location id and none is routed
	ErrNoLocation = errors.New("no location selected")
	// ErrEmptyComment is returned when a comment has no text
	ErrEmptyComment = errors.New("comment is empty")
	// ErrInvalidScore is returned for ratings outside 1..5
	ErrInvalidScore = errors.New("score must be between 1 and 5")
)

// Backend is the part of the REST client the flows use
type Backend interface {
	DeleteLocation(ctx context.Context, id int) error
	MyRating(ctx context.Context, locationID int) (*domain.Rating, error)
	AddRating(ctx context.Context, locationID, score int) error
	UpdateRating(ctx context.Context, locationID, score int) error
	AddComment(ctx context.Context, locationID int, text, address string) (*domain.Comment, error)
	Me(ctx context.Context) (*domain.User, error)
	SaveCurrentLocation(ctx context.Context, address string) error
	LoadLocationDetail(ctx context.Context, id int) (*api.LocationDetail, error)
}

// Deps are the collaborators the coordinator is built from
type Deps struct {
	Bus       eventbus.EventBus
	Backend   Backend
	Session   *storage.Session
	Geocode   *geocode.Pipeline
	Scheduler focus.Scheduler
	// FocusFallback receives focus when the element to restore is gone
	FocusFallback focus.Element
	Log           logrus.FieldLogger
}

// Coordinator holds the single instance of every UI service and runs the
// flows that span several of them
type Coordinator struct {
	// Services
	Router  *navigation.Service
	Reset   *reset.Channel
	Types   *maptype.Service
	Focus   *focus.Service
	Geocode *geocode.Pipeline

	// Dependencies
	bus     eventbus.EventBus
	backend Backend
	session *storage.Session
	log     logrus.FieldLogger

	background sync.WaitGroup
}

// New creates a coordinator with all services
func New(d Deps) *Coordinator {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	sched := d.Scheduler
	if sched == nil {
		sched = focus.NewFrameScheduler()
	}

	return &Coordinator{
		Router:  navigation.NewService(d.Bus, navigation.DefaultRegistry(), log),
		Reset:   reset.NewChannel(d.Bus),
		Types:   maptype.NewService(d.Bus, log),
		Focus:   focus.NewService(sched, d.FocusFallback, log),
		Geocode: d.Geocode,
		bus:     d.Bus,
		backend: d.Backend,
		session: d.Session,
		log:     log.WithField("component", "coordinator"),
	}
}

// Session returns the client session
func (c *Coordinator) Session() *storage.Session {
	return c.session
}

// Wait blocks until background flows such as ShareDeviceLocation finish
func (c *Coordinator) Wait() {
	c.background.Wait()
}

// OpenAddLocation opens the add location popup for a point on the map
func (c *Coordinator) OpenAddLocation(lat, lng float64) error {
	if !c.session.HasToken() {
		c.Notify(domain.NoticeInfo, "Inicio de sesión requerido", "Para agregar una ubicación, por favor, inicie sesión.")
		return ErrLoginRequired
	}
	params := navigation.Params{}.SetFloat(navigation.ParamLat, lat).SetFloat(navigation.ParamLng, lng)
	return c.Router.Open(navigation.SlotPopup, navigation.ViewAddLocation, params, navigation.ReplaceAll)
}

// OpenLocation shows the detail popup of a location
func (c *Coordinator) OpenLocation(id int) error {
	return c.Router.Open(navigation.SlotPopup, navigation.ViewLocation, locationParams(id), navigation.ReplaceAll)
}

// OpenResumeLocation shows the short summary of a location
func (c *Coordinator) OpenResumeLocation(id int) error {
	return c.Router.Open(navigation.SlotPopup, navigation.ViewResumeLocation, locationParams(id), navigation.ReplaceAll)
}

// OpenListLocations shows the list of locations of the selected type
func (c *Coordinator) OpenListLocations() error {
	return c.Router.Open(navigation.SlotPopup, navigation.ViewListLocations, nil, navigation.ReplaceAll)
}

// OpenProfileResume shows a comment author's profile above the location they commented on
func (c *Coordinator) OpenProfileResume(userID, locationID int) error {
	params := locationParams(locationID).SetInt(navigation.ParamUserID, userID)
	return c.Router.ReplaceBothSlots(navigation.ViewLocation, navigation.ViewProfileResume, params)
}

// OpenPopup opens one of the account popups, which take no parameters
func (c *Coordinator) OpenPopup(view navigation.ViewID) error {
	return c.Router.Open(navigation.SlotPopup, view, nil, navigation.ReplaceAll)
}

// OpenAccount opens one of the account popups of the profile menu. They need
// a logged in user.
func (c *Coordinator) OpenAccount(view navigation.ViewID) error {
	if !c.session.HasToken() {
		c.Notify(domain.NoticeInfo, "Inicio de sesión requerido", "Para administrar tu cuenta, por favor, inicie sesión.")
		return ErrLoginRequired
	}
	return c.OpenPopup(view)
}

// RequestDeleteLocation asks for confirmation before deleting a location
func (c *Coordinator) RequestDeleteLocation(id int) error {
	return c.Router.ReplaceBothSlots(navigation.ViewLocation, navigation.ViewDeleteLocationConfirmation, locationParams(id))
}

// RequestRateLocation opens the rating modal above the location popup
func (c *Coordinator) RequestRateLocation(id int) error {
	if !c.session.HasToken() {
		c.Notify(domain.NoticeInfo, "Inicio de sesión requerido", "Para calificar, por favor, inicie sesión.")
		return ErrLoginRequired
	}
	return c.Router.ReplaceBothSlots(navigation.ViewLocation, navigation.ViewRateLocation, locationParams(id))
}

// CancelModal closes the modal, leaving the location popup open, and resets
func (c *Coordinator) CancelModal() error {
	if err := c.closeModal(); err != nil {
		return err
	}
	c.Reset.EmitReset()
	return nil
}

// Escape closes the topmost overlay and restores focus
func (c *Coordinator) Escape() (navigation.SlotName, bool, error) {
	return c.Focus.HandleEscape(c.Router)
}

// ConfirmDeleteLocation deletes the routed location
func (c *Coordinator) ConfirmDeleteLocation(ctx context.Context) error {
	id, err := c.routedLocation()
	if err != nil {
		return err
	}

	if err := c.backend.DeleteLocation(ctx, id); err != nil {
		c.log.WithError(err).WithField("location", id).Warn("delete location failed")
		c.Notice(err)
		return fmt.Errorf("delete location %d: %w", id, err)
	}

	if err := c.session.RemoveRecentSearch(id); err != nil {
		c.log.WithError(err).Warn("failed to prune recent searches")
	}
	c.Router.Navigate(navigation.PathMap)
	c.Focus.Forget()
	c.Reset.EmitReset()
	c.Notify(domain.NoticeSuccess, "Ubicación eliminada", "")
	return nil
}

// SubmitRating rates the routed location, updating the caller's rating if one exists
func (c *Coordinator) SubmitRating(ctx context.Context, score int) error {
	if score < 1 || score > 5 {
		return ErrInvalidScore
	}
	id, err := c.routedLocation()
	if err != nil {
		return err
	}

	existing, err := c.backend.MyRating(ctx, id)
	if err != nil && !api.IsNotFound(err) {
		c.log.WithError(err).Debug("could not read current rating, adding a new one")
	}
	if existing != nil {
		err = c.backend.UpdateRating(ctx, id, score)
	} else {
		err = c.backend.AddRating(ctx, id, score)
	}
	if err != nil {
		c.Notice(err)
		return fmt.Errorf("rate location %d: %w", id, err)
	}

	if err := c.closeModal(); err != nil {
		return err
	}
	c.Reset.EmitReset()
	c.Notify(domain.NoticeSuccess, "Calificación guardada", "")
	return nil
}

// PostComment adds a comment to the routed location. The comment carries the
// author's resolved address; geocoding problems never block the post.
func (c *Coordinator) PostComment(ctx context.Context, text string, geo geocode.Geolocator) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	id, err := c.routedLocation()
	if err != nil {
		return nil, err
	}

	me, err := c.backend.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) || !c.session.HasToken() {
			c.Notify(domain.NoticeInfo, "Inicio de sesión requerido", "Para comentar, por favor, inicie sesión.")
			return nil, ErrLoginRequired
		}
		c.Notice(err)
		return nil, fmt.Errorf("comment: %w", err)
	}

	addr := c.Geocode.ResolveDeviceAddress(ctx, geo)
	comment, err := c.backend.AddComment(ctx, id, text, addr.Label)
	if err != nil {
		c.Notice(err)
		return nil, fmt.Errorf("comment on location %d: %w", id, err)
	}

	comment.UserFirstName = me.FirstName
	comment.UserLastName = me.LastName
	comment.UserProfileImageURL = me.ProfileImageURL
	if !me.ShowLocation {
		comment.Address = c.Geocode.FallbackLabel()
	}
	return comment, nil
}

// ShareDeviceLocation stores the device address on the user's profile, once
// per session and in the background. Failures are only logged.
func (c *Coordinator) ShareDeviceLocation(ctx context.Context, geo geocode.Geolocator) {
	if !c.session.HasToken() || c.session.LocationSent() {
		return
	}

	c.background.Add(1)
	go func() {
		defer c.background.Done()

		addr := c.Geocode.ResolveDeviceAddress(ctx, geo)
		if !addr.Resolved {
			c.log.WithError(addr.Err).Info("device address unresolved, not shared")
			return
		}
		if err := c.backend.SaveCurrentLocation(ctx, addr.Label); err != nil {
			c.log.WithError(err).Warn("failed to save current location")
			return
		}
		if err := c.session.MarkLocationSent(); err != nil {
			c.log.WithError(err).Warn("failed to mark location as sent")
		}
		c.bus.Publish(domain.LocationSavedEvent{Address: addr.Label})
	}()
}

// LoadLocationDetail fetches the popup content of a location. A location that
// no longer exists is dropped from the recent searches and the map is reset.
func (c *Coordinator) LoadLocationDetail(ctx context.Context, id int) (*api.LocationDetail, error) {
	detail, err := c.backend.LoadLocationDetail(ctx, id)
	if err == nil {
		return detail, nil
	}

	if api.IsNotFound(err) {
		if perr := c.session.RemoveRecentSearch(id); perr != nil {
			c.log.WithError(perr).Warn("failed to prune recent searches")
		}
		c.Router.Navigate(navigation.PathMap)
		c.Focus.Forget()
		c.Reset.EmitReset()
		c.Notify(domain.NoticeInfo, "Ubicación no encontrada", "La ubicación ya no existe.")
	} else {
		c.Notice(err)
	}
	return nil, fmt.Errorf("load location %d: %w", id, err)
}

// SelectSearchResult remembers loc as a recent search and opens it
func (c *Coordinator) SelectSearchResult(loc domain.Location) error {
	if err := c.session.AddRecentSearch(loc); err != nil {
		c.log.WithError(err).Warn("failed to store recent search")
	}
	return c.OpenLocation(loc.ID)
}

// SetType selects the map type
func (c *Coordinator) SetType(t domain.LocationType) error {
	return c.Types.SetCurrentType(t)
}

// Logout forgets the session and returns to the bare map
func (c *Coordinator) Logout() error {
	if err := c.session.Logout(); err != nil {
		return err
	}
	c.Router.Navigate(navigation.PathMap)
	c.Focus.Forget()
	c.Reset.EmitReset()
	c.Notify(domain.NoticeSuccess, "Sesión cerrada", "")
	return nil
}

// Notify publishes a transient notification
func (c *Coordinator) Notify(level domain.NoticeLevel, title, message string) {
	c.bus.Publish(domain.NoticeEvent{Level: level, Title: title, Message: message})
}

// Notice publishes the notification matching a failed collaborator call
func (c *Coordinator) Notice(err error) {
	if err == nil {
		return
	}
	switch api.KindOf(err) {
	case api.KindNotFound:
		c.Notify(domain.NoticeInfo, "No encontrado", messageOf(err))
	case api.KindUnauthorized:
		c.Notify(domain.NoticeInfo, "Inicio de sesión requerido", "Para realizar esta acción, por favor, inicie sesión.")
	case api.KindConflict:
		c.Notify(domain.NoticeError, "Conflicto", messageOf(err))
	case api.KindBadRequest:
		c.Notify(domain.NoticeError, "Datos inválidos", messageOf(err))
	default:
		c.Notify(domain.NoticeError, "Error", "Ocurrió un error inesperado. Intente nuevamente.")
	}
}

func (c *Coordinator) closeModal() error {
	s := c.Router.CurrentState()
	if err := c.Router.ReplaceBothSlots(s.Active(navigation.SlotPopup), "", nil); err != nil {
		return err
	}
	if s.Active(navigation.SlotModal) != "" {
		c.Focus.RestoreSlot(navigation.SlotModal)
	}
	return nil
}

func (c *Coordinator) routedLocation() (int, error) {
	id, ok := c.Router.CurrentState().Params.Int(navigation.ParamLocationID)
	if !ok {
		return 0, ErrNoLocation
	}
	return id, nil
}

func locationParams(id int) navigation.Params {
	return navigation.Params{}.SetInt(navigation.ParamLocationID, id)
}

func messageOf(err error) string {
	var f *api.Failure
	if errors.As(err, &f) && f.Message != "" {
		return f.Message
	}
	return ""
}
