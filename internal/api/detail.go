package api

import (
	"context"

	"golang.org/x/sync/errgroup"

	"geographia/internal/domain"
)

// LocationDetail is everything the location popup shows
type LocationDetail struct {
	Location domain.Location
	Comments []domain.Comment
	MyRating *domain.Rating // nil when not rated or unavailable
	Viewer   *domain.User   // nil when logged out or unavailable
}

// Owned reports whether the viewer created the location
func (d *LocationDetail) Owned() bool {
	return d.Viewer != nil && d.Viewer.ID == d.Location.UserID
}

// LoadLocationDetail fetches a location with its comments, the viewer's rating
// and the viewer. Only the location itself is required: a location without
// comments answers 404 on the comments endpoint, and the rating and viewer are
// optional.
func (c *Client) LoadLocationDetail(ctx context.Context, id int) (*LocationDetail, error) {
	var d LocationDetail
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		loc, err := c.Location(gctx, id)
		if err != nil {
			return err
		}
		d.Location = *loc
		return nil
	})
	g.Go(func() error {
		comments, err := c.Comments(gctx, id)
		if err != nil && !IsNotFound(err) {
			return err
		}
		d.Comments = comments
		return nil
	})
	g.Go(func() error {
		if rating, err := c.MyRating(gctx, id); err == nil {
			d.MyRating = rating
		}
		return nil
	})
	g.Go(func() error {
		if c.tokens.Token() == "" {
			return nil
		}
		if me, err := c.Me(gctx); err == nil {
			d.Viewer = me
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.Comments == nil {
		d.Comments = []domain.Comment{}
	}
	return &d, nil
}
