package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"geographia/internal/api"
	"geographia/internal/domain"
	"geographia/internal/ui/services/maptype"
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search locations and addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the locations of a map type",
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Pin a new location",
	RunE:  runAdd,
}

func init() {
	listCmd.Flags().String("type", string(domain.TypeDefault), "map type: SATÉLITE, RURAL, GEOGRÁFICA or HISTÓRICA")

	addCmd.Flags().String("name", "", "location name")
	addCmd.Flags().String("address", "", "address (reverse geocoded from the coordinates when empty)")
	addCmd.Flags().Float64("at-lat", 0, "location latitude")
	addCmd.Flags().Float64("at-lng", 0, "location longitude")
	addCmd.Flags().String("type", string(domain.TypeDefault), "map type")
	addCmd.Flags().String("details", "", "description")
	addCmd.Flags().StringSlice("tag", nil, "tag, may be repeated")
	addCmd.Flags().StringSlice("image", nil, "image file, may be repeated")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("at-lat")
	_ = addCmd.MarkFlagRequired("at-lng")

	rootCmd.AddCommand(searchCmd, listCmd, addCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	text := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	locs, err := a.client.SearchLocations(ctx, text)
	if err != nil {
		return fmt.Errorf("search locations: %w", err)
	}
	fmt.Fprintln(out, "Ubicaciones:")
	if len(locs) == 0 {
		fmt.Fprintln(out, "  (ninguna)")
	}
	for _, l := range locs {
		fmt.Fprintf(out, "  #%d %s · %s · %s\n", l.ID, l.Name, l.Type, l.Address)
	}

	res := a.pipeline.Forward(ctx, text)
	if res.Err != nil {
		a.log.WithError(res.Err).Warn("geocoding failed")
	}
	fmt.Fprintln(out, "Direcciones:")
	if len(res.Candidates) == 0 {
		fmt.Fprintln(out, "  (ninguna)")
	}
	for _, c := range res.Candidates {
		fmt.Fprintf(out, "  %s (%.5f, %.5f)\n", c.Label, c.Point.Lat, c.Point.Lng)
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	raw, _ := cmd.Flags().GetString("type")
	t, err := domain.ParseLocationType(strings.ToUpper(raw))
	if err != nil {
		return err
	}

	locs, err := a.client.Locations(cmd.Context())
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, l := range maptype.Filter(locs, t) {
		fmt.Fprintf(out, "#%d %s · %s · %.1f★\n", l.ID, l.Name, l.Address, l.AverageRating)
	}
	return nil
}

func runAdd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	f := cmd.Flags()
	var loc api.NewLocation
	loc.Name, _ = f.GetString("name")
	loc.Address, _ = f.GetString("address")
	loc.Latitude, _ = f.GetFloat64("at-lat")
	loc.Longitude, _ = f.GetFloat64("at-lng")
	loc.Details, _ = f.GetString("details")
	loc.Tags, _ = f.GetStringSlice("tag")
	rawType, _ := f.GetString("type")
	loc.Type = domain.LocationType(strings.ToUpper(rawType))

	if loc.Address == "" {
		addr := a.pipeline.ReverseLookup(cmd.Context(), loc.Latitude, loc.Longitude)
		if !addr.Resolved {
			return errors.New("could not resolve an address for the coordinates, pass --address")
		}
		loc.Address = addr.Label
	}

	images, _ := f.GetStringSlice("image")
	for _, path := range images {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer file.Close()
		loc.Images = append(loc.Images, api.Image{Name: filepath.Base(path), Data: file})
	}

	created, err := a.client.CreateLocation(cmd.Context(), loc)
	if err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Ubicación #%d creada: %s\n", created.ID, created.Name)
	return nil
}
