package nominatim

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/terralens/terralens/internal/model"
)

// Place is one Nominatim result (reverse returns one, search returns a list).
type Place struct {
	PlaceID     int64           `json:"place_id"`
	Lat         string          `json:"lat"`
	Lon         string          `json:"lon"`
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Address     Address         `json:"address"`
	BoundingBox []string        `json:"boundingbox"`
	GeoJSON     json.RawMessage `json:"geojson"`
	Error       string          `json:"error"`
}

// Address holds the sub-fields Nominatim may populate. Which ones appear
// depends on the place kind; BestName documents the priority order.
type Address struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	County       string `json:"county"`
	State        string `json:"state"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
}

// BestName returns the most specific populated address sub-field, in the fixed
// priority order city > town > village > municipality > county > state >
// country. Empty when no sub-field is populated.
func (a Address) BestName() string {
	for _, candidate := range []string{
		a.City, a.Town, a.Village, a.Municipality, a.County, a.State, a.Country,
	} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// PreferredName returns the best display name for the place: the address
// priority chain, then the raw display name.
func (p *Place) PreferredName() string {
	if name := p.Address.BestName(); name != "" {
		return name
	}
	return p.DisplayName
}

// Coordinate parses the place's lat/lon strings.
func (p *Place) Coordinate() (model.Coordinate, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "nominatim: parse lat")
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "nominatim: parse lon")
	}
	return model.Coordinate{Lat: lat, Lng: lon}, nil
}

// BBox converts the provider's [south, north, west, east] boundingbox to the
// canonical form.
func (p *Place) BBox() (model.BBox, error) {
	return model.BBoxFromNominatim(p.BoundingBox)
}

// Geometry decodes the polygon_geojson member, if present. Returns (nil, nil)
// when the response carried no geometry.
func (p *Place) Geometry() (geom.T, error) {
	if len(p.GeoJSON) == 0 {
		return nil, nil
	}
	var g geom.T
	if err := geomjson.Unmarshal(p.GeoJSON, &g); err != nil {
		return nil, eris.Wrap(err, "nominatim: decode geojson member")
	}
	return g, nil
}
