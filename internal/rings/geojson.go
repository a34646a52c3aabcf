package rings

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection encodes the rings as GeoJSON polygons. Each feature's ID
// is its radius so hosts can address feature state by radius.
func (s Set) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range s.Rings {
		ring := make(orb.Ring, len(r.Polygon))
		for i, p := range r.Polygon {
			ring[i] = p.Orb()
		}

		f := geojson.NewFeature(orb.Polygon{ring})
		f.ID = r.Radius
		f.Properties["radius"] = r.Radius
		fc.Append(f)
	}
	return fc
}

// LabelCollection encodes one label point per ring with its radius and
// showLabel flag.
func (s Set) LabelCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range s.Rings {
		f := geojson.NewFeature(r.Label.Orb())
		f.Properties["radius"] = r.Radius
		f.Properties["showLabel"] = r.ShowLabel
		fc.Append(f)
	}
	return fc
}
