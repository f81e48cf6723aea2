package geo

import "github.com/jumprun/formationsim/pkg/core"

// ForDropzone returns the georeference of d, or nil when d carries no
// coordinates and the run stays in the local frame only.
func ForDropzone(d core.Dropzone) (*Georef, error) {
	if d.Latitude == 0 && d.Longitude == 0 {
		return nil, nil
	}
	return NewGeoref(d.Latitude, d.Longitude)
}
