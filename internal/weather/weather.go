// Package weather turns forecast snapshots into wind layers.
package weather

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jumprun/formationsim/pkg/core"
)

// MphToKnots converts statute miles per hour to knots.
const MphToKnots = 0.868976

// ErrNoWind is returned when a snapshot has no usable pressure level.
var ErrNoWind = errors.New("snapshot has no usable wind levels")

// PressureAltitudes maps a pressure level to its approximate altitude in
// meters above the dropzone.
var PressureAltitudes = map[string]float64{
	"1000hPa": 110,
	"975hPa":  350,
	"950hPa":  610,
	"925hPa":  760,
	"900hPa":  1000,
	"850hPa":  1460,
	"800hPa":  2000,
	"750hPa":  2500,
	"700hPa":  3100,
	"600hPa":  4200,
	"500hPa":  5600,
}

// Snapshot is one forecast hour. Speeds and directions are keyed by
// pressure level ("975hPa") and carry their unit ("12mph", "220°").
type Snapshot struct {
	Time           string            `json:"time"`
	Temperature2m  string            `json:"temperature2m"`
	WindSpeeds     map[string]string `json:"windSpeeds"`
	WindDirections map[string]string `json:"windDirections"`
}

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// parseNumber keeps the digits and dot of s, so "12mph" reads as 12.
func parseNumber(s string) (float64, error) {
	clean := nonNumeric.ReplaceAllString(s, "")
	if clean == "" {
		return 0, fmt.Errorf("no number in %q", s)
	}
	return strconv.ParseFloat(clean, 64)
}

// Layers converts the snapshot into wind layers sorted by ascending
// altitude. Levels without a known altitude, a speed or a direction are
// skipped.
func (s Snapshot) Layers() ([]core.WindLayer, error) {
	layers := make([]core.WindLayer, 0, len(s.WindSpeeds))
	for level, speedStr := range s.WindSpeeds {
		key := strings.ReplaceAll(strings.TrimSpace(level), ":", "")
		altitude, ok := PressureAltitudes[key]
		if !ok || speedStr == "" {
			continue
		}
		directionStr := s.WindDirections[level]
		if directionStr == "" {
			directionStr = s.WindDirections[key]
		}
		if directionStr == "" {
			continue
		}

		mph, err := parseNumber(speedStr)
		if err != nil {
			return nil, fmt.Errorf("wind speed at %s: %w", key, err)
		}
		deg, err := parseNumber(directionStr)
		if err != nil {
			return nil, fmt.Errorf("wind direction at %s: %w", key, err)
		}

		layers = append(layers, core.WindLayer{
			AltitudeMeters: altitude,
			DirectionDeg:   deg,
			SpeedKnots:     mph * MphToKnots,
		})
	}
	if len(layers) == 0 {
		return nil, ErrNoWind
	}

	sort.Slice(layers, func(i, j int) bool {
		return layers[i].AltitudeMeters < layers[j].AltitudeMeters
	})
	return layers, nil
}
