package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/goccy/go-json"

	"github.com/jumprun/formationsim/internal/formation"
	"github.com/jumprun/formationsim/internal/geo"
	"github.com/jumprun/formationsim/internal/kinematics"
	"github.com/jumprun/formationsim/internal/solver"
	"github.com/jumprun/formationsim/internal/weather"
	"github.com/jumprun/formationsim/internal/wind"
	"github.com/jumprun/formationsim/pkg/core"
)

// Scenario describes one jump: the aircraft, who is on board, the
// formations they fly and the weather.
type Scenario struct {
	Name string `json:"name"`

	Aircraft AircraftScenario `json:"aircraft"`

	Jumpers        []kinematics.JumperParams `json:"jumpers"`
	DefaultJumpers *DefaultLoad              `json:"defaultJumpers,omitempty"`

	FormationFiles []string             `json:"formationFiles,omitempty"` // .jump documents, relative to the scenario
	Formations     []core.FormationData `json:"formations,omitempty"`

	Wind     []core.WindLayer  `json:"wind,omitempty"`
	Weather  *weather.Snapshot `json:"weather,omitempty"`
	Dropzone *core.Dropzone    `json:"dropzone,omitempty"`

	dir string
}

// AircraftScenario places the aircraft. Jumprun, a "[[lon, lat], [lon, lat]]"
// pair, overrides HeadingDeg and requires a dropzone.
type AircraftScenario struct {
	Altitude   float64 `json:"altitude"`   // m
	HeadingDeg float64 `json:"headingDeg"` // 0 = north, clockwise
	SpeedKnots float64 `json:"speedKnots"`
	Jumprun    string  `json:"jumprun,omitempty"`
}

// DefaultLoad asks for Count belly flyers leaving Interval seconds apart.
type DefaultLoad struct {
	Count    int     `json:"count"`
	Interval float64 `json:"interval"`
}

// loadScenario reads a scenario file.
func loadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	var s Scenario
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	if s.Name == "" {
		s.Name = trimExt(filepath.Base(path))
	}
	return &s, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

// headingVector turns a compass heading into a local frame direction.
func headingVector(deg float64) mgl64.Vec3 {
	rad := mgl64.DegToRad(deg)
	return mgl64.Vec3{math.Sin(rad), 0, math.Cos(rad)}
}

// windLayers returns the explicit layers, else the weather snapshot's,
// else none for calm air.
func (s *Scenario) windLayers() ([]core.WindLayer, error) {
	if len(s.Wind) > 0 {
		return s.Wind, nil
	}
	if s.Weather != nil {
		return s.Weather.Layers()
	}
	return nil, nil
}

// windField builds the solver's field from windLayers; nil means calm.
func windField(layers []core.WindLayer) (*wind.Field, error) {
	if len(layers) == 0 {
		return nil, nil
	}
	return wind.NewField(layers)
}

// formations parses every formation of the scenario into a table.
func (s *Scenario) formations(scale float64) (*formation.Table, error) {
	g := formation.NewGeometry(scale)
	table := formation.NewTable()

	datas := append([]core.FormationData(nil), s.Formations...)
	for _, name := range s.FormationFiles {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open formation: %w", err)
		}
		data, err := formation.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		datas = append(datas, data)
	}

	for _, data := range datas {
		if data.ID == "" {
			data.ID = data.Title
		}
		f, err := formation.New(data, g)
		if err != nil {
			return nil, err
		}
		table.Add(f)
	}
	return table, nil
}

// load builds the aircraft and jumpers. g may be nil when no dropzone is
// known, in which case a jumprun can't be used.
func (s *Scenario) load(g *geo.Georef) (solver.Load, error) {
	a, err := kinematics.NewAircraft(
		mgl64.Vec3{0, s.Aircraft.Altitude, 0},
		headingVector(s.Aircraft.HeadingDeg),
		s.Aircraft.SpeedKnots,
	)
	if err != nil {
		return solver.Load{}, err
	}
	if s.Aircraft.Jumprun != "" {
		if g == nil {
			return solver.Load{}, fmt.Errorf("jumprun needs a dropzone with coordinates")
		}
		from, to, err := g.ParseJumprun(s.Aircraft.Jumprun)
		if err != nil {
			return solver.Load{}, fmt.Errorf("jumprun: %w", err)
		}
		if err := a.AlignToJumprun(from, to); err != nil {
			return solver.Load{}, fmt.Errorf("jumprun: %w", err)
		}
	}

	var jumpers []*kinematics.Jumper
	for i, p := range s.Jumpers {
		j, err := kinematics.NewJumper(i, p)
		if err != nil {
			return solver.Load{}, fmt.Errorf("jumper %d: %w", i, err)
		}
		jumpers = append(jumpers, j)
	}
	if len(jumpers) == 0 && s.DefaultJumpers != nil {
		jumpers, err = kinematics.DefaultJumpers(s.DefaultJumpers.Count, s.DefaultJumpers.Interval)
		if err != nil {
			return solver.Load{}, err
		}
	}
	return solver.Load{Aircraft: a, Jumpers: jumpers}, nil
}
