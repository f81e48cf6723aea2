package kinematics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/jumprun/formationsim/internal/track"
	"github.com/jumprun/formationsim/pkg/core"
)

// Defaults applied to zero-valued JumperParams fields.
const (
	DefaultWeight     = 80.0  // kg
	DefaultCanopySize = 190.0 // ft²
)

var surfaceAreas = map[core.FlyingStyle]float64{
	core.StyleFreefly:  0.8,
	core.StyleBelly:    0.8,
	core.StyleHeadDown: 0.35,
	core.StyleSitFly:   0.5,
	core.StyleTracking: 0.45,
	core.StyleWingsuit: 2.0,
}

// SurfaceArea returns the freefall drag area in m² for style.
func SurfaceArea(style core.FlyingStyle) (float64, error) {
	a, ok := surfaceAreas[style]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFlyingStyle, style)
	}
	return a, nil
}

// JumperParams are the constants of one jumper.
type JumperParams struct {
	Name        string           `json:"name"`
	ExitTime    float64          `json:"exitTime"`    // seconds into the run
	DeployDelay float64          `json:"deployDelay"` // seconds after exit, 0 deploys by altitude only
	CanopySize  float64          `json:"canopySize"`  // ft²
	Weight      float64          `json:"weight"`      // kg
	ExtraWeight float64          `json:"extraWeight"` // kg, ballast or gear
	FlyingStyle core.FlyingStyle `json:"flyingStyle"`
	SuitType    string           `json:"suitType,omitempty"`
	FormationID string           `json:"formationId,omitempty"`
	SlotIndex   int              `json:"slotIndex"`
}

// Jumper is one skydiver of the load.
type Jumper struct {
	ID          uuid.UUID
	Index       int
	Params      JumperParams
	SurfaceArea float64 // m²

	live  State
	track track.Handle
}

// NewJumper validates p, fills defaults and returns the jumper.
func NewJumper(index int, p JumperParams) (*Jumper, error) {
	if p.Weight == 0 {
		p.Weight = DefaultWeight
	}
	if p.CanopySize == 0 {
		p.CanopySize = DefaultCanopySize
	}
	if p.FlyingStyle == "" {
		p.FlyingStyle = core.StyleBelly
	}
	if p.Name == "" {
		p.Name = fmt.Sprintf("jumper %d", index+1)
	}

	if !finite(p.ExitTime) || p.ExitTime < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExitTime, p.ExitTime)
	}
	if !finite(p.DeployDelay) || p.DeployDelay < 0 {
		return nil, fmt.Errorf("deploy delay must be finite and non-negative, got %v", p.DeployDelay)
	}
	if mass := p.Weight + p.ExtraWeight; !finite(mass) || mass <= 0 {
		return nil, fmt.Errorf("%w: %v kg", ErrInvalidMass, mass)
	}
	if !finite(p.CanopySize) || p.CanopySize < 0 {
		return nil, fmt.Errorf("%w: %v ft²", ErrInvalidCanopy, p.CanopySize)
	}
	area, err := SurfaceArea(p.FlyingStyle)
	if err != nil {
		return nil, err
	}

	return &Jumper{
		ID:          uuid.New(),
		Index:       index,
		Params:      p,
		SurfaceArea: area,
		live:        State{Orientation: mgl64.QuatIdent()},
	}, nil
}

// Mass is body weight plus extra weight.
func (j *Jumper) Mass() float64 {
	return j.Params.Weight + j.Params.ExtraWeight
}

// CanopyArea is the canopy size in m².
func (j *Jumper) CanopyArea() float64 {
	return j.Params.CanopySize * SquareFeetToSquareMeters
}

// InFormation reports whether the jumper is assigned a formation slot.
func (j *Jumper) InFormation() bool {
	return j.Params.FormationID != ""
}

// Live returns the state at the end of the last precalculation.
func (j *Jumper) Live() State {
	return j.live
}

// SetLive overwrites the live state.
func (j *Jumper) SetLive(s State) {
	j.live = s
}

// Track is the jumper's published track.
func (j *Jumper) Track() *track.Handle {
	return &j.track
}

// DefaultJumpers builds n belly flyers leaving interval seconds apart,
// deploying 50 s after exit on 190 ft² canopies.
func DefaultJumpers(n int, interval float64) ([]*Jumper, error) {
	jumpers := make([]*Jumper, 0, n)
	for i := 0; i < n; i++ {
		j, err := NewJumper(i, JumperParams{
			ExitTime:    float64(i) * interval,
			DeployDelay: 50,
			CanopySize:  DefaultCanopySize,
			FlyingStyle: core.StyleBelly,
		})
		if err != nil {
			return nil, err
		}
		jumpers = append(jumpers, j)
	}
	return jumpers, nil
}
