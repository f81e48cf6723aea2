// pkg/core/entity.go
package core

// EntityKind tells aircraft and jumpers apart in stored runs
type EntityKind string

const (
	KindAircraft EntityKind = "aircraft"
	KindJumper   EntityKind = "jumper"
)

// FlyingStyle is the body position a jumper holds in freefall.
type FlyingStyle string

const (
	StyleBelly    FlyingStyle = "belly"
	StyleFreefly  FlyingStyle = "freefly"
	StyleHeadDown FlyingStyle = "headdown"
	StyleSitFly   FlyingStyle = "sitfly"
	StyleTracking FlyingStyle = "tracking"
	StyleWingsuit FlyingStyle = "wingsuit"
)
