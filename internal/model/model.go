package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&AppInfo{},
	&Run{},
	&WindLayer{},
	&Entity{},
	&TrackSample{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// AppInfo records which schema version created the database.
type AppInfo struct {
	gorm.Model
	Name          string `json:"name" gorm:"size:127"`
	SchemaVersion uint   `json:"schemaVersion"`
}

func (*AppInfo) TableName() string {
	return "app_infos"
}

////////////////////////
// RUN MODELS
////////////////////////

// Run is one precalculated jump: the load, its time grid and the weather
// it was solved in.
type Run struct {
	gorm.Model
	RunUUID      string         `json:"runId" gorm:"size:36;uniqueIndex"`
	Name         string         `json:"name" gorm:"size:200"`
	StartTime    time.Time      `json:"startTime" gorm:"index:idx_run_start"`
	EndTime      *time.Time     `json:"endTime"`
	Duration     float64        `json:"duration"` // seconds of simulated time
	Step         float64        `json:"step"`
	DropzoneName string         `json:"dropzoneName" gorm:"size:200"`
	Location     geom.Point     `json:"location"` // dropzone, WGS84
	Physics      datatypes.JSON `json:"physics"`

	WindLayers []WindLayer
	Entities   []Entity
}

func (*Run) TableName() string {
	return "runs"
}

// WindLayer is one altitude band of the run's wind field.
type WindLayer struct {
	ID             uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID          uint    `json:"runId" gorm:"index:idx_windlayer_run_id"`
	Run            Run     `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	AltitudeMeters float64 `json:"altitude"`
	DirectionDeg   float64 `json:"direction"`
	SpeedKnots     float64 `json:"speedKts"`
}

func (*WindLayer) TableName() string {
	return "wind_layers"
}

// Summary holds the phase transition times of a jumper; -1 means the
// transition never happened within the run.
type Summary struct {
	ExitTime         float64 `json:"exitTime"`
	SeparationTime   float64 `json:"separationTime"`
	TrackingTime     float64 `json:"trackingTime"`
	DeployTime       float64 `json:"deployTime"`
	LandingTime      float64 `json:"landingTime"`
	MaxVerticalSpeed float64 `json:"maxVerticalSpeed"`
}

// Entity is the aircraft or a jumper of a run.
type Entity struct {
	ID          uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID       uint           `json:"runId" gorm:"index:idx_entity_run_id"`
	Run         Run            `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	CreatedAt   time.Time      `json:"createdAt"`
	EntityUUID  string         `json:"entityId" gorm:"size:36;index:idx_entity_uuid"`
	Kind        string         `json:"kind" gorm:"size:16"`
	Name        string         `json:"name" gorm:"size:64"`
	FlyingStyle string         `json:"flyingStyle" gorm:"size:16"`
	FormationID string         `json:"formationId" gorm:"size:64"`
	SlotIndex   int            `json:"slotIndex"`
	Params      datatypes.JSON `json:"params"`

	Summary      Summary    `json:"summary" gorm:"embedded;embeddedPrefix:summary_"`
	LandingPoint geom.Point `json:"landingPoint"`                 // WGS84 with altitude
	GroundTrack  string     `json:"groundTrack" gorm:"type:text"` // WKT line string, WGS84
	SampleCount  int        `json:"sampleCount"`

	Samples []TrackSample
}

func (*Entity) TableName() string {
	return "entities"
}

// TrackSample is one sample of an entity track in the local frame.
type TrackSample struct {
	ID       uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	EntityID uint    `json:"entityId" gorm:"index:idx_tracksample_entity_time,priority:1"`
	Entity   Entity  `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EntityID;"`
	Time     float64 `json:"time" gorm:"index:idx_tracksample_entity_time,priority:2"`

	X  float64 `json:"x"`
	Y  float64 `json:"y"` // altitude
	Z  float64 `json:"z"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
	VZ float64 `json:"vz"`
	QW float64 `json:"qw"`
	QX float64 `json:"qx"`
	QY float64 `json:"qy"`
	QZ float64 `json:"qz"`
}

func (*TrackSample) TableName() string {
	return "track_samples"
}
