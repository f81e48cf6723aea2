package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "jumpsim.cfg.json"

// PhysicsConfig holds the physical constants handed to the solver.
type PhysicsConfig struct {
	Gravity               float64 `json:"gravity" mapstructure:"gravity"`
	AirDensity            float64 `json:"airDensity" mapstructure:"airDensity"`
	DragCoefficient       float64 `json:"dragCoefficient" mapstructure:"dragCoefficient"`
	TrackingAltitude      float64 `json:"trackingAltitude" mapstructure:"trackingAltitude"`
	TrackingRatio         float64 `json:"trackingRatio" mapstructure:"trackingRatio"`
	DeployAltitude        float64 `json:"deployAltitude" mapstructure:"deployAltitude"`
	CanopyDragCoefficient float64 `json:"canopyDragCoefficient" mapstructure:"canopyDragCoefficient"`
}

// RunConfig holds the time grid and parallelism of a run.
type RunConfig struct {
	Duration     float64 `json:"duration" mapstructure:"duration"`
	AircraftStep float64 `json:"aircraftStep" mapstructure:"aircraftStep"`
	JumperStep   float64 `json:"jumperStep" mapstructure:"jumperStep"`
	Parallelism  int     `json:"parallelism" mapstructure:"parallelism"`
}

// MemoryConfig holds in-memory/file export settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
	Format         string `json:"format" mapstructure:"format"` // json or msgpack
}

// SQLiteConfig holds SQLite storage settings
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"` // empty keeps the DB in memory
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"` // memory, sqlite or postgres
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
	Metrics      bool          `json:"metrics" mapstructure:"metrics"`
}

// InfluxConfig holds InfluxDB settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// URL is the server address built from protocol, host and port.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// DropzoneConfig is the geographic origin of the local frame.
type DropzoneConfig struct {
	Name      string  `json:"name" mapstructure:"name"`
	Latitude  float64 `json:"latitude" mapstructure:"latitude"`
	Longitude float64 `json:"longitude" mapstructure:"longitude"`
}

// SetDefaults registers every default value. Load calls it; tests and the
// CLI may call it on their own when no file is read.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./jumplogs")

	viper.SetDefault("physics.gravity", 9.81)
	viper.SetDefault("physics.airDensity", 1.225)
	viper.SetDefault("physics.dragCoefficient", 1.0)
	viper.SetDefault("physics.trackingAltitude", 1371.6)
	viper.SetDefault("physics.trackingRatio", 1.0)
	viper.SetDefault("physics.deployAltitude", 1066.8)
	viper.SetDefault("physics.canopyDragCoefficient", 2.5)

	viper.SetDefault("formation.diagramScale", 0.065)

	viper.SetDefault("run.duration", 400.0)
	viper.SetDefault("run.aircraftStep", 0.1)
	viper.SetDefault("run.jumperStep", 0.0)
	viper.SetDefault("run.parallelism", 4)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./runs")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.memory.format", "json")
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "jumpsim")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "jumpsim")
	viper.SetDefault("influx.bucket", "jump_runs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "jumpsim")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
	viper.SetDefault("otel.metrics", false)

	viper.SetDefault("dropzone.name", "")
	viper.SetDefault("dropzone.latitude", 0.0)
	viper.SetDefault("dropzone.longitude", 0.0)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetPhysicsConfig returns the physics section.
func GetPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		Gravity:               viper.GetFloat64("physics.gravity"),
		AirDensity:            viper.GetFloat64("physics.airDensity"),
		DragCoefficient:       viper.GetFloat64("physics.dragCoefficient"),
		TrackingAltitude:      viper.GetFloat64("physics.trackingAltitude"),
		TrackingRatio:         viper.GetFloat64("physics.trackingRatio"),
		DeployAltitude:        viper.GetFloat64("physics.deployAltitude"),
		CanopyDragCoefficient: viper.GetFloat64("physics.canopyDragCoefficient"),
	}
}

// GetRunConfig returns the run section.
func GetRunConfig() RunConfig {
	return RunConfig{
		Duration:     viper.GetFloat64("run.duration"),
		AircraftStep: viper.GetFloat64("run.aircraftStep"),
		JumperStep:   viper.GetFloat64("run.jumperStep"),
		Parallelism:  viper.GetInt("run.parallelism"),
	}
}

// GetStorageConfig returns the storage section.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
			Format:         viper.GetString("storage.memory.format"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
	}
}

// GetOTelConfig returns the otel section.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
		Metrics:      viper.GetBool("otel.metrics"),
	}
}

// GetInfluxConfig returns the influx section.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetDropzone returns the dropzone section.
func GetDropzone() DropzoneConfig {
	return DropzoneConfig{
		Name:      viper.GetString("dropzone.name"),
		Latitude:  viper.GetFloat64("dropzone.latitude"),
		Longitude: viper.GetFloat64("dropzone.longitude"),
	}
}
