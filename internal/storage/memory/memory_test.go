package memory

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumprun/formationsim/internal/config"
	"github.com/jumprun/formationsim/pkg/core"
)

func testRun() *core.Run {
	return &core.Run{
		ID:         uuid.New(),
		Name:       "Sunset Load: 4-way",
		StartTime:  time.Date(2026, 7, 4, 19, 15, 0, 0, time.UTC),
		Duration:   300,
		Step:       0.5,
		Dropzone:   core.Dropzone{Name: "Perris", Latitude: 33.7613, Longitude: -117.2131},
		WindLayers: []core.WindLayer{{AltitudeMeters: 0, DirectionDeg: 180, SpeedKnots: 5}},
		Physics:    []byte(`{"gravity":9.81}`),
	}
}

func testTracks() []core.EntityTrack {
	samples := []core.Sample{
		{Time: 0, Position: mgl64.Vec3{0, 4000, 0}, Velocity: mgl64.Vec3{46.3, 0, 0}, Orientation: mgl64.QuatIdent()},
		{Time: 0.5, Position: mgl64.Vec3{23.15, 4000, 0}, Velocity: mgl64.Vec3{46.3, 0, 0}, Orientation: mgl64.QuatIdent()},
	}
	return []core.EntityTrack{
		{EntityID: uuid.New(), Kind: core.KindAircraft, Name: "aircraft", SlotIndex: -1, Samples: samples},
		{
			EntityID:    uuid.New(),
			Kind:        core.KindJumper,
			Name:        "jumper 1",
			FlyingStyle: core.StyleBelly,
			Params:      []byte(`{"weight":80}`),
			Samples:     samples,
			Summary:     &core.FlightSummary{ExitTime: 0, SeparationTime: 0.5, TrackingTime: -1, DeployTime: 50, LandingTime: 240},
		},
	}
}

func newBackend(t *testing.T, cfg config.MemoryConfig) (*Backend, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	b, err := New(cfg, zerolog.New(&buf))
	require.NoError(t, err)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b, &buf
}

func saveRun(t *testing.T, b *Backend) {
	t.Helper()
	require.NoError(t, b.StartRun(testRun()))
	for _, tr := range testTracks() {
		require.NoError(t, b.SaveTrack(&tr))
	}
	assert.Len(t, b.Tracks(), 2)
	require.NoError(t, b.EndRun())
}

func TestNew_Format(t *testing.T) {
	b, err := New(config.MemoryConfig{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, b.cfg.Format)

	_, err = New(config.MemoryConfig{Format: "xml"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSaveTrack_WithoutRun(t *testing.T) {
	b, _ := newBackend(t, config.MemoryConfig{OutputDir: t.TempDir()})
	tr := testTracks()[0]
	assert.ErrorIs(t, b.SaveTrack(&tr), core.ErrNoRun)
	assert.ErrorIs(t, b.EndRun(), core.ErrNoRun)
	assert.Error(t, b.StartRun(nil))
}

func TestStartRun_InvalidDropzone(t *testing.T) {
	b, _ := newBackend(t, config.MemoryConfig{OutputDir: t.TempDir()})
	run := testRun()
	run.Dropzone.Latitude = 91
	assert.Error(t, b.StartRun(run))
}

func TestStartRun_ResetsTracks(t *testing.T) {
	b, _ := newBackend(t, config.MemoryConfig{OutputDir: t.TempDir()})
	require.NoError(t, b.StartRun(testRun()))
	tr := testTracks()[0]
	require.NoError(t, b.SaveTrack(&tr))

	require.NoError(t, b.StartRun(testRun()))
	assert.Empty(t, b.Tracks())
}

func TestEndRun_ExportJSON(t *testing.T) {
	dir := t.TempDir()
	b, logs := newBackend(t, config.MemoryConfig{OutputDir: dir, Format: FormatJSON})
	saveRun(t, b)

	path := b.ExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "Sunset_Load__4-way_20260704_191500.json"), path)
	assert.Empty(t, b.Tracks())
	assert.Contains(t, logs.String(), "Run exported")

	data, err := ReadExport(path)
	require.NoError(t, err)
	assert.Equal(t, "Sunset Load: 4-way", data.Name)
	assert.JSONEq(t, `{"gravity":9.81}`, string(data.Physics))
	require.Len(t, data.Entities, 2)
	assert.Equal(t, "aircraft", data.Entities[0].Kind)
	assert.Nil(t, data.Entities[0].Summary)
	assert.Equal(t, 23.15, data.Entities[0].Samples[1][1])
	require.NotNil(t, data.Entities[1].Summary)
	assert.Equal(t, 50.0, data.Entities[1].Summary.Deploy)
	assert.Len(t, data.Entities[1].Landing, 2)
}

func TestEndRun_ExportGzipMsgpack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "runs")
	b, _ := newBackend(t, config.MemoryConfig{OutputDir: dir, Format: FormatMsgpack, CompressOutput: true})
	saveRun(t, b)

	path := b.ExportedFilePath()
	assert.Equal(t, ".gz", filepath.Ext(path))
	assert.Contains(t, path, ".msgpack.gz")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, raw[:2], "gzip magic")

	data, err := ReadExport(path)
	require.NoError(t, err)
	assert.Equal(t, 1, data.Version)
	assert.True(t, data.StartTime.Equal(testRun().StartTime))
	require.Len(t, data.Entities, 2)
	assert.Equal(t, "jumper 1", data.Entities[1].Name)
	assert.Equal(t, [11]float64{0.5, 23.15, 4000, 0, 46.3, 0, 0, 1, 0, 0, 0}, data.Entities[1].Samples[1])
}

func TestExportFileName(t *testing.T) {
	b, _ := newBackend(t, config.MemoryConfig{Format: FormatJSON})
	b.run = &core.Run{StartTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	assert.Equal(t, "run_20260102_030405.json", b.exportFileName())

	b.cfg.CompressOutput = true
	b.run.Name = "a/b c"
	assert.Equal(t, "a_b_c_20260102_030405.json.gz", b.exportFileName())
}
