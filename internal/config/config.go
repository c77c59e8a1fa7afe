package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "airsim.cfg.json"

// SimConfig holds the tick loop and unit defaults.
type SimConfig struct {
	TicksPerSecond       int     `json:"ticksPerSecond" mapstructure:"ticksPerSecond"`
	PoolCacheTicks       int     `json:"poolCacheTicks" mapstructure:"poolCacheTicks"`
	ScanIntervalTicks    int     `json:"scanIntervalTicks" mapstructure:"scanIntervalTicks"`
	HaulIntervalTicks    int     `json:"haulIntervalTicks" mapstructure:"haulIntervalTicks"`
	MaxTicks             int     `json:"maxTicks" mapstructure:"maxTicks"`
	LowResourceThreshold int     `json:"lowResourceThreshold" mapstructure:"lowResourceThreshold"`
	Seed                 uint64  `json:"seed" mapstructure:"seed"`
	RopeExtendSpeed      float64 `json:"ropeExtendSpeed" mapstructure:"ropeExtendSpeed"`
	RopeDescentSeconds   float64 `json:"ropeDescentSeconds" mapstructure:"ropeDescentSeconds"`
	PreEntryAllowance    float64 `json:"preEntryAllowance" mapstructure:"preEntryAllowance"`
	AltitudeOffset       float64 `json:"altitudeOffset" mapstructure:"altitudeOffset"`
	HoverAltitude        float64 `json:"hoverAltitude" mapstructure:"hoverAltitude"`
	DefaultAmmo          int     `json:"defaultAmmo" mapstructure:"defaultAmmo"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir       string  `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput  bool    `json:"compressOutput" mapstructure:"compressOutput"`
	OriginLongitude float64 `json:"originLongitude" mapstructure:"originLongitude"`
	OriginLatitude  float64 `json:"originLatitude" mapstructure:"originLatitude"`
}

// SQLiteConfig holds the in-memory SQLite backend settings.
type SQLiteConfig struct {
	OutputDir    string        `json:"outputDir" mapstructure:"outputDir"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// WebSocketConfig holds the streaming backend settings.
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
	// SnapshotInterval is how many ticks pass between snapshots.
	SnapshotInterval int `json:"snapshotInterval" mapstructure:"snapshotInterval"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// GraylogConfig holds the GELF sink settings.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// UploadConfig holds the run viewer upload settings.
type UploadConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	ServerURL string `json:"serverUrl" mapstructure:"serverUrl"`
	APIKey    string `json:"apiKey" mapstructure:"apiKey"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./simlogs")

	viper.SetDefault("sim.ticksPerSecond", 60)
	viper.SetDefault("sim.poolCacheTicks", 60)
	viper.SetDefault("sim.scanIntervalTicks", 15)
	viper.SetDefault("sim.haulIntervalTicks", 60)
	viper.SetDefault("sim.maxTicks", 3600)
	viper.SetDefault("sim.lowResourceThreshold", 50)
	viper.SetDefault("sim.seed", 1)

	viper.SetDefault("rope.extendSpeed", 0.1)
	viper.SetDefault("rope.descentSeconds", 1.0)
	viper.SetDefault("flight.preEntryAllowance", 10.0)
	viper.SetDefault("flight.altitudeOffset", 15.0)
	viper.SetDefault("hover.altitude", 5.0)
	viper.SetDefault("ammo.default", 500)

	viper.SetDefault("scenario.file", "scenario.yaml")
	viper.SetDefault("statusFile", "")
	viper.SetDefault("resume", false)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.snapshotInterval", 600)
	viper.SetDefault("storage.memory.outputDir", "./runs")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.memory.originLongitude", 0.0)
	viper.SetDefault("storage.memory.originLatitude", 0.0)
	viper.SetDefault("storage.sqlite.outputDir", "./runs")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.websocket.url", "ws://localhost:5000/ws")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "airsim")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "airsim-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("upload.enabled", false)
	viper.SetDefault("upload.serverUrl", "http://localhost:5000")
	viper.SetDefault("upload.apiKey", "")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "airsim")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// LoadDefaults installs the defaults without reading a file.
func LoadDefaults() {
	setDefaults()
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

func GetSimConfig() SimConfig {
	return SimConfig{
		TicksPerSecond:       viper.GetInt("sim.ticksPerSecond"),
		PoolCacheTicks:       viper.GetInt("sim.poolCacheTicks"),
		ScanIntervalTicks:    viper.GetInt("sim.scanIntervalTicks"),
		HaulIntervalTicks:    viper.GetInt("sim.haulIntervalTicks"),
		MaxTicks:             viper.GetInt("sim.maxTicks"),
		LowResourceThreshold: viper.GetInt("sim.lowResourceThreshold"),
		Seed:                 viper.GetUint64("sim.seed"),
		RopeExtendSpeed:      viper.GetFloat64("rope.extendSpeed"),
		RopeDescentSeconds:   viper.GetFloat64("rope.descentSeconds"),
		PreEntryAllowance:    viper.GetFloat64("flight.preEntryAllowance"),
		AltitudeOffset:       viper.GetFloat64("flight.altitudeOffset"),
		HoverAltitude:        viper.GetFloat64("hover.altitude"),
		DefaultAmmo:          viper.GetInt("ammo.default"),
	}
}

func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:       viper.GetString("storage.memory.outputDir"),
			CompressOutput:  viper.GetBool("storage.memory.compressOutput"),
			OriginLongitude: viper.GetFloat64("storage.memory.originLongitude"),
			OriginLatitude:  viper.GetFloat64("storage.memory.originLatitude"),
		},
		SQLite: SQLiteConfig{
			OutputDir:    viper.GetString("storage.sqlite.outputDir"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
		SnapshotInterval: viper.GetInt("storage.snapshotInterval"),
	}
}

func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetUploadConfig returns the run viewer upload settings.
func GetUploadConfig() UploadConfig {
	return UploadConfig{
		Enabled:   viper.GetBool("upload.enabled"),
		ServerURL: viper.GetString("upload.serverUrl"),
		APIKey:    viper.GetString("upload.apiKey"),
	}
}
