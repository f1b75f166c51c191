package config

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Goals     GoalsConfig     `mapstructure:"goals" validate:"required"`
	Backup    BackupConfig    `mapstructure:"backup"`
}

// ServerConfig contains the local API and logging settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`
}

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// StorageConfig selects the key-value backend. Path is a directory for the
// file driver and a database file for the sqlite driver.
type StorageConfig struct {
	Driver      string `mapstructure:"driver" validate:"required,oneof=file sqlite postgres memory"`
	Path        string `mapstructure:"path" validate:"required_if=Driver file,required_if=Driver sqlite"`
	DatabaseURL string `mapstructure:"database_url" validate:"required_if=Driver postgres"`
}

// SchedulerConfig selects the review scheduling strategy.
type SchedulerConfig struct {
	Strategy string `mapstructure:"strategy" validate:"required,oneof=sm2 mastery"`
}

// GoalsConfig holds the daily goal targets applied to fresh progress data.
type GoalsConfig struct {
	Cards   int `mapstructure:"cards" validate:"gt=0"`
	Minutes int `mapstructure:"minutes" validate:"gt=0"`
	XP      int `mapstructure:"xp" validate:"gt=0"`
}

// BackupConfig enables automatic snapshots after each recorded session. An
// empty Dir disables them.
type BackupConfig struct {
	Dir     string `mapstructure:"dir"`
	Keep    int    `mapstructure:"keep" validate:"gte=0"`
	Workers int    `mapstructure:"workers" validate:"gte=0,lte=8"`
}
