package host

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/francis-clairicia/stepper/core"
)

// SerialConfig describes the link to the motion MCU.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// MotorConfig describes one step-stick driven motor.
type MotorConfig struct {
	StepPin   int `yaml:"step_pin"`
	DirPin    int `yaml:"dir_pin"`
	EnablePin int `yaml:"enable_pin"`
	MS1Pin    int `yaml:"ms1_pin"`
	MS2Pin    int `yaml:"ms2_pin"`
	MS3Pin    int `yaml:"ms3_pin"`

	// Microsteps per full step: 1, 2, 4, 8, 16 or 256 depending on the
	// driver board.
	StepMode uint16 `yaml:"step_mode"`

	// MaxVelocity is the speed limit in steps per second.
	MaxVelocity int32 `yaml:"max_velocity"`
}

// Config is the machine configuration loaded from YAML.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Motor  MotorConfig  `yaml:"motor"`
}

// LoadConfig reads and parses a YAML configuration file, filling in
// defaults for anything left out.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("host: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration data.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("host: parse config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in missing configuration values.
func applyDefaults(cfg *Config) {
	if cfg.Serial.Device == "" {
		cfg.Serial.Device = "/dev/ttyACM0"
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 115200
	}
	if cfg.Motor.StepMode == 0 {
		cfg.Motor.StepMode = uint16(core.StepModeFull)
	}
	if cfg.Motor.MaxVelocity == 0 {
		cfg.Motor.MaxVelocity = 1000
	}
}

func validate(cfg *Config) error {
	switch core.StepMode(cfg.Motor.StepMode) {
	case core.StepModeFull, core.StepModeHalf, core.StepModeQuarter,
		core.StepModeEighth, core.StepModeSixteenth, core.StepMode32,
		core.StepMode64, core.StepMode128, core.StepMode256:
	default:
		return fmt.Errorf("host: unsupported step_mode %d", cfg.Motor.StepMode)
	}
	if cfg.Motor.MaxVelocity < 0 {
		return fmt.Errorf("host: max_velocity %d is negative", cfg.Motor.MaxVelocity)
	}
	return nil
}
