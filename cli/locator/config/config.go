package config

/*
Configuration file description
*/

import (
	"os"

	log "github.com/sirupsen/logrus"

	"gopkg.in/yaml.v2"
)

type Settings struct {
	Host          string            `yaml:"host"`
	Port          string            `yaml:"port"`
	LogLevel      string            `yaml:"log_level"`
	LogFilePath   string            `yaml:"log_file_path"`
	LogMaxAgeDays int               `yaml:"log_max_age_days"`
	Redis         map[string]string `yaml:"redis"`
	DevicePrefix  string            `yaml:"device_prefix"`
	MobilePrefix  string            `yaml:"mobile_prefix"`
	MaxBatchSize  int               `yaml:"max_batch_size"`
	MaxListLimit  int               `yaml:"max_list_limit"`
	StatsCron     string            `yaml:"stats_cron"`
}

func (s *Settings) GetListenAddress() string {
	return s.Host + ":" + s.Port
}

func (s *Settings) GetLogLevel() log.Level {
	var lvl log.Level

	switch s.LogLevel {
	case "DEBUG":
		lvl = log.DebugLevel
	case "INFO":
		lvl = log.InfoLevel
	case "WARN":
		lvl = log.WarnLevel
	case "ERROR":
		lvl = log.ErrorLevel
	default:
		lvl = log.InfoLevel
	}
	return lvl
}

func New(confPath string) (Settings, error) {
	c := Settings{}
	data, err := os.ReadFile(confPath)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return c, err
	}

	if c.Port == "" {
		c.Port = "8080"
	}
	if c.DevicePrefix == "" {
		c.DevicePrefix = "device:position:"
	}
	if c.MobilePrefix == "" {
		c.MobilePrefix = "mobile:position:"
	}
	if c.StatsCron == "" {
		c.StatsCron = "@every 5m"
	}
	// "off" disables the snapshot; an empty value downstream means disabled.
	if c.StatsCron == "off" {
		c.StatsCron = ""
	}

	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 100
	}
	if c.MaxListLimit <= 0 {
		c.MaxListLimit = 1000
	}
	if c.MaxBatchSize > c.MaxListLimit {
		log.Errorf("max_batch_size (%d) cannot exceed max_list_limit (%d). Defaulting to 100 and 1000.", c.MaxBatchSize, c.MaxListLimit)
		c.MaxBatchSize = 100
		c.MaxListLimit = 1000
	}

	return c, err
}
