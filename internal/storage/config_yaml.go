// Package storage loads the companion configuration from YAML. The file is
// read once at startup; the core never reloads it mid-process.
package storage

import (
	"errors"
	"fmt"
	"os"
	"time"

	"cyfox/internal/core/model"

	"gopkg.in/yaml.v3"
)

type yamlConfig struct {
	LogLevel             string `yaml:"log_level"`
	ShutdownGraceSeconds int    `yaml:"shutdown_grace_seconds"`

	Reminders struct {
		EatInterval          int `yaml:"eat_interval"`
		DrinkInterval        int `yaml:"drink_interval"`
		RestInterval         int `yaml:"rest_interval"`
		FocusInterval        int `yaml:"focus_interval"`
		AckTimeoutMinutes    int `yaml:"ack_timeout_minutes"`
		CheckIntervalSeconds int `yaml:"check_interval_seconds"`
	} `yaml:"reminders"`

	Scanner struct {
		ScanInterval  int    `yaml:"scan_interval"`
		NetworkRange  string `yaml:"network_range"`
		Ports         []int  `yaml:"ports"`
		DialTimeoutMS int    `yaml:"dial_timeout_ms"`
		MaxHosts      int    `yaml:"max_hosts"`
	} `yaml:"scanner"`

	Reddit struct {
		FetchInterval int      `yaml:"fetch_interval"`
		Subreddits    []string `yaml:"subreddits"`
		MaxPosts      int      `yaml:"max_posts"`
		PostsPerSub   int      `yaml:"posts_per_sub"`
		UserAgent     string   `yaml:"user_agent"`
	} `yaml:"reddit"`

	Buttons struct {
		PollIntervalMS int            `yaml:"poll_interval_ms"`
		DebounceMS     int            `yaml:"debounce_ms"`
		Pins           map[int]int    `yaml:"pins"`
		Actions        map[int]string `yaml:"actions"`
	} `yaml:"buttons"`

	Preview struct {
		Width     int `yaml:"width"`
		Height    int `yaml:"height"`
		FrameRate int `yaml:"frame_rate"`
	} `yaml:"preview"`
}

// LoadConfig reads the configuration file at path. A missing file yields
// the built-in defaults; a malformed file is an error.
func LoadConfig(path string) (model.Config, error) {
	config := model.DefaultConfig()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("read config file: %w", err)
	}

	var fileData yamlConfig
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return config, fmt.Errorf("parse config yaml: %w", err)
	}

	applyYamlConfig(&config, fileData)
	return config, nil
}

func applyYamlConfig(config *model.Config, fileData yamlConfig) {
	if fileData.LogLevel != "" {
		config.LogLevel = fileData.LogLevel
	}
	if fileData.ShutdownGraceSeconds > 0 {
		config.ShutdownGrace = time.Duration(fileData.ShutdownGraceSeconds) * time.Second
	}

	reminders := fileData.Reminders
	if reminders.EatInterval > 0 {
		config.Reminder.EatInterval = time.Duration(reminders.EatInterval) * time.Minute
	}
	if reminders.DrinkInterval > 0 {
		config.Reminder.DrinkInterval = time.Duration(reminders.DrinkInterval) * time.Minute
	}
	if reminders.RestInterval > 0 {
		config.Reminder.RestInterval = time.Duration(reminders.RestInterval) * time.Minute
	}
	if reminders.FocusInterval > 0 {
		config.Reminder.FocusInterval = time.Duration(reminders.FocusInterval) * time.Minute
	}
	if reminders.AckTimeoutMinutes > 0 {
		config.Reminder.AckTimeout = time.Duration(reminders.AckTimeoutMinutes) * time.Minute
	}
	if reminders.CheckIntervalSeconds > 0 {
		config.Reminder.CheckInterval = time.Duration(reminders.CheckIntervalSeconds) * time.Second
	}

	scanner := fileData.Scanner
	if scanner.ScanInterval > 0 {
		config.Scanner.Interval = time.Duration(scanner.ScanInterval) * time.Second
	}
	if scanner.NetworkRange != "" {
		config.Scanner.Network = scanner.NetworkRange
	}
	if len(scanner.Ports) > 0 {
		config.Scanner.Ports = scanner.Ports
	}
	if scanner.DialTimeoutMS > 0 {
		config.Scanner.DialTimeout = time.Duration(scanner.DialTimeoutMS) * time.Millisecond
	}
	if scanner.MaxHosts > 0 {
		config.Scanner.MaxHosts = scanner.MaxHosts
	}

	reddit := fileData.Reddit
	if reddit.FetchInterval > 0 {
		config.Reddit.Interval = time.Duration(reddit.FetchInterval) * time.Second
	}
	if len(reddit.Subreddits) > 0 {
		config.Reddit.Subreddits = reddit.Subreddits
	}
	if reddit.MaxPosts > 0 {
		config.Reddit.MaxPosts = reddit.MaxPosts
	}
	if reddit.PostsPerSub > 0 {
		config.Reddit.PostsPerSub = reddit.PostsPerSub
	}
	if reddit.UserAgent != "" {
		config.Reddit.UserAgent = reddit.UserAgent
	}

	buttons := fileData.Buttons
	if buttons.PollIntervalMS > 0 {
		config.Input.PollInterval = time.Duration(buttons.PollIntervalMS) * time.Millisecond
	}
	if buttons.DebounceMS > 0 {
		config.Input.DebounceWindow = time.Duration(buttons.DebounceMS) * time.Millisecond
	}
	if len(buttons.Pins) > 0 {
		config.Input.Pins = buttons.Pins
	}
	if len(buttons.Actions) > 0 {
		config.Input.Actions = buttons.Actions
	}

	preview := fileData.Preview
	if preview.Width > 0 {
		config.Preview.Width = preview.Width
	}
	if preview.Height > 0 {
		config.Preview.Height = preview.Height
	}
	if preview.FrameRate > 0 {
		config.Preview.FrameRate = preview.FrameRate
	}
}
