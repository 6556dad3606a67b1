package model

import "time"

// ReminderConfig defines the cadence of the health reminders.
type ReminderConfig struct {
	EatInterval   time.Duration
	DrinkInterval time.Duration
	RestInterval  time.Duration
	FocusInterval time.Duration

	// AckTimeout is how long an unacknowledged reminder stays on screen
	// before the companion returns to idle on its own.
	AckTimeout    time.Duration
	CheckInterval time.Duration
}

// ScannerConfig defines the local network scan parameters.
type ScannerConfig struct {
	Interval    time.Duration
	Network     string
	Ports       []int
	DialTimeout time.Duration
	MaxHosts    int
}

// RedditConfig defines the feed fetch parameters.
type RedditConfig struct {
	Interval       time.Duration
	Subreddits     []string
	MaxPosts       int
	PostsPerSub    int
	RequestTimeout time.Duration
	UserAgent      string
}

// InputConfig defines button sampling and the button-to-action mapping.
// Actions maps a logical button number (1-4) to a semantic action name
// understood by the coordinator.
type InputConfig struct {
	PollInterval   time.Duration
	DebounceWindow time.Duration
	Pins           map[int]int
	Actions        map[int]string
}

// PreviewConfig defines the desktop preview window, which stands in for
// the device framebuffer when running off-device.
type PreviewConfig struct {
	Width     int
	Height    int
	FrameRate int
}

// Config aggregates all runtime settings for the companion.
type Config struct {
	Reminder ReminderConfig
	Scanner  ScannerConfig
	Reddit   RedditConfig
	Input    InputConfig
	Preview  PreviewConfig

	ShutdownGrace time.Duration
	LogLevel      string
}

// DefaultConfig returns the built-in defaults, matching the intervals the
// device ships with.
func DefaultConfig() Config {
	return Config{
		Reminder: ReminderConfig{
			EatInterval:   180 * time.Minute,
			DrinkInterval: 60 * time.Minute,
			RestInterval:  90 * time.Minute,
			FocusInterval: 25 * time.Minute,
			AckTimeout:    5 * time.Minute,
			CheckInterval: 10 * time.Second,
		},
		Scanner: ScannerConfig{
			Interval:    time.Hour,
			Network:     "192.168.1.0/24",
			Ports:       []int{22, 80, 443, 445, 3306, 3389},
			DialTimeout: 500 * time.Millisecond,
			MaxHosts:    10,
		},
		Reddit: RedditConfig{
			Interval:       30 * time.Minute,
			Subreddits:     []string{"ProgrammerHumor", "sysadmin", "devops", "linuxmemes"},
			MaxPosts:       10,
			PostsPerSub:    5,
			RequestTimeout: 10 * time.Second,
			UserAgent:      "CyfoxBot/1.0 (by /u/cyfox)",
		},
		Input: InputConfig{
			PollInterval:   10 * time.Millisecond,
			DebounceWindow: 50 * time.Millisecond,
			Pins:           map[int]int{1: 5, 2: 6, 3: 13, 4: 19},
			Actions: map[int]string{
				1: "acknowledge",
				2: "next_item",
				3: "start_scan",
				4: "cycle_mode",
			},
		},
		Preview: PreviewConfig{
			Width:     320,
			Height:    240,
			FrameRate: 10,
		},
		ShutdownGrace: 5 * time.Second,
	}
}
