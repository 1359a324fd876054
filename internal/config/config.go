package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	LogLevel      string
	ProjectID     string // enables the Firestore archive when set
	RedisAddr     string // enables the Redis event stream when set
	DemoUserID    string
	OTPDelay      time.Duration
	SlotWindow    time.Duration
	CountdownTick time.Duration
	SinkTimeout   time.Duration
	MockSeed      uint64
	Location      *time.Location
}

func New() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      os.Getenv("LOGLEVEL"),
		ProjectID:     os.Getenv("PROJECTID"),
		RedisAddr:     os.Getenv("REDISADDR"),
		DemoUserID:    getEnv("DEMOUSERID", "user1"),
		OTPDelay:      getDuration("OTPDELAY", 1500*time.Millisecond),
		SlotWindow:    getDuration("SLOTWINDOW", 4*time.Hour),
		CountdownTick: getDuration("COUNTDOWNTICK", time.Second),
		SinkTimeout:   getDuration("SINKTIMEOUT", 2*time.Second),
		MockSeed:      getUint("MOCKSEED", 0),
		Location:      getLocation(os.Getenv("TIMEZONE")),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getDuration accepts Go duration strings ("1500ms") or bare milliseconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func getUint(key string, fallback uint64) uint64 {
	n, err := strconv.ParseUint(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}
