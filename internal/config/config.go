package config

import (
	"os"
	"strconv"

	"focusroom/internal/session"
)

type Config struct {
	Port          string
	FocusDuration int // seconds
	BreakDuration int // seconds
	CORSOrigin    string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.FocusDuration = getenvInt("FOCUS_DURATION", session.DefaultFocusDuration)
	c.BreakDuration = getenvInt("BREAK_DURATION", session.DefaultBreakDuration)
	c.CORSOrigin = getenv("CORS_ORIGIN", "*")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
