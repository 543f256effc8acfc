package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	GraphFilePath string
	RiskCSVPath   string
	VisitDBPath   string

	SnapMaxDistanceKm    float64
	RouteTimeout         time.Duration
	CrowdWindow          time.Duration
	CrowdRefreshInterval time.Duration

	DeviationThresholdMeters float64
	HazardLookaheadNodes     int
	HazardRiskScore          float64
	AlertCooldown            time.Duration

	NightStartHour int
	NightEndHour   int
}

// Load reads configuration from the environment, with a .env file merged in
// when present. Every knob has a default so a bare environment still yields
// a runnable config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:    getenvDefault("LISTEN_ADDR", ":5000"),
		GraphFilePath: getenvDefault("GRAPH_FILE", "./data/network.graph"),
		RiskCSVPath:   getenvDefault("RISK_CSV", "./data/risk_scores.csv"),
		VisitDBPath:   getenvDefault("VISIT_DB_DIR", "./data/visits"),
	}

	var err error
	if cfg.SnapMaxDistanceKm, err = getenvFloat("SNAP_MAX_DISTANCE_KM", 2.0); err != nil {
		return nil, err
	}
	if cfg.RouteTimeout, err = getenvSeconds("ROUTE_TIMEOUT_SEC", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CrowdWindow, err = getenvSeconds("CROWD_WINDOW_SEC", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CrowdRefreshInterval, err = getenvSeconds("CROWD_REFRESH_SEC", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.DeviationThresholdMeters, err = getenvFloat("DEVIATION_THRESHOLD_M", 50.0); err != nil {
		return nil, err
	}
	if cfg.HazardLookaheadNodes, err = getenvInt("HAZARD_LOOKAHEAD_NODES", 5); err != nil {
		return nil, err
	}
	if cfg.HazardRiskScore, err = getenvFloat("HAZARD_RISK_SCORE", 7.0); err != nil {
		return nil, err
	}
	if cfg.AlertCooldown, err = getenvSeconds("ALERT_COOLDOWN_SEC", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.NightStartHour, err = getenvInt("NIGHT_START_HOUR", 23); err != nil {
		return nil, err
	}
	if cfg.NightEndHour, err = getenvInt("NIGHT_END_HOUR", 4); err != nil {
		return nil, err
	}
	if cfg.NightStartHour < 0 || cfg.NightStartHour > 23 || cfg.NightEndHour < 0 || cfg.NightEndHour > 23 {
		return nil, fmt.Errorf("night hours must be in [0, 23], got start=%d end=%d",
			cfg.NightStartHour, cfg.NightEndHour)
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvFloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return f, nil
}

func getenvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return n, nil
}

func getenvSeconds(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	sec, err := strconv.Atoi(v)
	if err != nil || sec <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return time.Duration(sec) * time.Second, nil
}
