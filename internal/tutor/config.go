package tutor

import (
	"errors"
	"fmt"
)

var (
	// ErrMissionRequired is returned when Missions mode has no mission.
	ErrMissionRequired = errors.New("missions mode requires a mission")

	// ErrMissionNotAllowed is returned when a mission is paired with another mode.
	ErrMissionNotAllowed = errors.New("mission is only valid in missions mode")
)

// RequestConfig is the language/mode/mission bundle sent with every call.
// Construct it with NewRequestConfig so the mission rule is always enforced.
type RequestConfig struct {
	Language Language
	Mode     Mode
	Mission  *Mission
}

// NewRequestConfig validates and builds a RequestConfig.
func NewRequestConfig(lang Language, mode Mode, mission *Mission) (RequestConfig, error) {
	if lang.IsZero() {
		return RequestConfig{}, errors.New("language is required")
	}
	if !mode.Valid() {
		return RequestConfig{}, fmt.Errorf("invalid mode %q", mode)
	}
	switch {
	case mode.RequiresMission() && mission == nil:
		return RequestConfig{}, ErrMissionRequired
	case !mode.RequiresMission() && mission != nil:
		return RequestConfig{}, ErrMissionNotAllowed
	}

	cfg := RequestConfig{Language: lang, Mode: mode}
	if mission != nil {
		m := *mission
		cfg.Mission = &m
	}
	return cfg, nil
}

// Key identifies the selection set. Two configs with the same key start the
// same session.
func (c RequestConfig) Key() string {
	key := c.Language.Code + "/" + string(c.Mode)
	if c.Mission != nil {
		key += "/" + c.Mission.ID
	}
	return key
}
