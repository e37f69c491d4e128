package apitypes

import (
	"fmt"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// StartRequest starts the engine. An empty Device selects the best pointer
// found by discovery.
type StartRequest struct {
	Device       string  `json:"device,omitempty"`
	ScreenWidth  float64 `json:"screenWidth"`
	ScreenHeight float64 `json:"screenHeight"`
}

type Status struct {
	Running bool   `json:"running"`
	Device  string `json:"device"`
	Output  string `json:"output"`
}

// Config mirrors the stick tuning of the engine.
type Config struct {
	Radius        float64 `json:"radius"`
	Curve         float64 `json:"curve"`
	Deadzone      float64 `json:"deadzone"`
	SnapAxis      float64 `json:"snapAxis"`
	SnapThreshold float64 `json:"snapThreshold"`
	Outer         float64 `json:"outer"`
}

// ConfigField is one named value of Config.
type ConfigField struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
}

// TrackerUpdate carries already filtered head axes in [-1, 1].
type TrackerUpdate struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

type HUD struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Throttle   float64 `json:"throttle"`
	Rudder     float64 `json:"rudder"`
	HeadYaw    float64 `json:"headYaw"`
	HeadPitch  float64 `json:"headPitch"`
	Snapped    bool    `json:"snapped"`
	InDeadzone bool    `json:"inDeadzone"`
	Running    bool    `json:"running"`
}

// Ack is the body of requests that only trigger an action.
type Ack struct{}

type InputDevice struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Phys     string `json:"phys"`
	Vid      string `json:"vid"`
	Pid      string `json:"pid"`
	Pointer  bool   `json:"pointer"`
	Keyboard bool   `json:"keyboard"`
	Score    int    `json:"score"`
}

type DevicesListResponse struct {
	Devices []InputDevice `json:"devices"`
}

// TrackerSampleSize is the size of one tracker/stream sample: raw yaw and
// pitch as little-endian float64.
const TrackerSampleSize = 16
