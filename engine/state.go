package engine

import (
	"sync"

	"github.com/Alia5/flightstick/physics"
)

// Telemetry is the state of the last computed frame.
type Telemetry struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Throttle   float64 `json:"throttle"`
	Rudder     float64 `json:"rudder"`
	Snapped    bool    `json:"snapped"`
	InDeadzone bool    `json:"inDeadzone"`
}

// sharedState is the only data shared between the worker and the control
// plane. Every access is a short critical section; nothing holds the lock
// across I/O.
type sharedState struct {
	mu sync.RWMutex

	config    physics.Config
	telemetry Telemetry
	headYaw   float64
	headPitch float64

	recenterReq bool
	exitReq     bool
}

func newSharedState() *sharedState {
	return &sharedState{config: physics.DefaultConfig()}
}

// snapshot returns the config and head axes as read together.
func (s *sharedState) snapshot() (physics.Config, float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, s.headYaw, s.headPitch
}

// consumeRequests returns the pending one-shot requests and clears them.
func (s *sharedState) consumeRequests() (recenter, exit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recenter, exit = s.recenterReq, s.exitReq
	s.recenterReq, s.exitReq = false, false
	return recenter, exit
}

// tryPublish stores t unless the lock is contended. It never blocks.
func (s *sharedState) tryPublish(t Telemetry) bool {
	if !s.mu.TryLock() {
		return false
	}
	s.telemetry = t
	s.mu.Unlock()
	return true
}

func (s *sharedState) setConfig(c physics.Config) {
	s.mu.Lock()
	s.config = c
	s.mu.Unlock()
}

func (s *sharedState) getConfig() physics.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *sharedState) setHead(yaw, pitch float64) {
	s.mu.Lock()
	s.headYaw, s.headPitch = yaw, pitch
	s.mu.Unlock()
}

func (s *sharedState) requestRecenter() {
	s.mu.Lock()
	s.recenterReq = true
	s.mu.Unlock()
}

func (s *sharedState) requestExit() {
	s.mu.Lock()
	s.exitReq = true
	s.mu.Unlock()
}

func (s *sharedState) read() (Telemetry, float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.telemetry, s.headYaw, s.headPitch
}
