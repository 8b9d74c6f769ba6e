// Package session holds the dashboard's last-known display values.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vietddude/autodash/internal/core/domain"
)

// Key names a session slot.
type Key string

const (
	KeyBTCPrice      Key = "btc_price"
	KeyETHPrice      Key = "eth_price"
	KeyWeatherReport Key = "weather_report"
	KeyWebsiteStatus Key = "website_status"
	KeyMachineReport Key = "machine_report"
)

// Keys lists every slot.
var Keys = []Key{KeyBTCPrice, KeyETHPrice, KeyWeatherReport, KeyWebsiteStatus, KeyMachineReport}

// ErrUnknownKey is returned when setting a slot outside Keys.
var ErrUnknownKey = errors.New("unknown session key")

// State is the explicit state container owned by the presentation layer.
type State struct {
	BTCPrice      string    `json:"btc_price"`
	ETHPrice      string    `json:"eth_price"`
	WeatherReport string    `json:"weather_report"`
	WebsiteStatus string    `json:"website_status"`
	MachineReport string    `json:"machine_report"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewState returns a state filled with placeholders.
func NewState() State {
	return State{
		BTCPrice:      "N/A",
		ETHPrice:      "N/A",
		WeatherReport: "No weather fetched yet.",
		WebsiteStatus: "No website checked yet.",
		MachineReport: "Click 'Refresh Machine Report' to view.",
	}
}

// Get returns the slot value for k.
func (s State) Get(k Key) (string, bool) {
	switch k {
	case KeyBTCPrice:
		return s.BTCPrice, true
	case KeyETHPrice:
		return s.ETHPrice, true
	case KeyWeatherReport:
		return s.WeatherReport, true
	case KeyWebsiteStatus:
		return s.WebsiteStatus, true
	case KeyMachineReport:
		return s.MachineReport, true
	}
	return "", false
}

// Set overwrites the slot value for k in place.
func (s *State) Set(k Key, v string) error {
	switch k {
	case KeyBTCPrice:
		s.BTCPrice = v
	case KeyETHPrice:
		s.ETHPrice = v
	case KeyWeatherReport:
		s.WeatherReport = v
	case KeyWebsiteStatus:
		s.WebsiteStatus = v
	case KeyMachineReport:
		s.MachineReport = v
	default:
		return ErrUnknownKey
	}
	return nil
}

// KeyFor maps an action to the slot its handler owns, if any.
func KeyFor(action domain.ActionName) (Key, bool) {
	switch action {
	case domain.ActionBTCPrice:
		return KeyBTCPrice, true
	case domain.ActionETHPrice:
		return KeyETHPrice, true
	case domain.ActionWeather:
		return KeyWeatherReport, true
	case domain.ActionUptime:
		return KeyWebsiteStatus, true
	case domain.ActionMachineReport:
		return KeyMachineReport, true
	}
	return "", false
}

// Store persists State between process restarts.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}

// MemoryStore keeps the state in process.
type MemoryStore struct {
	mu    sync.RWMutex
	state State
}

// NewMemoryStore creates a store seeded with placeholders.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: NewState()}
}

func (m *MemoryStore) Load(ctx context.Context) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, nil
}

func (m *MemoryStore) Save(ctx context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	return nil
}
