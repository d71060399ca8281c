package location

import (
	"math/rand"
	"sync"
	"time"
)

// walkStepDegrees bounds each simulated movement step, roughly 50m per tick.
const walkStepDegrees = 0.001

// RandomWalkProvider produces a plausible wandering position for simulated
// devices, starting from a configured origin.
type RandomWalkProvider struct {
	mu  sync.Mutex
	lat float64
	lng float64
	rng *rand.Rand
}

// NewRandomWalkProvider creates a provider that walks from the given origin.
func NewRandomWalkProvider(startLat, startLng float64) *RandomWalkProvider {
	return &RandomWalkProvider{
		lat: startLat,
		lng: startLng,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetLocation advances the walk one step and returns the new position.
func (p *RandomWalkProvider) GetLocation() (Location, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lat += (p.rng.Float64() - 0.5) * walkStepDegrees
	p.lng += (p.rng.Float64() - 0.5) * walkStepDegrees

	return Location{Latitude: p.lat, Longitude: p.lng}, nil
}
