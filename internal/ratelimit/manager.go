package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisCooldown = 30 * time.Second

// Manager is a Governor that prefers a shared Redis window when one is
// configured and falls back to a local in-memory window whenever Redis
// misbehaves. After a Redis error the backend is benched for a cooldown
// period so a dead Redis does not add a round-trip to every admission.
type Manager struct {
	local *SlidingWindow
	redis *RedisWindow
	nowFn func() time.Time

	mu            sync.Mutex
	cooldownUntil time.Time
}

// NewManager builds a Manager. client may be nil, in which case the local
// window serves every decision.
func NewManager(capacity int, window time.Duration, client *redis.Client, prefix string) *Manager {
	m := &Manager{
		local: NewSlidingWindow(capacity, window),
		nowFn: time.Now,
	}
	if client != nil {
		m.redis = NewRedisWindow(client, prefix, capacity, window)
	}
	return m
}

// Admit implements Governor.
func (m *Manager) Admit() bool {
	if m.redis == nil || m.benched() {
		return m.local.Admit()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	admitted, err := m.redis.AdmitContext(ctx)
	if err != nil {
		m.bench(err)
		return m.local.Admit()
	}
	return admitted
}

func (m *Manager) benched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cooldownUntil.IsZero() {
		return false
	}
	if m.nowFn().Before(m.cooldownUntil) {
		return true
	}
	m.cooldownUntil = time.Time{}
	return false
}

func (m *Manager) bench(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.nowFn()
	if !m.cooldownUntil.IsZero() && now.Before(m.cooldownUntil) {
		return
	}
	m.cooldownUntil = now.Add(redisCooldown)
	log.WithError(err).Warn("governor: redis unavailable, serving admissions from local window")
}
