package server

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"uno/game"
)

const (
	codeAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength      = 4
	maxCodeAttempts = 64
)

var ErrCodeSpaceExhausted = errors.New("could not allocate a free game code")

// MatchHolder owns every match of this process, keyed by its join code.
type MatchHolder struct {
	sync.RWMutex
	matches   map[string]*game.Match
	rules     game.Rules
	publisher game.Publisher
	rand      *rand.Rand
	stats     *Stats
	logger    *Logger
}

func NewMatchHolder(rules game.Rules, publisher game.Publisher, stats *Stats, logger *Logger) *MatchHolder {
	return &MatchHolder{
		matches:   make(map[string]*game.Match),
		rules:     rules,
		publisher: publisher,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		stats:     stats,
		logger:    logger,
	}
}

// Create registers a lobby hosted by host under a fresh code and announces it. admit runs
// under the match lock before the announcement.
func (r *MatchHolder) Create(host game.PlayerInfo, admit func()) (*game.Match, error) {
	r.Lock()
	code, err := r.generateCode()
	if err != nil {
		r.Unlock()
		return nil, err
	}
	m := game.NewMatch(code, host, r.rules, r.publisher, rand.New(rand.NewSource(r.rand.Int63())))
	r.matches[code] = m
	r.Unlock()

	m.Open(admit)

	r.stats.IncrMatchCreated()
	r.logger.Infow("Match was created", "code", code, "host", host.ID)
	return m, nil
}

// Get looks a match up by code, ignoring case and surrounding spaces.
func (r *MatchHolder) Get(code string) (*game.Match, error) {
	r.RLock()
	m, ok := r.matches[normalizeCode(code)]
	r.RUnlock()
	if !ok {
		return nil, game.ErrMatchNotFound
	}
	return m, nil
}

func (r *MatchHolder) Count() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.matches)
}

func (r *MatchHolder) Remove(code string) {
	r.Lock()
	delete(r.matches, normalizeCode(code))
	r.Unlock()
}

// Sweep removes matches that finished more than ttl before now and returns how many went.
func (r *MatchHolder) Sweep(now time.Time, ttl time.Duration) int {
	r.RLock()
	matches := make([]*game.Match, 0, len(r.matches))
	for _, m := range r.matches {
		matches = append(matches, m)
	}
	r.RUnlock()

	expired := make([]string, 0)
	for _, m := range matches {
		finishedAt := m.FinishedAt()
		if !finishedAt.IsZero() && now.Sub(finishedAt) >= ttl {
			expired = append(expired, m.Code())
		}
	}

	r.Lock()
	for _, code := range expired {
		delete(r.matches, code)
	}
	r.Unlock()
	return len(expired)
}

// RunSweeper sweeps every interval until ctx is done. A negative ttl disables it.
func (r *MatchHolder) RunSweeper(ctx context.Context, interval time.Duration, ttl time.Duration) error {
	if ttl < 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := r.Sweep(now, ttl); n > 0 {
				r.logger.Infow("Finished matches were evicted", "count", n, "remaining", r.Count())
			}
		}
	}
}

// generateCode must be called with the write lock held.
func (r *MatchHolder) generateCode() (string, error) {
	buf := make([]byte, codeLength)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		for i := range buf {
			buf[i] = codeAlphabet[r.rand.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		if _, taken := r.matches[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
