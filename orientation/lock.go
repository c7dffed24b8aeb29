package orientation

import (
	"fmt"
	"sync"

	"github.com/carekiosk/kiosk/log"
)

// Policy is an orientation lock setting.
type Policy int

const (
	Unlocked Policy = iota
	LockPortrait
	LockLandscape
)

func (p Policy) String() string {
	switch p {
	case Unlocked:
		return "unlocked"
	case LockPortrait:
		return "portrait"
	case LockLandscape:
		return "landscape"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Lock is the platform's orientation lock.
type Lock interface {
	Policy() (Policy, error)
	Set(Policy) error
}

// MemoryLock is a Lock for platforms without a hardware orientation lock, such as a terminal.
type MemoryLock struct {
	mu     sync.Mutex
	policy Policy
}

func (m *MemoryLock) Policy() (Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy, nil
}

func (m *MemoryLock) Set(p Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policy = p
	return nil
}

// Guard holds the platform lock for one mounted player and restores the captured policy on Release.
type Guard struct {
	lock     Lock
	original Policy
	once     sync.Once
	released bool
	mu       sync.Mutex
}

// Acquire captures the current policy of lock.
func Acquire(lock Lock) (*Guard, error) {
	original, err := lock.Policy()
	if err != nil {
		return nil, fmt.Errorf("read orientation policy: %w", err)
	}
	return &Guard{lock: lock, original: original}, nil
}

// Original returns the policy captured on acquisition.
func (g *Guard) Original() Policy {
	return g.original
}

// Set changes the policy while the guard is held. It is a no-op after Release.
func (g *Guard) Set(p Policy) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return nil
	}
	return g.lock.Set(p)
}

// Release restores the captured policy. It is safe to call on every exit path; only the first call acts.
// A failed restore is logged and not retried.
func (g *Guard) Release() {
	g.once.Do(func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.released = true
		if err := g.lock.Set(g.original); err != nil {
			log.Errorf("restore orientation policy %s: %v", g.original, err)
		}
	})
}
