package poller

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"inventario/internal/domain/count"
)

// Notification tells operators a count was finalized elsewhere.
type Notification struct {
	ID      string       `json:"id"`
	Message string       `json:"message"`
	Record  count.Record `json:"record"`
	At      time.Time    `json:"at"`
}

// Notifier turns newly finalized counts into at-most-once notifications.
//
// The first observation after startup seeds the seen set silently, so a
// dashboard opened mid-cycle is not flooded with history. While the status
// page is not visible, new finalizations are recorded but never queued;
// they will not fire retroactively when the operator navigates back.
type Notifier struct {
	mu      sync.Mutex
	seen    map[string]bool
	seeded  bool
	visible bool
	pending []Notification
}

// NewNotifier creates a Notifier. Visibility starts true.
func NewNotifier() *Notifier {
	return &Notifier{seen: make(map[string]bool), visible: true}
}

// SetVisible records whether the status page is currently shown.
func (n *Notifier) SetVisible(visible bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visible = visible
}

// Observe folds one poll's records into the seen set and queues
// notifications for finalizations that are both new and visible.
func (n *Notifier) Observe(records []count.Record) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, r := range records {
		if r.Estado != count.EstadoFinalizado {
			continue
		}
		key := r.Identity.String()
		if n.seen[key] {
			continue
		}
		n.seen[key] = true

		if !n.seeded || !n.visible {
			continue
		}
		n.pending = append(n.pending, Notification{
			ID:      uuid.New().String(),
			Message: fmt.Sprintf("Conteo finalizado: %s", key),
			Record:  r,
			At:      time.Now(),
		})
	}
	n.seeded = true
}

// Drain returns and clears the queued notifications.
func (n *Notifier) Drain() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := n.pending
	n.pending = nil
	return out
}

// Reset clears the seen set, for a new cycle.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = make(map[string]bool)
	n.pending = nil
	n.seeded = false
}
