package job

import (
	"context"
	"log"
	"time"

	"reviso/internal/notify"
	"reviso/internal/service"
)

// ScanInterval is how often the overdue notifier runs.
const ScanInterval = 5 * time.Minute

// OverdueNotifier periodically marks overdue schedules as notified and flushes
// the notification outbox.
type OverdueNotifier struct {
	overdue     *service.OverdueService
	sender      *notify.Sender
	stopCh      chan struct{}
	runningLock chan struct{} // Used to ensure only one scan runs at a time
}

func NewOverdueNotifier(overdue *service.OverdueService, sender *notify.Sender) *OverdueNotifier {
	return &OverdueNotifier{
		overdue:     overdue,
		sender:      sender,
		stopCh:      make(chan struct{}),
		runningLock: make(chan struct{}, 1), // Buffer of 1 allows us to use it as a semaphore
	}
}

// Start begins the scan loop. Blocks until Stop is called.
func (n *OverdueNotifier) Start() {
	log.Println("Starting overdue notification job")

	ticker := time.NewTicker(ScanInterval)
	defer ticker.Stop()

	// Run once immediately
	go n.scan()

	for {
		select {
		case <-ticker.C:
			go n.scan()
		case <-n.stopCh:
			log.Println("Overdue notification job stopped")
			return
		}
	}
}

// Stop stops the scan loop.
func (n *OverdueNotifier) Stop() {
	close(n.stopCh)
}

func (n *OverdueNotifier) scan() {
	// Use non-blocking send to check if another scan is already running
	select {
	case n.runningLock <- struct{}{}:
		defer func() { <-n.runningLock }()
	default:
		log.Println("Overdue scan already running, skipping this execution")
		return
	}

	ctx := context.Background()

	notified, err := n.overdue.NotifyOverdue(ctx)
	if err != nil {
		log.Printf("Error scanning overdue schedules: %v", err)
		return
	}
	if notified > 0 {
		log.Printf("Marked %d overdue schedules for notification", notified)
	}

	if n.sender != nil {
		if _, err := n.sender.SendPending(ctx); err != nil {
			log.Printf("Error delivering pending notifications: %v", err)
		}
	}
}
