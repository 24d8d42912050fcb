package pathfind

import "sync"

// ticketLock grants the lock in request order.
type ticketLock struct {
	mu      sync.Mutex
	cond    *sync.Cond
	next    uint64
	serving uint64
}

func newTicketLock() *ticketLock {
	l := &ticketLock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

func (l *ticketLock) lock() {
	l.mu.Lock()
	ticket := l.next
	l.next++
	for ticket != l.serving {
		l.cond.Wait()
	}
	l.mu.Unlock()
}

func (l *ticketLock) unlock() {
	l.mu.Lock()
	l.serving++
	l.cond.Broadcast()
	l.mu.Unlock()
}

func (l *ticketLock) held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.next != l.serving
}

// searchToken serializes every search in the process. It is always taken
// before the map lock.
var searchToken = newTicketLock()

// SearchBusy reports whether a search is running or waiting to run.
func SearchBusy() bool {
	return searchToken.held()
}
