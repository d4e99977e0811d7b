package services

import "sync"

// SubscriptionRegistry holds at most one live subscription per session.
type SubscriptionRegistry struct {
	mu        sync.Mutex
	bySession map[string]*Subscription
}

func NewSubscriptionRegistry() *SubscriptionRegistry {
	return &SubscriptionRegistry{bySession: make(map[string]*Subscription)}
}

// Attach makes sub the session's subscription, cancelling any previous one.
func (r *SubscriptionRegistry) Attach(sessionKey string, sub *Subscription) {
	r.mu.Lock()
	prev := r.bySession[sessionKey]
	r.bySession[sessionKey] = sub
	r.mu.Unlock()

	if prev != nil && prev != sub {
		prev.Cancel()
	}
}

// Detach forgets sub if it is still the session's current subscription.
func (r *SubscriptionRegistry) Detach(sessionKey string, sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bySession[sessionKey] == sub {
		delete(r.bySession, sessionKey)
	}
}

// CloseSession cancels the session's subscription. Used on sign-out.
func (r *SubscriptionRegistry) CloseSession(sessionKey string) bool {
	r.mu.Lock()
	sub, ok := r.bySession[sessionKey]
	delete(r.bySession, sessionKey)
	r.mu.Unlock()

	if ok {
		sub.Cancel()
	}
	return ok
}

// Close cancels every subscription.
func (r *SubscriptionRegistry) Close() {
	r.mu.Lock()
	subs := r.bySession
	r.bySession = make(map[string]*Subscription)
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

func (r *SubscriptionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bySession)
}
