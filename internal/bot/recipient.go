package bot

import "sync"

// Recipient records the single chat that receives reminder notifications.
// It is set when a user sends /start and read by the notifier on every
// cycle; a Get before any Set reports absence rather than an error.
type Recipient struct {
	mu     sync.Mutex
	chatID int64
	set    bool
}

func NewRecipient() *Recipient {
	return &Recipient{}
}

// Set records the notification chat. Later calls overwrite the value.
func (r *Recipient) Set(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chatID = chatID
	r.set = true
}

// Get returns the recorded chat ID, and whether one has been recorded.
func (r *Recipient) Get() (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chatID, r.set
}
