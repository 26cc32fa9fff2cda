package dummymail

import (
	"sync"

	"github.com/chuodev/karo/core"
)

// Service records rendered messages instead of sending them. Tests
// inspect SentMessages to assert on receipts.
type Service struct {
	mu           sync.Mutex
	SentMessages []core.EmailMessage
}

var _ core.EmailService = (*Service)(nil)

func NewService() *Service {
	return &Service{SentMessages: make([]core.EmailMessage, 0)}
}

func (svc *Service) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, msg := range messages {
		if err := msg.Render(); err != nil {
			continue
		}
		if msg.HasRecipients() && msg.HasContent() {
			svc.SentMessages = append(svc.SentMessages, *msg)
		}
	}
}

func (svc *Service) Sent() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]core.EmailMessage, len(svc.SentMessages))
	copy(out, svc.SentMessages)
	return out
}

func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.SentMessages = svc.SentMessages[:0]
}
