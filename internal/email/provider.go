package email

import "sync"

// Provider определяет интерфейс для отправки email
type Provider interface {
	Send(email *Email) error
	Validate() error
}

// NoopProvider - для тестов и окружений без SMTP; письма только запоминаются
type NoopProvider struct {
	mu   sync.Mutex
	Sent []*Email
}

func (p *NoopProvider) Send(email *Email) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Sent = append(p.Sent, email)
	return nil
}

func (p *NoopProvider) Validate() error { return nil }

func (p *NoopProvider) SentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Sent)
}
