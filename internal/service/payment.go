package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"greek-irini/internal/domain"
)

const (
	DefaultPaymentSuccessRate = 0.9
	DefaultPaymentDelay       = 2 * time.Second
)

// RandomPaymentSimulator stands in for a payment gateway. Cash is never
// charged; other methods succeed with SuccessRate after Delay.
type RandomPaymentSimulator struct {
	SuccessRate float64
	Delay       time.Duration

	mu   sync.Mutex
	rand *rand.Rand
	now  func() time.Time
}

func NewRandomPaymentSimulator(successRate float64, delay time.Duration) *RandomPaymentSimulator {
	return &RandomPaymentSimulator{
		SuccessRate: successRate,
		Delay:       delay,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

// Charge blocks for the configured delay. A cancelled context aborts the
// attempt without a result.
func (p *RandomPaymentSimulator) Charge(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	if req.Method == domain.PaymentCash {
		return PaymentResult{}, nil
	}
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return PaymentResult{}, ctx.Err()
		case <-timer.C:
		}
	}
	p.mu.Lock()
	roll := p.rand.Float64()
	p.mu.Unlock()
	if roll >= p.SuccessRate {
		return PaymentResult{Success: false}, nil
	}
	now := p.now()
	return PaymentResult{
		Success:       true,
		TransactionID: fmt.Sprintf("TXN-%d", now.UnixMilli()),
		PaidAt:        now,
	}, nil
}

var _ PaymentSimulator = (*RandomPaymentSimulator)(nil)
