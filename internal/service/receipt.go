package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

const DefaultPrintDelay = 2500 * time.Millisecond

type OrderCompleter interface {
	CompleteIfOpen(ctx context.Context, id string) (domain.Order, bool, error)
}

type PrintJobStatus string

const (
	PrintPending   PrintJobStatus = "pending"
	PrintDone      PrintJobStatus = "done"
	PrintCancelled PrintJobStatus = "cancelled"
)

type PrintJob struct {
	ID        string         `json:"id"`
	OrderID   string         `json:"order_id"`
	Status    PrintJobStatus `json:"status"`
	StartedAt time.Time      `json:"started_at"`
	// Completed tells whether printing moved the order to completed.
	Completed bool `json:"completed"`

	cancel context.CancelFunc
	done   chan struct{}
}

// Done is closed once the job has finished or been cancelled.
func (j *PrintJob) Done() <-chan struct{} {
	return j.done
}

// ReceiptPrinter simulates the receipt printer. Once the delay passes the
// order is completed, unless it was already closed or the job was cancelled.
type ReceiptPrinter struct {
	orders OrderCompleter
	delay  time.Duration

	mu   sync.Mutex
	jobs map[string]*PrintJob
}

func NewReceiptPrinter(orders OrderCompleter, delay time.Duration) *ReceiptPrinter {
	return &ReceiptPrinter{orders: orders, delay: delay, jobs: make(map[string]*PrintJob)}
}

func (p *ReceiptPrinter) Start(orderID string) PrintJob {
	ctx, cancel := context.WithCancel(context.Background())
	job := &PrintJob{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Status:    PrintPending,
		StartedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	p.mu.Lock()
	p.jobs[job.ID] = job
	p.mu.Unlock()

	go p.run(ctx, job)
	return p.view(job)
}

func (p *ReceiptPrinter) run(ctx context.Context, job *PrintJob) {
	defer close(job.done)
	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	p.mu.Lock()
	if job.Status != PrintPending {
		p.mu.Unlock()
		return
	}
	job.Status = PrintDone
	p.mu.Unlock()

	_, changed, err := p.orders.CompleteIfOpen(context.Background(), job.OrderID)
	if err != nil {
		log.WithError(err).WithField("order_id", job.OrderID).Error("receipt printed but order not completed")
		return
	}
	p.mu.Lock()
	job.Completed = changed
	p.mu.Unlock()
	log.WithFields(log.Fields{"order_id": job.OrderID, "job": job.ID, "completed": changed}).Info("receipt printed")
}

// Cancel discards a pending job. The order status stays as it is.
func (p *ReceiptPrinter) Cancel(jobID string) (PrintJob, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	job, ok := p.jobs[jobID]
	if !ok {
		return PrintJob{}, fmt.Errorf("print job %s: %w", jobID, ErrNotFound)
	}
	if job.Status == PrintPending {
		job.Status = PrintCancelled
		job.cancel()
	}
	return p.viewLocked(job), nil
}

func (p *ReceiptPrinter) Job(jobID string) (PrintJob, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	job, ok := p.jobs[jobID]
	if !ok {
		return PrintJob{}, fmt.Errorf("print job %s: %w", jobID, ErrNotFound)
	}
	return p.viewLocked(job), nil
}

// Wait blocks until the job is finished. Used by tests and shutdown.
func (p *ReceiptPrinter) Wait(ctx context.Context, jobID string) (PrintJob, error) {
	p.mu.Lock()
	job, ok := p.jobs[jobID]
	p.mu.Unlock()
	if !ok {
		return PrintJob{}, fmt.Errorf("print job %s: %w", jobID, ErrNotFound)
	}
	select {
	case <-ctx.Done():
		return PrintJob{}, ctx.Err()
	case <-job.done:
	}
	return p.Job(jobID)
}

// Prune forgets finished jobs older than age.
func (p *ReceiptPrinter) Prune(age time.Duration) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	cutoff := time.Now().Add(-age)
	n := 0
	for id, job := range p.jobs {
		if job.Status != PrintPending && job.StartedAt.Before(cutoff) {
			delete(p.jobs, id)
			n++
		}
	}
	return n
}

func (p *ReceiptPrinter) view(job *PrintJob) PrintJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked(job)
}

func (p *ReceiptPrinter) viewLocked(job *PrintJob) PrintJob {
	return PrintJob{
		ID:        job.ID,
		OrderID:   job.OrderID,
		Status:    job.Status,
		StartedAt: job.StartedAt,
		Completed: job.Completed,
	}
}

var _ ReceiptPrinterInterface = (*ReceiptPrinter)(nil)
