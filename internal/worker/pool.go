package worker

import (
	"context"
	"encoding/json"
	"time"

	"contalink/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const (
	QueueAlertasStock = "jobs:alertas_stock"

	JobAlertaStock = "alerta_stock"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
	cb  *gobreaker.CircuitBreaker
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// WithBreaker routes every enqueue through cb; an open breaker fails fast
// with gobreaker.ErrOpenState.
func (d *Dispatcher) WithBreaker(cb *gobreaker.CircuitBreaker) *Dispatcher {
	d.cb = cb
	return d
}

// PublicarAlertaStock pushes a negative-stock alert to Redis.
func (d *Dispatcher) PublicarAlertaStock(ctx context.Context, alerta dto.AlertaStock) error {
	return d.enqueue(ctx, QueueAlertasStock, JobAlertaStock, alerta)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	if d.cb == nil {
		return push(ctx, d.rdb, queue, job)
	}
	_, err = d.cb.Execute(func() (interface{}, error) {
		return nil, push(ctx, d.rdb, queue, job)
	})
	return err
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the registered queues. A job whose handler fails is pushed
// back with its attempt count increased until maxAttempts, then moved to the DLQ.
type Pool struct {
	rdb         *redis.Client
	maxAttempts int
	handlers    map[string]Handler
	queues      []string
}

func NewPool(rdb *redis.Client, maxAttempts int) *Pool {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Pool{rdb: rdb, maxAttempts: maxAttempts, handlers: make(map[string]Handler)}
}

// Register routes jobType jobs arriving on queue to h.
func (p *Pool) Register(queue, jobType string, h Handler) {
	p.handlers[jobType] = h
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches numWorkers goroutines consuming every registered queue.
// Each goroutine blocks on BRPOP and is idle until a job arrives.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "", json.RawMessage(`null`), "invalid envelope: "+err.Error(), 0)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "no handler registered", job.Attempts)
		return
	}

	err := h(ctx, job.Payload)
	if err == nil {
		log.Debug().Str("type", job.Type).Str("queue", queue).Msg("job processed")
		return
	}

	job.Attempts++
	if job.Attempts >= p.maxAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed, requeued")
	if perr := push(ctx, p.rdb, queue, job); perr != nil {
		log.Error().Err(perr).Str("queue", queue).Msg("failed to requeue job")
	}
}
