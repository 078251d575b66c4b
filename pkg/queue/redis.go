package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"VoltMetrics/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a Redis-list backed work queue. Messages are BRPop'd by a
// worker pool; failed messages go to a retry zset scored by the next
// attempt time, and after retryLimit attempts to a dead letter list.
type RedisQueue struct {
	logger *logger.Logger
	client *redis.Client

	workers    int
	retryLimit int
	retryDelay time.Duration

	queueKey string
	retryKey string
	dlqKey   string

	mu      sync.RWMutex
	jobs    map[string]Job
	running bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*RedisQueue)

func WithWorkers(n int) Option {
	return func(q *RedisQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithRetry(limit int, delay time.Duration) Option {
	return func(q *RedisQueue) {
		q.retryLimit = limit
		if delay > 0 {
			q.retryDelay = delay
		}
	}
}

// WithKeyPrefix namespaces the queue, retry and dead letter keys.
func WithKeyPrefix(prefix string) Option {
	return func(q *RedisQueue) {
		q.queueKey = prefix + ":messages"
		q.retryKey = prefix + ":retry"
		q.dlqKey = prefix + ":dlq"
	}
}

func NewRedisQueue(lgr *logger.Logger, client *redis.Client, opts ...Option) *RedisQueue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &RedisQueue{
		logger:     lgr,
		client:     client,
		workers:    1,
		retryLimit: 3,
		retryDelay: 10 * time.Second,
		jobs:       make(map[string]Job),
		ctx:        ctx,
		cancel:     cancel,
	}
	WithKeyPrefix("voltmetrics:queue")(q)
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// RegisterJob wires a consumer for one message type. Must be called before
// Start.
func (q *RedisQueue) RegisterJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.jobs[job.Type()]; exists {
		q.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	q.jobs[job.Type()] = job
	q.logger.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

func (q *RedisQueue) Start() error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return fmt.Errorf("queue already running")
	}
	q.running = true
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.client.Ping(ctx).Err(); err != nil {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
		return fmt.Errorf("redis ping: %w", err)
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.wg.Add(1)
	go q.retryLoop()

	q.logger.Info("redis queue started",
		logger.Int("workers", q.workers),
		logger.String("queue", q.queueKey))
	return nil
}

// Stop cancels workers and waits for them up to ctx's deadline.
func (q *RedisQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.mu.Unlock()
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("queue stop: %w", ctx.Err())
	case <-done:
		q.logger.Info("redis queue stopped")
		return nil
	}
}

// PublishMessage enqueues a payload for a registered job type.
func (q *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	q.mu.RLock()
	running := q.running
	_, known := q.jobs[msgType]
	q.mu.RUnlock()

	if !running {
		return fmt.Errorf("queue not running")
	}
	if !known {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	msg := Message{
		ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
		Type:      msgType,
		Payload:   raw,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := q.client.LPush(ctx, q.queueKey, data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

func (q *RedisQueue) worker(id int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		default:
		}

		result, err := q.client.BRPop(q.ctx, time.Second, q.queueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			q.logger.Error("brpop", logger.Int("worker", id), logger.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
			q.logger.Error("unmarshal message", logger.Error(err))
			continue
		}
		q.dispatch(msg)
	}
}

func (q *RedisQueue) dispatch(msg Message) {
	q.mu.RLock()
	job, ok := q.jobs[msg.Type]
	q.mu.RUnlock()
	if !ok {
		q.logger.Error("no job for message",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	err := job.Handle(q.ctx, msg.Payload)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	q.logger.Error("job failed",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))

	if msg.Attempts >= q.retryLimit {
		q.deadLetter(msg)
		return
	}
	msg.Attempts++
	q.scheduleRetry(msg, time.Now().Add(q.retryDelay))
}

func (q *RedisQueue) scheduleRetry(msg Message, at time.Time) {
	data, err := json.Marshal(msg)
	if err != nil {
		q.logger.Error("marshal retry", logger.Error(err))
		return
	}
	err = q.client.ZAdd(context.Background(), q.retryKey, redis.Z{
		Score:  float64(at.Unix()),
		Member: data,
	}).Err()
	if err != nil {
		q.logger.Error("zadd retry", logger.Error(err))
	}
}

func (q *RedisQueue) deadLetter(msg Message) {
	q.logger.Error("max retries reached, dead lettering",
		logger.String("id", msg.ID),
		logger.String("type", msg.Type))
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := q.client.LPush(context.Background(), q.dlqKey, data).Err(); err != nil {
		q.logger.Error("lpush dlq", logger.Error(err))
	}
}

// retryLoop moves due retry messages back onto the main queue.
func (q *RedisQueue) retryLoop() {
	defer q.wg.Done()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.moveDueRetries()
		}
	}
}

func (q *RedisQueue) moveDueRetries() {
	due, err := q.client.ZRangeByScore(q.ctx, q.retryKey, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(time.Now().Unix(), 10),
	}).Result()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			q.logger.Error("fetch due retries", logger.Error(err))
		}
		return
	}

	for _, member := range due {
		pipe := q.client.TxPipeline()
		pipe.ZRem(q.ctx, q.retryKey, member)
		pipe.LPush(q.ctx, q.queueKey, member)
		if _, err := pipe.Exec(q.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			q.logger.Error("requeue retry", logger.Error(err))
		}
	}
}

var _ QueueService = (*RedisQueue)(nil)
