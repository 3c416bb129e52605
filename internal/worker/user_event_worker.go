package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"suggestboard/internal/cache"
	"suggestboard/internal/queue"
)

// UserEventWorker drains the durable user-added queue: each event drops
// the cached user listing so the next allUsers read sees the new account.
type UserEventWorker struct {
	conn      *amqp.Connection
	userCache *cache.UserListCache
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewUserEventWorker(conn *amqp.Connection, userCache *cache.UserListCache, queueName string) *UserEventWorker {
	return &UserEventWorker{
		conn:      conn,
		userCache: userCache,
		queueName: queueName,
	}
}

func (w *UserEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event queue.UserAddedEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Printf("worker decode user added event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.userCache.Invalidate(workerCtx); err != nil {
					log.Printf("worker invalidate user list failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				log.Printf("user added: id=%d username=%s", event.UserID, event.Username)
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *UserEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
