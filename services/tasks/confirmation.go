package tasks

import (
	"encoding/json"

	"labcart/config"
	"labcart/models"

	"github.com/hibiken/asynq"
)

const TypeBookingConfirmation = "booking:confirmation"

// NewConfirmationTask builds the asynq task carrying a confirmed booking's
// notification payload.
func NewConfirmationTask(payload models.ConfirmationPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingConfirmation, b), nil
}

// Enqueuer wraps an asynq client for the checkout service.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer connects an asynq client to the task queue Redis DB.
func NewEnqueuer() *Enqueuer {
	return &Enqueuer{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisTaskQueueDB,
		}),
	}
}

// EnqueueConfirmation schedules the post-booking notification.
func (e *Enqueuer) EnqueueConfirmation(payload models.ConfirmationPayload) error {
	task, err := NewConfirmationTask(payload)
	if err != nil {
		return err
	}
	_, err = e.client.Enqueue(task)
	return err
}
