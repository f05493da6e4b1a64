package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"labcart/config"
	"labcart/models"
	"labcart/services/tasks"
	"labcart/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitConfirmationWorker runs the async worker in background. It consumes
// booking confirmation tasks and hands them to the notification sink (for
// now the structured log; the presentation layer also receives the
// BookingConfirmed pub/sub event).
func InitConfirmationWorker() {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingConfirmation, handleConfirmationTask)

	// Start async worker with bounded retry on startup failure.
	go func() {
		log.Println("[ConfirmationWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ConfirmationWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ConfirmationWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleConfirmationTask(ctx context.Context, task *asynq.Task) error {
	var p models.ConfirmationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Printf("[ConfirmationHandler] invalid payload: %v", err)
		return err
	}

	utils.GetLogger().Info("dispatching booking confirmation",
		zap.String("bookingId", p.BookingID),
		zap.String("couponCode", p.CouponCode),
		zap.String("email", p.Email),
		zap.String("labName", p.LabName),
		zap.String("date", p.Date),
		zap.String("time", p.Time))
	return nil
}
