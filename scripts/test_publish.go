//go:build ignore

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/optimization-report/internal/domain"
)

// Публикует синтетический запуск в стрим событий пайплайна,
// чтобы проверить монитор без реального прохода по сетке.
func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	steps := flag.Int("steps", 4, "progress events per run")
	fail := flag.Bool("fail", false, "finish the run with an error")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	publish := func(event domain.PipelineEvent) {
		event.RunID = runID
		event.StartedAt = startedAt
		event.Timestamp = time.Now().UTC()

		data, err := json.Marshal(event)
		if err != nil {
			log.Fatalf("Failed to marshal event: %v", err)
		}

		id, err := client.XAdd(ctx, &redis.XAddArgs{
			Stream: domain.StreamPipelineEvents,
			Values: map[string]interface{}{
				"data": string(data),
			},
		}).Result()
		if err != nil {
			log.Fatalf("Failed to publish event: %v", err)
		}
		fmt.Printf("   %-15s %s\n", event.Type, id)
	}

	fmt.Printf("Publishing run %s to %s\n", runID, domain.StreamPipelineEvents)

	publish(domain.PipelineEvent{Type: domain.EventRunStarted})
	for i := 1; i <= *steps; i++ {
		publish(domain.PipelineEvent{
			Type:    domain.EventProgress,
			Stage:   domain.StageProbe,
			Done:    i,
			Total:   *steps,
			Percent: i * 100 / *steps,
		})
		time.Sleep(500 * time.Millisecond)
	}

	finished := domain.PipelineEvent{
		Type:       domain.EventRunFinished,
		Success:    !*fail,
		DurationMs: time.Since(startedAt).Milliseconds(),
	}
	if *fail {
		finished.Error = "synthetic failure"
	}
	publish(finished)

	fmt.Println("Done. Check GET /api/v1/monitoring/status")
}
