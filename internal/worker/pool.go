package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"hadiqa-backend/internal/ledger"
	"hadiqa-backend/internal/models"
	"hadiqa-backend/internal/offline"
)

const downloadQueue = "queue:video-download"

// Pool drains the download queue. It always runs exactly one worker
// goroutine: together with the manager's in-flight slot this is what
// makes "one download at a time" hold across the whole deployment.
type Pool struct {
	redis    *redis.Client
	manager  *offline.Manager
	ledger   *ledger.Service
	publish  func(ctx context.Context, installID string, msg models.WSMessage)
	stopChan chan struct{}
}

func NewPool(redisClient *redis.Client, manager *offline.Manager, ledgerSvc *ledger.Service) *Pool {
	p := &Pool{
		redis:    redisClient,
		manager:  manager,
		ledger:   ledgerSvc,
		stopChan: make(chan struct{}),
	}
	p.publish = p.publishRedis
	return p
}

func (p *Pool) Start() {
	go p.worker()
	log.Println("Started download worker")
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

// Enqueue pushes a download job onto the redis queue.
func (p *Pool) Enqueue(ctx context.Context, job models.DownloadJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.redis.LPush(ctx, downloadQueue, string(data)).Err()
}

func (p *Pool) worker() {
	for {
		select {
		case <-p.stopChan:
			log.Println("Download worker shutting down")
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, downloadQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.DownloadJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Download worker: failed to parse job: %v", err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID)
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		p.process(ctx, job)

		// Release lock
		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) process(ctx context.Context, job models.DownloadJob) {
	log.Printf("Download worker: fetching %s for install %s", job.VideoID, job.InstallID)

	ok := p.manager.Download(ctx, job.InstallID, job.VideoID, job.VideoURL, func(pct float64) {
		p.publish(ctx, job.InstallID, models.WSMessage{
			Type: "download_progress",
			Payload: models.DownloadUpdate{
				VideoID:  job.VideoID,
				Progress: pct,
			},
		})
	})

	if !ok {
		p.publish(ctx, job.InstallID, models.WSMessage{
			Type:    "download_failed",
			Payload: models.DownloadUpdate{VideoID: job.VideoID},
		})
		log.Printf("Download worker: job %s failed", job.ID)
		return
	}

	p.ledger.SetDownloaded(ctx, job.InstallID, job.VideoID, true)
	p.publish(ctx, job.InstallID, models.WSMessage{
		Type: "download_complete",
		Payload: models.DownloadUpdate{
			VideoID:  job.VideoID,
			Progress: 100,
		},
	})
	log.Printf("Download worker: job %s completed", job.ID)
}

// publishRedis routes through redis pub/sub so the websocket hub picks
// it up for whichever process holds the connection.
func (p *Pool) publishRedis(ctx context.Context, installID string, msg models.WSMessage) {
	data, _ := json.Marshal(msg)
	p.redis.Publish(ctx, "install_updates:"+installID, string(data))
}
