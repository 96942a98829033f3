package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 采集模式
const (
	ModeFeed    = "feed"
	ModeIssuers = "issuers"
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// CollectionJob 一次采集任务
type CollectionJob struct {
	RunID        int64    `json:"run_id"`
	Mode         string   `json:"mode"`
	CIKs         []string `json:"ciks,omitempty"`
	MaxPerIssuer int      `json:"max_per_issuer,omitempty"`
	TriggeredBy  int64    `json:"triggered_by,omitempty"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将采集任务加入队列
func (q *Queue) Push(ctx context.Context, job *CollectionJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取任务（阻塞）
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*CollectionJob, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 超时，无任务
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var job CollectionJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
