package worker

import (
	"context"
	"log"

	"github.com/qs3c/insider_go_server/internal/pkg/queue"
	"github.com/qs3c/insider_go_server/internal/service"
)

// Processor 消费采集队列里的任务
type Processor struct {
	collector *service.CollectorService
}

func NewProcessor(collector *service.CollectorService) *Processor {
	return &Processor{collector: collector}
}

// Process 执行一个采集任务。采集本身尽力而为，这里只负责
// 调度和结果落盘，错误不重新入队。
func (p *Processor) Process(ctx context.Context, job *queue.CollectionJob) error {
	log.Printf("Processing run %d (mode=%s)", job.RunID, job.Mode)

	result, err := p.collector.ExecuteRun(ctx, job.RunID)
	if err != nil {
		log.Printf("Run %d failed: %v", job.RunID, err)
		return err
	}

	log.Printf("Run %d done: saved=%d duplicate=%d errors=%d",
		job.RunID, result.Saved, result.Duplicate, result.Errors)
	return nil
}
