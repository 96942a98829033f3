package oss

import (
	"bytes"
	"fmt"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/insider_go_server/config"
)

type Client struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// ArchiveFeedPage 归档一页原始 feed，便于排查提取问题和重放
func (c *Client) ArchiveFeedPage(runID int64, page int, data []byte) (string, error) {
	objectKey := fmt.Sprintf("filings/raw/%s/run%d_page%d.xml",
		time.Now().UTC().Format("2006-01-02"), runID, page)

	err := c.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType("application/xml"))
	if err != nil {
		return "", fmt.Errorf("failed to archive feed page: %w", err)
	}

	return c.GetURL(objectKey), nil
}

// GetURL 获取文件访问 URL
func (c *Client) GetURL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, c.client.Config.Endpoint, objectKey)
}
