package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Edgar        EdgarConfig        `mapstructure:"edgar"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	OSS          OSSConfig          `mapstructure:"oss"`
	Email        EmailConfig        `mapstructure:"email"`
	Queue        QueueConfig        `mapstructure:"queue"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Admin        AdminConfig        `mapstructure:"admin"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// EdgarConfig SEC EDGAR 抓取配置
type EdgarConfig struct {
	BaseURL        string `mapstructure:"base_url"`        // https://www.sec.gov
	UserAgent      string `mapstructure:"user_agent"`      // SEC 要求带联系方式的 UA，必填
	RequestDelayMs int    `mapstructure:"request_delay_ms"` // 请求间隔（SEC 限制每秒 10 次）
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	PageSize       int    `mapstructure:"page_size"`        // 每页 entry 数
	MaxPages       int    `mapstructure:"max_pages"`        // 翻页安全上限
	TargetCount    int    `mapstructure:"target_count"`     // 单次采集目标条数
	MaxPerIssuer   int    `mapstructure:"max_per_issuer"`   // 按公司采集时每家上限
}

// SubscriptionConfig 订阅与试用配置
type SubscriptionConfig struct {
	TrialHours       int `mapstructure:"trial_hours"`        // 试用时长（小时）
	ProDays          int `mapstructure:"pro_days"`           // Pro 订阅周期（天）
	FreeDelayMinutes int `mapstructure:"free_delay_minutes"` // 免费用户数据延迟（分钟）
	NotifyCooldownH  int `mapstructure:"notify_cooldown_hours"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	CollectionQueue string `mapstructure:"collection_queue"`
	MaxWorkers      int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// AdminConfig 管理接口配置
type AdminConfig struct {
	UserIDs []int64 `mapstructure:"user_ids"` // 允许触发采集的用户
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults 填充未配置项的默认值
func applyDefaults(cfg *Config) {
	if cfg.Edgar.BaseURL == "" {
		cfg.Edgar.BaseURL = "https://www.sec.gov"
	}
	if cfg.Edgar.RequestDelayMs <= 0 {
		cfg.Edgar.RequestDelayMs = 300
	}
	if cfg.Edgar.TimeoutSeconds <= 0 {
		cfg.Edgar.TimeoutSeconds = 30
	}
	if cfg.Edgar.PageSize <= 0 {
		cfg.Edgar.PageSize = 100
	}
	if cfg.Edgar.MaxPages <= 0 {
		cfg.Edgar.MaxPages = 10
	}
	if cfg.Edgar.TargetCount <= 0 {
		cfg.Edgar.TargetCount = 200
	}
	if cfg.Edgar.MaxPerIssuer <= 0 {
		cfg.Edgar.MaxPerIssuer = 10
	}
	if cfg.Subscription.TrialHours <= 0 {
		cfg.Subscription.TrialHours = 24
	}
	if cfg.Subscription.ProDays <= 0 {
		cfg.Subscription.ProDays = 30
	}
	if cfg.Subscription.FreeDelayMinutes <= 0 {
		cfg.Subscription.FreeDelayMinutes = 24 * 60
	}
	if cfg.Subscription.NotifyCooldownH <= 0 {
		cfg.Subscription.NotifyCooldownH = 24
	}
	if cfg.Queue.CollectionQueue == "" {
		cfg.Queue.CollectionQueue = "collection_jobs"
	}
	if cfg.Queue.MaxWorkers <= 0 {
		cfg.Queue.MaxWorkers = 1
	}
}
