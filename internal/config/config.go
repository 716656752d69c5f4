package config

import (
	"log"

	"github.com/BurntSushi/toml"
)

type MainConfig struct {
	AppName string `toml:"appName"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type KafkaConfig struct {
	Brokers               []string `toml:"brokers"`
	ClientID              string   `toml:"clientID"`
	TransitionTopic       string   `toml:"transitionTopic"`
	PushTopic             string   `toml:"pushTopic"`
	ProducerRetryMax      int      `toml:"producerRetryMax"`
	ProducerTimeoutMillis int      `toml:"producerTimeoutMillis"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

// TrackingConfig 处方流转相关参数
type TrackingConfig struct {
	// 各状态的预估剩余小时数，用于进度条 ETA（经验值，可按需调整）
	RemainingHoursUploaded       int `toml:"remainingHoursUploaded"`
	RemainingHoursProcessing     int `toml:"remainingHoursProcessing"`
	RemainingHoursReviewRequired int `toml:"remainingHoursReviewRequired"`
	RemainingHoursValidated      int `toml:"remainingHoursValidated"`

	// 超过该小时数仍未完成审核的处方由定时任务置为 expired
	ExpireAfterHours int `toml:"expireAfterHours"`
	// 过期扫描 Cron 表达式（标准5段）
	ExpireSweepCron string `toml:"expireSweepCron"`

	// 实时订阅通道的缓冲与投递超时
	BroadcastBufferSize      int `toml:"broadcastBufferSize"`
	BroadcastTimeoutMillis   int `toml:"broadcastTimeoutMillis"`
	OutboxBatchSize          int `toml:"outboxBatchSize"`
	OutboxPollIntervalMillis int `toml:"outboxPollIntervalMillis"`
}

// NotifyConfig 通知分发相关参数
type NotifyConfig struct {
	WorkerCount int `toml:"workerCount"`
	QueueSize   int `toml:"queueSize"`

	SmtpHost     string `toml:"smtpHost"`
	SmtpPort     int    `toml:"smtpPort"`
	SmtpUsername string `toml:"smtpUsername"`
	SmtpPassword string `toml:"smtpPassword"`
	SmtpFrom     string `toml:"smtpFrom"`

	SmsGatewayURL   string `toml:"smsGatewayURL"`
	SmsGatewayToken string `toml:"smsGatewayToken"`
}

type Config struct {
	MainConfig     `toml:"mainConfig"`
	MysqlConfig    `toml:"mysqlConfig"`
	JwtConfig      `toml:"jwtConfig"`
	KafkaConfig    `toml:"kafkaConfig"`
	RedisConfig    `toml:"redisConfig"`
	TrackingConfig `toml:"trackingConfig"`
	NotifyConfig   `toml:"notifyConfig"`
	LogConfig      `toml:"logConfig"`
}

var config *Config

func LoadConfig() error {
	configPath := "configs/config_local.toml"
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		log.Printf("加载配置文件失败: %v, 尝试使用默认设置", err)
		return err
	}
	return nil
}

func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
		config.applyDefaults()
	}
	return config
}

func (c *Config) applyDefaults() {
	if c.TrackingConfig.RemainingHoursUploaded <= 0 {
		c.TrackingConfig.RemainingHoursUploaded = 24
	}
	if c.TrackingConfig.RemainingHoursProcessing <= 0 {
		c.TrackingConfig.RemainingHoursProcessing = 12
	}
	if c.TrackingConfig.RemainingHoursReviewRequired <= 0 {
		c.TrackingConfig.RemainingHoursReviewRequired = 6
	}
	if c.TrackingConfig.RemainingHoursValidated <= 0 {
		c.TrackingConfig.RemainingHoursValidated = 2
	}
	if c.TrackingConfig.ExpireAfterHours <= 0 {
		c.TrackingConfig.ExpireAfterHours = 72
	}
	if c.TrackingConfig.ExpireSweepCron == "" {
		c.TrackingConfig.ExpireSweepCron = "*/30 * * * *"
	}
	if c.NotifyConfig.WorkerCount <= 0 {
		c.NotifyConfig.WorkerCount = 4
	}
	if c.NotifyConfig.QueueSize <= 0 {
		c.NotifyConfig.QueueSize = 256
	}
}
