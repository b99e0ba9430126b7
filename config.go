package megasena

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

// Config 生产环境配置结构
type Config struct {
	// 生成器配置
	Generator *GeneratorConfig `mapstructure:"generator"`

	// 数据集配置
	Dataset *DatasetConfig `mapstructure:"dataset"`

	// Redis 配置
	Redis *RedisConfig `mapstructure:"redis"`

	// 熔断器配置
	CircuitBreaker *CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// HTTP 服务配置
	Server *ServerConfig `mapstructure:"server"`
}

func (c *Config) Validate() error {
	if c.Generator == nil || c.Dataset == nil || c.Redis == nil || c.CircuitBreaker == nil || c.Server == nil {
		return ErrConfigInvalid.WithDetails("missing configuration section")
	}

	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if err := c.Dataset.Validate(); err != nil {
		return err
	}

	// 验证 Redis 配置
	if c.Redis.Addr == "" {
		return ErrConfigInvalid.WithDetails("redis address is required")
	}
	if c.Redis.PoolSize <= 0 {
		return ErrConfigInvalid.WithDetails("redis pool size must be positive")
	}

	// 验证熔断器配置
	if c.CircuitBreaker.FailureRatio < 0 || c.CircuitBreaker.FailureRatio > 1 {
		return ErrConfigInvalid.WithDetailsf("circuit breaker failure ratio %.2f outside [0,1]",
			c.CircuitBreaker.FailureRatio)
	}

	if c.Server.Addr == "" {
		return ErrConfigInvalid.WithDetails("server address is required")
	}
	return nil
}

// GeneratorConfig tunes the generation engine
type GeneratorConfig struct {
	AttemptsPerGame  int `mapstructure:"attempts_per_game"`
	ProgressInterval int `mapstructure:"progress_interval"`
}

func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		AttemptsPerGame:  DefaultAttemptsPerGame,
		ProgressInterval: DefaultProgressInterval,
	}
}

func (c *GeneratorConfig) Validate() error {
	if c.AttemptsPerGame <= 0 {
		return ErrConfigInvalid.WithDetailsf("attempts per game must be positive, got %d", c.AttemptsPerGame)
	}
	if c.ProgressInterval < 0 {
		return ErrConfigInvalid.WithDetailsf("progress interval cannot be negative, got %d", c.ProgressInterval)
	}
	return nil
}

// DatasetConfig 数据集配置
type DatasetConfig struct {
	FilePath      string        `mapstructure:"file_path"`
	LockTimeout   time.Duration `mapstructure:"lock_timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	StateTTL      time.Duration `mapstructure:"state_ttl"` // 0 表示不过期
}

func DefaultDatasetConfig() *DatasetConfig {
	return &DatasetConfig{
		FilePath:      DefaultDatasetFilePath,
		LockTimeout:   DefaultLockTimeout,
		RetryAttempts: DefaultRetryAttempts,
		RetryInterval: DefaultRetryInterval,
	}
}

func (c *DatasetConfig) Validate() error {
	if c.LockTimeout < MinLockTimeout || c.LockTimeout > MaxLockTimeout {
		return ErrConfigInvalid.WithDetailsf("lock timeout %v outside [%v,%v]", c.LockTimeout, MinLockTimeout, MaxLockTimeout)
	}
	if c.RetryAttempts < 0 || c.RetryAttempts > MaxRetryAttempts {
		return ErrConfigInvalid.WithDetailsf("retry attempts %d outside [0,%d]", c.RetryAttempts, MaxRetryAttempts)
	}
	if c.RetryInterval < 0 {
		return ErrConfigInvalid.WithDetails("retry interval cannot be negative")
	}
	if c.StateTTL < 0 {
		return ErrConfigInvalid.WithDetails("state ttl cannot be negative")
	}
	return nil
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 连接配置
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// 连接池配置
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
	MaxRetries   int `mapstructure:"max_retries"`

	// 超时配置
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

// DefaultRedisConfig 返回默认的Redis配置
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:         DefaultRedisAddr,
		Password:     DefaultRedisPassword,
		DB:           DefaultRedisDB,
		PoolSize:     DefaultRedisPoolSize,
		MinIdleConns: DefaultRedisMinIdleConns,
		MaxRetries:   DefaultRedisMaxRetries,
		DialTimeout:  DefaultRedisDialTimeout,
		ReadTimeout:  DefaultRedisReadTimeout,
		WriteTimeout: DefaultRedisWriteTimeout,
		PoolTimeout:  DefaultRedisPoolTimeout,
	}
}

// NewRedisClientFromConfig 从配置创建Redis客户端
func NewRedisClientFromConfig(config *RedisConfig) *redis.Client {
	if config == nil {
		config = DefaultRedisConfig()
	}

	return redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	})
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Name          string        `mapstructure:"name"`
	MaxRequests   uint32        `mapstructure:"max_requests"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FailureRatio  float64       `mapstructure:"failure_ratio"`
	MinRequests   uint32        `mapstructure:"min_requests"`
	OnStateChange bool          `mapstructure:"on_state_change"`
}

// DefaultCircuitBreakerConfig 返回默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Enabled:       true,
		Name:          DefaultCircuitBreakerName,
		MaxRequests:   DefaultCircuitBreakerMaxRequests,
		Interval:      DefaultCircuitBreakerInterval,
		Timeout:       DefaultCircuitBreakerTimeout,
		FailureRatio:  DefaultCircuitBreakerFailureRatio,
		MinRequests:   DefaultCircuitBreakerMinRequests,
		OnStateChange: DefaultCircuitBreakerOnStateChange,
	}
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:           DefaultServerAddr,
		AllowedOrigins: []string{DefaultAllowedOrigin},
	}
}

// DefaultConfig 返回全部默认配置
func DefaultConfig() *Config {
	return &Config{
		Generator:      DefaultGeneratorConfig(),
		Dataset:        DefaultDatasetConfig(),
		Redis:          DefaultRedisConfig(),
		CircuitBreaker: DefaultCircuitBreakerConfig(),
		Server:         DefaultServerConfig(),
	}
}

// ================================================================================

// ConfigManager 配置管理器
type ConfigManager struct {
	viper  *viper.Viper
	logger Logger

	mu     sync.RWMutex
	config *Config
}

// NewConfigManager 创建配置管理器
func NewConfigManager() *ConfigManager {
	v := viper.New()

	// 设置配置文件名和路径
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/megasena")
	v.AddConfigPath("$HOME/.megasena")

	// 设置环境变量前缀
	v.SetEnvPrefix("MEGASENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cm := &ConfigManager{viper: v, logger: NewSilentLogger()}
	cm.setDefaults()
	return cm
}

// SetConfigFile points the manager at an explicit file instead of the search paths
func (cm *ConfigManager) SetConfigFile(path string) { cm.viper.SetConfigFile(path) }

// SetLogger sets the logger used to report reload failures
func (cm *ConfigManager) SetLogger(logger Logger) {
	if logger != nil {
		cm.logger = logger
	}
}

// LoadConfig 加载配置
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	// 读取配置文件
	if err := cm.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ErrConfigInvalid.WithDetails("failed to read config file").WithCause(err)
		}
		// 配置文件不存在时使用默认配置
	}

	config, err := cm.decode()
	if err != nil {
		return nil, err
	}

	cm.mu.Lock()
	cm.config = config
	cm.mu.Unlock()
	return config, nil
}

func (cm *ConfigManager) decode() (*Config, error) {
	config := &Config{}
	if err := cm.viper.Unmarshal(config); err != nil {
		return nil, ErrConfigInvalid.WithDetails("failed to unmarshal config").WithCause(err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// setDefaults 设置默认配置值
func (cm *ConfigManager) setDefaults() {
	// 生成器默认配置
	cm.viper.SetDefault("generator.attempts_per_game", DefaultAttemptsPerGame)
	cm.viper.SetDefault("generator.progress_interval", DefaultProgressInterval)

	// 数据集默认配置
	cm.viper.SetDefault("dataset.file_path", DefaultDatasetFilePath)
	cm.viper.SetDefault("dataset.lock_timeout", "30s")
	cm.viper.SetDefault("dataset.retry_attempts", DefaultRetryAttempts)
	cm.viper.SetDefault("dataset.retry_interval", "100ms")
	cm.viper.SetDefault("dataset.state_ttl", "0s")

	// Redis 默认配置
	cm.viper.SetDefault("redis.addr", DefaultRedisAddr)
	cm.viper.SetDefault("redis.password", DefaultRedisPassword)
	cm.viper.SetDefault("redis.db", DefaultRedisDB)
	cm.viper.SetDefault("redis.pool_size", DefaultRedisPoolSize)
	cm.viper.SetDefault("redis.min_idle_conns", DefaultRedisMinIdleConns)
	cm.viper.SetDefault("redis.max_retries", DefaultRedisMaxRetries)
	cm.viper.SetDefault("redis.dial_timeout", "5s")
	cm.viper.SetDefault("redis.read_timeout", "3s")
	cm.viper.SetDefault("redis.write_timeout", "3s")
	cm.viper.SetDefault("redis.pool_timeout", "4s")

	// 熔断器默认配置
	cm.viper.SetDefault("circuit_breaker.enabled", true)
	cm.viper.SetDefault("circuit_breaker.name", DefaultCircuitBreakerName)
	cm.viper.SetDefault("circuit_breaker.max_requests", DefaultCircuitBreakerMaxRequests)
	cm.viper.SetDefault("circuit_breaker.interval", "60s")
	cm.viper.SetDefault("circuit_breaker.timeout", "30s")
	cm.viper.SetDefault("circuit_breaker.failure_ratio", DefaultCircuitBreakerFailureRatio)
	cm.viper.SetDefault("circuit_breaker.min_requests", DefaultCircuitBreakerMinRequests)
	cm.viper.SetDefault("circuit_breaker.on_state_change", DefaultCircuitBreakerOnStateChange)

	// HTTP 服务默认配置
	cm.viper.SetDefault("server.addr", DefaultServerAddr)
	cm.viper.SetDefault("server.allowed_origins", []string{DefaultAllowedOrigin})
}

// WatchConfig 监听配置变化. Invalid edits are logged and the previous
// configuration stays active.
func (cm *ConfigManager) WatchConfig(callback func(*Config)) {
	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		config, err := cm.decode()
		if err != nil {
			cm.logger.Error("Config reload from %s rejected: %v", e.Name, err)
			return
		}

		cm.mu.Lock()
		cm.config = config
		cm.mu.Unlock()

		cm.logger.Info("Config reloaded from %s", e.Name)
		if callback != nil {
			callback(config)
		}
	})
	cm.viper.WatchConfig()
}

// GetConfig 获取当前配置
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.config
}

// ReloadConfig 重新加载配置
func (cm *ConfigManager) ReloadConfig() (*Config, error) { return cm.LoadConfig() }
