package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	DefaultRPCURL         = "http://localhost:8545"
	DefaultOrigin         = "http://localhost:8080"
	DefaultDerivationPath = "m/44'/60'/0'/0/0"
	DefaultListen         = ":8080"
	DefaultSecretDB       = "data/secrets.badger"
	DefaultLogFile        = "logs/exchangett.log"
)

// 视图模式
const (
	ModeWeb = "web"
	ModeTUI = "tui"
)

// 钱包授权方式
const (
	ApprovalQueue = "queue" // 挂起等待用户在界面上批准/拒绝
	ApprovalAuto  = "auto"  // 自动批准（本地开发）
)

// ChainConfig 链配置
type ChainConfig struct {
	RPCURL string
}

// WalletConfig 钱包配置
// Mnemonic / PrivateKey / SecretKey 只从环境变量读取，不允许写进 YAML。
type WalletConfig struct {
	Origin         string
	DerivationPath string
	Approval       string
	SecretDB       string
	Mnemonic       string
	PrivateKey     string
	SecretKey      string
}

// HasInlineSecret 环境变量中是否直接提供了签名密钥
func (w WalletConfig) HasInlineSecret() bool {
	return w.Mnemonic != "" || w.PrivateKey != ""
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Listen string
}

// ViewConfig 视图配置
type ViewConfig struct {
	Mode            string
	ShowEther       bool          // 额外显示 ETH 单位的余额（原始 wei 行始终显示）
	RefreshInterval time.Duration // 定时刷新余额，0 表示关闭
}

// HistoryConfig 余额历史（sqlite），DBPath 为空表示关闭
type HistoryConfig struct {
	DBPath string
}

// MetricsConfig 调试/指标服务，Listen 为空表示关闭
type MetricsConfig struct {
	Listen string
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Config 应用配置
type Config struct {
	Chain   ChainConfig
	Wallet  WalletConfig
	Server  ServerConfig
	View    ViewConfig
	History HistoryConfig
	Metrics MetricsConfig
	Log     LogConfig
}

// ConfigFile 配置文件结构（用于 YAML 解析）
type ConfigFile struct {
	Chain struct {
		RPCURL string `yaml:"rpc_url"`
	} `yaml:"chain"`
	Wallet struct {
		Origin         string `yaml:"origin"`
		DerivationPath string `yaml:"derivation_path"`
		Approval       string `yaml:"approval"`
		SecretDB       string `yaml:"secret_db"`
	} `yaml:"wallet"`
	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`
	View struct {
		Mode            string `yaml:"mode"`
		ShowEther       *bool  `yaml:"show_ether"`
		RefreshInterval string `yaml:"refresh_interval"` // 例如 "30s"
	} `yaml:"view"`
	History struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"history"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
	Log struct {
		Level      string  `yaml:"level"`
		File       *string `yaml:"file"`
		MaxSize    int     `yaml:"max_size"`
		MaxBackups int     `yaml:"max_backups"`
		MaxAge     int     `yaml:"max_age"`
		Compress   *bool   `yaml:"compress"`
	} `yaml:"log"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Chain: ChainConfig{RPCURL: DefaultRPCURL},
		Wallet: WalletConfig{
			Origin:         DefaultOrigin,
			DerivationPath: DefaultDerivationPath,
			Approval:       ApprovalQueue,
			SecretDB:       DefaultSecretDB,
		},
		Server: ServerConfig{Listen: DefaultListen},
		View:   ViewConfig{Mode: ModeWeb},
		Log: LogConfig{
			Level:      "info",
			File:       DefaultLogFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// LoadFromFile 从指定文件加载配置（path 为空则只用默认值 + 环境变量）
// 优先级：环境变量 > 配置文件 > 默认值
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		cf, err := loadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败 %s: %w", path, err)
		}
		if err := cfg.applyFile(cf); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cf ConfigFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return nil, fmt.Errorf("解析 YAML 失败: %w", err)
	}
	return &cf, nil
}

func (c *Config) applyFile(cf *ConfigFile) error {
	setString(&c.Chain.RPCURL, cf.Chain.RPCURL)
	setString(&c.Wallet.Origin, cf.Wallet.Origin)
	setString(&c.Wallet.DerivationPath, cf.Wallet.DerivationPath)
	setString(&c.Wallet.Approval, cf.Wallet.Approval)
	setString(&c.Wallet.SecretDB, cf.Wallet.SecretDB)
	setString(&c.Server.Listen, cf.Server.Listen)
	setString(&c.View.Mode, cf.View.Mode)
	if cf.View.ShowEther != nil {
		c.View.ShowEther = *cf.View.ShowEther
	}
	if s := strings.TrimSpace(cf.View.RefreshInterval); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("view.refresh_interval 无效 %q: %w", s, err)
		}
		c.View.RefreshInterval = d
	}
	setString(&c.History.DBPath, cf.History.DBPath)
	setString(&c.Metrics.Listen, cf.Metrics.Listen)
	setString(&c.Log.Level, cf.Log.Level)
	if cf.Log.File != nil {
		// 显式写 file: "" 表示不写文件
		c.Log.File = strings.TrimSpace(*cf.Log.File)
	}
	setInt(&c.Log.MaxSize, cf.Log.MaxSize)
	setInt(&c.Log.MaxBackups, cf.Log.MaxBackups)
	setInt(&c.Log.MaxAge, cf.Log.MaxAge)
	if cf.Log.Compress != nil {
		c.Log.Compress = *cf.Log.Compress
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.Chain.RPCURL, getenv("EXCHANGETT_RPC_URL", ""))
	setString(&c.Server.Listen, getenv("EXCHANGETT_LISTEN", ""))
	setString(&c.View.Mode, getenv("EXCHANGETT_VIEW_MODE", ""))
	setString(&c.Log.Level, getenv("EXCHANGETT_LOG_LEVEL", ""))
	setString(&c.History.DBPath, getenv("EXCHANGETT_HISTORY_DB", ""))
	setString(&c.Wallet.SecretDB, getenv("EXCHANGETT_SECRET_DB", ""))
	c.View.ShowEther = parseBoolEnv("EXCHANGETT_SHOW_ETHER", c.View.ShowEther)

	c.Wallet.Mnemonic = getenv("WALLET_MNEMONIC", "")
	c.Wallet.PrivateKey = strings.TrimPrefix(getenv("WALLET_PRIVATE_KEY", ""), "0x")
	c.Wallet.SecretKey = getenv("WALLET_SECRET_KEY", "")
}

// Validate 校验配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Chain.RPCURL) == "" {
		return errors.New("chain.rpc_url is required")
	}
	switch c.View.Mode {
	case ModeWeb, ModeTUI:
	default:
		return fmt.Errorf("view.mode must be %q or %q, got %q", ModeWeb, ModeTUI, c.View.Mode)
	}
	switch c.Wallet.Approval {
	case ApprovalQueue, ApprovalAuto:
	default:
		return fmt.Errorf("wallet.approval must be %q or %q, got %q", ApprovalQueue, ApprovalAuto, c.Wallet.Approval)
	}
	if c.View.RefreshInterval < 0 {
		return fmt.Errorf("view.refresh_interval must not be negative")
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseBoolEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
