package agent

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const (
	DefaultServerAddress = "localhost"
	DefaultServerPort    = 8887
	DefaultActionCount   = 20
	DefaultSpawnMobType  = "ZOMBIE"
	DefaultMovementBias  = 0.7
)

// Config 解析完成后的只读配置，启动时构造一次并按值传给各组件
type Config struct {
	PlayerName    string
	ServerAddress string
	ServerPort    int

	ActionCount   int
	MinDelay      time.Duration
	MaxDelay      time.Duration
	OpenDelay     time.Duration // 连接建立后等待服务端准备实体
	StartDelay    time.Duration // 发射器启动后等待注册生效
	SpawnDelay    time.Duration // spawn_mob 之后的等待
	SpawnMobType  string
	MovementBias  float64
	CloseOnFinish bool
}

// DefaultConfig 返回除 PlayerName 外全部取默认值的配置
func DefaultConfig() Config {
	return Config{
		ServerAddress: DefaultServerAddress,
		ServerPort:    DefaultServerPort,
		ActionCount:   DefaultActionCount,
		MinDelay:      500 * time.Millisecond,
		MaxDelay:      1500 * time.Millisecond,
		OpenDelay:     2 * time.Second,
		StartDelay:    time.Second,
		SpawnDelay:    time.Second,
		SpawnMobType:  DefaultSpawnMobType,
		MovementBias:  DefaultMovementBias,
	}
}

// Endpoint 服务端 WebSocket 地址，如 ws://localhost:8887
func (c Config) Endpoint() string {
	return fmt.Sprintf("ws://%s:%d", c.ServerAddress, c.ServerPort)
}

// EmitterConfig 截取发射器需要的部分
func (c Config) EmitterConfig() EmitterConfig {
	return EmitterConfig{
		Actions:       c.ActionCount,
		MinDelay:      c.MinDelay,
		MaxDelay:      c.MaxDelay,
		StartDelay:    c.StartDelay,
		SpawnDelay:    c.SpawnDelay,
		SpawnMobType:  c.SpawnMobType,
		MovementBias:  c.MovementBias,
		CloseOnFinish: c.CloseOnFinish,
	}
}

// Validate 收集全部问题后一次性返回，错误均包裹 ErrConfig
func (c Config) Validate() error {
	var errs error
	if strings.TrimSpace(c.PlayerName) == "" {
		errs = multierr.Append(errs, errors.New("player_name is required"))
	}
	if strings.TrimSpace(c.ServerAddress) == "" {
		errs = multierr.Append(errs, errors.New("server_address is empty"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("server_port %d out of range", c.ServerPort))
	}
	if c.ActionCount < 0 {
		errs = multierr.Append(errs, fmt.Errorf("action_count %d is negative", c.ActionCount))
	}
	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		errs = multierr.Append(errs, fmt.Errorf("delay range [%s,%s] is invalid", c.MinDelay, c.MaxDelay))
	}
	if c.OpenDelay < 0 || c.StartDelay < 0 || c.SpawnDelay < 0 {
		errs = multierr.Append(errs, errors.New("delays must not be negative"))
	}
	if strings.TrimSpace(c.SpawnMobType) == "" {
		errs = multierr.Append(errs, errors.New("spawn_mob_type is empty"))
	}
	if c.MovementBias < 0 || c.MovementBias > 1 {
		errs = multierr.Append(errs, fmt.Errorf("movement_bias %.2f not in [0,1]", c.MovementBias))
	}
	if errs != nil {
		return fmt.Errorf("%w: %v", ErrConfig, errs)
	}
	return nil
}

// fileConfig 配置文件的 JSON 结构；指针字段用于区分“未设置”与零值
type fileConfig struct {
	PlayerName    *string  `json:"player_name,omitempty"`
	ServerAddress *string  `json:"server_address,omitempty"`
	ServerPort    *int     `json:"server_port,omitempty"`
	ActionCount   *int     `json:"action_count,omitempty"`
	MinDelayMs    *int     `json:"min_delay_ms,omitempty"`
	MaxDelayMs    *int     `json:"max_delay_ms,omitempty"`
	OpenDelayMs   *int     `json:"open_delay_ms,omitempty"`
	StartDelayMs  *int     `json:"start_delay_ms,omitempty"`
	SpawnDelayMs  *int     `json:"spawn_delay_ms,omitempty"`
	SpawnMobType  *string  `json:"spawn_mob_type,omitempty"`
	MovementBias  *float64 `json:"movement_bias,omitempty"`
	CloseOnFinish *bool    `json:"close_on_finish,omitempty"`
}

func (f fileConfig) apply(c *Config) {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	if f.PlayerName != nil {
		c.PlayerName = strings.TrimSpace(*f.PlayerName)
	}
	if f.ServerAddress != nil {
		c.ServerAddress = strings.TrimSpace(*f.ServerAddress)
	}
	if f.ServerPort != nil {
		c.ServerPort = *f.ServerPort
	}
	if f.ActionCount != nil {
		c.ActionCount = *f.ActionCount
	}
	if f.MinDelayMs != nil {
		c.MinDelay = ms(*f.MinDelayMs)
	}
	if f.MaxDelayMs != nil {
		c.MaxDelay = ms(*f.MaxDelayMs)
	}
	if f.OpenDelayMs != nil {
		c.OpenDelay = ms(*f.OpenDelayMs)
	}
	if f.StartDelayMs != nil {
		c.StartDelay = ms(*f.StartDelayMs)
	}
	if f.SpawnDelayMs != nil {
		c.SpawnDelay = ms(*f.SpawnDelayMs)
	}
	if f.SpawnMobType != nil {
		c.SpawnMobType = strings.TrimSpace(*f.SpawnMobType)
	}
	if f.MovementBias != nil {
		c.MovementBias = *f.MovementBias
	}
	if f.CloseOnFinish != nil {
		c.CloseOnFinish = *f.CloseOnFinish
	}
}

// LoadConfig 读取 JSON 配置文件并校验
//   - 文件不存在：提示输入玩家名，写出示例配置后继续
//   - 文件不是合法 JSON：提示输入玩家名，其余取默认值（不改写文件）
//   - 字段类型不符：ErrConfig
//   - 其它读取失败：ErrConfig
//
// in/out 为交互提示使用的输入输出（通常是 os.Stdin/os.Stdout）
func LoadConfig(path string, in io.Reader, out io.Writer) (Config, error) {
	cfg := DefaultConfig()
	prompt := bufio.NewReader(in)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(out, "ATTENTION: the file '%s' was not found. Creating a sample configuration file.\n", path)
		name, perr := askPlayerName(prompt, out)
		if perr != nil {
			return Config{}, perr
		}
		cfg.PlayerName = name
		if werr := writeSampleConfig(path, cfg); werr != nil {
			return Config{}, werr
		}
		fmt.Fprintf(out, "File '%s' created. Please check it.\n", path)
	case err != nil:
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
	default:
		var fc fileConfig
		jerr := json.Unmarshal(data, &fc)
		var syntaxErr *json.SyntaxError
		switch {
		case errors.As(jerr, &syntaxErr):
			fmt.Fprintf(out, "Error: the file '%s' is not valid JSON. Proceeding with manual input.\n", path)
			name, perr := askPlayerName(prompt, out)
			if perr != nil {
				return Config{}, perr
			}
			cfg.PlayerName = name
		case jerr != nil:
			// 语法正确但字段类型不符，视为配置错误而不是改为手动输入
			return Config{}, fmt.Errorf("%w: %s: %v", ErrConfig, path, jerr)
		default:
			fc.apply(&cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func askPlayerName(r *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter the player name for control: ")
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: read player name: %v", ErrConfig, err)
	}
	return strings.TrimSpace(line), nil
}

// writeSampleConfig 写出与原有 config.json 兼容的三项基本配置
func writeSampleConfig(path string, cfg Config) error {
	sample := struct {
		PlayerName    string `json:"player_name"`
		ServerAddress string `json:"server_address"`
		ServerPort    int    `json:"server_port"`
	}{cfg.PlayerName, cfg.ServerAddress, cfg.ServerPort}
	b, err := json.MarshalIndent(sample, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode sample config: %v", ErrConfig, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrConfig, path, err)
	}
	return nil
}
