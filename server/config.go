package server

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 服务端运行参数，来源：环境变量（可选 .env 文件），main 中可再用命令行覆盖
type Config struct {
	Addr      string
	LogFile   string
	WebDir    string
	PublicURL string // 生成二维码时使用的对外地址，空则按请求 Host 推断

	TickInterval  time.Duration // 关卡 Tick 周期
	ResultsDelay  time.Duration // 结算界面停留时间，0 表示立即进入下一阶段
	SnapshotEvery int           // 每 N 个 Tick 广播一次完整快照
	IdleTimeout   time.Duration // 无连接房间的回收时间

	ShootRate  float64 // 每个手柄每秒允许的射击次数
	ShootBurst int
}

// DefaultConfig 默认值
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		LogFile:       "app.log",
		WebDir:        "web",
		TickInterval:  100 * time.Millisecond,
		ResultsDelay:  3 * time.Second,
		SnapshotEvery: 10,
		IdleTimeout:   10 * time.Minute,
		ShootRate:     8,
		ShootBurst:    4,
	}
}

// LoadConfig 读取 .env（不存在时忽略）后解析 POINTBLANK_* 环境变量
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	cfg := DefaultConfig()
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	millis := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				errs = append(errs, errors.New(key+": expected non-negative milliseconds"))
				return
			}
			*dst = time.Duration(n) * time.Millisecond
		}
	}

	str("POINTBLANK_ADDR", &cfg.Addr)
	str("POINTBLANK_LOG_FILE", &cfg.LogFile)
	str("POINTBLANK_WEB_DIR", &cfg.WebDir)
	str("POINTBLANK_PUBLIC_URL", &cfg.PublicURL)
	millis("POINTBLANK_TICK_MS", &cfg.TickInterval)
	millis("POINTBLANK_RESULTS_DELAY_MS", &cfg.ResultsDelay)

	if v, ok := os.LookupEnv("POINTBLANK_SNAPSHOT_EVERY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, errors.New("POINTBLANK_SNAPSHOT_EVERY: expected positive integer"))
		} else {
			cfg.SnapshotEvery = n
		}
	}
	if v, ok := os.LookupEnv("POINTBLANK_IDLE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, errors.New("POINTBLANK_IDLE_TIMEOUT: "+err.Error()))
		} else {
			cfg.IdleTimeout = d
		}
	}
	if v, ok := os.LookupEnv("POINTBLANK_SHOOT_RATE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			errs = append(errs, errors.New("POINTBLANK_SHOOT_RATE: expected positive number"))
		} else {
			cfg.ShootRate = f
		}
	}
	if v, ok := os.LookupEnv("POINTBLANK_SHOOT_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, errors.New("POINTBLANK_SHOOT_BURST: expected positive integer"))
		} else {
			cfg.ShootBurst = n
		}
	}
	if cfg.TickInterval <= 0 {
		errs = append(errs, errors.New("POINTBLANK_TICK_MS: must be positive"))
	}
	return cfg, errors.Join(errs...)
}
