package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database         DatabaseConfigs  `toml:"database"`
	RPCServer        RPCServerConfigs `toml:"rpc_server"`
	PrometheusServer ServerConfigs    `toml:"prometheus_server"`
	Redis            RedisConfigs     `toml:"redis"`
	Kafka            KafkaConfigs     `toml:"kafka"`
	Challenge        ChallengeConfigs `toml:"challenge"`
	SnowFlake        SnowFlakeConfigs `toml:"snowflake"`
	Cron             CronConfigs      `toml:"cron"`
}

type DatabaseConfigs struct {
	// Driver is either "mysql" or "sqlite".
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	LogLevel string `toml:"log_level"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.Database
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type RPCServerConfigs struct {
	ServerConfigs

	// Name is the namespace of rpc methods, e.g. challenge_join.
	Name     string `toml:"name"`
	Endpoint string `toml:"endpoint"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr     string `toml:"addr"`
	ClientID string `toml:"client_id"`
	GroupID  string `toml:"group_id"`

	EventTopic        string `toml:"event_topic"`
	PayoutTopic       string `toml:"payout_topic"`
	PayoutResultTopic string `toml:"payout_result_topic"`
	DepositTopic      string `toml:"deposit_topic"`
}

type ChallengeConfigs struct {
	// OperatorAddress is the account the scheduler acts as. Instances deployed
	// without an explicit creator are owned by it.
	OperatorAddress string `toml:"operator_address"`

	// FeeSinkAddress receives the join-time deduction. Empty means the
	// deduction is only accounted in the challenge, not transferred.
	FeeSinkAddress string `toml:"fee_sink_address"`

	WeekDuration Duration `toml:"week_duration"`
}

type SnowFlakeConfigs struct {
	NodeID int64 `toml:"node_id"`
}

type CronConfigs struct {
	EliminationInterval Duration `toml:"elimination_interval"`
	SettlementInterval  Duration `toml:"settlement_interval"`
	PayoutInterval      Duration `toml:"payout_interval"`
	PayoutBatchSize     int      `toml:"payout_batch_size"`
}

// Duration decodes values such as "168h" from toml.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     "3306",
			Database: "habitchain",
			User:     "mysql",
			Password: "mysql",
		},
		RPCServer: RPCServerConfigs{
			ServerConfigs: ServerConfigs{Host: "", Port: "8545"},
			Name:          "challenge",
			Endpoint:      "http://localhost:8545",
		},
		PrometheusServer: ServerConfigs{Host: "", Port: "9090"},
		Redis:            RedisConfigs{Addr: "localhost:6379"},
		Kafka: KafkaConfigs{
			Addr:              "localhost:9092",
			ClientID:          "habitchain",
			GroupID:           "habitchain",
			EventTopic:        "challenge_event",
			PayoutTopic:       "challenge_payout",
			PayoutResultTopic: "challenge_payout_result",
			DepositTopic:      "challenge_deposit",
		},
		Challenge: ChallengeConfigs{
			WeekDuration: Duration{7 * 24 * time.Hour},
		},
		SnowFlake: SnowFlakeConfigs{NodeID: 1},
		Cron: CronConfigs{
			EliminationInterval: Duration{time.Hour},
			SettlementInterval:  Duration{6 * time.Hour},
			PayoutInterval:      Duration{time.Minute},
			PayoutBatchSize:     100,
		},
	}
}

// Load reads a toml file over the default configuration. An empty path
// returns the defaults.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configs{}, err
	}

	return cfg, nil
}
