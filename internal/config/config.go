package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-yaml/yaml"

	"github.com/kindred-protocol/kindred"
)

type Config struct {
	NodeInfo NodeInfo `yaml:"nodeInfo"`
	Server   Server   `yaml:"server"`
	Protocol Protocol `yaml:"protocol"`
}

type NodeInfo struct {
	Name             string `yaml:"name"`
	TrustedAuthority string `yaml:"trustedAuthority"` // attestation signer, hex address
	Executor         string `yaml:"executor"`         // governance executor, hex address
	FeeAccount       string `yaml:"feeAccount"`

	// ---
	TrustedAuthorityAddr common.Address
	ExecutorAddr         common.Address
	FeeAccountAddr       common.Address
}

type Server struct {
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	VerifierURL   string `yaml:"verifierURL"`
	ContentURL    string `yaml:"contentURL"`
	EventChannel  string `yaml:"eventChannel"`
	LogLevel      string `yaml:"logLevel"`
}

type Protocol struct {
	SchedulerInterval time.Duration   `yaml:"schedulerInterval"`
	VotingPeriod      time.Duration   `yaml:"votingPeriod"`
	QuorumBps         int             `yaml:"quorumBps"`
	QueueCap          int             `yaml:"queueCap"`
	TreasurySplits    []TreasurySplit `yaml:"treasurySplits"`
}

type TreasurySplit struct {
	Beneficiary string `yaml:"beneficiary"`
	Bps         int    `yaml:"bps"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	config.NodeInfo.TrustedAuthorityAddr, err = kindred.ParseAddress(config.NodeInfo.TrustedAuthority)
	if err != nil {
		return Config{}, fmt.Errorf("trustedAuthority: %w", err)
	}
	config.NodeInfo.ExecutorAddr, err = kindred.ParseAddress(config.NodeInfo.Executor)
	if err != nil {
		return Config{}, fmt.Errorf("executor: %w", err)
	}
	config.NodeInfo.FeeAccountAddr, err = kindred.ParseAddress(config.NodeInfo.FeeAccount)
	if err != nil {
		return Config{}, fmt.Errorf("feeAccount: %w", err)
	}

	if config.Protocol.SchedulerInterval <= 0 {
		config.Protocol.SchedulerInterval = time.Hour
	}
	if config.Protocol.VotingPeriod <= 0 {
		config.Protocol.VotingPeriod = 3 * 24 * time.Hour
	}
	if config.Protocol.QuorumBps <= 0 {
		config.Protocol.QuorumBps = 2000
	}
	if config.Server.EventChannel == "" {
		config.Server.EventChannel = "kindred:events"
	}

	total := 0
	for _, split := range config.Protocol.TreasurySplits {
		if _, err := kindred.ParseAddress(split.Beneficiary); err != nil {
			return Config{}, fmt.Errorf("treasurySplits: %w", err)
		}
		total += split.Bps
	}
	if len(config.Protocol.TreasurySplits) > 0 && total != 10000 {
		return Config{}, fmt.Errorf("treasurySplits: shares must sum to 10000 bps, got %d", total)
	}

	return config, nil
}
