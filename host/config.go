package host

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

const (
	DefaultBatch    = 100
	DefaultInterval = 1000
)

type Configuration struct {
	Store struct {
		Dir string `toml:"dir"`
	} `toml:"store"`
	Host struct {
		Batch      int `toml:"batch"`
		IntervalMs int `toml:"interval_ms"`
	} `toml:"host"`
	Ledger struct {
		Minimum string `toml:"minimum"`
	} `toml:"ledger"`
	Genesis []*GenesisBalance `toml:"genesis"`
}

// GenesisBalance endows an account once, when the store is first opened.
// Balance is a decimal string with up to 8 places.
type GenesisBalance struct {
	Account string `toml:"account"`
	Balance string `toml:"balance"`
}

func Setup(path string) (*Configuration, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Configuration
	err = toml.Unmarshal(f, &conf)
	if err != nil {
		return nil, err
	}
	return &conf, conf.normalize()
}

func DefaultConfiguration() *Configuration {
	conf := &Configuration{}
	err := conf.normalize()
	if err != nil {
		panic(err)
	}
	return conf
}

func (conf *Configuration) normalize() error {
	if conf.Host.Batch <= 0 {
		conf.Host.Batch = DefaultBatch
	}
	if conf.Host.IntervalMs <= 0 {
		conf.Host.IntervalMs = DefaultInterval
	}
	if conf.Ledger.Minimum == "" {
		conf.Ledger.Minimum = "0"
	}
	if _, err := ParseAmount(conf.Ledger.Minimum); err != nil {
		return fmt.Errorf("invalid ledger minimum %s: %w", conf.Ledger.Minimum, err)
	}
	for _, g := range conf.Genesis {
		if err := validateAccount(g.Account); err != nil {
			return err
		}
		if _, err := ParseAmount(g.Balance); err != nil {
			return fmt.Errorf("invalid genesis balance %s: %w", g.Balance, err)
		}
	}
	return nil
}
