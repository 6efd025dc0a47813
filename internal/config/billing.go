package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig carries the billing knobs operators may tune without a
// redeploy. Tax rate and due-date offset are global, not per system.
type BillingConfig struct {
	TaxRate       float64 `mapstructure:"taxRate"`
	DueDateDays   int     `mapstructure:"dueDateDays"`
	TxMaxAttempts int     `mapstructure:"txMaxAttempts"`
	TxBackoffMs   int     `mapstructure:"txBackoffMs"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		TaxRate:       0.12,
		DueDateDays:   15,
		TxMaxAttempts: 3,
		TxBackoffMs:   25,
	}
}

// BillingConfigHolder hot-reloads billing.yml and hands out the current
// snapshot atomically.
type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/aquabill/config")
	v.AddConfigPath("/etc/aquabill")
	v.AddConfigPath(".")

	v.SetEnvPrefix("AQUABILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.taxRate", defaults.TaxRate)
	v.SetDefault("billing.dueDateDays", defaults.DueDateDays)
	v.SetDefault("billing.txMaxAttempts", defaults.TxMaxAttempts)
	v.SetDefault("billing.txBackoffMs", defaults.TxBackoffMs)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

// NewStaticBillingConfigHolder returns a holder that never reloads. Tests use it.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return errors.New("billing.taxRate must be in [0, 1)")
	}
	if cfg.DueDateDays <= 0 {
		return errors.New("billing.dueDateDays must be positive")
	}
	if cfg.TxMaxAttempts <= 0 {
		return errors.New("billing.txMaxAttempts must be positive")
	}
	if cfg.TxBackoffMs < 0 {
		return errors.New("billing.txBackoffMs must be non-negative")
	}
	return nil
}
