package configs

import (
	"errors"
	"fmt"
	"time"

	"github.com/Rakhulsr/kidstore/app/utils/calc"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
}

type PricingConfig struct {
	FreeShippingThreshold string `mapstructure:"freeShippingThreshold"`
	FlatShippingFee       string `mapstructure:"flatShippingFee"`
	CODCharge             string `mapstructure:"codCharge"`
	TaxPercent            string `mapstructure:"taxPercent"`
}

type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Pricing  PricingConfig `mapstructure:"pricing"`
	Currency string        `mapstructure:"currency"`
}

// LoadConfig reads config/config.json. Every key has a default, so a missing
// file is not an error.
func LoadConfig(paths ...string) (Config, error) {
	vp := viper.New()

	vp.SetConfigName("config")
	vp.SetConfigType("json")
	if len(paths) == 0 {
		paths = []string{"config"}
	}
	for _, p := range paths {
		vp.AddConfigPath(p)
	}

	vp.SetDefault("server.port", ":8080")
	vp.SetDefault("server.requestTimeout", "15s")
	vp.SetDefault("pricing.freeShippingThreshold", "999")
	vp.SetDefault("pricing.flatShippingFee", "60")
	vp.SetDefault("pricing.codCharge", "50")
	vp.SetDefault("pricing.taxPercent", "18")
	vp.SetDefault("currency", "INR")

	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var config Config
	if err := vp.Unmarshal(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) PricingRules() (calc.PricingRules, error) {
	var (
		rules calc.PricingRules
		err   error
	)
	if rules.FreeShippingThreshold, err = parseAmount("pricing.freeShippingThreshold", c.Pricing.FreeShippingThreshold); err != nil {
		return calc.PricingRules{}, err
	}
	if rules.FlatShippingFee, err = parseAmount("pricing.flatShippingFee", c.Pricing.FlatShippingFee); err != nil {
		return calc.PricingRules{}, err
	}
	if rules.CODCharge, err = parseAmount("pricing.codCharge", c.Pricing.CODCharge); err != nil {
		return calc.PricingRules{}, err
	}
	if rules.TaxPercent, err = parseAmount("pricing.taxPercent", c.Pricing.TaxPercent); err != nil {
		return calc.PricingRules{}, err
	}
	return rules, nil
}

func parseAmount(key, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
