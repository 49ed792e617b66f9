package simlob

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Delay is the one-way latency applied to a message crossing between
// Local and Exchange for one asset.
type Delay struct {
	Send    int64 `yaml:"send"`
	Receive int64 `yaml:"receive"`
}

// AssetConfig describes one tradable instrument's book parameters and
// the latency model World applies to messages about it.
type AssetConfig struct {
	Name     string `yaml:"name"`
	LotSize  string `yaml:"lot_size"`
	TickSize string `yaml:"tick_size"`
	Delay    Delay  `yaml:"delay"`
}

// worldAssetConfig is the on-disk shape: a plain list of assets, in
// the order World assigns them their asset_idx.
type worldAssetConfig struct {
	Assets []AssetConfig `yaml:"assets"`
}

// Asset is the resolved, decimal-parsed form of AssetConfig used
// internally by World; LotSize/TickSize default per const.go when the
// config leaves them blank.
type Asset struct {
	Name     string
	LotSize  decimal.Decimal
	TickSize decimal.Decimal
	Delay    Delay
}

// LoadAssetsYAML reads an asset list from a YAML file shaped like:
//
//	assets:
//	  - name: BTC-USD
//	    tick_size: "0.01"
//	    lot_size: "0.0001"
//	    delay: { send: 100, receive: 150 }
func LoadAssetsYAML(path string) ([]Asset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read asset config: %w", err)
	}

	var cfg worldAssetConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse asset config: %w", err)
	}

	return resolveAssets(cfg.Assets)
}

func resolveAssets(configs []AssetConfig) ([]Asset, error) {
	assets := make([]Asset, 0, len(configs))
	for _, c := range configs {
		asset, err := resolveAsset(c)
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", c.Name, err)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func resolveAsset(c AssetConfig) (Asset, error) {
	lotSizeStr := c.LotSize
	if lotSizeStr == "" {
		lotSizeStr = DefaultLotSize
	}
	tickSizeStr := c.TickSize
	if tickSizeStr == "" {
		tickSizeStr = DefaultTickSize
	}

	lotSize, err := decimal.NewFromString(lotSizeStr)
	if err != nil {
		return Asset{}, fmt.Errorf("invalid lot_size: %w", err)
	}
	tickSize, err := decimal.NewFromString(tickSizeStr)
	if err != nil {
		return Asset{}, fmt.Errorf("invalid tick_size: %w", err)
	}

	return Asset{
		Name:     c.Name,
		LotSize:  lotSize,
		TickSize: tickSize,
		Delay:    c.Delay,
	}, nil
}
