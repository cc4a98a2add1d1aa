package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Config はアプリケーション設定です。設定画面とはJSONで、ファイルとはTOMLでやり取りします。
type Config struct {
	Port           int    `toml:"port" json:"port"`
	DatabasePath   string `toml:"database_path" json:"databasePath"`
	OpenBrowser    bool   `toml:"open_browser" json:"openBrowser"`
	TopN           int    `toml:"top_n" json:"topN"`
	PreviewRows    int    `toml:"preview_rows" json:"previewRows"`
	CSVEncoding    string `toml:"csv_encoding" json:"csvEncoding"`
	HistoryEnabled bool   `toml:"history_enabled" json:"historyEnabled"`
	HistoryLimit   int    `toml:"history_limit" json:"historyLimit"`

	Columns ColumnConfig `toml:"columns" json:"columns"`
	Labels  LabelConfig  `toml:"labels" json:"labels"`
}

// ColumnConfig はアップロードされる2つのファイルの列名です。
type ColumnConfig struct {
	InternalPrice      string `toml:"internal_price" json:"internalPrice"`
	InternalIdentifier string `toml:"internal_identifier" json:"internalIdentifier"`
	InternalPartNumber string `toml:"internal_part_number" json:"internalPartNumber"`
	CompetitorCode     string `toml:"competitor_code" json:"competitorCode"`
	CompetitorPrice    string `toml:"competitor_price" json:"competitorPrice"`
}

// LabelConfig はグラフとテーブルの系列名です。
type LabelConfig struct {
	Internal   string `toml:"internal" json:"internal"`
	Competitor string `toml:"competitor" json:"competitor"`
}

var (
	cfg = Default()
	mu  sync.RWMutex
)

// ConfigFilePath は設定ファイルの場所です。
var ConfigFilePath = "./pricecmp_config.toml"

// Default は既定の設定を返します。
func Default() Config {
	return Config{
		Port:           8080,
		DatabasePath:   "./pricecmp.db",
		OpenBrowser:    true,
		TopN:           20,
		PreviewRows:    5,
		CSVEncoding:    "utf-8",
		HistoryEnabled: true,
		HistoryLimit:   50,
		Columns: ColumnConfig{
			InternalPrice:      "price",
			InternalIdentifier: "mfg_id",
			InternalPartNumber: "mfr_part",
			CompetitorCode:     "MFG Code",
			CompetitorPrice:    "Discounted Price",
		},
		Labels: LabelConfig{
			Internal:   "rdollors",
			Competitor: "competitor",
		},
	}
}

// applyDefaults は未設定の項目に既定値を入れます。
func applyDefaults(c *Config) {
	def := Default()
	if c.Port == 0 {
		c.Port = def.Port
	}
	if c.DatabasePath == "" {
		c.DatabasePath = def.DatabasePath
	}
	if c.TopN <= 0 {
		c.TopN = def.TopN
	}
	if c.PreviewRows <= 0 {
		c.PreviewRows = def.PreviewRows
	}
	if c.CSVEncoding == "" {
		c.CSVEncoding = def.CSVEncoding
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = def.HistoryLimit
	}
	if c.Columns.InternalPrice == "" {
		c.Columns.InternalPrice = def.Columns.InternalPrice
	}
	if c.Columns.InternalIdentifier == "" {
		c.Columns.InternalIdentifier = def.Columns.InternalIdentifier
	}
	if c.Columns.InternalPartNumber == "" {
		c.Columns.InternalPartNumber = def.Columns.InternalPartNumber
	}
	if c.Columns.CompetitorCode == "" {
		c.Columns.CompetitorCode = def.Columns.CompetitorCode
	}
	if c.Columns.CompetitorPrice == "" {
		c.Columns.CompetitorPrice = def.Columns.CompetitorPrice
	}
	if c.Labels.Internal == "" {
		c.Labels.Internal = def.Labels.Internal
	}
	if c.Labels.Competitor == "" {
		c.Labels.Competitor = def.Labels.Competitor
	}
}

// LoadConfig は設定ファイルを読み込みます。ファイルがない場合は既定値を使います。
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	file, err := os.ReadFile(ConfigFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = Default()
			return cfg, nil
		}
		return Config{}, err
	}

	// ファイルにない項目は既定値のまま残す
	tempCfg := Default()
	if err := toml.Unmarshal(file, &tempCfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", ConfigFilePath, err)
	}
	applyDefaults(&tempCfg)
	cfg = tempCfg

	return cfg, nil
}

// SaveConfig は設定をファイルに保存し、現在の設定として反映します。
func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)

	file, err := toml.Marshal(newCfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(ConfigFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

// GetConfig は現在の設定を返します。
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
