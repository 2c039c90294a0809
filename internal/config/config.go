package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig         `mapstructure:"app"`
	Server    ServerConfig      `mapstructure:"server"`
	Log       LogConfig         `mapstructure:"log"`
	DB        DBConfig          `mapstructure:"db"`
	Fetch     FetchConfig       `mapstructure:"fetch"`
	Ingest    IngestConfig      `mapstructure:"ingest"`
	Investors map[string]string `mapstructure:"investors"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type IngestConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// DefaultInvestorSources is the built-in investor-to-page mapping used when
// the config file has no `investors` section.
var DefaultInvestorSources = map[string]string{
	"Parag Parikh Flexi Cap Fund":              "https://www.screener.in/people/97814/parag-parikh-flexi-cap-fund/",
	"Mirae Asset Emerging Bluechip Fund":       "https://www.screener.in/people/1604/mirae-asset-emerging-bluechip-fund/",
	"Mirae Asset Large & Midcap Fund":          "https://www.screener.in/people/144848/mirae-asset-large-midcap-fund/",
	"3Pindia Equity Fund 1":                    "https://www.screener.in/people/130713/3pindia-equity-fund-1/",
	"Quant Mutual Fund - Quant Small Cap Fund": "https://www.screener.in/people/145014/quant-mutual-fund-quant-small-cap-fund/",
	"Ashish Kacholia":                          "https://www.screener.in/people/127736/ashish-kacholia/",
	"Mukul Mahavir Agrawal":                    "https://www.screener.in/people/127675/mukul-mahavir-agrawal/",
	"Akash Bhanushali":                         "https://www.screener.in/people/4101/akash-bhanushali/",
	"Sunil Singhania":                          "https://trendlyne.com/portfolio/superstar-shareholders/182955/latest/sunil-singhania-portfolio/",
	"Vijay Kedia":                              "https://www.screener.in/people/7377/vijay-krishanlal-kedia/",
	"Madhuri Kela":                             "https://www.screener.in/people/30960/madhuri-madhusudan-kela/",
	"Massachusetts Institute of Technology":    "https://trendlyne.com/portfolio/superstar-shareholders/1537932/latest/massachusetts-institute-of-technology/",
	"Goldman Sachs India Equity Portfolio":     "https://www.screener.in/people/19335/goldman-sachs-funds-goldman-sachs-india-equity-p/",
	"Small Cap World Fund Inc":                 "https://www.screener.in/people/436/small-cap-world-fund-inc/",
	"Nalanda India Equity Fund":                "https://www.screener.in/people/73618/nalanda-india-equity-fund-limited/",
	"Jupiter India Fund":                       "https://www.screener.in/people/1555/jupiter-india-fund/",
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("IW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.user_agent", "investorwatch/1.0")
	v.SetDefault("ingest.concurrency", 4)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if len(cfg.Investors) == 0 {
		cfg.Investors = DefaultInvestorSources
	}

	return cfg, nil
}
