package server

import (
	"github.com/jinzhu/configor"
	"github.com/pkg/errors"

	"uno/game"
)

type Config struct {
	SocketConfig struct {
		PingPeriodTime                int   `default:"8000"`
		PongWaitTime                  int   `default:"10000"`
		WriteWaitTime                 int   `default:"5000"`
		ReceivedMessageDecrementCount int   `default:"20"`
		OutgoingQueueSize             int   `default:"64"`
		MaxMessageSize                int64 `default:"4096"`
	}
	GameConfig struct {
		HandSize        int  `default:"7"`
		MaxPlayers      int  `default:"10"`
		EnforceLegality bool `default:"false"`
		DrawFourPenalty bool `default:"false"`
		// Send every hand and the draw pile to all players instead of only the viewer's own hand.
		RevealHands bool `default:"false"`
		// Seconds a finished match stays reachable. A negative value keeps it forever.
		FinishedMatchTTL int `default:"1800"`
		SweepInterval    int `default:"60"`
	}
	Port               int  `default:"8765" env:"PORT"`
	MetricsDisabled    bool `default:"false"`
	DevelopmentEnabled bool `default:"false"`
}

// LoadConfig fills the config from defaults, then the given files, then UNO_ prefixed
// environment variables. Missing files are skipped.
func LoadConfig(files ...string) (*Config, error) {
	config := &Config{}
	if err := configor.New(&configor.Config{ENVPrefix: "UNO"}).Load(config, files...); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return config, nil
}

func (c *Config) Rules() game.Rules {
	return game.Rules{
		HandSize:        c.GameConfig.HandSize,
		MaxPlayers:      c.GameConfig.MaxPlayers,
		EnforceLegality: c.GameConfig.EnforceLegality,
		DrawFourPenalty: c.GameConfig.DrawFourPenalty,
	}
}
