package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/watch-together/internal/app"
)

type configVar[T any] struct {
	envKeys      []string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKeys:      []string{"SERVER_PORT", "PORT"},
		flagKey:      "port",
		defaultValue: 5000,
	}
	host = configVar[string]{
		envKeys:      []string{"SERVER_HOST"},
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKeys:      []string{"SERVER_LOG_LEVEL"},
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	logFormat = configVar[string]{
		envKeys:      []string{"SERVER_LOG_FORMAT"},
		flagKey:      "log-format",
		defaultValue: "json",
	}
	sendBuffer = configVar[int]{
		envKeys:      []string{"SERVER_SEND_BUFFER"},
		flagKey:      "send-buffer",
		defaultValue: 64,
	}
	readLimit = configVar[int64]{
		envKeys:      []string{"SERVER_READ_LIMIT"},
		flagKey:      "read-limit",
		defaultValue: 32768,
	}
	pingPeriod = configVar[time.Duration]{
		envKeys:      []string{"SERVER_PING_PERIOD"},
		flagKey:      "ping-period",
		defaultValue: 54 * time.Second,
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(append([]string{v.flagKey}, v.envKeys...)...)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(logFormat.flagKey, logFormat.defaultValue, "Log output format: json or console")
	pflag.Int(sendBuffer.flagKey, sendBuffer.defaultValue, "Outbound frames queued per connection")
	pflag.Int64(readLimit.flagKey, readLimit.defaultValue, "Maximum inbound websocket frame size in bytes")
	pflag.Duration(pingPeriod.flagKey, pingPeriod.defaultValue, "Websocket keepalive ping interval")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(port)
	bind(host)
	bind(logLevel)
	bind(logFormat)
	bind(sendBuffer)
	bind(readLimit)
	bind(pingPeriod)

	config := &app.AppConfig{
		Host:       viper.GetString(host.flagKey),
		Port:       viper.GetInt(port.flagKey),
		LogLevel:   viper.GetString(logLevel.flagKey),
		LogFormat:  viper.GetString(logFormat.flagKey),
		SendBuffer: viper.GetInt(sendBuffer.flagKey),
		ReadLimit:  viper.GetInt64(readLimit.flagKey),
		PingPeriod: viper.GetDuration(pingPeriod.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal().Err(err).Msg("app stopped")
	}
}
