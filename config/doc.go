// Package config loads the streamkit configuration with viper.
//
// Values come from defaults, a config.yml, an optional .env file (godotenv)
// and STREAMKIT_ prefixed environment variables, in increasing precedence:
//
//	STREAMKIT_SERVER_PORT=9090 STREAMKIT_STREAM_TIMEOUT=250ms streamkit serve
//
// LoadService applies section defaults and validates the result.
package config
