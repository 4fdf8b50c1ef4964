package config

import "os"

func IsDebug() bool {
	return os.Getenv("SLIMCTX_DEBUG") == "1"
}
