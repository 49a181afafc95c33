package app

import (
	"strings"
	"time"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/utils"
)

type Config struct {
	JWTSecretKey    string
	Addr            string
	DedupWindow     time.Duration
	BalanceCacheTTL time.Duration
	AllowOrigins    []string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	addr := utils.GetEnv("HTTP_ADDR", ":8080", log)
	dedupWindow := utils.GetEnvAsDuration("ACHIEVEMENT_DEDUP_WINDOW", 60*time.Second, log)
	cacheTTL := utils.GetEnvAsDuration("BALANCE_CACHE_TTL", 30*time.Second, log)

	var origins []string
	for _, o := range strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "", log), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		JWTSecretKey:    jwtSecretKey,
		Addr:            addr,
		DedupWindow:     dedupWindow,
		BalanceCacheTTL: cacheTTL,
		AllowOrigins:    origins,
	}
}
