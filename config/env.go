package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type AppEnv struct {
	LogLvl string

	PgHost     string
	PgPort     string
	PgUser     string
	PgPassword string
	PgDbName   string
	SSLMode    string
	TimeZone   string

	BotToken    string
	BotName     string
	Admins      []int64
	ChannelID   string
	ChannelName string

	ShopID    string
	SecretKey string
}

func GetEnvironment() (env AppEnv, err error) {
	env = AppEnv{
		LogLvl:      getEnv("LOG_LEVEL", "debug"),
		PgHost:      getEnv("POSTGRES_HOST", ""),
		PgPort:      getEnv("POSTGRES_PORT", ""),
		PgUser:      getEnv("POSTGRES_USER", ""),
		PgPassword:  getEnv("POSTGRES_PASSWORD", ""),
		PgDbName:    getEnv("POSTGRES_DB", ""),
		SSLMode:     getEnv("POSTGRES_SLL_MODE", "disable"),
		TimeZone:    getEnv("POSTGRES_TIMEZONE", "Europe/Moscow"),
		BotToken:    getEnv("BOT_TOKEN", ""),
		BotName:     getEnv("BOT_NAME", ""),
		ChannelID:   getEnv("CHANNEL_ID", ""),
		ChannelName: getEnv("CHANNEL_NAME", ""),
		ShopID:      getEnv("YOOKASSA_SHOP_ID", ""),
		SecretKey:   getEnv("YOOKASSA_SECRET_KEY", ""),
	}

	if env.PgHost == "" || env.PgPort == "" || env.PgUser == "" ||
		env.PgPassword == "" || env.PgDbName == "" {
		return env, fmt.Errorf("incorrect environment params")
	}

	if env.BotToken == "" || env.ShopID == "" || env.SecretKey == "" {
		return env, fmt.Errorf("incorrect environment params")
	}

	admins := getEnv("ADMINS", "")
	for _, part := range strings.Split(admins, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return env, fmt.Errorf("incorrect admin id: %s", part)
		}
		env.Admins = append(env.Admins, id)
	}

	return env, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}
