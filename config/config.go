package config

import (
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type CatalogConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type PaymentConfig struct {
	ApiURL   string `mapstructure:"api_url"`
	Currency string `mapstructure:"currency"`
}

type ExportConfig struct {
	OrdersFile string `mapstructure:"orders_file"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Payment PaymentConfig `mapstructure:"payment"`
	Export  ExportConfig  `mapstructure:"export"`
}

var vp *viper.Viper

func LoadConfig() (Config, error) {
	vp = viper.New()

	var config Config

	vp.SetConfigName("config")
	vp.SetConfigType("json")
	vp.AddConfigPath("config")

	vp.SetDefault("catalog.page_size", 5)
	vp.SetDefault("payment.api_url", "https://api.yookassa.ru/v3")
	vp.SetDefault("payment.currency", "RUB")
	vp.SetDefault("export.orders_file", "orders.xlsx")

	err := vp.ReadInConfig()
	if err != nil {
		return Config{}, err
	}

	err = vp.Unmarshal(&config)
	if err != nil {
		return Config{}, err
	}

	return config, nil
}
