package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/nftbazaar/marketplace/internal/log"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Env   string
	Index string
	Debug bool

	LogPath    string
	HealthPort string
	ApiPort    string

	// Operator administers collections and the fee; Custodian is the
	// marketplace's own account at the asset registry.
	Operator      string
	Custodian     string
	FeePercentage uint64

	Registry RegistryConfig
	Rail     RailConfig

	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
}

type RegistryConfig struct {
	Url     string
	Timeout int
}

type RailConfig struct {
	Url     string
	Timeout int
}

type ElasticSearchConfig struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	BulkPersistCount int
	Refresh          string
}

type AwsConfig struct {
	AccessKey string
	SecretKey string
	Region    string
}

func Init(logName string) {
	if err := godotenv.Load(".env"); err != nil {
		zap.L().With(zap.Error(err)).Warn("No .env file found")
	}

	viper.AutomaticEnv()
	setDefaults()

	log.NewLogger(Get().LogPath+"/"+logName+".log", Get().Debug)
}

func setDefaults() {
	viper.SetDefault("ENV", "dev")
	viper.SetDefault("INDEX_NAME", "marketplace")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "./var/logs")
	viper.SetDefault("HEALTH_PORT", "8079")
	viper.SetDefault("API_PORT", "8080")
	viper.SetDefault("FEE_PERCENTAGE", 2)
	viper.SetDefault("REGISTRY_TIMEOUT", 30)
	viper.SetDefault("RAIL_TIMEOUT", 30)
	viper.SetDefault("ELASTIC_SEARCH_SNIFF", true)
	viper.SetDefault("ELASTIC_SEARCH_HEALTH_CHECK", true)
	viper.SetDefault("ELASTIC_SEARCH_BULK_PERSIST_COUNT", 300)
	viper.SetDefault("ELASTIC_SEARCH_REFRESH", "wait_for")
}

func Get() *Config {
	return &Config{
		Env:           viper.GetString("ENV"),
		Index:         viper.GetString("INDEX_NAME"),
		Debug:         viper.GetBool("DEBUG"),
		LogPath:       viper.GetString("LOG_PATH"),
		HealthPort:    viper.GetString("HEALTH_PORT"),
		ApiPort:       viper.GetString("API_PORT"),
		Operator:      viper.GetString("OPERATOR_ADDRESS"),
		Custodian:     viper.GetString("CUSTODIAN_ADDRESS"),
		FeePercentage: viper.GetUint64("FEE_PERCENTAGE"),
		Registry: RegistryConfig{
			Url:     viper.GetString("REGISTRY_URL"),
			Timeout: viper.GetInt("REGISTRY_TIMEOUT"),
		},
		Rail: RailConfig{
			Url:     viper.GetString("RAIL_URL"),
			Timeout: viper.GetInt("RAIL_TIMEOUT"),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:            getSlice("ELASTIC_SEARCH_HOSTS"),
			Sniff:            viper.GetBool("ELASTIC_SEARCH_SNIFF"),
			HealthCheck:      viper.GetBool("ELASTIC_SEARCH_HEALTH_CHECK"),
			Debug:            viper.GetBool("ELASTIC_SEARCH_DEBUG"),
			Username:         viper.GetString("ELASTIC_SEARCH_USERNAME"),
			Password:         viper.GetString("ELASTIC_SEARCH_PASSWORD"),
			BulkPersistCount: viper.GetInt("ELASTIC_SEARCH_BULK_PERSIST_COUNT"),
			Refresh:          viper.GetString("ELASTIC_SEARCH_REFRESH"),
		},
		Aws: AwsConfig{
			AccessKey: viper.GetString("AWS_ACCESS_KEY_ID"),
			SecretKey: viper.GetString("AWS_SECRET_KEY_ID"),
			Region:    viper.GetString("AWS_REGION"),
		},
	}
}

func getSlice(key string) []string {
	value := viper.GetString(key)
	if value == "" {
		return make([]string, 0)
	}

	return strings.Split(value, ",")
}
