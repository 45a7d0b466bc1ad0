package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Port             string `mapstructure:"PORT"`
	AdminPort        string `mapstructure:"ADMIN_PORT"`
	PostgresUsername string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDatabase string `mapstructure:"POSTGRES_DATABASE"`
	PostgresSSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string `mapstructure:"POSTGRES_PORT"`
	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	ServiceName      string `mapstructure:"SERVICE_NAME"`
	AWSEndpoint      string `mapstructure:"AWS_ENDPOINT"`
	AWSBucket        string `mapstructure:"AWS_BUCKET"`
	AWSDefaultRegion string `mapstructure:"AWS_DEFAULT_REGION"`
	AWSAccessKey     string `mapstructure:"AWS_ACCESS_KEY"`
	AWSSecretKey     string `mapstructure:"AWS_SECRET_KEY"`
	GRPCPort         string `mapstructure:"GRPC_PORT"`

	// Admin front end and catctl.
	InventoryURL     string        `mapstructure:"INVENTORY_URL"`
	InventoryTimeout time.Duration `mapstructure:"INVENTORY_TIMEOUT"`
	ServiceUserID    string        `mapstructure:"SERVICE_USER_ID"`
	ServiceUserEmail string        `mapstructure:"SERVICE_USER_EMAIL"`
	ServiceToken     string        `mapstructure:"SERVICE_TOKEN"`
	SessionTTL       time.Duration `mapstructure:"SESSION_TTL"`
	TreeIndentUnit   int           `mapstructure:"TREE_INDENT_UNIT"`
	TreeMaxDepth     int           `mapstructure:"TREE_MAX_DEPTH"`
}

func Read() *AppConfig {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()

	bindEnvVariables()
	setDefaults()

	var appConfig AppConfig
	err := viper.Unmarshal(&appConfig)
	if err != nil {
		panic(fmt.Errorf("fatal error unmarshalling config: %w", err))
	}

	return &appConfig
}

// PostgresDSN builds the lib/pq connection string.
func (c *AppConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUsername, c.PostgresPassword, c.PostgresDatabase, c.PostgresSSLMode,
	)
}

func bindEnvVariables() {
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("ADMIN_PORT")
	_ = viper.BindEnv("POSTGRES_USERNAME")
	_ = viper.BindEnv("POSTGRES_PASSWORD")
	_ = viper.BindEnv("POSTGRES_DATABASE")
	_ = viper.BindEnv("POSTGRES_SSLMODE")
	_ = viper.BindEnv("POSTGRES_HOST")
	_ = viper.BindEnv("POSTGRES_PORT")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SERVICE_NAME")
	_ = viper.BindEnv("AWS_ENDPOINT")
	_ = viper.BindEnv("AWS_BUCKET")
	_ = viper.BindEnv("AWS_DEFAULT_REGION")
	_ = viper.BindEnv("AWS_ACCESS_KEY")
	_ = viper.BindEnv("AWS_SECRET_KEY")
	_ = viper.BindEnv("GRPC_PORT")
	_ = viper.BindEnv("INVENTORY_URL")
	_ = viper.BindEnv("INVENTORY_TIMEOUT")
	_ = viper.BindEnv("SERVICE_USER_ID")
	_ = viper.BindEnv("SERVICE_USER_EMAIL")
	_ = viper.BindEnv("SERVICE_TOKEN")
	_ = viper.BindEnv("SESSION_TTL")
	_ = viper.BindEnv("TREE_INDENT_UNIT")
	_ = viper.BindEnv("TREE_MAX_DEPTH")
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ADMIN_PORT", "8081")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("SERVICE_NAME", "goldshop")
	viper.SetDefault("GRPC_PORT", "9090")
	viper.SetDefault("INVENTORY_URL", "http://localhost:8080/api/v1")
	viper.SetDefault("INVENTORY_TIMEOUT", "10s")
	viper.SetDefault("SERVICE_USER_ID", "admin")
	viper.SetDefault("SERVICE_USER_EMAIL", "admin@goldshop.local")
	viper.SetDefault("SESSION_TTL", "30m")
	viper.SetDefault("TREE_INDENT_UNIT", 20)
	viper.SetDefault("TREE_MAX_DEPTH", 32)
}
