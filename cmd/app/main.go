package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"orderflow/cmd"
	"orderflow/internal/adapters/out/amqp"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/storerepo"
	"orderflow/internal/adapters/out/postgres/taskrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustConnectDB(configs)
	amqpClient := mustConnectAmqp(configs)
	defer amqpClient.Close()

	app, err := cmd.NewCompositionRoot(configs, gormDB, amqpClient, logger)
	if err != nil {
		log.Fatalf("Failed to build composition root: %v", err)
	}

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:     goDotEnvVariable("HTTP_PORT"),
		DBHost:       goDotEnvVariable("DB_HOST"),
		DBPort:       goDotEnvVariable("DB_PORT"),
		DBUser:       goDotEnvVariable("DB_USER"),
		DBPassword:   goDotEnvVariable("DB_PASSWORD"),
		DBName:       goDotEnvVariable("DB_NAME"),
		DBSslMode:    goDotEnvVariable("DB_SSLMODE"),
		AmqpHost:     goDotEnvVariable("AMQP_HOST"),
		AmqpPort:     goDotEnvVariable("AMQP_PORT"),
		AmqpUser:     goDotEnvVariable("AMQP_USER"),
		AmqpPassword: goDotEnvVariable("AMQP_PASSWORD"),
		AmqpVHost:    goDotEnvVariable("AMQP_VHOST"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func mustConnectDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = gormDB.AutoMigrate(&orderrepo.OrderDTO{}, &storerepo.StoreDTO{}, &taskrepo.TaskDTO{})
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	return gormDB
}

func mustConnectAmqp(configs cmd.Config) *amqp.Client {
	port, err := strconv.Atoi(configs.AmqpPort)
	if err != nil {
		log.Fatalf("Invalid AMQP_PORT: %v", err)
	}

	client, err := amqp.Dial(amqp.Config{
		Host:     configs.AmqpHost,
		Port:     port,
		User:     configs.AmqpUser,
		Password: configs.AmqpPassword,
		VHost:    configs.AmqpVHost,
	})
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}

	return client
}

func startWebServer(app cmd.CompositionRoot, port string) {
	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	app.CreateHTTPServer().RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
