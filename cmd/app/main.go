package main

import (
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"lastmile/cmd"
	lasthttp "lastmile/internal/adapters/in/http"
	"lastmile/internal/adapters/out/postgres/offerrepo"
	"lastmile/internal/adapters/out/postgres/trackingrepo"
	"lastmile/internal/core/domain/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()

	db, err := openDatabase(configs)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	app := cmd.NewCompositionRoot(configs, db)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	jobManager := app.CreateJobManager(defaultVehicle(configs), logger)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting background jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(&app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:           goDotEnvVariable("HTTP_PORT"),
		DBHost:             goDotEnvVariable("DB_HOST"),
		DBPort:             goDotEnvVariable("DB_PORT"),
		DBUser:             goDotEnvVariable("DB_USER"),
		DBPassword:         goDotEnvVariable("DB_PASSWORD"),
		DBName:             goDotEnvVariable("DB_NAME"),
		DBSslMode:          goDotEnvVariable("DB_SSLMODE"),
		DefaultVehicleType: goDotEnvVariable("DEFAULT_VEHICLE_TYPE"),
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

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&offerrepo.OfferDTO{}, &trackingrepo.SessionDTO{}); err != nil {
		return nil, err
	}

	return db, nil
}

func defaultVehicle(configs cmd.Config) services.VehicleType {
	vehicle := services.VehicleType(configs.DefaultVehicleType)
	if vehicle.Validate() != nil {
		return services.VehicleScooter
	}
	return vehicle
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.String(nethttp.StatusOK, "Healthy")
	})

	server := lasthttp.NewServer(lasthttp.Handlers{
		CreateOffer:     app.CreateCreateOfferCommandHandler(),
		AcceptOffer:     app.CreateAcceptOfferCommandHandler(),
		UpdateStatus:    app.CreateUpdateOfferStatusCommandHandler(),
		AddEvent:        app.CreateAddTrackingEventCommandHandler(),
		RecordLocation:  app.CreateRecordLocationCommandHandler(),
		AddAttempt:      app.CreateAddAttemptCommandHandler(),
		ReportIssue:     app.CreateReportIssueCommandHandler(),
		ConfirmDelivery: app.CreateConfirmDeliveryCommandHandler(),
		RefreshEstimate: app.CreateRefreshEstimateCommandHandler(),

		OpenOffers:       app.CreateGetOpenOffersQueryHandler(),
		ActiveDeliveries: app.CreateGetActiveDeliveriesQueryHandler(),
	}, app.CreateTrackingReader())
	server.RegisterRoutes(e)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		_ = e.Close()
	}()

	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil &&
		!errors.Is(err, nethttp.ErrServerClosed) {
		e.Logger.Error(err)
	}
}
