package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/viper"

	"github.com/storinews/courier"
	"github.com/storinews/courier/bolt"
	"github.com/storinews/courier/http"
	"github.com/storinews/courier/mongo"
	"github.com/storinews/courier/s3"
	"github.com/storinews/courier/smtp"
)

func main() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		// Config may come entirely from the environment.
		log.Println(err)
	}

	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("db.type", "bolt")
	viper.SetDefault("db.path", "courier.db")
	viper.SetDefault("db.name", "courier")
	viper.SetDefault("storage.scratchdir", os.TempDir())

	var config *courier.Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatal(err)
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn: config.Sentry.DSN,
	}); err != nil {
		log.Fatalf("sentry.Init: %v", err)
	}
	defer sentry.Flush(2 * time.Second)

	a := newApp(config)

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		cancel()
	}()

	if err := a.Run(ctx); err != nil {
		_ = a.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	<-ctx.Done()

	if err := a.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	config     *courier.Config
	db         courier.Database
	httpServer *http.Server
}

func newApp(config *courier.Config) *app {
	httpServer, err := http.NewServer()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
	return &app{
		config:     config,
		httpServer: httpServer,
	}
}

func (a *app) Run(ctx context.Context) error {
	switch a.config.DB.Type {
	case "mongo":
		db := mongo.NewDB(a.config.DB.URL, a.config.DB.Name)
		if err := db.Open(); err != nil {
			return err
		}
		a.db = db
		a.httpServer.NewsletterStore = mongo.NewNewsletterStore(db)
	default:
		db := bolt.NewDB(a.config.DB.Path)
		if err := db.Open(); err != nil {
			return err
		}
		a.db = db
		a.httpServer.NewsletterStore = bolt.NewNewsletterStore(db)
	}

	stager, err := s3.NewStager(ctx, a.config)
	if err != nil {
		return err
	}
	a.httpServer.Stager = stager
	a.httpServer.Mailer = smtp.NewMailer(a.config)

	a.httpServer.Addr = a.config.HTTP.Addr
	a.httpServer.BaseURL = a.config.HTTP.BaseURL
	a.httpServer.AuthToken = a.config.Auth.Token
	a.httpServer.HMACSecret = a.config.Newsletter.HMAC.Secret
	a.httpServer.ProductName = a.config.Newsletter.Product.Name

	return a.httpServer.Open()
}

func (a *app) Close() error {
	if a.httpServer != nil {
		if err := a.httpServer.Close(); err != nil {
			return err
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return err
		}
	}

	return nil
}
