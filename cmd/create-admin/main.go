// Command create-admin bootstraps an operator account that signs in with a password.
//
//	create-admin -email ops@example.com -password '...' -name "Ops"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/projectwatch/dashboard-api/internal/core/service"
	"github.com/projectwatch/dashboard-api/internal/infrastructure/config"
	"github.com/projectwatch/dashboard-api/internal/infrastructure/db/mongo"
	"github.com/projectwatch/dashboard-api/pkg/logger"
)

func main() {
	email := flag.String("email", "", "operator email (required)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "operator password (defaults to $ADMIN_PASSWORD)")
	name := flag.String("name", "", "display name")
	flag.Parse()

	log := logger.Init(logger.Options{Pretty: true, Service: "create-admin"})
	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to mongo")
	}
	defer client.Disconnect(context.Background())

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	auth := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL, cfg.AdminEmails, log)
	user, err := auth.CreateOperator(ctx, *email, *password, *name)
	if err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("create operator")
	}

	fmt.Printf("operator created\n  id:    %s\n  email: %s\n  role:  %s\n", user.ID, user.Email, user.Role)
}
