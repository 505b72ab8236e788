// Command createadmin creates the first admin account. The HTTP API only
// lets existing admins create staff, so a fresh database needs this once.
//
//	createadmin -name "Site Admin" -email admin@example.com -password secret
//
// Database settings come from the same environment as the server
// (DB_DRIVER, DATABASE_URL, .env) and can be overridden with -db-driver
// and -db.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/warp/leave-service/config"
	"github.com/warp/leave-service/leave"
	"github.com/warp/leave-service/logging"
	"github.com/warp/leave-service/store/sqlstore"
)

func main() {
	name := flag.String("name", "Administrator", "admin display name")
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")
	department := flag.String("department", "", "admin department")
	driver := flag.String("db-driver", "", "database driver, overrides DB_DRIVER")
	dsn := flag.String("db", "", "database path or URL, overrides DATABASE_URL")
	flag.Parse()

	// No token is issued here, so JWT settings are not validated.
	cfg, err := config.Read(nil)
	if err == nil {
		if *driver != "" {
			cfg.DBDriver = *driver
		}
		if *dsn != "" {
			cfg.DatabaseURL = *dsn
		}
		err = cfg.ValidateDatabase()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel})

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	store, err := sqlstore.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := leave.NewService(store, log)
	u, err := svc.BootstrapAdmin(ctx, leave.NewAccount{
		Name:       *name,
		Email:      *email,
		Password:   *password,
		Department: *department,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create admin")
		store.Close()
		os.Exit(1)
	}

	log.WithField("user_id", u.ID).WithField("email", u.Email).Info("Admin account created")
}
