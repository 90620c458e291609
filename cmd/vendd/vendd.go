package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	"github.com/gorilla/mux"
	"github.com/rezicom/vendd/pkg/config"
	"github.com/rezicom/vendd/pkg/server"
	"github.com/rezicom/vendd/pkg/service"
	v1 "github.com/rezicom/vendd/pkg/service/api/v1"
	"github.com/rezicom/vendd/pkg/vendd/correlation"

	_ "github.com/go-sql-driver/mysql"
	"gopkg.in/inconshreveable/log15.v2"
)

const (
	// AppName is the name of the application
	AppName = "vendd"
	// AppVersion is the version of the application
	AppVersion = "0.1"
)

// EnvVarConfigFileName is the environment var naming the config file
const EnvVarConfigFileName = "VENDDCFG"

// command line flags
var (
	// cfgFileName is the configuration file to use
	cfgFileName string
)

var (
	log log15.Logger
	cfg config.Config
)

func main() {
	flag.StringVar(&cfgFileName, "c", "", "config file name to use")
	flag.Parse()

	setLog()

	loadConfig()

	log.Info("starting daemon...", log15.Ctx{"version": AppVersion})

	ctx, err := service.NewContext(context.Background(), cfg, log)
	if err != nil {
		log.Crit("error creating service context", log15.Ctx{"err": err})
		os.Exit(1)
	}

	openDatabases(ctx)
	setCorrelationStore(ctx)

	router := mux.NewRouter()
	v1.NewService(ctx, router)

	srvCtx := context.WithValue(context.Background(), "log", log)
	srv := server.NewServer(srvCtx)
	if err := srv.RegisterService(cfg.Service, router); err != nil {
		log.Crit("error registering HTTP service", log15.Ctx{"err": err})
		os.Exit(1)
	}
	if err := srv.Serve(); err != nil {
		log.Crit("error serving", log15.Ctx{"err": err})
		os.Exit(1)
	}
}

func setLog() {
	log = log15.New(log15.Ctx{"AppName": AppName})
	log.SetHandler(log15.StdoutHandler)
}

func loadConfig() {
	if cfgFileName == "" {
		cfgFileName = os.Getenv(EnvVarConfigFileName)
	}
	if cfgFileName == "" {
		log.Warn("no config file provided. will use default config...")
		cfg = config.DefaultConfig()
	} else {
		cfgFile, err := os.Open(cfgFileName)
		if err != nil {
			log.Crit("error opening config file", log15.Ctx{
				"cfgFileName": cfgFileName,
				"err":         err,
			})
			os.Exit(1)
		}
		cfg, err = config.ReadConfig(cfgFile)
		cfgFile.Close()
		if err != nil {
			log.Crit("error reading config file", log15.Ctx{
				"cfgFileName": cfgFileName,
				"err":         err,
			})
			os.Exit(1)
		}
	}
	cfg.ApplyEnv()
}

func openDatabases(ctx *service.Context) {
	principal := mustOpenDB(cfg.Database.PrincipalDSN, "principal")
	var principalRO *sql.DB
	if cfg.Database.PrincipalReadOnlyDSN != "" {
		principalRO = mustOpenDB(cfg.Database.PrincipalReadOnlyDSN, "principal read-only")
	}
	ctx.SetPrincipalDB(principal, principalRO)

	payment := mustOpenDB(cfg.Database.PaymentDSN, "payment")
	var paymentRO *sql.DB
	if cfg.Database.PaymentReadOnlyDSN != "" {
		paymentRO = mustOpenDB(cfg.Database.PaymentReadOnlyDSN, "payment read-only")
	}
	ctx.SetPaymentDB(payment, paymentRO)
}

func mustOpenDB(dsn, name string) *sql.DB {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Crit("error opening database", log15.Ctx{"database": name, "err": err})
		os.Exit(1)
	}
	if err := db.Ping(); err != nil {
		log.Crit("error connecting to database", log15.Ctx{"database": name, "err": err})
		os.Exit(1)
	}
	log.Info("database connection established", log15.Ctx{"database": name})
	return db
}

func setCorrelationStore(ctx *service.Context) {
	if cfg.Redis.Address == "" {
		log.Warn("no redis address configured. using in-process correlation store...")
		ctx.SetCorrelationStore(correlation.NewMemStore())
		return
	}
	store, err := correlation.NewRedisStore(cfg.Redis.Address)
	if err != nil {
		log.Crit("error connecting to redis", log15.Ctx{
			"address": cfg.Redis.Address,
			"err":     err,
		})
		os.Exit(1)
	}
	log.Info("redis connection established", log15.Ctx{"address": cfg.Redis.Address})
	ctx.SetCorrelationStore(store)
}
