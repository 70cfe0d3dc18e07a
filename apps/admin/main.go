package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-notify/core"
	"github.com/trezcool/masomo-notify/core/notification"
	"github.com/trezcool/masomo-notify/core/schedule"
	appfs "github.com/trezcool/masomo-notify/fs"
	emailsvc "github.com/trezcool/masomo-notify/services/email"
	logsvc "github.com/trezcool/masomo-notify/services/logger"
	"github.com/trezcool/masomo-notify/storage/database"
	dummydb "github.com/trezcool/masomo-notify/storage/database/dummy"
	sqlxrepos "github.com/trezcool/masomo-notify/storage/database/sqlx"
)

func main() {
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		stdLogger.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)

	errAndDie := func(msg string, err error) {
		if err != nil {
			logger.Fatal(fmt.Sprintf("%s: %v", msg, err), err)
		}
	}

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	errAndDie("validating config", conf.Validate(validate))
	errAndDie("parsing email templates", core.ParseEmailTemplates(appfs.FS, conf))

	// set up DB & repos
	var (
		db   *sql.DB
		repo schedule.Repository
		dir  schedule.Directory
	)
	if conf.Database.Engine == "dummy" {
		mem, _ := dummydb.Open()
		repo, dir = dummydb.NewScheduleRepository(mem), dummydb.NewDirectoryRepository(mem)
	} else {
		sqlxDB, err := database.Open(conf)
		errAndDie("opening database", err)
		defer func() { _ = sqlxDB.Close() }()
		db = sqlxDB.DB
		repo, dir = sqlxrepos.NewScheduleRepository(sqlxDB), sqlxrepos.NewDirectoryRepository(sqlxDB)
	}

	// set up services
	settings, err := notification.SettingsFromConfig(conf.Feed)
	errAndDie("loading feed settings", err)
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleWriterService(conf, logger, os.Stdout)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// start CLI
	cli := commandLine{
		db:      db,
		feedSvc: notification.NewService(dir, repo, settings, logger),
		mailSvc: mailSvc,
		out:     os.Stdout,
	}
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
