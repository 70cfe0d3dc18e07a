package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/masomo-notify/apps/api/echo"
	"github.com/trezcool/masomo-notify/core"
	"github.com/trezcool/masomo-notify/core/notification"
	"github.com/trezcool/masomo-notify/core/schedule"
	logsvc "github.com/trezcool/masomo-notify/services/logger"
	"github.com/trezcool/masomo-notify/storage/database"
	dummydb "github.com/trezcool/masomo-notify/storage/database/dummy"
	sqlxrepos "github.com/trezcool/masomo-notify/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Stores are the schedule and directory repositories of the configured database engine.
type Stores struct {
	dig.Out
	Schedule  schedule.Repository
	Directory schedule.Directory
	Closer    DBCloser
}

// DBCloser closes the database connections, if any.
type DBCloser func() error

func newConfig(validate *validator.Validate) (*core.Config, error) {
	conf, err := core.NewConfig()
	if err != nil {
		return nil, err
	}
	if err = conf.Validate(validate); err != nil {
		return nil, err
	}
	return conf, nil
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStores(conf *core.Config, loggerParam DBLoggerParam) Stores {
	if conf.Database.Engine == "dummy" {
		db, _ := dummydb.Open()
		loggerParam.Logger.Info("using the in-memory database")
		return Stores{
			Schedule:  dummydb.NewScheduleRepository(db),
			Directory: dummydb.NewDirectoryRepository(db),
			Closer:    func() error { return nil },
		}
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	if err = database.Migrate(db.DB); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Stores{
		Schedule:  sqlxrepos.NewScheduleRepository(db),
		Directory: sqlxrepos.NewDirectoryRepository(db),
		Closer:    db.Close,
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func newFeedService(
	conf *core.Config,
	repo schedule.Repository,
	dir schedule.Directory,
	logger core.Logger,
) (*notification.Service, error) {
	settings, err := notification.SettingsFromConfig(conf.Feed)
	if err != nil {
		return nil, err
	}
	return notification.NewService(dir, repo, settings, logger), nil
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	feedSvc notification.FeedBuilder,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		FeedSvc:    feedSvc,
		Validate:   validate,
		Translator: translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStores))
	must(c.Provide(newFeedService, dig.As(new(notification.FeedBuilder))))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
