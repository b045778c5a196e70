package resources

import (
	"fmt"
	"os"

	"github.com/activecm/mgorus"
	"github.com/ipvet/ipvet/config"
	"github.com/ipvet/ipvet/database"
	"github.com/ipvet/ipvet/pkg/cache"
	"github.com/ipvet/ipvet/pkg/ratelimit"
	log "github.com/sirupsen/logrus"
)

type (
	//Resources provides a data structure for passing system Resources
	Resources struct {
		Config    *config.Config
		Log       *log.Logger
		DB        *database.DB
		Cache     cache.Repository
		RateLimit ratelimit.Tracker
	}
)

//InitResources grabs the configuration file and intitializes the configuration data
//returning a *Resources object which has all of the necessary configuration information
func InitResources(userConfig string) *Resources {
	conf, err := config.LoadConfig(userConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %s\n", err.Error())
		os.Exit(-1)
	}

	// Fire up the logging system
	logger := initLogger(&conf.S.Log)
	if conf.S.Log.LogToFile {
		if err := addFileLogger(logger, conf.S.Log.LogPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize file logging: %s\n", err.Error())
		}
	}

	// Allows code to interact with the database
	db, err := database.NewDB(conf, logger)
	if err != nil {
		fmt.Printf("Failed to connect to database: %s\n", err.Error())
		os.Exit(-1)
	}

	// Durable stores shared by every provider query
	cacheRepo, err := cache.NewMongoRepository(db, conf, logger)
	if err != nil {
		fmt.Printf("Failed to initialize result cache: %s\n", err.Error())
		os.Exit(-1)
	}

	rateLimits, err := ratelimit.NewMongoTracker(db, conf, logger)
	if err != nil {
		fmt.Printf("Failed to initialize rate limit tracker: %s\n", err.Error())
		os.Exit(-1)
	}

	//Begin logging to the database
	if conf.S.Log.LogToDB {
		logger.Hooks.Add(
			mgorus.NewHookerFromSession(
				db.Session, conf.S.MongoDB.Database, conf.T.Log.LogTable,
			),
		)
	}

	//bundle up the system resources
	r := &Resources{
		Config:    conf,
		Log:       logger,
		DB:        db,
		Cache:     cacheRepo,
		RateLimit: rateLimits,
	}
	return r
}
