package clsite

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"littlesite/internal/gormzerologger"
	"littlesite/internal/models/clcaptchas"
	"littlesite/internal/models/clclassify"
	"littlesite/internal/models/clconfig"
	"littlesite/internal/models/clmessages"
	"littlesite/internal/models/clredis"
	"littlesite/internal/models/clvisitors"
)

var instance *Littlesite

// Littlesite regroupe les dépendances partagées du site
type Littlesite struct {
	Configuration *clconfig.Config
	Db            *gorm.DB
	Cache         *clredis.Cache
	Captcha       *clcaptchas.Captchas
	Visitors      *clvisitors.VisitorService
	Messages      *clmessages.MessageService
	Geo           *clclassify.GeoLite2Resolver
	Version       string
	BuildID       string
}

func GetInstance() *Littlesite {
	if instance == nil {
		instance = &Littlesite{}
	}
	return instance
}

func Init(config *clconfig.Config, version string, buildid string) *Littlesite {
	instance = &Littlesite{
		Configuration: config,
		Version:       version,
		BuildID:       buildid,
	}
	instance.initDatabase()
	instance.initCache()
	instance.initClassifiers()
	instance.initServices()
	instance.initCaptcha()
	return instance
}

func (ls *Littlesite) initDatabase() {
	var err error

	// Créer le logger GORM avec Zerolog
	level := "warn"
	if ls.Configuration.Logger.Level == "debug" || !ls.Configuration.Production {
		level = "trace"
	}
	gormLogger := gormzerologger.New(level)

	var db *gorm.DB
	switch ls.Configuration.Database.Db {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(ls.Configuration.Database.Path), &gorm.Config{
			Logger: gormLogger,
		})
	case "mysql":
		db, err = gorm.Open(mysql.Open(ls.Configuration.Database.Dsn), &gorm.Config{
			Logger: gormLogger,
		})
	default:
		err = fmt.Errorf("le type de database doit etre sqlite ou mysql")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Erreur connexion base de données")
	}

	err = db.AutoMigrate(&clvisitors.SiteVisitor{}, &clmessages.ContactMessage{})
	if err != nil {
		log.Fatal().Err(err).Msg("Erreur migration")
	}

	ls.Db = db
}

func (ls *Littlesite) initCache() {
	if ls.Configuration.Database.Redis.Addr == "" {
		return
	}
	ls.Cache = clredis.New(ls.Configuration.Database.Redis.Addr, ls.Configuration.Database.Redis.Db)
}

func (ls *Littlesite) initClassifiers() {
	geo, err := clclassify.NewGeoLite2Resolver(ls.Configuration.GeoIP.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Erreur ouverture base GeoIP")
	}
	ls.Geo = geo
}

func (ls *Littlesite) initServices() {
	ls.Visitors = clvisitors.NewVisitorService(ls.Db, clclassify.NewBotDetector(), ls.Geo)
	ls.Messages = clmessages.NewMessageService(ls.Db)
}

func (ls *Littlesite) initCaptcha() {
	ls.Captcha = clcaptchas.New(ls.Cache)
}
