package clvisitors

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"littlesite/internal/models/clclassify"
)

// PersistenceError signale un échec d'écriture en base.
// La transaction est annulée : aucune ligne partielle n'est visible.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type VisitorService struct {
	db   *gorm.DB
	bots clclassify.BotDetector
	geo  clclassify.GeoResolver
}

func NewVisitorService(db *gorm.DB, bots clclassify.BotDetector, geo clclassify.GeoResolver) *VisitorService {
	return &VisitorService{
		db:   db,
		bots: bots,
		geo:  geo,
	}
}

// TrackVisitor classifie puis persiste une visite dans une seule transaction.
// Un échec de classifieur remonte tel quel (rien n'est écrit) ; un échec
// d'insertion annule la transaction et retourne une PersistenceError.
func (vs *VisitorService) TrackVisitor(data VisitorData) (*SiteVisitor, error) {
	isBot, err := vs.bots.Detect(data.UserAgent)
	if err != nil {
		return nil, asClassifierError("bot", err)
	}

	country, err := vs.geo.Country(data.IPAddress)
	if err != nil {
		return nil, asClassifierError("geoip", err)
	}

	page := data.PageVisited
	if page == "" {
		page = "home"
	}

	visitor := &SiteVisitor{
		VisitorUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		IPAddress:   data.IPAddress,
		UserAgent:   data.UserAgent,
		PageVisited: page,
		SessionID:   data.SessionID,
		IsBot:       isBot,
		Country:     country,
	}

	err = vs.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(visitor).Error
	})
	if err != nil {
		return nil, &PersistenceError{Op: "insert site_visitor", Err: err}
	}

	return visitor, nil
}

// GetVisitorStatistics combine les totaux globaux (toutes périodes) et la
// série journalière des N derniers jours.
// Choix de politique : une fenêtre non positive (days <= 0) ne coupe pas
// l'opération — la série journalière est vide, les totaux restent calculés.
// Les dates sans visite ne sont pas synthétisées en lignes à zéro.
func (vs *VisitorService) GetVisitorStatistics(days int) (*StatsSummary, error) {
	stats := &StatsSummary{}

	total, err := vs.Count()
	if err != nil {
		return nil, fmt.Errorf("error counting visitors: %w", err)
	}
	stats.TotalVisitors = total

	unique, err := vs.CountDistinctSessions()
	if err != nil {
		return nil, fmt.Errorf("error counting unique visitors: %w", err)
	}
	stats.UniqueVisitors = unique

	bots, err := vs.CountBots()
	if err != nil {
		return nil, fmt.Errorf("error counting bot visitors: %w", err)
	}
	stats.BotVisitors = bots
	stats.HumanVisitors = total - bots

	stats.DailyStats = []DailyStat{}
	if days > 0 {
		since := time.Now().UTC().AddDate(0, 0, -days)
		daily, err := vs.DailyBuckets(since)
		if err != nil {
			return nil, fmt.Errorf("error getting daily stats: %w", err)
		}
		stats.DailyStats = daily
	}

	return stats, nil
}

// Count retourne le nombre total de visites
func (vs *VisitorService) Count() (int64, error) {
	var total int64
	err := vs.db.Model(&SiteVisitor{}).Count(&total).Error
	return total, err
}

// CountDistinctSessions compte les session_id distincts.
// Les session_id vides participent au comptage : ils comptent
// collectivement pour un seul "visiteur", comme dans la source.
func (vs *VisitorService) CountDistinctSessions() (int64, error) {
	var unique int64
	err := vs.db.Model(&SiteVisitor{}).Distinct("session_id").Count(&unique).Error
	return unique, err
}

func (vs *VisitorService) CountBots() (int64, error) {
	var bots int64
	err := vs.db.Model(&SiteVisitor{}).Where("is_bot = ?", true).Count(&bots).Error
	return bots, err
}

// DailyBuckets retourne (date, visites, sessions distinctes) par jour
// calendaire depuis `since`, trié par date croissante.
// L'isolation est celle du moteur sous-jacent (read committed ou mieux) :
// une visite commitée en cours d'agrégation peut ou non être comptée.
func (vs *VisitorService) DailyBuckets(since time.Time) ([]DailyStat, error) {
	var daily []DailyStat
	err := vs.db.Model(&SiteVisitor{}).
		Select("DATE(timestamp) as date, COUNT(*) as count, COUNT(DISTINCT session_id) as unique_visitors").
		Where("timestamp >= ?", since).
		Group("DATE(timestamp)").
		Order("date ASC").
		Scan(&daily).Error
	if err != nil {
		return nil, err
	}
	return daily, nil
}

// Recent retourne les dernières visites, les plus récentes d'abord
func (vs *VisitorService) Recent(limit int) ([]SiteVisitor, error) {
	var visitors []SiteVisitor
	err := vs.db.Order("timestamp DESC").Limit(limit).Find(&visitors).Error
	if err != nil {
		return nil, err
	}
	return visitors, nil
}

func asClassifierError(name string, err error) error {
	var cerr *clclassify.ClassifierError
	if errors.As(err, &cerr) {
		return err
	}
	return &clclassify.ClassifierError{Classifier: name, Err: err}
}
