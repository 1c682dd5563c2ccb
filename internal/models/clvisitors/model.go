package clvisitors

import "time"

// SiteVisitor représente une visite enregistrée.
// Les lignes sont append-only : aucun champ n'est modifié après insertion.
type SiteVisitor struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VisitorUUID string    `gorm:"uniqueIndex;size:36;not null" json:"visitor_uuid"`
	Timestamp   time.Time `gorm:"index;not null" json:"timestamp"`
	IPAddress   string    `gorm:"size:45" json:"ip_address"`
	UserAgent   string    `gorm:"type:text" json:"user_agent"`
	PageVisited string    `gorm:"size:100;default:home" json:"page_visited"`
	SessionID   string    `gorm:"index;size:100" json:"session_id"`
	IsBot       bool      `gorm:"default:false" json:"is_bot"`
	Country     string    `gorm:"size:2" json:"country"`
}

// VisitorData représente les données transitoires d'une visite entrante,
// construites par requête et jetées après usage
type VisitorData struct {
	IPAddress   string
	UserAgent   string
	PageVisited string
	SessionID   string
}

type DailyStat struct {
	Date           string `json:"date"`
	Count          int64  `json:"count"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// StatsSummary combine les totaux globaux et la série journalière fenêtrée
type StatsSummary struct {
	TotalVisitors  int64       `json:"total_visitors"`
	UniqueVisitors int64       `json:"unique_visitors"`
	BotVisitors    int64       `json:"bot_visitors"`
	HumanVisitors  int64       `json:"human_visitors"`
	DailyStats     []DailyStat `json:"daily_stats"`
}

// TableName spécifie le nom de la table pour SiteVisitor
func (SiteVisitor) TableName() string {
	return "site_visitors"
}
