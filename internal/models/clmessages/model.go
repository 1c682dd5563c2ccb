package clmessages

import (
	"encoding/json"
	"time"
)

// Statuts du workflow de triage
const (
	StatusUnread  = "unread"
	StatusRead    = "read"
	StatusReplied = "replied"
	StatusSpam    = "spam"
)

// Transitions autorisées ; replied et spam sont terminaux
var legalTransitions = map[string][]string{
	StatusUnread: {StatusRead, StatusReplied, StatusSpam},
	StatusRead:   {StatusReplied, StatusSpam},
}

// ContactMessage représente une soumission du formulaire de contact
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:120;not null;index" json:"email"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	Status    string    `gorm:"size:20;default:unread;index" json:"status"`
	SpamScore float64   `gorm:"default:0" json:"spam_score"`
	IsSpam    bool      `gorm:"default:false" json:"is_spam"`
	Metadata  string    `gorm:"type:text" json:"-"`
}

// TableName spécifie le nom de la table pour ContactMessage
func (ContactMessage) TableName() string {
	return "contact_messages"
}

// SetMetadata sérialise des données additionnelles en JSON
func (m *ContactMessage) SetMetadata(meta map[string]any) error {
	if len(meta) == 0 {
		m.Metadata = ""
		return nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	m.Metadata = string(data)
	return nil
}

// GetMetadata désérialise le blob JSON, nil si vide
func (m *ContactMessage) GetMetadata() (map[string]any, error) {
	if m.Metadata == "" {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(m.Metadata), &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// CanTransition vérifie qu'un changement de statut est autorisé
func CanTransition(from, to string) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
