package clmessages

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("message non trouvé")
	ErrIllegalTransition = errors.New("transition de statut interdite")
)

type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// Insert enregistre une nouvelle soumission, statut unread
func (ms *MessageService) Insert(msg *ContactMessage) error {
	if msg.Status == "" {
		msg.Status = StatusUnread
	}
	if err := ms.db.Create(msg).Error; err != nil {
		return fmt.Errorf("error inserting contact message: %w", err)
	}
	return nil
}

// UpdateStatus applique une transition du workflow de triage.
// Les transitions interdites (sortir de replied ou spam, revenir
// en arrière) retournent ErrIllegalTransition sans rien modifier.
func (ms *MessageService) UpdateStatus(id uint, newStatus string) error {
	var msg ContactMessage
	if err := ms.db.First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !CanTransition(msg.Status, newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, msg.Status, newStatus)
	}

	updates := map[string]interface{}{"status": newStatus}
	if newStatus == StatusSpam {
		updates["is_spam"] = true
	}

	return ms.db.Model(&msg).Updates(updates).Error
}

// MarkSpam marque un message comme spam avec son score
func (ms *MessageService) MarkSpam(id uint, score float64) error {
	var msg ContactMessage
	if err := ms.db.First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !CanTransition(msg.Status, StatusSpam) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, msg.Status, StatusSpam)
	}

	return ms.db.Model(&msg).Updates(map[string]interface{}{
		"status":     StatusSpam,
		"is_spam":    true,
		"spam_score": score,
	}).Error
}

// Get retourne un message par identifiant
func (ms *MessageService) Get(id uint) (*ContactMessage, error) {
	var msg ContactMessage
	if err := ms.db.First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// ListByStatus retourne une page de messages, du plus récent au plus ancien.
// status "all" ne filtre pas.
func (ms *MessageService) ListByStatus(status string, page, limit int) ([]ContactMessage, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	query := ms.db.Model(&ContactMessage{})
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []ContactMessage
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// CountByStatus retourne les compteurs du dashboard
func (ms *MessageService) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}

	var rows []row
	err := ms.db.Model(&ContactMessage{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
