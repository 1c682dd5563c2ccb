package clmessages

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const spamThreshold = 5.0

// Mots-clés fréquents dans les messages indésirables
var spamKeywords = []string{
	`viagra`, `casino`, `lottery`, `winner`, `bitcoin`, `crypto`,
	`investment opportunity`, `free money`, `click here`, `buy now`,
	`cheap seo`, `backlinks`, `guest post`, `increase traffic`,
}

var linkPattern = regexp.MustCompile(`https?://\S+`)

// SpamScorer attribue un score heuristique à un message de contact
type SpamScorer struct {
	keywords *regexp.Regexp
}

func NewSpamScorer() *SpamScorer {
	return &SpamScorer{
		keywords: regexp.MustCompile(`(?i)(` + strings.Join(spamKeywords, "|") + `)`),
	}
}

// Score cumule : 1.5 par lien, 2.0 par mot-clé, 1.5 si le message crie
func (s *SpamScorer) Score(message string) float64 {
	score := 0.0

	score += 1.5 * float64(len(linkPattern.FindAllString(message, -1)))
	score += 2.0 * float64(len(s.keywords.FindAllString(message, -1)))

	if isShouting(message) {
		score += 1.5
	}

	return score
}

func (s *SpamScorer) IsSpam(score float64) bool {
	return score >= spamThreshold
}

// isShouting : plus de 60% de majuscules sur un message non trivial
func isShouting(message string) bool {
	letters, uppers := 0, 0
	for _, r := range message {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	return letters >= 20 && float64(uppers)/float64(letters) > 0.6
}

// TriageUnread score les messages unread et marque les spams.
// Retourne le nombre de messages marqués.
func (ms *MessageService) TriageUnread(scorer *SpamScorer) (int, error) {
	var messages []ContactMessage
	if err := ms.db.Where("status = ?", StatusUnread).Find(&messages).Error; err != nil {
		return 0, err
	}

	flagged := 0
	for _, msg := range messages {
		score := scorer.Score(msg.Message)

		if scorer.IsSpam(score) {
			if err := ms.MarkSpam(msg.ID, score); err != nil {
				return flagged, err
			}
			flagged++
			continue
		}

		if score != msg.SpamScore {
			if err := ms.db.Model(&ContactMessage{}).Where("id = ?", msg.ID).
				Update("spam_score", score).Error; err != nil {
				return flagged, err
			}
		}
	}

	return flagged, nil
}

// SetupTriageCron lance le triage anti-spam toutes les heures
func SetupTriageCron(ms *MessageService) *cron.Cron {
	c := cron.New()
	scorer := NewSpamScorer()

	c.AddFunc("0 * * * *", func() {
		flagged, err := ms.TriageUnread(scorer)
		if err != nil {
			log.Error().Err(err).Msg("Spam triage failed")
			return
		}
		if flagged > 0 {
			log.Info().Int("flagged", flagged).Msg("Spam triage completed")
		}
	})

	c.Start()
	return c
}
