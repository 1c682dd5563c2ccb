package clmessages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpamScorer(t *testing.T) {
	scorer := NewSpamScorer()

	tests := []struct {
		name    string
		message string
		want    float64
	}{
		{
			name:    "message normal",
			message: "Bonjour, je voudrais un devis pour mon site.",
			want:    0,
		},
		{
			name:    "un lien",
			message: "Voici mon site https://example.com merci",
			want:    1.5,
		},
		{
			name:    "mot-clé spam",
			message: "Best casino in town",
			want:    2.0,
		},
		{
			name:    "liens et mots-clés cumulés",
			message: "buy now https://a.com https://b.com cheap seo",
			want:    1.5 + 1.5 + 2.0 + 2.0,
		},
		{
			name:    "message qui crie",
			message: "THIS IS AN AMAZING OPPORTUNITY FOR YOU",
			want:    1.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scorer.Score(tt.message), 0.001)
		})
	}
}

func TestSpamScorerThreshold(t *testing.T) {
	scorer := NewSpamScorer()

	assert.False(t, scorer.IsSpam(4.9))
	assert.True(t, scorer.IsSpam(5.0))
	assert.True(t, scorer.IsSpam(10))
}

func TestTriageUnread(t *testing.T) {
	ms := NewMessageService(setupTestDB(t))
	scorer := NewSpamScorer()

	// Un message légitime et un spam évident
	legit := &ContactMessage{
		Name:    "Alice",
		Email:   "alice@example.com",
		Message: "Bonjour, pouvez-vous me rappeler ?",
	}
	require.NoError(t, ms.Insert(legit))

	spam := &ContactMessage{
		Name:    "Spammer",
		Email:   "spam@example.com",
		Message: "free money casino https://spam.example https://spam2.example click here",
	}
	require.NoError(t, ms.Insert(spam))

	// Un message déjà lu ne doit pas être re-trié
	replied := insertMessage(t, ms, StatusReplied)

	flagged, err := ms.TriageUnread(scorer)
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)

	var saved ContactMessage
	require.NoError(t, ms.db.First(&saved, spam.ID).Error)
	assert.Equal(t, StatusSpam, saved.Status)
	assert.True(t, saved.IsSpam)
	assert.Greater(t, saved.SpamScore, 5.0)

	require.NoError(t, ms.db.First(&saved, legit.ID).Error)
	assert.Equal(t, StatusUnread, saved.Status)

	require.NoError(t, ms.db.First(&saved, replied.ID).Error)
	assert.Equal(t, StatusReplied, saved.Status)
}
