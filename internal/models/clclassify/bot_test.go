package clclassify

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotDetector(t *testing.T) {
	detector := NewBotDetector()

	tests := []struct {
		name      string
		userAgent string
		want      bool
	}{
		{
			name:      "user-agent vide",
			userAgent: "",
			want:      true,
		},
		{
			name:      "googlebot",
			userAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			want:      true,
		},
		{
			name:      "curl",
			userAgent: "curl/8.4.0",
			want:      true,
		},
		{
			name:      "client http go",
			userAgent: "Go-http-client/1.1",
			want:      true,
		},
		{
			name:      "python requests",
			userAgent: "python-requests/2.31.0",
			want:      true,
		},
		{
			name:      "headless chrome",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) HeadlessChrome/120.0.0.0 Safari/537.36",
			want:      true,
		},
		{
			name:      "user-agent court sans navigateur",
			userAgent: "MonClientMaison/1.0",
			want:      true,
		},
		{
			name:      "chrome sur linux",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want:      false,
		},
		{
			name:      "firefox sur windows",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want:      false,
		},
		{
			name:      "safari sur iphone",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := detector.Detect(tt.userAgent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifierError(t *testing.T) {
	inner := errors.New("base corrompue")
	err := &ClassifierError{Classifier: "geoip", Err: inner}

	assert.Contains(t, err.Error(), "geoip")
	assert.True(t, errors.Is(err, inner))

	var cerr *ClassifierError
	wrapped := fmt.Errorf("tracking: %w", err)
	require.True(t, errors.As(wrapped, &cerr))
	assert.Equal(t, "geoip", cerr.Classifier)
}

func TestGeoLite2ResolverDisabled(t *testing.T) {
	resolver, err := NewGeoLite2Resolver("")
	require.NoError(t, err)
	defer resolver.Close()

	// Sans base chargée, la résolution est neutre
	country, err := resolver.Country("82.65.10.1")
	require.NoError(t, err)
	assert.Empty(t, country)
}

func TestGeoLite2ResolverBadIP(t *testing.T) {
	resolver, err := NewGeoLite2Resolver("")
	require.NoError(t, err)
	defer resolver.Close()

	country, err := resolver.Country("pas-une-ip")
	require.NoError(t, err)
	assert.Empty(t, country)
}
