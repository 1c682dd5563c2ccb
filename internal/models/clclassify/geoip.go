package clclassify

import (
	"fmt"
	"net/netip"

	"github.com/oschwald/geoip2-golang/v2"
	"github.com/rs/zerolog/log"
)

// GeoLite2Resolver résout le pays d'une IP via une base GeoLite2 Country.
// La base est optionnelle : sans base, toutes les IP résolvent en "".
type GeoLite2Resolver struct {
	reader *geoip2.Reader
}

func NewGeoLite2Resolver(path string) (*GeoLite2Resolver, error) {
	if path == "" {
		log.Info().Msg("GeoIP désactivé : pas de base configurée")
		return &GeoLite2Resolver{}, nil
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("impossible d'ouvrir la base GeoLite2 %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("Base GeoLite2 chargée")
	return &GeoLite2Resolver{reader: reader}, nil
}

// Country retourne le code ISO 3166-1 alpha-2, ou "" si l'IP est
// invalide ou inconnue de la base
func (r *GeoLite2Resolver) Country(ip string) (string, error) {
	if r.reader == nil {
		return "", nil
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "", nil
	}

	record, err := r.reader.Country(addr)
	if err != nil {
		return "", &ClassifierError{Classifier: "geoip", Err: err}
	}

	return record.Country.ISOCode, nil
}

func (r *GeoLite2Resolver) Close() error {
	if r.reader != nil {
		return r.reader.Close()
	}
	return nil
}
