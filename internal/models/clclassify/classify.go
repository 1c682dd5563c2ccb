package clclassify

import "fmt"

// BotDetector classifie un user-agent comme robot ou humain.
// L'implémentation doit être pure (pas d'I/O, pas d'état partagé mutable).
type BotDetector interface {
	Detect(userAgent string) (bool, error)
}

// GeoResolver résout une adresse IP en code pays ISO 3166-1 alpha-2.
// Une IP non résolvable retourne "" sans erreur.
type GeoResolver interface {
	Country(ip string) (string, error)
}

// ClassifierError signale l'échec d'un classifieur (bot ou geo).
// Non rattrapée par le service visiteurs : elle remonte à l'appelant.
type ClassifierError struct {
	Classifier string
	Err        error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("classifier %s: %v", e.Classifier, e.Err)
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}
