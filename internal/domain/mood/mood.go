package mood

import (
	"errors"
	"strings"
	"time"
)

// Mood es el estado de ánimo derivado de una mascota.
// @Enum Happy, Excited, Sad
type Mood string

const (
	Happy   Mood = "Happy"
	Excited Mood = "Excited"
	Sad     Mood = "Sad"
)

var ErrUnknownMood = errors.New("unknown mood")

const day = 24 * time.Hour

// All devuelve los moods en orden de "favorabilidad" descendente.
func All() []Mood {
	return []Mood{Happy, Excited, Sad}
}

// Parse acepta el label sin distinguir mayúsculas/minúsculas.
func Parse(label string) (Mood, error) {
	label = strings.TrimSpace(label)
	for _, m := range All() {
		if strings.EqualFold(label, string(m)) {
			return m, nil
		}
	}
	return "", ErrUnknownMood
}

func (m Mood) Valid() bool {
	return Rank(m) >= 0
}

// Rank: Happy > Excited > Sad. Desconocido = -1.
func Rank(m Mood) int {
	switch m {
	case Happy:
		return 2
	case Excited:
		return 1
	case Sad:
		return 0
	default:
		return -1
	}
}

// Policy define cómo se deriva el mood.
// IgnoresAdoption=true replica la variante que sólo mira el tiempo transcurrido.
type Policy struct {
	IgnoresAdoption bool
}

// DefaultPolicy: adopción => Happy, granularidad en días (redondeo hacia arriba).
var DefaultPolicy = Policy{IgnoresAdoption: false}

// Derive calcula el mood con la política canónica.
func Derive(createdAt time.Time, adopted bool, now time.Time) Mood {
	return DefaultPolicy.Derive(createdAt, adopted, now)
}

// Derive es pura y total:
//   - adoptada (y la política no la ignora) => Happy
//   - días transcurridos (ceil) <= 1 => Happy
//   - <= 3 => Excited
//   - resto => Sad
//
// Un createdAt en el futuro (clock skew) cuenta como Happy.
func (p Policy) Derive(createdAt time.Time, adopted bool, now time.Time) Mood {
	if adopted && !p.IgnoresAdoption {
		return Happy
	}

	elapsed := now.Sub(createdAt)
	if elapsed <= 0 {
		return Happy
	}

	switch days := elapsedDays(elapsed); {
	case days <= 1:
		return Happy
	case days <= 3:
		return Excited
	default:
		return Sad
	}
}

func elapsedDays(d time.Duration) int64 {
	days := int64(d / day)
	if d%day != 0 {
		days++
	}
	return days
}
