package references

import "strings"

// Kind distingue las dos tablas de referencia que usa Pet.
// @Enum species, personality
type Kind string

const (
	KindSpecies     Kind = "species"
	KindPersonality Kind = "personality"
)

// UnknownName es el nombre del registro centinela de cada kind.
const UnknownName = "Unknown"

func Kinds() []Kind {
	return []Kind{KindSpecies, KindPersonality}
}

func (k Kind) Valid() bool {
	return k == KindSpecies || k == KindPersonality
}

// Label para mensajes de error / logs ("species", "personality").
func (k Kind) String() string {
	return string(k)
}

// Reference es un registro de Species o Personality (estructuralmente idénticos).
type Reference struct {
	ID   string
	Kind Kind
	Name string
}

// IsUnknown indica si es el centinela protegido.
func (r Reference) IsUnknown() bool {
	return r.Name == UnknownName
}

// RefInput es lo que llega desde la API para apuntar a una referencia:
// un id, un nombre, o ambos (si viene id, gana el id).
type RefInput struct {
	ID   string
	Name string
}

func (in RefInput) Empty() bool {
	return strings.TrimSpace(in.ID) == "" && strings.TrimSpace(in.Name) == ""
}
