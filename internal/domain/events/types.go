package events

type EventType string

const (
	EventTypePetCreated          EventType = "PET_CREATED"
	EventTypePetUpdated          EventType = "PET_UPDATED"
	EventTypePetAdopted          EventType = "PET_ADOPTED"
	EventTypePetUnadopted        EventType = "PET_UNADOPTED"
	EventTypeMoodChanged         EventType = "MOOD_CHANGED"
	EventTypeReferenceReassigned EventType = "REFERENCE_REASSIGNED"
)

// Source indica qué componente originó el evento.
type Source string

const (
	SourceAPI       Source = "api"
	SourceScheduler Source = "scheduler"
	SourceRegistry  Source = "registry"
	SourceSystem    Source = "system"
)

// KnownType valida tipos recibidos por query string.
func KnownType(t EventType) bool {
	switch t {
	case EventTypePetCreated,
		EventTypePetUpdated,
		EventTypePetAdopted,
		EventTypePetUnadopted,
		EventTypeMoodChanged,
		EventTypeReferenceReassigned:
		return true
	}
	return false
}
