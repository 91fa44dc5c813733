package models

// StatusID identifies a project sales status in the local catalogue.
type StatusID string

// The four project statuses. The ids match the rows of the status
// catalogue that the public site joins against.
const (
	StatusPlanning          StatusID = "1000000000000000001"
	StatusUnderConstruction StatusID = "1000000000000000002"
	StatusLaunch            StatusID = "1000000000000000003"
	StatusImmediateDelivery StatusID = "1000000000000000004"
)

// statusByLabel maps normalized CRM labels (lower case, no diacritics) to ids.
var statusByLabel = map[string]StatusID{
	"sobre planos":      StatusPlanning,
	"en construccion":   StatusUnderConstruction,
	"lanzamiento":       StatusLaunch,
	"entrega inmediata": StatusImmediateDelivery,
}

// LookupStatus returns the status id for an already normalized label.
func LookupStatus(normalized string) (StatusID, bool) {
	id, ok := statusByLabel[normalized]
	return id, ok
}

// AllStatuses returns the status ids in catalogue order.
func AllStatuses() []StatusID {
	return []StatusID{StatusPlanning, StatusUnderConstruction, StatusLaunch, StatusImmediateDelivery}
}
