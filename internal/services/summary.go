package services

// CitySummary reports the outcome of a city sync.
type CitySummary struct {
	ProcessedCount int `json:"processedCount"`
	ErrorCount     int `json:"errorCount"`
}

// AttributeSummary reports the outcome of an attribute sync.
type AttributeSummary struct {
	ProcessedCount int `json:"processedCount"`
	ErrorCount     int `json:"errorCount"`
}

// MegaProjectSummary reports the outcome of a mega-project sync.
// ProcessedCount counts every fetched row, InsertedCount the rows written.
type MegaProjectSummary struct {
	ProcessedCount int `json:"processedCount"`
	InsertedCount  int `json:"insertedCount"`
	ErrorCount     int `json:"errorCount"`
}

// ProjectSummary reports the outcome of a project and typology sync.
type ProjectSummary struct {
	ProcessedCount        int             `json:"processedCount"`
	ErrorCount            int             `json:"errorCount"`
	InsertedCount         int             `json:"insertedCount"`
	UpdatedWithFilesCount int             `json:"updatedWithFilesCount"`
	FailedProjects        []FailedProject `json:"failedProjects"`
	Typologies            TypologySummary `json:"typologies"`
}

// FailedProject identifies a project that could not be fully synchronized.
// HC is nil when the source row had no id.
type FailedProject struct {
	HC     *string `json:"hc"`
	Name   string  `json:"name"`
	Reason string  `json:"reason"`
}

// TypologySummary reports the typologies handled during a project sync.
type TypologySummary struct {
	ProcessedCount int              `json:"processedCount"`
	InsertedCount  int              `json:"insertedCount"`
	ErrorCount     int              `json:"errorCount"`
	Failed         []FailedTypology `json:"failed"`
}

// FailedTypology identifies a typology that could not be written.
type FailedTypology struct {
	ID        *string `json:"id"`
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`
	Reason    string  `json:"reason"`
}

// FullSummary combines the summaries of a full run.
type FullSummary struct {
	Cities       *CitySummary        `json:"cities"`
	MegaProjects *MegaProjectSummary `json:"megaProjects"`
	Attributes   *AttributeSummary   `json:"attributes"`
	Projects     *ProjectSummary     `json:"projects"`
}

func newProjectSummary() *ProjectSummary {
	return &ProjectSummary{
		FailedProjects: []FailedProject{},
		Typologies:     TypologySummary{Failed: []FailedTypology{}},
	}
}

func (s *ProjectSummary) addFailure(hc *string, name, reason string) {
	s.FailedProjects = append(s.FailedProjects, FailedProject{HC: hc, Name: name, Reason: reason})
	s.ErrorCount++
}

func (s *TypologySummary) addFailure(id *string, projectID, name, reason string) {
	s.Failed = append(s.Failed, FailedTypology{ID: id, ProjectID: projectID, Name: name, Reason: reason})
	s.ErrorCount++
}
