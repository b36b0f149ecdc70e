package analyzer

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/quaestor/internal/models"
)

//go:embed personas.yaml
var personaFS embed.FS

// Persona is one analyst profile used to frame the narrative prompt
type Persona struct {
	Role         string `yaml:"role"`
	Context      string `yaml:"context"`
	Task         string `yaml:"task"`
	OutputFormat string `yaml:"output_format"`
}

var personas map[string]Persona

func init() {
	data, err := personaFS.ReadFile("personas.yaml")
	if err != nil {
		panic(fmt.Sprintf("analyzer: read personas: %v", err))
	}
	if err := yaml.Unmarshal(data, &personas); err != nil {
		panic(fmt.Sprintf("analyzer: parse personas: %v", err))
	}
}

// PersonaFor returns the persona for an analysis type, falling back to the
// executive summary persona for unknown types.
func PersonaFor(analysisType string) Persona {
	if p, ok := personas[analysisType]; ok {
		return p
	}
	return personas[models.AnalysisTypeExecutiveSummary]
}

// AnalysisTypes lists the persona keys available for report generation
func AnalysisTypes() []string {
	return []string{
		models.AnalysisTypeExecutiveSummary,
		models.AnalysisTypeDetailed,
		models.AnalysisTypeRiskAssessment,
		models.AnalysisTypeTrendAnalysis,
	}
}
