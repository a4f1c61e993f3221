package narrative

import (
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
)

// Appraisal describes a target the player is looking at
type Appraisal struct {
	TargetName     string `json:"targetName"`
	Rank           string `json:"rank"`
	Description    string `json:"description"`
	EstimatedValue string `json:"estimatedValue"`
}

// MagicLevel is the radar's rough power reading
type MagicLevel string

// Radar readings
const (
	MagicLow    MagicLevel = "LOW"
	MagicMedium MagicLevel = "MEDIUM"
	MagicHigh   MagicLevel = "HIGH"
)

// RadarEntity is one presence picked up by a surroundings scan
type RadarEntity struct {
	Name       string     `json:"name"`
	MagicLevel MagicLevel `json:"magicLevel"`
	Distance   string     `json:"distance"`
	Hostility  string     `json:"hostility"`
}

// EntityAnalysis explains a term from the story
type EntityAnalysis struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Origin      string `json:"origin"`
}

// radarReport wraps the scan result; structured output must be an object
type radarReport struct {
	Entities []RadarEntity `json:"entities"`
}

var (
	statusSchema    = mustSchema(entities.StatusUpdate{})
	appraisalSchema = mustSchema(Appraisal{})
	radarSchema     = withMagicEnum(mustSchema(radarReport{}))
	entitySchema    = mustSchema(EntityAnalysis{})
)

func mustSchema(v any) *jsonschema.Definition {
	def, err := jsonschema.GenerateSchemaForType(v)
	if err != nil {
		panic(fmt.Sprintf("narrative: cannot build schema for %T: %v", v, err))
	}
	return def
}

func withMagicEnum(def *jsonschema.Definition) *jsonschema.Definition {
	list, ok := def.Properties["entities"]
	if !ok || list.Items == nil {
		return def
	}
	if level, ok := list.Items.Properties["magicLevel"]; ok {
		level.Enum = []string{string(MagicLow), string(MagicMedium), string(MagicHigh)}
		list.Items.Properties["magicLevel"] = level
		def.Properties["entities"] = list
	}
	return def
}

// StatusSchema returns the schema analyze replies must satisfy
func StatusSchema() *jsonschema.Definition {
	return statusSchema
}
