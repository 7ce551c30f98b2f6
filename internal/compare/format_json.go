package compare

import (
	"encoding/json"

	"github.com/rgehrsitz/btcgo/internal/domain"
)

// JSONFormatter formats comparison results as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation

	// IncludeOutcomes adds each variant's full simulation, keyed by variant name.
	IncludeOutcomes bool
}

type comparisonDocument struct {
	*ComparisonSet
	Outcomes map[string]*domain.RetirementOutcome `json:"outcomes,omitempty"`
}

// Format generates JSON output for comparison results
func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	doc := comparisonDocument{ComparisonSet: compSet}
	if jf.IncludeOutcomes && compSet != nil {
		doc.Outcomes = make(map[string]*domain.RetirementOutcome)
		if compSet.BaseResult != nil && compSet.BaseResult.Outcome != nil {
			doc.Outcomes[compSet.BaseResult.ScenarioName] = compSet.BaseResult.Outcome
		}
		for _, alt := range compSet.AlternativeResults {
			if alt.Outcome != nil {
				doc.Outcomes[alt.ScenarioName] = alt.Outcome
			}
		}
	}

	var data []byte
	var err error
	if jf.Pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
