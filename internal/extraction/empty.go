package extraction

import "leakscan/internal/domain"

// EmptyExtractionConfidence marks "the classifier ran and failed", as
// opposed to a zero score meaning it never ran.
const EmptyExtractionConfidence = 0.3

// EmptyExtraction is the structurally complete record every degraded
// extraction path returns.
func EmptyExtraction(reason string) domain.UniversalExtraction {
	return domain.UniversalExtraction{
		FileKind:                 domain.FileKindUnknown,
		ClassificationConfidence: EmptyExtractionConfidence,
		Grain:                    domain.GrainUnknown,
		NeedsUserMapping:         true,
		MappingSuggestions:       map[string]string{},
		Items:                    []domain.ExtractedItem{},
		Expenses:                 []domain.ExtractedExpense{},
		FieldConfidence:          map[string]map[string]float64{},
		Validation: domain.Validation{
			MathCheckPassed: domain.MathCheckUnknown,
			Notes:           []string{reason},
		},
		NotesForUser: "We could not read this document automatically: " + reason + ". Please check the file or map its columns manually.",
	}
}
