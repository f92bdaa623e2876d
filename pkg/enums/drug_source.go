package enums

import "fmt"

// DrugSource records how a drug row entered the catalog.
type DrugSource string

const (
	DrugSourceManual DrugSource = "manual"
	DrugSourceImport DrugSource = "import"
	DrugSourceOCR    DrugSource = "ocr"
)

var validDrugSources = []DrugSource{
	DrugSourceManual,
	DrugSourceImport,
	DrugSourceOCR,
}

// IsValid reports whether the value matches the canonical drug source enum.
func (s DrugSource) IsValid() bool {
	for _, candidate := range validDrugSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDrugSource converts the raw string to DrugSource.
func ParseDrugSource(value string) (DrugSource, error) {
	for _, candidate := range validDrugSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid drug source %q", value)
}
