package generatemockdata

import "mock-data-forge/internal/generator"

// Input is read from the job variables. A missing count means one record.
type Input struct {
	Schema *generator.Object `json:"schema"`
	Count  *int              `json:"count,omitempty"`
}

type Output struct {
	Records          []*generator.Object `json:"records"`
	RecordCount      int                 `json:"recordCount"`
	GenerationTimeMs int64               `json:"generationTimeMs"`
}
