package dto

// Source is one row of the ingestion source list.
type Source struct {
	Domain                   string
	CompanyCommercialName    string
	CompanyLegalName         string
	CompanyAllAvailableNames []string
}

// IngestSummary reports the outcome of an ingestion pass.
type IngestSummary struct {
	Total             int `json:"total"`
	Skipped           int `json:"skipped"`
	Stored            int `json:"stored"`
	FailedExtractions int `json:"failed_extractions"`
	StoreErrors       int `json:"store_errors"`
}

// IngestAccepted is returned when a pass is started in the background.
type IngestAccepted struct {
	Sources int `json:"sources"`
}
