package model

// CatalogMessage is the catalog record shape sent to Kafka by the scanner
// and consumed by the batch persister.
type CatalogMessage struct {
	ExternalID      int64   `json:"external_id"`
	Name            string  `json:"name"`
	QualifiedName   string  `json:"qualified_name"`
	Description     string  `json:"description"`
	Language        string  `json:"language"`
	Popularity      int64   `json:"popularity"`
	Topics          string  `json:"topics"`
	DocumentExcerpt string  `json:"document_excerpt"`
	Analysis        string  `json:"analysis"`
	UtilityScore    float64 `json:"utility_score"`
}

// NewCatalogMessage flattens a record into its feed representation.
func NewCatalogMessage(rec *CatalogRecord) CatalogMessage {
	return CatalogMessage{
		ExternalID:      rec.ExternalID,
		Name:            rec.Name,
		QualifiedName:   rec.QualifiedName,
		Description:     rec.Description,
		Language:        rec.Language,
		Popularity:      rec.Popularity,
		Topics:          rec.Topics,
		DocumentExcerpt: rec.DocumentExcerpt,
		Analysis:        rec.Analysis,
		UtilityScore:    rec.UtilityScore,
	}
}
