package models

// Status-Werte des Verlags-Routings. Sie landen unverändert in der
// Spalte "status" der Router-CSV.
const (
	RouteStatusElsevier             = "elsevier"
	RouteStatusNotElsevier          = "not_elsevier"
	RouteStatusSpringer             = "springer"
	RouteStatusNotFoundSpringer     = "not_found_springer"
	RouteStatusSpringerKeyMissing   = "springer_key_missing"
	RouteStatusWiley                = "wiley"
	RouteStatusNotFoundWiley        = "not_found_wiley"
	RouteStatusWileyKeyMissing      = "wiley_key_missing"
	RouteStatusWileyUnsupported     = "wiley_unsupported"
	RouteStatusUnsupportedPublisher = "unsupported_publisher"
)

// ArticleMeta sind die aus einem Verlags-XML gezogenen Artikel-Metadaten.
type ArticleMeta struct {
	Authors               string `json:"authors"`
	Journal               string `json:"journal"`
	CorrespondingAuthor   string `json:"corresponding_author"`
	CorrespondingEmail    string `json:"corresponding_email"`
	OpenAccessArticle     string `json:"openaccess_article"`
	OpenAccessType        string `json:"openaccess_type"`
	OpenAccessUserLicense string `json:"openaccess_user_license"`
}

// RouteRecord ist das Ergebnis der Verlagsroute für eine DOI: Status,
// extrahierte Metadaten und der Fundort der gespeicherten XML-Datei.
type RouteRecord struct {
	Title     string       `json:"title"`
	DOI       string       `json:"doi"`
	Publisher string       `json:"publisher"`
	Status    string       `json:"status"`
	Meta      *ArticleMeta `json:"meta,omitempty"`

	Statement string   `json:"data_availability_statement"`
	DataLinks []string `json:"data_links"`
	XMLPath   string   `json:"xml_path"`
	S3Link    string   `json:"s3_link,omitempty"`
}
