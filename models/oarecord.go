package models

// OARecord sind die Open-Access-Metadaten eines Papers aus Unpaywall
// samt der URLs der besten frei zugänglichen Version.
type OARecord struct {
	DOI           string
	Title         string
	Journal       string
	PublishedDate string
	OAStatus      string
	BestOAURL     string
	PDFURL        string
	XMLURL        string
}
