package models

// ChampionRecord ist das Auswertungsergebnis eines Papers im
// Champion-Durchlauf: abgeglichene Metadaten, der Fundort des
// Data-Availability-Statements und der daraus abgeleitete Score.
type ChampionRecord struct {
	DOI       string
	Meta      PaperMeta
	Section   string
	Statement string
	Score     int
}
