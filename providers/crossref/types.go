package crossref

// WorksResponse ist die Antwort der Crossref Works-API.
type WorksResponse struct {
	Message Work `json:"message"`
}

// Work repräsentiert ein einzelnes Werk in der API-Antwort.
type Work struct {
	Title          []string `json:"title"`
	ContainerTitle []string `json:"container-title"`
	Publisher      string   `json:"publisher"`
	Author         []Author `json:"author"`
}

// Author ist ein Autor eines Werks.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}
