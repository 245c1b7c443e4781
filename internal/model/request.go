package model

// SearchAction is the h5ai API action used for searching.
const SearchAction = "get"

// SearchRequest is the JSON body POSTed to an h5ai server.
//
//	{"action":"get","search":{"href":"/NAME/","pattern":"query","ignorecase":true}}
type SearchRequest struct {
	Action string      `json:"action"`
	Search SearchQuery `json:"search"`
}

// SearchQuery is the "search" object of a SearchRequest.
type SearchQuery struct {
	// Href is the directory to search below.
	Href string `json:"href"`

	// Pattern is the user query, passed through unchanged.
	Pattern string `json:"pattern"`

	// IgnoreCase is always true.
	IgnoreCase bool `json:"ignorecase"`
}

// NewSearchRequest builds the search request for a server and a query.
func NewSearchRequest(server Server, pattern string) SearchRequest {
	return SearchRequest{
		Action: SearchAction,
		Search: SearchQuery{
			Href:       server.MountPath(),
			Pattern:    pattern,
			IgnoreCase: true,
		},
	}
}
