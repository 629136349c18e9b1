package request

import "net/http"

// ListParams holds pagination and filter parameters for cluster listings.
type ListParams struct {
	Limit    int
	Offset   int
	Platform string
	Phase    string
}

// ParseListParams extracts list parameters from the query string. Unknown
// filter values are passed through and simply match nothing.
func ParseListParams(r *http.Request) ListParams {
	pg := ParsePagination(r)
	return ListParams{
		Limit:    pg.Limit,
		Offset:   pg.Offset,
		Platform: r.URL.Query().Get("platform"),
		Phase:    r.URL.Query().Get("phase"),
	}
}
