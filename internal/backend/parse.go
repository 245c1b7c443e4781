package backend

import (
	"github.com/nao1215/flixsearch/internal/filetype"
	"github.com/nao1215/flixsearch/internal/link"
	"github.com/nao1215/flixsearch/internal/model"
	"github.com/tidwall/gjson"
)

// parseSearchResponse reads {"search":[{"href":"..."}, ...]} and builds the
// result items for server. Entries without a string href are skipped.
func parseSearchResponse(server model.Server, body []byte) ([]*model.ResultItem, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}

	search := gjson.GetBytes(body, "search")
	if !search.IsArray() {
		return nil, ErrMissingSearchKey
	}

	items := make([]*model.ResultItem, 0)
	search.ForEach(func(_, entry gjson.Result) bool {
		href := entry.Get("href")
		if href.Type != gjson.String {
			return true
		}
		if item, ok := newResultItem(server, href.Str); ok {
			items = append(items, item)
		}
		return true
	})

	return items, nil
}

// newResultItem builds the item for href, or reports false when the file
// extension is not allowed.
func newResultItem(server model.Server, href string) (*model.ResultItem, bool) {
	ext, ok := filetype.Extension(href)
	if !ok {
		return nil, false
	}

	return &model.ResultItem{
		Name:       link.FileName(href),
		URL:        link.Resolve(server.TrimmedURL(), server.Name, href),
		Extension:  ext,
		Icon:       filetype.IconFor(ext),
		Server:     server.Name,
		Categories: server.CategoriesCopy(),
	}, true
}
