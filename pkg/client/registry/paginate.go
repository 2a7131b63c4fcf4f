package registry

import (
	"net/url"
	"strconv"
	"strings"
)

// Paginate is a cursor for the registry's paginated list endpoints. N
// caps the number of results per page; Last names the last result of
// the previous page. A nil cursor requests the registry default.
type Paginate struct {
	N    int
	Last string
}

// query renders the cursor as list endpoint query parameters.
func (p *Paginate) query() url.Values {
	if p == nil {
		return nil
	}

	values := url.Values{}

	if p.N > 0 {
		values.Set("n", strconv.Itoa(p.N))
	}

	if p.Last != "" {
		values.Set("last", p.Last)
	}

	return values
}

// nextPage extracts the cursor for the next page from an RFC 5988 Link
// response header, or returns nil when no rel="next" link is present.
func nextPage(header string) *Paginate {
	for _, link := range strings.Split(header, ",") {
		target, params, found := strings.Cut(link, ";")
		if !found || !strings.Contains(params, `rel="next"`) {
			continue
		}

		target = strings.TrimSpace(target)
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}

		linkURL, err := url.Parse(strings.Trim(target, "<>"))
		if err != nil {
			continue
		}

		query := linkURL.Query()

		page := &Paginate{Last: query.Get("last")}
		if n, err := strconv.Atoi(query.Get("n")); err == nil {
			page.N = n
		}

		if page.N == 0 && page.Last == "" {
			continue
		}

		return page
	}

	return nil
}
