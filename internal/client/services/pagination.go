package services

// Page is a 1-based page of Size items.
type Page struct {
	Number int
	Size   int
}

func (p Page) size() int {
	if p.Size <= 0 {
		return DefaultLimit
	}
	return p.Size
}

// Skip is the offset of the page's first item.
func (p Page) Skip() int {
	return (max(p.Number, 1) - 1) * p.size()
}

// TotalPages is at least 1, so an empty listing still has a page to show.
func (p Page) TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + p.size() - 1) / p.size()
}

// Params returns list parameters selecting this page.
func (p Page) Params(base ListParams) ListParams {
	base.Skip = p.Skip()
	base.Limit = p.size()
	return base
}
