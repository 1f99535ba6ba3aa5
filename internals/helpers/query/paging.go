package query

// Page memotong hasil query untuk list endpoint. page dimulai dari 1.
func Page[T any](items []T, page, perPage int) []T {
	if perPage <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
