package menu

// TotalPages is ceil(n / size); zero for an empty list or a bad size.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns the 1-based page of items. Pages outside 1..TotalPages
// yield an empty, non-nil slice.
func Paginate(items []Item, page, size int) []Item {
	if page < 1 || size <= 0 {
		return []Item{}
	}

	if page > TotalPages(len(items), size) {
		return []Item{}
	}

	start := (page - 1) * size
	end := min(start+size, len(items))

	out := make([]Item, end-start)
	copy(out, items[start:end])
	return out
}
