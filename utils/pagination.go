package utils

// PageBounds devuelve los índices [start, end) para paginar un slice de
// longitud total. Page is 0-based. A page past the end yields start==end.
func PageBounds(page, size, total int) (int, int) {
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}

// TotalPages calcula ceil(total/size).
func TotalPages(total int, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
