package cfd

// FillGaps makes every column dense across the matrix's row set. Each column
// is scanned chronologically: a set cell becomes the carried value, an unset
// cell receives the carried value, and the carry starts at zero. Running it
// again on a filled matrix changes nothing.
func FillGaps(m *Matrix) int {
	dates := m.Dates()
	filled := 0
	for status := range m.statuses {
		carry := 0
		for _, date := range dates {
			if v, ok := m.Get(date, status); ok {
				carry = v
				continue
			}
			m.Set(date, status, carry)
			filled++
		}
	}
	return filled
}
