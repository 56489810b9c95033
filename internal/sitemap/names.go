package sitemap

import "strconv"

// IndexName is the storage name of the sitemap index document.
const IndexName = "index"

// BatchName returns the storage name of batch seq.
func BatchName(seq int) string {
	return strconv.Itoa(seq)
}

// ValidName reports whether name can refer to a generated document: "index" or a positive
// batch number without leading zeros.
func ValidName(name string) bool {
	if name == IndexName {
		return true
	}
	if name == "" || name[0] == '0' {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseBatchName returns the sequence number of a batch name.
func ParseBatchName(name string) (int, bool) {
	if name == IndexName || !ValidName(name) {
		return 0, false
	}
	seq, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	return seq, true
}
