package model

import "encoding/json"

// PageRequest addresses one page of the patient collection. Page is 1-based.
type PageRequest struct {
	Page  int
	Limit int
}

// Pagination is the paging metadata returned alongside each page.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// PageResponse is one validated page. Records are left undecoded so a bad
// element can be reported with its raw payload.
type PageResponse struct {
	Records    []json.RawMessage
	Pagination Pagination

	// Attempts is how many requests it took to obtain this page.
	Attempts int
}
