package domain

import "errors"

var (
	// ErrDataUnavailable means a source dataset could not be fetched or parsed.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrCompanyNotFound means no filing matches the selected company.
	ErrCompanyNotFound = errors.New("company has no filing")
	// ErrDocumentNumberMissing means the filing link carries no document number.
	ErrDocumentNumberMissing = errors.New("document number missing")
	// ErrItemMappingMissing means the requested item has no viewer code.
	ErrItemMappingMissing = errors.New("item mapping missing")
	// ErrDiscoveryFailed means the item index page could not be fetched or parsed.
	ErrDiscoveryFailed = errors.New("item discovery failed")
)
