package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Catalog
	ErrDuplicateID = errors.New("duplicate product id")

	// Referrals
	ErrInvalidReferrer = errors.New("referrer id is not numeric")
	ErrSelfReferral    = errors.New("user cannot refer themselves")

	// Receipt intake
	ErrDownloadFailed = errors.New("receipt download failed")
	ErrImageDecode    = errors.New("receipt image could not be decoded")
	ErrRelayFailed    = errors.New("moderation relay failed")
)
