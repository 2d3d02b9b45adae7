package application

import "time"

const (
	// Listing pagination
	listingPageSize = 100
	maxListingPages = 200

	// Transient fetch retries
	maxFetchAttempts = 3
	retryBackoffBase = 2 * time.Second

	// Stats queries read everything in range; API listings default to
	// a page.
	defaultMatchLimit = 100

	// Excel report configuration
	excelTeamsSheet  = "Teams"
	excelHeroesSheet = "Heroes"
)
