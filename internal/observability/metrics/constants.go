// Package metrics provides constants used across metric definitions.
package metrics

import "time"

// Operation names recorded by the REST client.
const (
	// OpListSightings is GET /sightings.
	OpListSightings = "list_sightings"
	// OpListSpecies is GET /species.
	OpListSpecies = "list_species"
	// OpCreateSighting is POST /sightings.
	OpCreateSighting = "create_sighting"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Submission outcomes of the creation form.
const (
	SubmitCreated = "created"
	SubmitInvalid = "invalid"
	SubmitFailed  = "failed"
)

// Histogram bucket configuration constants.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms (1ms to ~4s range).
	BucketStart1ms = 0.001
	// BucketStart64B is the starting bucket for 64 byte histograms.
	BucketStart64B = 64.0
	// BucketStart100B is the starting bucket for 100 byte histograms (100B to ~10MB range).
	BucketStart100B = 100.0

	BucketFactor2  = 2
	BucketFactor10 = 10

	BucketCount6  = 6
	BucketCount10 = 10
	BucketCount12 = 12
)

// ShutdownTimeout is the timeout for graceful shutdown of the metrics server.
const ShutdownTimeout = 5 * time.Second
