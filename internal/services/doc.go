// Package services holds shared helpers for the external-service clients,
// chiefly the sentinel errors used to classify failures surfaced to the user.
package services
