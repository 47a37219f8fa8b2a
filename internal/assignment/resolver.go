// Package assignment maps resident postal codes onto fire-station service ranges.
package assignment

import "github.com/reliefgrid/reliefgrid/internal/models"

// Resolve returns the first station in roster order whose serviced range
// contains the postal code, or nil if none matches. Codes are compared as
// strings: "9999" sorts after "10000", so rosters mixing code lengths must
// zero-pad. The result is a snapshot; a later range change does not move
// already-assigned residents.
func Resolve(postalCode string, roster []models.User) *models.User {
	for i := range roster {
		station := roster[i]
		if station.Role != models.RoleFireStation || station.FireStation == nil {
			continue
		}
		fs := station.FireStation
		if fs.PostalCodeStart <= postalCode && postalCode <= fs.PostalCodeEnd {
			return &roster[i]
		}
	}
	return nil
}
