// Package policy holds the single authorization rule of the system, kept
// separate from storage and transport so the rule stays auditable on its own.
package policy

import "github.com/kaddachi/tasktrack-be/internal/models"

// CanAccess reports whether the caller may read or mutate a resource owned by
// ownerID. Staff bypass ownership; everyone else only reaches their own
// records.
func CanAccess(caller models.Caller, ownerID string) bool {
	return caller.IsStaff || caller.ID == ownerID
}
