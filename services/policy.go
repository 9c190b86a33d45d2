package services

import "github.com/lborres/vitals/core"

// CheckOwnership reports whether account may act on a resource owned by
// ownerID.
//
// The owner always may. A custodian acting on a subject named in the request
// path (targetSubjectID) may too, when that subject is the owner. A false
// result is reported to the caller exactly like a missing resource.
func CheckOwnership(account *core.Account, ownerID, targetSubjectID string) bool {
	if account == nil || ownerID == "" {
		return false
	}
	if account.Role == core.RoleCustodian && targetSubjectID != "" {
		return ownerID == targetSubjectID
	}
	return account.ID == ownerID
}
