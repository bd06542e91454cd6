package services

import "school-fundraiser-platform/internal/models"

// ResolveReferral applies the referral attribution precedence shared by all
// three payment rails. An explicit per-item referring student (from a shared
// link) always wins; otherwise an authenticated purchaser is credited with a
// self-referral; otherwise no student is credited.
func ResolveReferral(itemReferringID, purchaserStudentID *int) *int {
	if itemReferringID != nil {
		id := *itemReferringID
		return &id
	}
	if purchaserStudentID != nil {
		id := *purchaserStudentID
		return &id
	}
	return nil
}

// ReferralKindFor reports how the resolved student came to be credited
func ReferralKindFor(itemReferringID, purchaserStudentID *int) models.ReferralKind {
	if itemReferringID != nil {
		if purchaserStudentID != nil && *itemReferringID == *purchaserStudentID {
			return models.ReferralSelf
		}
		return models.ReferralExternal
	}
	if purchaserStudentID != nil {
		return models.ReferralSelf
	}
	return ""
}
