// Package authz holds the declarative role capability table. Every mutating
// operation consults it exactly once; ownership and status qualifiers are
// resolved by the calling service against loaded state.
package authz

import "fsvp/internal/model"

// Capability names an operation gated by role.
type Capability string

const (
	CapProductCreate   Capability = "product.create"
	CapProductEdit     Capability = "product.edit"
	CapProductSubmit   Capability = "product.submit"
	CapProductReview   Capability = "product.review"
	CapProductViewAll  Capability = "product.view_all"
	CapVendorViewAll   Capability = "vendor.view_all"
	CapVendorVerify    Capability = "vendor.verify"
	CapDocumentUpload  Capability = "document.upload"
	CapDocumentSign    Capability = "document.sign"
	CapAuditViewGlobal Capability = "audit.view_global"
)

// Grant is the answer the table gives for a (capability, role) pair.
// Qualified grants still require the caller to pass the named check.
type Grant int

const (
	// Deny refuses the operation outright.
	Deny Grant = iota
	// Allow permits the operation with no further qualification.
	Allow
	// AllowOwner permits the operation only on entities the caller's vendor owns.
	AllowOwner
	// AllowOwnerDraft permits the operation only on owned entities in draft status.
	AllowOwnerDraft
	// AllowPending permits the operation only on entities in pending status.
	AllowPending
)

// matrix is the single source of authorization policy. Admin is deliberately
// absent from review: the workflow never grants it.
var matrix = map[Capability]map[model.Role]Grant{
	CapProductCreate: {
		model.RoleVendor: AllowOwner,
	},
	CapProductEdit: {
		model.RoleVendor:      AllowOwnerDraft,
		model.RoleDistributor: Allow,
		model.RoleAuditor:     Allow,
		model.RoleAdmin:       Allow,
	},
	CapProductSubmit: {
		model.RoleVendor: AllowOwnerDraft,
	},
	CapProductReview: {
		model.RoleDistributor: AllowPending,
		model.RoleAuditor:     AllowPending,
	},
	CapProductViewAll: {
		model.RoleDistributor: Allow,
		model.RoleAuditor:     Allow,
		model.RoleAdmin:       Allow,
	},
	CapVendorViewAll: {
		model.RoleDistributor: Allow,
		model.RoleAuditor:     Allow,
		model.RoleAdmin:       Allow,
	},
	CapVendorVerify: {
		model.RoleDistributor: Allow,
		model.RoleAuditor:     Allow,
		model.RoleAdmin:       Allow,
	},
	CapDocumentUpload: {
		model.RoleVendor: AllowOwner,
	},
	CapDocumentSign: {
		model.RoleVendor:      AllowOwner,
		model.RoleDistributor: Allow,
		model.RoleAuditor:     Allow,
		model.RoleAdmin:       Allow,
	},
	CapAuditViewGlobal: {
		model.RoleDistributor: Allow,
		model.RoleAuditor:     Allow,
		model.RoleAdmin:       Allow,
	},
}

// Check returns the grant for role and capability, Deny when unlisted.
func Check(role model.Role, cap Capability) Grant {
	if grants, ok := matrix[cap]; ok {
		return grants[role]
	}
	return Deny
}

// Allowed reports whether the role has any grant for the capability.
func Allowed(role model.Role, cap Capability) bool {
	return Check(role, cap) != Deny
}
