package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fsvp/internal/model"
)

func TestPolicyMatrix(t *testing.T) {
	tests := []struct {
		name string
		role model.Role
		cap  Capability
		want Grant
	}{
		{"vendor creates own products", model.RoleVendor, CapProductCreate, AllowOwner},
		{"distributor cannot create products", model.RoleDistributor, CapProductCreate, Deny},
		{"admin cannot create products", model.RoleAdmin, CapProductCreate, Deny},

		{"vendor edits own drafts only", model.RoleVendor, CapProductEdit, AllowOwnerDraft},
		{"auditor edits any product", model.RoleAuditor, CapProductEdit, Allow},
		{"admin edits any product", model.RoleAdmin, CapProductEdit, Allow},

		{"vendor submits own drafts", model.RoleVendor, CapProductSubmit, AllowOwnerDraft},
		{"auditor cannot submit", model.RoleAuditor, CapProductSubmit, Deny},

		{"distributor reviews pending", model.RoleDistributor, CapProductReview, AllowPending},
		{"auditor reviews pending", model.RoleAuditor, CapProductReview, AllowPending},
		{"vendor never reviews", model.RoleVendor, CapProductReview, Deny},
		{"admin never reviews", model.RoleAdmin, CapProductReview, Deny},

		{"vendor sees only own products", model.RoleVendor, CapProductViewAll, Deny},
		{"admin sees all products", model.RoleAdmin, CapProductViewAll, Allow},

		{"vendor uploads to own products", model.RoleVendor, CapDocumentUpload, AllowOwner},
		{"distributor cannot upload", model.RoleDistributor, CapDocumentUpload, Deny},

		{"vendor signs own documents", model.RoleVendor, CapDocumentSign, AllowOwner},
		{"distributor signs any document", model.RoleDistributor, CapDocumentSign, Allow},

		{"vendor denied global audit view", model.RoleVendor, CapAuditViewGlobal, Deny},
		{"auditor granted global audit view", model.RoleAuditor, CapAuditViewGlobal, Allow},
		{"admin granted global audit view", model.RoleAdmin, CapAuditViewGlobal, Allow},

		{"distributor verifies vendors", model.RoleDistributor, CapVendorVerify, Allow},
		{"vendor cannot verify vendors", model.RoleVendor, CapVendorVerify, Deny},

		{"unknown role gets nothing", model.Role("ghost"), CapProductEdit, Deny},
		{"unknown capability gets nothing", model.RoleAdmin, Capability("nope"), Deny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.role, tt.cap))
		})
	}
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(model.RoleVendor, CapProductSubmit))
	assert.False(t, Allowed(model.RoleVendor, CapProductReview))
}
