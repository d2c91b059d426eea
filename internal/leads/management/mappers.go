package management

import (
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/transport"
)

// ToLeadResponse converts a repository lead to the API shape.
func ToLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:                  lead.ID,
		ConsumerName:        lead.ConsumerName,
		ConsumerPhone:       lead.ConsumerPhone,
		ConsumerEmail:       lead.ConsumerEmail,
		Source:              lead.Source,
		QualificationStatus: lead.QualificationStatus,
		QualifiedForUserID:  lead.QualifiedForUserID,
		EnteredPoolAt:       lead.EnteredPoolAt,
		AssignedAgentID:     lead.AssignedAgentID,
		AssignedAt:          lead.AssignedAt,
		CreatedAt:           lead.CreatedAt,
		UpdatedAt:           lead.UpdatedAt,
	}
}
