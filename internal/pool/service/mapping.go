package service

import (
	"crm_backend/internal/pool/domain"
	"crm_backend/internal/pool/transport"
)

func toLeadResponse(lead domain.Lead) transport.LeadResponse {
	r := domain.ToRecord(lead.Qualification)
	return transport.LeadResponse{
		ID:                  lead.ID,
		ConsumerName:        lead.ConsumerName,
		ConsumerPhone:       lead.ConsumerPhone,
		Source:              lead.Source,
		QualificationStatus: r.Status,
		QualifiedForUserID:  r.QualifiedForUserID,
		EnteredPoolAt:       r.EnteredPoolAt,
		AssignedAgentID:     r.AssignedAgentID,
		AssignedAt:          r.AssignedAt,
		CreatedAt:           lead.CreatedAt,
		UpdatedAt:           lead.UpdatedAt,
	}
}

func toLeadResponses(leads []domain.Lead) []transport.LeadResponse {
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, toLeadResponse(lead))
	}
	return out
}
