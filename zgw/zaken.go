package zgw

import (
	"context"
	"net/url"
	"strings"

	"github.com/goliatone/go-zaaknotify/core"
)

func (s *Service) Case(ctx context.Context, caseURL string) (core.Case, error) {
	var out core.Case
	if err := s.getJSON(ctx, caseURL, &out); err != nil {
		return core.Case{}, err
	}
	return out, nil
}

// Roles lists every role attached to a case. Role payloads carry a
// party-type dependent identification block which is mapped to the
// RoleIdentity union here.
func (s *Service) Roles(ctx context.Context, caseURL string) ([]core.Role, error) {
	endpoint := joinBase(s.group.ZakenBaseURL, "/rollen?zaak="+url.QueryEscape(caseURL))
	payloads, err := listAll[rolePayload](ctx, s, endpoint)
	if err != nil {
		return nil, err
	}
	roles := make([]core.Role, 0, len(payloads))
	for _, payload := range payloads {
		roles = append(roles, payload.toRole())
	}
	return roles, nil
}

// StatusHistory lists every status ever set on a case, as the backend
// returns them. Ordering is the policy engine's concern.
func (s *Service) StatusHistory(ctx context.Context, caseURL string) ([]core.Status, error) {
	endpoint := joinBase(s.group.ZakenBaseURL, "/statussen?zaak="+url.QueryEscape(caseURL))
	return listAll[core.Status](ctx, s, endpoint)
}

func (s *Service) CaseDocument(ctx context.Context, linkURL string) (core.CaseDocument, error) {
	var out core.CaseDocument
	if err := s.getJSON(ctx, linkURL, &out); err != nil {
		return core.CaseDocument{}, err
	}
	return out, nil
}

type rolePayload struct {
	URL            string             `json:"url"`
	CaseURL        string             `json:"zaak"`
	PartyType      string             `json:"betrokkeneType"`
	Capacity       string             `json:"omschrijvingGeneriek"`
	Identification roleIdentification `json:"betrokkeneIdentificatie"`
}

type roleIdentification struct {
	CitizenID string `json:"inpBsn"`
	CompanyID string `json:"innNnpId"`
	FiscalID  string `json:"annIdentificatie"`
}

func (p rolePayload) toRole() core.Role {
	role := core.Role{
		URL:       p.URL,
		CaseURL:   p.CaseURL,
		PartyType: strings.TrimSpace(strings.ToLower(p.PartyType)),
		Capacity:  p.Capacity,
	}
	switch role.PartyType {
	case core.PartyTypeNaturalPerson:
		role.Identity = core.NaturalPerson{
			CitizenID: strings.TrimSpace(p.Identification.CitizenID),
		}
	case core.PartyTypeNonNaturalPerson:
		role.Identity = core.NonNaturalPerson{
			CompanyID: strings.TrimSpace(p.Identification.CompanyID),
			FiscalID:  strings.TrimSpace(p.Identification.FiscalID),
		}
	default:
		role.Identity = core.OtherParty{}
	}
	return role
}
