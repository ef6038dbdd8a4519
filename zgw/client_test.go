package zgw

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-zaaknotify/core"
)

type stubDoer struct {
	responses map[string]stubResponse
	requests  []*http.Request
}

type stubResponse struct {
	status int
	body   string
}

func (d *stubDoer) Do(req *http.Request) (*http.Response, error) {
	d.requests = append(d.requests, req)
	key := req.URL.String()
	res, ok := d.responses[key]
	if !ok {
		return nil, errors.New("unexpected request " + key)
	}
	return &http.Response{
		StatusCode: res.status,
		Body:       io.NopCloser(strings.NewReader(res.body)),
		Header:     http.Header{},
	}, nil
}

func newTestService(doer *stubDoer) *Service {
	factory := NewFactory(doer, 5*time.Second)
	svc := factory.ForGroup(core.APIGroup{
		ZakenBaseURL: "https://zaken.gemeente.nl/api/v1",
		Token:        "token-123",
	})
	return svc.(*Service)
}

func TestCaseFetchSendsBearerToken(t *testing.T) {
	doer := &stubDoer{responses: map[string]stubResponse{
		"https://zaken.gemeente.nl/api/v1/zaken/abc": {
			status: http.StatusOK,
			body: `{
				"url": "https://zaken.gemeente.nl/api/v1/zaken/abc",
				"identificatie": "ZAAK-2026-001",
				"zaaktype": "https://catalogi.gemeente.nl/api/v1/zaaktypen/zt1",
				"vertrouwelijkheidaanduiding": "openbaar"
			}`,
		},
	}}
	svc := newTestService(doer)

	zaak, err := svc.Case(context.Background(), "https://zaken.gemeente.nl/api/v1/zaken/abc")
	if err != nil {
		t.Fatalf("fetch case: %v", err)
	}
	if zaak.Identification != "ZAAK-2026-001" {
		t.Fatalf("expected case identification, got %q", zaak.Identification)
	}
	if got := doer.requests[0].Header.Get("Authorization"); got != "Bearer token-123" {
		t.Fatalf("expected bearer token header, got %q", got)
	}
}

func TestCaseFetchNotFound(t *testing.T) {
	doer := &stubDoer{responses: map[string]stubResponse{
		"https://zaken.gemeente.nl/api/v1/zaken/gone": {status: http.StatusNotFound, body: `{}`},
	}}
	svc := newTestService(doer)

	_, err := svc.Case(context.Background(), "https://zaken.gemeente.nl/api/v1/zaken/gone")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestCaseFetchUpstreamError(t *testing.T) {
	doer := &stubDoer{responses: map[string]stubResponse{
		"https://zaken.gemeente.nl/api/v1/zaken/bad": {status: http.StatusBadGateway, body: ``},
	}}
	svc := newTestService(doer)

	if _, err := svc.Case(context.Background(), "https://zaken.gemeente.nl/api/v1/zaken/bad"); err == nil {
		t.Fatal("expected upstream failure to surface")
	}
}

func TestStatusHistoryFollowsPagination(t *testing.T) {
	caseURL := "https://zaken.gemeente.nl/api/v1/zaken/abc"
	first := "https://zaken.gemeente.nl/api/v1/statussen?zaak=" + "https%3A%2F%2Fzaken.gemeente.nl%2Fapi%2Fv1%2Fzaken%2Fabc"
	second := "https://zaken.gemeente.nl/api/v1/statussen?page=2"
	doer := &stubDoer{responses: map[string]stubResponse{
		first: {
			status: http.StatusOK,
			body: `{"count": 3, "next": "` + second + `", "results": [
				{"url": "s1", "zaak": "` + caseURL + `", "statustype": "st1", "datumStatusGezet": "2026-01-01T10:00:00Z"},
				{"url": "s2", "zaak": "` + caseURL + `", "statustype": "st2", "datumStatusGezet": "2026-02-01T10:00:00Z"}
			]}`,
		},
		second: {
			status: http.StatusOK,
			body: `{"count": 3, "next": null, "results": [
				{"url": "s3", "zaak": "` + caseURL + `", "statustype": "st3", "datumStatusGezet": "2026-03-01T10:00:00Z"}
			]}`,
		},
	}}
	svc := newTestService(doer)

	history, err := svc.StatusHistory(context.Background(), caseURL)
	if err != nil {
		t.Fatalf("fetch status history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 statuses across pages, got %d", len(history))
	}
	if history[2].URL != "s3" {
		t.Fatalf("expected second page to append, got %q", history[2].URL)
	}
}

func TestRolesMapIdentityUnion(t *testing.T) {
	caseURL := "https://zaken.gemeente.nl/api/v1/zaken/abc"
	endpoint := "https://zaken.gemeente.nl/api/v1/rollen?zaak=" + "https%3A%2F%2Fzaken.gemeente.nl%2Fapi%2Fv1%2Fzaken%2Fabc"
	doer := &stubDoer{responses: map[string]stubResponse{
		endpoint: {
			status: http.StatusOK,
			body: `{"count": 3, "next": null, "results": [
				{
					"url": "r1", "zaak": "` + caseURL + `",
					"betrokkeneType": "natuurlijk_persoon",
					"omschrijvingGeneriek": "initiator",
					"betrokkeneIdentificatie": {"inpBsn": "999990123"}
				},
				{
					"url": "r2", "zaak": "` + caseURL + `",
					"betrokkeneType": "niet_natuurlijk_persoon",
					"omschrijvingGeneriek": "initiator",
					"betrokkeneIdentificatie": {"innNnpId": "12345678", "annIdentificatie": "821234567"}
				},
				{
					"url": "r3", "zaak": "` + caseURL + `",
					"betrokkeneType": "medewerker",
					"omschrijvingGeneriek": "behandelaar",
					"betrokkeneIdentificatie": {}
				}
			]}`,
		},
	}}
	svc := newTestService(doer)

	roles, err := svc.Roles(context.Background(), caseURL)
	if err != nil {
		t.Fatalf("fetch roles: %v", err)
	}
	if len(roles) != 3 {
		t.Fatalf("expected 3 roles, got %d", len(roles))
	}

	natural, ok := roles[0].Identity.(core.NaturalPerson)
	if !ok || natural.CitizenID != "999990123" {
		t.Fatalf("expected natural person with citizen id, got %#v", roles[0].Identity)
	}
	company, ok := roles[1].Identity.(core.NonNaturalPerson)
	if !ok || company.CompanyID != "12345678" || company.FiscalID != "821234567" {
		t.Fatalf("expected non-natural person identifiers, got %#v", roles[1].Identity)
	}
	if _, ok := roles[2].Identity.(core.OtherParty); !ok {
		t.Fatalf("expected other party, got %#v", roles[2].Identity)
	}
}

func TestDocumentFetchDecodes(t *testing.T) {
	doer := &stubDoer{responses: map[string]stubResponse{
		"https://documenten.gemeente.nl/api/v1/enkelvoudiginformatieobjecten/d1": {
			status: http.StatusOK,
			body: `{
				"url": "https://documenten.gemeente.nl/api/v1/enkelvoudiginformatieobjecten/d1",
				"titel": "Besluit.pdf",
				"status": "definitief",
				"vertrouwelijkheidaanduiding": "openbaar",
				"informatieobjecttype": "https://catalogi.gemeente.nl/api/v1/informatieobjecttypen/iot1"
			}`,
		},
	}}
	svc := newTestService(doer)

	doc, err := svc.Document(context.Background(), "https://documenten.gemeente.nl/api/v1/enkelvoudiginformatieobjecten/d1")
	if err != nil {
		t.Fatalf("fetch document: %v", err)
	}
	if !doc.IsFinal() {
		t.Fatalf("expected definitief document, got %q", doc.Status)
	}
	if doc.Title != "Besluit.pdf" {
		t.Fatalf("expected title, got %q", doc.Title)
	}
}
