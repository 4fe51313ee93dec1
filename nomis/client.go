package nomis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/justicelabs/adjudications-api/models"
)

// Plea is the legacy plea code, mapped 1:1 from HearingOutcomePlea.
type Plea string

// Legacy plea codes.
const (
	PleaGuilty    Plea = "GUILTY"
	PleaNotGuilty Plea = "NOT_GUILTY"
	PleaAbstain   Plea = "REFUSED"
	PleaUnfit     Plea = "UNFIT"
	PleaNotAsked  Plea = "NOT_ASKED"
)

// PleaFor maps a hearing outcome plea to its legacy code
func PleaFor(plea models.HearingOutcomePlea) Plea {
	switch plea {
	case models.PleaGuilty:
		return PleaGuilty
	case models.PleaNotGuilty:
		return PleaNotGuilty
	case models.PleaAbstain:
		return PleaAbstain
	case models.PleaUnfit:
		return PleaUnfit
	default:
		return PleaNotAsked
	}
}

// AdjudicationRequest is the flat publish payload for a new adjudication
type AdjudicationRequest struct {
	OffenderNumber     string   `json:"offenderNo"`
	AgencyID           string   `json:"agencyId"`
	IncidentLocationID int64    `json:"incidentLocationId"`
	IncidentTime       string   `json:"incidentTime"`
	StatementDetails   string   `json:"statement"`
	OffenceCodes       []string `json:"offenceCodes,omitempty"`
	ConnectedOffenders []string `json:"connectedOffenderIds,omitempty"`
	VictimOffenders    []string `json:"victimOffenderIds,omitempty"`
}

// HearingRequest is the payload to create a legacy hearing
type HearingRequest struct {
	HearingType string `json:"hearingType"`
	DateTime    string `json:"dateTimeOfHearing"`
	LocationID  int64  `json:"internalLocationId"`
}

// HearingResultRequest is the payload to record a legacy hearing result
type HearingResultRequest struct {
	Finding         models.Finding `json:"findingCode"`
	Plea            Plea           `json:"pleaFindingCode"`
	AdjudicatorName string         `json:"adjudicator,omitempty"`
}

// Gateway is the port to the legacy mainframe (NOMIS) consumed by the workflow and
// migration services during the migration period
type Gateway interface {
	PublishAdjudication(ctx context.Context, req AdjudicationRequest) error
	CreateHearing(ctx context.Context, chargeNumber string, req HearingRequest) (int64, error)
	DeleteHearing(ctx context.Context, chargeNumber string, hearingID int64) error
	CreateHearingResult(ctx context.Context, chargeNumber string, hearingID int64, req HearingResultRequest) error
	AmendHearingResult(ctx context.Context, chargeNumber string, hearingID int64, req HearingResultRequest) error
	DeleteHearingResult(ctx context.Context, chargeNumber string, hearingID int64) error
	HearingOutcomesExistInNomis(ctx context.Context, chargeNumber string, hearingID int64) (bool, error)
}

// Client is the HTTP implementation of Gateway
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a gateway client for the given base url and bearer token
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// PublishAdjudication mirrors a newly accepted adjudication into the legacy system
func (c *Client) PublishAdjudication(ctx context.Context, req AdjudicationRequest) error {
	return c.do(ctx, http.MethodPost, "/adjudications", req, nil)
}

// CreateHearing creates a legacy hearing and returns its legacy id
func (c *Client) CreateHearing(ctx context.Context, chargeNumber string, req HearingRequest) (int64, error) {
	var resp struct {
		OicHearingID int64 `json:"oicHearingId"`
	}
	path := fmt.Sprintf("/adjudications/%s/hearings", chargeNumber)
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return 0, err
	}
	return resp.OicHearingID, nil
}

// DeleteHearing removes a legacy hearing
func (c *Client) DeleteHearing(ctx context.Context, chargeNumber string, hearingID int64) error {
	path := fmt.Sprintf("/adjudications/%s/hearings/%d", chargeNumber, hearingID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CreateHearingResult records a result against a legacy hearing
func (c *Client) CreateHearingResult(ctx context.Context, chargeNumber string, hearingID int64, req HearingResultRequest) error {
	path := fmt.Sprintf("/adjudications/%s/hearings/%d/result", chargeNumber, hearingID)
	return c.do(ctx, http.MethodPost, path, req, nil)
}

// AmendHearingResult amends a result on a legacy hearing
func (c *Client) AmendHearingResult(ctx context.Context, chargeNumber string, hearingID int64, req HearingResultRequest) error {
	path := fmt.Sprintf("/adjudications/%s/hearings/%d/result", chargeNumber, hearingID)
	return c.do(ctx, http.MethodPut, path, req, nil)
}

// DeleteHearingResult removes a result from a legacy hearing
func (c *Client) DeleteHearingResult(ctx context.Context, chargeNumber string, hearingID int64) error {
	path := fmt.Sprintf("/adjudications/%s/hearings/%d/result", chargeNumber, hearingID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// HearingOutcomesExistInNomis asks whether the legacy system recorded a result for the
// given hearing outside of this workflow
func (c *Client) HearingOutcomesExistInNomis(ctx context.Context, chargeNumber string, hearingID int64) (bool, error) {
	var resp struct {
		Exists bool `json:"exists"`
	}
	path := fmt.Sprintf("/adjudications/%s/hearings/%d/result/exists", chargeNumber, hearingID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to marshal nomis request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create nomis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("nomis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		zap.S().Errorw("nomis gateway returned error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return fmt.Errorf("nomis gateway returned status %d for %s %s", resp.StatusCode, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode nomis response: %w", err)
		}
	}
	return nil
}
