package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// apiQuery is the jq projection sent to the evcc state endpoint. It trims
// the full state document down to the fields the panel renders and
// normalizes the soc/plugged aliases across evcc versions.
const apiQuery = `{gridPower:.grid.power,pvPower:.pvPower,batterySoc:.batterySoc,homePower:.homePower,batteryPower:.batteryPower,solar:{scale:(.forecast.solar.scale),todayEnergy:(.forecast.solar.today.energy)},loadpoints:[.loadpoints[0],.loadpoints[1]]|map(select(.!=null)|{chargePower:.chargePower,soc:(.vehicleSoc//.soc),charging:.charging,plugged:(.connected//.plugged),title:.title,vehicletitle:.vehicleTitle,vehicleRange:.vehicleRange,effectivePlanTime:.effectivePlanTime,effectivePlanSoc:.effectivePlanSoc,effectiveLimitSoc:.effectiveLimitSoc,planProjectedStart:.planProjectedStart,chargeCurrents:.chargeCurrents,maxCurrent:(.effectiveMaxCurrent//.maxCurrent),offeredCurrent:.offeredCurrent,phasesActive:.phasesActive})}`

// Fetcher produces the next telemetry snapshot for a render tick.
type Fetcher interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// Client polls an evcc instance over HTTP.
type Client struct {
	endpoint string
	http     *http.Client

	failures int
}

// NewClient creates a Client for the evcc instance at baseURL
// (e.g. "http://evcc.local:7070").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		endpoint: baseURL + "/api/state?jq=" + url.QueryEscape(apiQuery),
		http:     &http.Client{Timeout: timeout},
	}
}

// Fetch polls the state endpoint and decodes the snapshot. Fields absent
// from the response keep their unknown-value sentinels. On failure the
// consecutive-failure counter carried on returned snapshots increases;
// a success resets it.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	snap := EmptySnapshot()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return c.fail(snap, fmt.Errorf("build request: %w", err))
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(snap, fmt.Errorf("fetch state: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return c.fail(snap, fmt.Errorf("fetch state: unexpected status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return c.fail(snap, fmt.Errorf("decode state: %w", err))
	}

	c.failures = 0
	snap.LastUpdate = time.Now()
	return snap, nil
}

func (c *Client) fail(snap Snapshot, err error) (Snapshot, error) {
	c.failures++
	snap.ConsecutiveFailures = c.failures
	return snap, err
}

// UnmarshalJSON fills a Loadpoint with its unknown-value sentinels before
// decoding, so fields evcc reports as null stay marked unknown instead of
// reading as zero.
func (lp *Loadpoint) UnmarshalJSON(b []byte) error {
	type plain Loadpoint
	p := plain(emptyLoadpoint())
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*lp = Loadpoint(p)
	return nil
}
