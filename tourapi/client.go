package tourapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"collectrip/config"
)

// Client wraps the three TourAPI endpoints used by the importer and the
// category discovery command. All methods share the same failure contract:
// transport errors, non-200 statuses, non-"0000" result codes, and malformed
// bodies are logged and collapsed to a nil return. Callers treat "no data"
// and "error" identically; the pagination loop terminates naturally on nil.
type Client struct {
	cfg    config.TourAPIConfig
	client *http.Client
}

func New(cfg config.TourAPIConfig, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, client: client}
}

// ListingQuery selects one areaBasedList2 page. Zero-valued fields are
// omitted from the outgoing request.
type ListingQuery struct {
	AreaCode      int
	ContentTypeID int
	Cat1          string
	Cat2          string
	Cat3          string
	PageNo        int
}

// FetchListing returns one page of listing records, or nil on any failure.
func (c *Client) FetchListing(ctx context.Context, q ListingQuery) *ListingPage {
	params := c.defaultParams()
	if q.AreaCode > 0 {
		params.Set("areaCode", strconv.Itoa(q.AreaCode))
	}
	if q.ContentTypeID > 0 {
		params.Set("contentTypeId", strconv.Itoa(q.ContentTypeID))
	}
	if q.Cat1 != "" {
		params.Set("cat1", q.Cat1)
	}
	if q.Cat2 != "" {
		params.Set("cat2", q.Cat2)
	}
	if q.Cat3 != "" {
		params.Set("cat3", q.Cat3)
	}
	params.Set("pageNo", strconv.Itoa(q.PageNo))

	body := c.get(ctx, "areaBasedList2", params)
	if body == nil {
		return nil
	}

	var parsed struct {
		Items      json.RawMessage `json:"items"`
		NumOfRows  int             `json:"numOfRows"`
		PageNo     int             `json:"pageNo"`
		TotalCount int             `json:"totalCount"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Printf("tourapi: bad listing body: %v", err)
		return nil
	}

	raws, err := itemArray(parsed.Items)
	if err != nil {
		log.Printf("tourapi: bad listing items: %v", err)
		return nil
	}

	page := &ListingPage{
		NumOfRows:  parsed.NumOfRows,
		PageNo:     parsed.PageNo,
		TotalCount: parsed.TotalCount,
	}
	for _, raw := range raws {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Printf("tourapi: bad listing record: %v", err)
			return nil
		}
		page.Records = append(page.Records, rec)
	}
	return page
}

// FetchDetail returns the detailIntro2 row for one content, or nil on any
// failure. The endpoint may return a single object or a one-element array;
// both normalize to the first record.
func (c *Client) FetchDetail(ctx context.Context, contentID int64, contentTypeID int) *DetailIntro {
	params := c.defaultParams()
	params.Set("contentId", strconv.FormatInt(contentID, 10))
	params.Set("contentTypeId", strconv.Itoa(contentTypeID))

	body := c.get(ctx, "detailIntro2", params)
	if body == nil {
		return nil
	}

	raws := c.bodyItems(body, "detail")
	if len(raws) == 0 {
		return nil
	}

	var intro DetailIntro
	if err := json.Unmarshal(raws[0], &intro); err != nil {
		log.Printf("tourapi: bad detail record for %d: %v", contentID, err)
		return nil
	}
	return &intro
}

// CategoryQuery selects a level of the category code tree.
type CategoryQuery struct {
	ContentTypeID int
	Cat1          string
	Cat2          string
}

// FetchCategoryCodes returns the {code, name} pairs one level below the
// query, or nil on any failure. Used by the discovery command, not the
// import pipeline.
func (c *Client) FetchCategoryCodes(ctx context.Context, q CategoryQuery) []CategoryCode {
	params := c.defaultParams()
	if q.ContentTypeID > 0 {
		params.Set("contentTypeId", strconv.Itoa(q.ContentTypeID))
	}
	if q.Cat1 != "" {
		params.Set("cat1", q.Cat1)
	}
	if q.Cat2 != "" {
		params.Set("cat2", q.Cat2)
	}

	body := c.get(ctx, "categoryCode2", params)
	if body == nil {
		return nil
	}

	raws := c.bodyItems(body, "category")
	var codes []CategoryCode
	for _, raw := range raws {
		var code CategoryCode
		if err := json.Unmarshal(raw, &code); err != nil {
			log.Printf("tourapi: bad category record: %v", err)
			return nil
		}
		codes = append(codes, code)
	}
	return codes
}

func (c *Client) defaultParams() url.Values {
	params := url.Values{}
	params.Set("serviceKey", c.cfg.ServiceKey)
	params.Set("MobileOS", c.cfg.MobileOS)
	params.Set("MobileApp", c.cfg.MobileApp)
	params.Set("_type", "json")
	params.Set("numOfRows", strconv.Itoa(c.cfg.NumOfRows))
	return params
}

// get performs the request and validates the response envelope. Returns the
// decoded body, or nil on any failure.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) json.RawMessage {
	reqURL := c.cfg.BaseURL + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Printf("tourapi: %s: build request: %v", endpoint, err)
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("tourapi: %s: request failed: %v", endpoint, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("tourapi: %s: status %d", endpoint, resp.StatusCode)
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Printf("tourapi: %s: bad JSON: %v", endpoint, err)
		return nil
	}

	if env.Response.Header.ResultCode != "0000" {
		log.Printf("tourapi: %s: result %s (%s)", endpoint,
			env.Response.Header.ResultCode, env.Response.Header.ResultMsg)
		return nil
	}

	return env.Response.Body
}

func (c *Client) bodyItems(body json.RawMessage, what string) []json.RawMessage {
	var parsed struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Printf("tourapi: bad %s body: %v", what, err)
		return nil
	}
	raws, err := itemArray(parsed.Items)
	if err != nil {
		log.Printf("tourapi: bad %s items: %v", what, err)
		return nil
	}
	return raws
}
