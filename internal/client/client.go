package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"recap/internal/config"
	"recap/internal/types"
)

// Client talks to the local recap daemon over loopback HTTP. Requests
// under /v1/ carry the bearer token the daemon wrote next to its database.
type Client struct {
	baseURL   string
	tokenPath string
	token     string
	http      *http.Client
}

func New() (*Client, error) {
	cfg, err := config.LoadCoreConfig()
	if err != nil {
		return nil, err
	}
	tokenPath, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   cfg.DaemonBaseURL(),
		tokenPath: tokenPath,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	_ = c.loadToken()
	return c, nil
}

func NewWithBaseURL(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Status(ctx context.Context) (*types.DaemonStatus, error) {
	var resp types.DaemonStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/status", nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListMeetings(ctx context.Context) ([]types.Meeting, error) {
	var resp MeetingsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/meetings", nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.Meetings, nil
}

func (c *Client) GetMeeting(ctx context.Context, id string) (*types.Meeting, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("meeting id is required")
	}
	var meeting types.Meeting
	if err := c.doJSON(ctx, http.MethodGet, "/v1/meetings/"+id, nil, true, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (c *Client) CreateMeeting(ctx context.Context, req CreateMeetingRequest) (*types.Meeting, error) {
	var meeting types.Meeting
	if err := c.doJSON(ctx, http.MethodPost, "/v1/meetings", req, true, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (c *Client) UpdateMeeting(ctx context.Context, id string, req UpdateMeetingRequest) (*types.Meeting, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("meeting id is required")
	}
	var meeting types.Meeting
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/meetings/"+id, req, true, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (c *Client) DeleteMeeting(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("meeting id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, "/v1/meetings/"+id, nil, true, nil)
}

func (c *Client) RecordingState(ctx context.Context) (types.RecordingState, error) {
	var state types.RecordingState
	if err := c.doJSON(ctx, http.MethodGet, "/v1/recording", nil, true, &state); err != nil {
		return types.RecordingState{}, err
	}
	return state, nil
}

func (c *Client) StartRecording(ctx context.Context, meetingID string) (types.RecordingState, error) {
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return types.RecordingState{}, errors.New("meeting id is required")
	}
	var state types.RecordingState
	path := fmt.Sprintf("/v1/meetings/%s/record", meetingID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, true, &state); err != nil {
		return types.RecordingState{}, err
	}
	return state, nil
}

func (c *Client) StopRecording(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/recording/stop", nil, true, nil)
}

func (c *Client) CoachingState(ctx context.Context) (types.CoachingSessionState, error) {
	var state types.CoachingSessionState
	if err := c.doJSON(ctx, http.MethodGet, "/v1/coaching", nil, true, &state); err != nil {
		return types.CoachingSessionState{}, err
	}
	return state, nil
}

func (c *Client) CoachingHistory(ctx context.Context) ([]types.FeedbackEntry, error) {
	var resp FeedbackHistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/coaching/history", nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (c *Client) StartCoaching(ctx context.Context, req StartCoachingRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/coaching/start", req, true, nil)
}

func (c *Client) StopCoaching(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/coaching/stop", nil, true, nil)
}

// AddFeedback pushes one feedback entry into the active coaching session.
// The coach window process is the usual caller; the daemon rejects entries
// when no session is running.
func (c *Client) AddFeedback(ctx context.Context, req AddFeedbackRequest) (*types.FeedbackEntry, error) {
	var entry types.FeedbackEntry
	if err := c.doJSON(ctx, http.MethodPost, "/v1/coaching/feedback", req, true, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) CoachWindowStatus(ctx context.Context) (bool, error) {
	var payload types.CoachWindowStatusPayload
	if err := c.doJSON(ctx, http.MethodGet, "/v1/coaching/window", nil, true, &payload); err != nil {
		return false, err
	}
	return payload.IsOpen != nil && *payload.IsOpen, nil
}

func (c *Client) OpenCoachWindow(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/coaching/window/open", nil, true, nil)
}

func (c *Client) CloseCoachWindow(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/coaching/window/close", nil, true, nil)
}

func (c *Client) CleanTranscript(ctx context.Context, meetingID string) error {
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return errors.New("meeting id is required")
	}
	path := fmt.Sprintf("/v1/meetings/%s/clean", meetingID)
	return c.doJSON(ctx, http.MethodPost, path, nil, true, nil)
}

func (c *Client) SyncCalendar(ctx context.Context) (*SyncCalendarResponse, error) {
	var resp SyncCalendarResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/calendar/sync", nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetSettings(ctx context.Context) (types.Settings, error) {
	var settings types.Settings
	if err := c.doJSON(ctx, http.MethodGet, "/v1/settings", nil, true, &settings); err != nil {
		return types.Settings{}, err
	}
	return settings, nil
}

func (c *Client) UpdateSettings(ctx context.Context, patch *types.SettingsPatch) (types.Settings, error) {
	if patch == nil {
		return types.Settings{}, errors.New("settings patch is required")
	}
	var settings types.Settings
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/settings", patch, true, &settings); err != nil {
		return types.Settings{}, err
	}
	return settings, nil
}

func (c *Client) ShutdownDaemon(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/shutdown", nil, true, nil)
}

// EnsureDaemon checks daemon health and spawns recapd in the background
// when nothing answers, then waits for it to come up.
func (c *Client) EnsureDaemon(ctx context.Context) error {
	if resp, err := c.Health(ctx); err == nil && resp.OK {
		return nil
	}

	if err := StartBackgroundDaemon(); err != nil {
		return err
	}

	deadline := time.Now().Add(4 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		resp, err := c.Health(ctx)
		if err == nil && resp.OK {
			_ = c.loadToken()
			return nil
		}
		lastErr = err
		time.Sleep(150 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("daemon not healthy after start")
	}
	return lastErr
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth {
		if err := c.ensureToken(); err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpClient := c.http
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) ensureToken() error {
	if strings.TrimSpace(c.token) == "" {
		if err := c.loadToken(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.token) == "" {
		return errors.New("token not found; is the daemon running?")
	}
	return nil
}

func (c *Client) loadToken() error {
	if c.tokenPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.token = ""
			return nil
		}
		return err
	}
	c.token = strings.TrimSpace(string(data))
	return nil
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error string `json:"error"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// AsAPIError unwraps err to an APIError when one is in the chain.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsUnavailable reports whether err looks like no daemon listening on the
// configured address: a refused connection or a dial that timed out.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "connection refused") || strings.Contains(lower, "connect: connection refused")
}
