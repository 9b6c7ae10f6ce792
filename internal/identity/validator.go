package identity

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	dErrors "enrollsvc/pkg/domain-errors"
)

// TokenValidator turns a bearer token into an authenticated actor or a
// rejection. Validation is delegated; this service never parses tokens itself.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Actor, error)
}

// RemoteValidator asks the external auth service to validate tokens via
// GET <base>/auth/validate. It fails closed: any transport error, non-2xx
// response, or missing identity rejects the request.
type RemoteValidator struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewRemoteValidator builds a validator against the auth service base URL.
// An empty baseURL is allowed at construction; Validate then reports the
// service as unconfigured.
func NewRemoteValidator(baseURL string, timeout time.Duration, logger *slog.Logger) *RemoteValidator {
	return &RemoteValidator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type validateResponse struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// Validate forwards the token to the auth service and maps the result onto an
// Actor. Roles are lower-cased; a missing role defaults to "student".
func (v *RemoteValidator) Validate(ctx context.Context, token string) (Actor, error) {
	if v.baseURL == "" {
		return Actor{}, dErrors.New(dErrors.CodeServiceUnavailable, "auth service is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/validate", nil)
	if err != nil {
		return Actor{}, dErrors.Wrap(dErrors.CodeUnauthorized, "token validation failed", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.WarnContext(ctx, "auth service unreachable", "error", err)
		return Actor{}, dErrors.Wrap(dErrors.CodeUnauthorized, "token validation failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Actor{}, dErrors.New(dErrors.CodeUnauthorized, "token rejected by auth service")
	}

	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Actor{}, dErrors.Wrap(dErrors.CodeUnauthorized, "token validation failed", err)
	}
	if body.ID == "" {
		return Actor{}, dErrors.New(dErrors.CodeUnauthorized, "auth service response missing user id")
	}

	role := strings.ToLower(strings.TrimSpace(body.Role))
	if role == "" {
		role = "student"
	}
	return Actor{ID: body.ID, Role: role}, nil
}

// BypassValidator substitutes a fixed actor for every token. Development and
// test profile only; config.Validate refuses it in production.
type BypassValidator struct {
	Actor Actor
}

// NewBypassValidator returns a validator that always authenticates the given
// actor. A zero actor falls back to the conventional development student.
func NewBypassValidator(actor Actor) *BypassValidator {
	if actor.ID == "" {
		actor = Actor{ID: "test-student-123", Role: "student"}
	}
	return &BypassValidator{Actor: actor}
}

func (v *BypassValidator) Validate(_ context.Context, _ string) (Actor, error) {
	return v.Actor, nil
}
