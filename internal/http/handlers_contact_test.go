package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atelierweb/atelier-api/internal/domain/model"
	"github.com/atelierweb/atelier-api/internal/mocks"
	"github.com/atelierweb/atelier-api/internal/ratelimit"
	"github.com/atelierweb/atelier-api/internal/service"
)

// testEnvelope mirrors the response envelope for assertions.
type testEnvelope struct {
	Success bool             `json:"success"`
	Data    map[string]any   `json:"data"`
	Error   *testEnvelopeErr `json:"error"`
}

type testEnvelopeErr struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newContactHandlers(t *testing.T, contacts *mocks.MockContactRepository, rule ratelimit.Rule) *ContactHandlers {
	t.Helper()
	if rule.MaxRequests == 0 {
		rule = ratelimit.Rule{Window: time.Minute, MaxRequests: 100}
	}
	svc := service.NewIntakeService(service.IntakeServiceOptions{
		Contacts: contacts,
		Limiter:  ratelimit.NewLimiter(ratelimit.NewMemoryStore(), nil),
		Rule:     rule,
	})
	t.Cleanup(svc.Wait)
	return &ContactHandlers{
		Svc:          svc,
		Identity:     ClientIdentity{TrustProxyHeaders: true, UserAgentPrefixLen: 64},
		MaxBodyBytes: 64 * 1024,
	}
}

func validContactBody() map[string]string {
	return map[string]string{
		"name":    "Marie Dupont",
		"email":   "marie@example.fr",
		"phone":   "+33 6 12 34 56 78",
		"project": "vitrine",
		"budget":  "3000",
		"message": "Bonjour, je souhaite créer un site vitrine pour mon activité.",
	}
}

func postContactJSON(t *testing.T, h *ContactHandlers, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	req.RemoteAddr = "203.0.113.7:51234"
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func TestContactSubmit_JSONAccepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)
	contacts.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateContactRequest) (*model.Contact, error) {
			assert.Equal(t, "Marie Dupont", req.Name)
			assert.Equal(t, "203.0.113.7", req.IPAddress)
			return &model.Contact{ID: "contact-1", Name: req.Name, Email: req.Email}, nil
		})

	h := newContactHandlers(t, contacts, ratelimit.Rule{})
	w := postContactJSON(t, h, validContactBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "contact-1", env.Data["id"])
	assert.Equal(t, service.ConfirmationMessage, env.Data["message"])
}

func TestContactSubmit_FormEncoded(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)
	contacts.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateContactRequest) (*model.Contact, error) {
			assert.Equal(t, model.ProjectCategoryEcommerce, req.Project)
			return &model.Contact{ID: "contact-2"}, nil
		})

	form := url.Values{}
	for k, v := range validContactBody() {
		form.Set(k, v)
	}
	// projectType is the alias older form versions send.
	form.Del("project")
	form.Set("projectType", "boutique en ligne")

	h := newContactHandlers(t, contacts, ratelimit.Rule{})
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.7:51234"
	w := httptest.NewRecorder()
	h.Submit(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "contact-2", env.Data["id"])
}

func TestContactSubmit_HoneypotLooksLikeSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	// No Create expectation: the submission must never reach persistence.
	contacts := mocks.NewMockContactRepository(ctrl)

	body := validContactBody()
	body["website"] = "https://spam.example"

	h := newContactHandlers(t, contacts, ratelimit.Rule{})
	w := postContactJSON(t, h, body)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data["id"])
	assert.Equal(t, service.ConfirmationMessage, env.Data["message"])
}

func TestContactSubmit_ValidationFailureListsEveryField(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)

	h := newContactHandlers(t, contacts, ratelimit.Rule{})
	w := postContactJSON(t, h, map[string]string{
		"name":    "M",
		"email":   "not-an-email",
		"message": "court",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_failed", env.Error.Code)
	for _, field := range []string{"name", "email", "project", "budget", "message"} {
		assert.Contains(t, env.Error.Details, field)
	}
}

func TestContactSubmit_RateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)
	contacts.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&model.Contact{ID: "contact-1"}, nil)

	h := newContactHandlers(t, contacts, ratelimit.Rule{Window: time.Minute, MaxRequests: 1})

	first := postContactJSON(t, h, validContactBody())
	require.Equal(t, http.StatusCreated, first.Code)

	second := postContactJSON(t, h, validContactBody())
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, second.Header().Get("X-RateLimit-Reset"))

	env := decodeEnvelope(t, second)
	require.NotNil(t, env.Error)
	assert.Equal(t, "rate_limited", env.Error.Code)
}

func TestContactSubmit_PersistenceFailureIsOpaque(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)
	contacts.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("pq: connection refused"))

	h := newContactHandlers(t, contacts, ratelimit.Rule{})
	w := postContactJSON(t, h, validContactBody())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "internal_error", env.Error.Code)
	assert.NotContains(t, env.Error.Message, "connection refused")
}

func TestContactSubmit_MalformedJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)

	h := newContactHandlers(t, contacts, ratelimit.Rule{})
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Submit(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_payload", env.Error.Code)
}

func TestContactSubmit_BodyTooLarge(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)

	h := newContactHandlers(t, contacts, ratelimit.Rule{})
	h.MaxBodyBytes = 32

	w := postContactJSON(t, h, validContactBody())

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "payload_too_large", env.Error.Code)
}
