package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/lfca/church-admin-be/internal/assist"
	"github.com/lfca/church-admin-be/internal/auth"
	"github.com/lfca/church-admin-be/internal/cache"
	"github.com/lfca/church-admin-be/internal/middleware"
	"github.com/lfca/church-admin-be/internal/models"
	"github.com/lfca/church-admin-be/internal/session"
	"github.com/lfca/church-admin-be/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory implementation of the full persistence surface.
type memStore struct {
	members    []models.Member
	attendance []models.AttendanceRecord
	finances   []models.FinanceRecord
	users      map[string]models.User
}

func newMemStore() *memStore {
	return &memStore{users: map[string]models.User{}}
}

func (s *memStore) ListMembers(ctx context.Context) ([]models.Member, error) {
	var out []models.Member
	for _, m := range s.members {
		if m.DeletedAt == nil {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *memStore) CreateMember(ctx context.Context, m models.Member) error {
	s.members = append(s.members, m)
	return nil
}

func (s *memStore) UpdateMember(ctx context.Context, id string, updates models.MemberUpdate) error {
	for i := range s.members {
		if s.members[i].ID == id && s.members[i].DeletedAt == nil {
			if updates.FullName != nil {
				s.members[i].FullName = *updates.FullName
			}
			if updates.Department != nil {
				s.members[i].Department = *updates.Department
			}
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *memStore) SetMemberDeleted(ctx context.Context, id string, deletedAt *time.Time) error {
	for i := range s.members {
		if s.members[i].ID == id {
			s.members[i].DeletedAt = deletedAt
		}
	}
	return nil
}

func (s *memStore) ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, a := range s.attendance {
		if a.DeletedAt == nil {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) CreateAttendance(ctx context.Context, a models.AttendanceRecord) error {
	s.attendance = append(s.attendance, a)
	return nil
}

func (s *memStore) SetAttendanceDeleted(ctx context.Context, id string, deletedAt *time.Time) error {
	for i := range s.attendance {
		if s.attendance[i].ID == id {
			s.attendance[i].DeletedAt = deletedAt
		}
	}
	return nil
}

func (s *memStore) ListFinances(ctx context.Context) ([]models.FinanceRecord, error) {
	var out []models.FinanceRecord
	for _, f := range s.finances {
		if f.DeletedAt == nil {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out, nil
}

func (s *memStore) CreateFinance(ctx context.Context, f models.FinanceRecord) error {
	s.finances = append(s.finances, f)
	return nil
}

func (s *memStore) SetFinanceDeleted(ctx context.Context, id string, deletedAt *time.Time) error {
	for i := range s.finances {
		if s.finances[i].ID == id {
			s.finances[i].DeletedAt = deletedAt
		}
	}
	return nil
}

func (s *memStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if _, exists := s.users[user.Email]; exists {
		return models.User{}, storage.ErrAlreadyExists
	}
	user.CreatedAt = time.Now().UTC()
	s.users[user.Email] = user
	return user, nil
}

func (s *memStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *memStore) CreateResetToken(ctx context.Context, email, token string, expiresAt time.Time) error {
	return nil
}

type testAPI struct {
	mux    *http.ServeMux
	tokens *auth.TokenManager
	store  *memStore
	cache  *cache.Cache
}

func newTestAPI(t *testing.T, assistClient *assist.Client) *testAPI {
	t.Helper()
	store := newMemStore()
	c := cache.New(store)
	require.NoError(t, c.Init(context.Background()))

	provider := auth.NewProvider(store)
	sessions := session.NewStore(context.Background(), provider)
	t.Cleanup(sessions.Close)

	tokens := auth.NewTokenManager("test-secret", "test", time.Hour)

	mux := http.NewServeMux()
	protect := func(next http.HandlerFunc) http.HandlerFunc {
		wrapped := middleware.Authenticate(tokens, next)
		return func(w http.ResponseWriter, r *http.Request) { wrapped.ServeHTTP(w, r) }
	}

	NewAuthHandler(sessions, store, tokens).Register(mux)
	NewMembersHandler(c, nil).Register(mux, protect)
	NewAttendanceHandler(c).Register(mux, protect)
	NewFinanceHandler(c).Register(mux, protect)
	NewUndoHandler(c).Register(mux, protect)
	NewAssistHandler(assistClient, c).Register(mux, protect)

	return &testAPI{mux: mux, tokens: tokens, store: store, cache: c}
}

func (api *testAPI) tokenFor(t *testing.T, role models.Role) string {
	t.Helper()
	token, err := api.tokens.Generate(models.User{
		ID:       "u-" + string(role),
		Email:    string(role) + "@lfca.church",
		FullName: "Test " + string(role),
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func (api *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.mux.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var out T
	if len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, &out))
	}
	return out
}

func TestRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, path := range []string{"/members", "/attendance", "/finance"} {
		rec := api.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := api.do(t, http.MethodGet, "/members", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFinanceRequiresFinanceRole(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodGet, "/finance", api.tokenFor(t, models.RoleMember), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodGet, "/finance", api.tokenFor(t, models.RoleFinanceOfficer), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecordIncomeParsesAmountString(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.tokenFor(t, models.RoleFinanceOfficer)

	rec := api.do(t, http.MethodPost, "/finance", token, map[string]string{
		"category":   "Tithe",
		"amount":     "250.50",
		"currency":   "LRD",
		"donor_name": "Test",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/finance", token, nil)
	records := decodeData[[]models.FinanceRecord](t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, 250.5, records[0].Amount)
	assert.Equal(t, models.CurrencyLRD, records[0].Currency)
	assert.Equal(t, models.CategoryTithe, records[0].Category)
	assert.WithinDuration(t, time.Now().UTC(), records[0].RecordedAt, 5*time.Second)
}

func TestRecordIncomeRejectsBadInput(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.tokenFor(t, models.RoleFinanceOfficer)

	for _, amount := range []string{"", "abc", "-5", "NaN"} {
		rec := api.do(t, http.MethodPost, "/finance", token, map[string]string{
			"category": "Tithe",
			"amount":   amount,
			"currency": "LRD",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "amount=%q", amount)
	}

	rec := api.do(t, http.MethodPost, "/finance", token, map[string]string{
		"category": "Tithe",
		"amount":   "10",
		"currency": "GBP",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVisitorCheckInAppearsInServiceListing(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.tokenFor(t, models.RoleMember)

	rec := api.do(t, http.MethodPost, "/attendance", token, map[string]any{
		"service_name": "Sunday Service",
		"is_visitor":   true,
		"visitor_name": "First Timer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/attendance?service=Sunday+Service", token, nil)
	records := decodeData[[]models.AttendanceRecord](t, rec)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsVisitor)
	assert.Nil(t, records[0].MemberID)

	rec = api.do(t, http.MethodGet, "/attendance/summary?service=Sunday+Service", token, nil)
	summary := decodeData[cache.AttendanceSummary](t, rec)
	assert.Equal(t, 1, summary.Visitors)
	assert.Equal(t, 0, summary.Members)
}

func TestCheckInRequiresAttendeeIdentity(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.tokenFor(t, models.RoleMember)

	rec := api.do(t, http.MethodPost, "/attendance", token, map[string]any{
		"service_name": "Sunday Service",
		"is_visitor":   false,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemberDeleteAndUndoOverHTTP(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.tokenFor(t, models.RolePastor)

	rec := api.do(t, http.MethodPost, "/members", token, map[string]string{
		"full_name":    "Comfort Togba",
		"phone_number": "+231770000001",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/members", token, nil)
	members := decodeData[[]models.Member](t, rec)
	require.Len(t, members, 1)
	id := members[0].ID

	rec = api.do(t, http.MethodDelete, "/members/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/members", token, nil)
	assert.Empty(t, decodeData[[]models.Member](t, rec))

	rec = api.do(t, http.MethodGet, "/undo", token, nil)
	pending := decodeData[*cache.DeletionRecord](t, rec)
	require.NotNil(t, pending)
	assert.Equal(t, cache.KindMember, pending.Kind)

	rec = api.do(t, http.MethodPost, "/undo", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/members", token, nil)
	members = decodeData[[]models.Member](t, rec)
	require.Len(t, members, 1)
	assert.Equal(t, "Comfort Togba", members[0].FullName)
}

func TestMemberCreationRequiresManagingRole(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/members", api.tokenFor(t, models.RoleMember), map[string]string{
		"full_name":    "X",
		"phone_number": "Y",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegisterThenLoginDefaultsToMemberRole(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":     "newcomer@lfca.church",
		"password":  "long-enough-password",
		"full_name": "New Comer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Duplicate registration conflicts.
	rec = api.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":     "newcomer@lfca.church",
		"password":  "long-enough-password",
		"full_name": "New Comer",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "newcomer@lfca.church",
		"password": "long-enough-password",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decodeData[struct {
		Token   string             `json:"token"`
		Session models.UserSession `json:"session"`
	}](t, rec)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, models.RoleMember, out.Session.Role)
	assert.Equal(t, "New Comer", out.Session.Name)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ghost@lfca.church",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAssistUnconfiguredReturns503(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/assist/sermon", api.tokenFor(t, models.RolePastor), map[string]string{
		"theme": "Harvest",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAssistFailureReturnsApologeticMessage(t *testing.T) {
	// Unreachable endpoint: every call fails and is replaced by the fallback.
	client := assist.NewClientWithBaseURL("test-key", "http://127.0.0.1:1")
	api := newTestAPI(t, client)

	rec := api.do(t, http.MethodPost, "/assist/chat", api.tokenFor(t, models.RolePastor), map[string]string{
		"query": "anything",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeData[struct {
		Text string `json:"text"`
	}](t, rec)
	assert.Equal(t, fallbackMessage, out.Text)
}

func TestUpdateMissingMemberReturns404(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.tokenFor(t, models.RolePastor)

	rec := api.do(t, http.MethodPut, fmt.Sprintf("/members/%s", "does-not-exist"), token, map[string]string{
		"department": "Ushering",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
