package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/repository"
	"github.com/fabienng71/Rclx-sub001/services"
	"github.com/fabienng71/Rclx-sub001/storage"
	"github.com/fabienng71/Rclx-sub001/utils"
)

type testServer struct {
	router *gin.Engine
	quotes *repository.QuotationStore
	clock  *utils.FixedClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kv := storage.NewMemoryStorage()
	clock := &utils.FixedClock{T: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)}
	seeds := []repository.SeedAccount{
		{Name: "Admin", Email: "admin@test.local", Password: "admin123", Role: "admin", Telephone: "+66 1"},
		{Name: "Sales", Email: "sales@test.local", Password: "sales123", Role: "user", Telephone: "+66 2"},
		{Name: "Office", Email: "office@test.local", Password: "office123", Role: "user"},
	}
	creds := repository.NewCredentialStoreWithSeeds(kv, utils.NewTokenIssuer("test", clock), clock, bcrypt.MinCost, seeds)
	quotes, err := repository.NewQuotationStore(context.Background(), kv)
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	RegisterRoutes(r, API{
		Credentials: creds,
		Quotations:  quotes,
		Renderer:    services.NewQuotationRenderer(services.Issuer{Name: "Northgate"}),
		Exporter:    services.NewRegisterExporter(),
		Mail:        services.NewMailComposer(),
		Clock:       clock,
	})
	return &testServer{router: r, quotes: quotes, clock: clock}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/login", "", models.LoginRequest{Email: email, Password: password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var resp models.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.AccessToken
}

func draftBody(n int) models.DraftRequest {
	products := make([]models.Product, n)
	for i := range products {
		products[i] = models.Product{ItemCode: "P" + string(rune('A'+i)), Description: "Product", UnitPrice: 100}
	}
	override := 80.0
	if n > 0 {
		products[0].ModifiedPrice = &override
	}
	return models.DraftRequest{
		Customer:       models.Customer{CustomerCode: "C-1", CompanyName: "Acme"},
		Products:       products,
		PaymentTerms:   models.PaymentCOD,
		ValidityPeriod: models.ValidityOneWeek,
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/login", "", models.LoginRequest{Email: "admin@test.local", Password: "admin123"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.LoginResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.IsAdmin || resp.AccessToken == "" || resp.User.Password != "" {
		t.Fatalf("unexpected login response %+v", resp)
	}

	for _, body := range []models.LoginRequest{
		{Email: "admin@test.local", Password: "wrong"},
		{Email: "nobody@test.local", Password: "admin123"},
	} {
		if w := s.do(t, http.MethodPost, "/api/login", "", body); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", body.Email, w.Code)
		}
	}
	if w := s.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "x"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(t, http.MethodGet, "/api/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/me", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", w.Code)
	}

	token := s.login(t, "sales@test.local", "sales123")
	w := s.do(t, http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "sales@test.local") {
		t.Fatalf("unexpected /me response %d %s", w.Code, w.Body.String())
	}

	s.clock.Advance(31 * time.Minute)
	if w := s.do(t, http.MethodGet, "/api/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after expiry, got %d", w.Code)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	sales := s.login(t, "sales@test.local", "sales123")
	admin := s.login(t, "admin@test.local", "admin123")

	if w := s.do(t, http.MethodGet, "/api/users", sales, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
	w := s.do(t, http.MethodGet, "/api/users", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var users []models.User
	json.Unmarshal(w.Body.Bytes(), &users)
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
}

func TestUserCRUD(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@test.local", "admin123")

	w := s.do(t, http.MethodPost, "/api/users", admin, models.CreateUserInput{Name: "New Rep", Email: "rep@test.local", Password: "secret1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created models.User
	json.Unmarshal(w.Body.Bytes(), &created)

	if w := s.do(t, http.MethodPost, "/api/users", admin, models.CreateUserInput{Name: "Dup", Email: "rep@test.local", Password: "secret1"}); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/users", admin, models.CreateUserInput{Name: "Bad", Email: "bad@test.local", Password: "123"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", w.Code)
	}

	phone := "+66 3"
	if w := s.do(t, http.MethodPut, "/api/users/"+created.ID, admin, models.UpdateUserInput{Telephone: &phone}); w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodGet, "/api/users/"+created.ID, admin, nil); !strings.Contains(w.Body.String(), "+66 3") {
		t.Fatalf("update not visible: %s", w.Body.String())
	}
	if w := s.do(t, http.MethodDelete, "/api/users/"+created.ID, admin, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := s.do(t, http.MethodDelete, "/api/users/"+created.ID, admin, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestLoginJournalPaging(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		s.do(t, http.MethodPost, "/api/login", "", models.LoginRequest{Email: "ghost@test.local", Password: "x"})
	}
	admin := s.login(t, "admin@test.local", "admin123")

	w := s.do(t, http.MethodGet, "/api/login-journal?page=1&limit=3", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("journal: %d", w.Code)
	}
	var page models.LoginJournalPage
	json.Unmarshal(w.Body.Bytes(), &page)
	if page.Total != 4 || page.TotalPages != 2 || !page.HasNext || page.HasPrev || len(page.Data) != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Data[0].Email != "admin@test.local" || !page.Data[0].Success {
		t.Fatalf("newest entry should be the admin login, got %+v", page.Data[0])
	}

	for _, q := range []string{"page=92233720368547759&limit=100", "page=3&limit=3"} {
		w = s.do(t, http.MethodGet, "/api/login-journal?"+q, admin, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", q, w.Code)
		}
		var beyond models.LoginJournalPage
		json.Unmarshal(w.Body.Bytes(), &beyond)
		if len(beyond.Data) != 0 || beyond.Total != 4 || beyond.HasNext {
			t.Fatalf("%s: expected an empty page past the end, got %+v", q, beyond)
		}
	}

	w = s.do(t, http.MethodGet, "/api/login-journal?success=false", admin, nil)
	json.Unmarshal(w.Body.Bytes(), &page)
	if page.Total != 3 {
		t.Fatalf("expected 3 failed attempts, got %d", page.Total)
	}

	w = s.do(t, http.MethodGet, "/api/login-journal/export", admin, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("export: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestQuotationLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "sales@test.local", "sales123")

	w := s.do(t, http.MethodPost, "/api/quotations/draft", token, draftBody(2))
	if w.Code != http.StatusOK {
		t.Fatalf("draft: %d %s", w.Code, w.Body.String())
	}
	if len(s.quotes.Active()) != 0 {
		t.Fatal("draft must not be saved")
	}

	w = s.do(t, http.MethodPost, "/api/quotations", token, draftBody(2))
	if w.Code != http.StatusCreated {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}
	var saved models.QuotationResponse
	json.Unmarshal(w.Body.Bytes(), &saved)
	q := saved.Quotation
	if q.Sender == nil || q.Sender.Email != "sales@test.local" || q.Items[0].Discount != 20 {
		t.Fatalf("unexpected saved quotation %+v", q)
	}
	if !q.ValidUntil.Equal(s.clock.T.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected validUntil %v", q.ValidUntil)
	}

	id := q.ID
	if w := s.do(t, http.MethodPatch, "/api/quotations/"+id+"/status", token, models.StatusRequest{Status: models.StatusSent}); w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if w := s.do(t, http.MethodPatch, "/api/quotations/"+id+"/status", token, models.StatusRequest{Status: "lost"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/quotations/"+id+"/archive", token, nil); w.Code != http.StatusOK {
		t.Fatalf("archive: %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/quotations?archived=true", token, nil)
	var archived []models.Quotation
	json.Unmarshal(w.Body.Bytes(), &archived)
	if len(archived) != 1 || archived[0].Status != models.StatusSent {
		t.Fatalf("unexpected archive %+v", archived)
	}

	if w := s.do(t, http.MethodPost, "/api/quotations/"+id+"/restore", token, nil); w.Code != http.StatusOK {
		t.Fatalf("restore: %d", w.Code)
	}
	w = s.do(t, http.MethodGet, "/api/quotations/"+id, token, nil)
	var got models.QuotationResponse
	json.Unmarshal(w.Body.Bytes(), &got)
	if got.Archived || got.Quotation.ID != id {
		t.Fatalf("expected restored quotation, got %+v", got)
	}

	// Lifecycle calls on unknown ids are silent.
	if w := s.do(t, http.MethodPost, "/api/quotations/nope/archive", token, nil); w.Code != http.StatusOK {
		t.Fatalf("archive of unknown id: %d", w.Code)
	}

	if w := s.do(t, http.MethodDelete, "/api/quotations/"+id, token, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/quotations/"+id, token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestSaveWithoutSenderTelephoneIsRejected(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "office@test.local", "office123")

	w := s.do(t, http.MethodPost, "/api/quotations", token, draftBody(1))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if len(s.quotes.Active()) != 0 {
		t.Fatal("nothing should be saved")
	}
}

func TestLeadCustomer(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "sales@test.local", "sales123")

	body := draftBody(1)
	body.Customer = models.Customer{CompanyName: "Walk-in Trader"}
	w := s.do(t, http.MethodPost, "/api/quotations/draft", token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("draft: %d %s", w.Code, w.Body.String())
	}
	var q models.Quotation
	json.Unmarshal(w.Body.Bytes(), &q)
	if !q.Customer.IsLead || !strings.HasPrefix(q.Customer.CustomerCode, "LEAD-") {
		t.Fatalf("expected a lead customer, got %+v", q.Customer)
	}
}

func TestQuotationDocuments(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "sales@test.local", "sales123")

	w := s.do(t, http.MethodPost, "/api/quotations", token, draftBody(16))
	var saved models.QuotationResponse
	json.Unmarshal(w.Body.Bytes(), &saved)
	id := saved.Quotation.ID

	w = s.do(t, http.MethodGet, "/api/quotations/"+id+"/pdf", token, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("pdf: %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	w = s.do(t, http.MethodPost, "/api/quotations/preview.pdf", token, draftBody(0))
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("preview: %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/quotations/"+id+"/mailto?to=buyer@acme.example", token, nil)
	var mail models.MailtoResponse
	json.Unmarshal(w.Body.Bytes(), &mail)
	if !strings.HasPrefix(mail.URI, "mailto:buyer@acme.example?") {
		t.Fatalf("unexpected mailto %q", mail.URI)
	}

	w = s.do(t, http.MethodGet, "/api/quotations/export", token, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "quotations-20240701.xlsx") {
		t.Fatalf("export: %d %v", w.Code, w.Header())
	}
}
