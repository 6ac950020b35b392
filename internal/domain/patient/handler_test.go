package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hospitalos/hms/pkg/pagination"
)

func setupHandler() (*Handler, *mockRepo) {
	repo := newMockRepo()
	return NewHandler(NewService(repo, nil)), repo
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func TestHandlerCreate(t *testing.T) {
	h, _ := setupHandler()
	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/v1/patients", `{"first_name":"Ana","last_name":"Torres","gender":"Female"}`)
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var p Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected assigned id in response")
	}
}

func TestHandlerCreate_InvalidGender(t *testing.T) {
	h, _ := setupHandler()
	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/v1/patients", `{"gender":"X"}`)
	c := e.NewContext(req, rec)

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandlerGet_BadID(t *testing.T) {
	h, _ := setupHandler()
	e := echo.New()
	req, rec := jsonRequest(http.MethodGet, "/api/v1/patients/abc", "")
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandlerGet_NotFound(t *testing.T) {
	h, _ := setupHandler()
	e := echo.New()
	req, rec := jsonRequest(http.MethodGet, "/api/v1/patients/x", "")
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandlerUpdate_PartialBodyKeepsFields(t *testing.T) {
	h, repo := setupHandler()
	existing := &Patient{FirstName: strPtr("Ana"), LastName: strPtr("Torres"), Phone: strPtr("5550001")}
	if err := repo.Create(context.Background(), existing); err != nil {
		t.Fatalf("seed: %v", err)
	}

	e := echo.New()
	req, rec := jsonRequest(http.MethodPut, "/api/v1/patients/x", `{"phone":"5559999"}`)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(existing.ID.String())

	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}

	var p Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Phone == nil || *p.Phone != "5559999" {
		t.Errorf("expected updated phone, got %v", p.Phone)
	}
	if p.FirstName == nil || *p.FirstName != "Ana" {
		t.Errorf("expected first name preserved, got %v", p.FirstName)
	}
}

func TestHandlerList_Envelope(t *testing.T) {
	h, repo := setupHandler()
	for _, name := range []string{"Ana", "Ben", "Chloe"} {
		n := name
		if err := repo.Create(context.Background(), &Patient{FirstName: &n}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	e := echo.New()
	req, rec := jsonRequest(http.MethodGet, "/api/v1/patients?limit=2", "")
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}

	var resp pagination.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("expected total 3, got %d", resp.Total)
	}
	if !resp.HasMore {
		t.Error("expected has_more with limit 2 of 3")
	}
}

func TestHandlerDelete(t *testing.T) {
	h, repo := setupHandler()
	p := &Patient{FirstName: strPtr("Ana")}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed: %v", err)
	}

	e := echo.New()
	req, rec := jsonRequest(http.MethodDelete, "/api/v1/patients/x", "")
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(repo.patients) != 0 {
		t.Error("expected patient removed")
	}
}
