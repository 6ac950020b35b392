package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hospitalos/hms/internal/domain/insurance"
)

func newTestServer() (*echo.Echo, *fixture) {
	f := newFixture()
	e := echo.New()
	NewHandler(f.svc).RegisterRoutes(e.Group(""))
	return e, f
}

func doJSON(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreateInvoice_InsuredSplit(t *testing.T) {
	e, f := newTestServer()
	patient := uuid.New()
	f.policies.byPatient[patient] = &insurance.Policy{
		CoveragePercentage: f64Ptr(40), Deductable: f64Ptr(0),
	}

	rec := doJSON(t, e, http.MethodPost, "/invoices",
		`{"patient_id":"`+patient.String()+`","total_amount":100}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var inv Invoice
	if err := json.Unmarshal(rec.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inv.InsuranceAmount != 40 || inv.PatientAmount != 60 {
		t.Errorf("expected 40/60 split, got %+v", inv)
	}
	if inv.Status != StatusPending {
		t.Errorf("expected Pending, got %s", inv.Status)
	}
}

func TestHandlerCreateInvoice_ZeroTotalIsValid(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(t, e, http.MethodPost, "/invoices",
		`{"patient_id":"`+uuid.NewString()+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var inv Invoice
	if err := json.Unmarshal(rec.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inv.TotalAmount != 0 {
		t.Errorf("absent data should produce a zero total, got %v", inv.TotalAmount)
	}
}

func TestHandlerPaymentFlow(t *testing.T) {
	e, f := newTestServer()
	inv := createInvoice(t, f, uuid.New(), 60)

	rec := doJSON(t, e, http.MethodPost, "/payments",
		`{"invoice_id":"`+inv.ID.String()+`","amount":60,"payment_method":"Card"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var p Payment
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Status != StatusPaid {
		t.Errorf("payments default to Paid, got %s", p.Status)
	}
	if got := f.invoices.invoices[inv.ID].Status; got != StatusPaid {
		t.Errorf("invoice should settle, got %s", got)
	}

	rec = doJSON(t, e, http.MethodDelete, "/payments/"+p.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := f.invoices.invoices[inv.ID].Status; got != StatusPending {
		t.Errorf("invoice should revert to Pending, got %s", got)
	}
}

func TestHandlerPayment_RejectsBadMethod(t *testing.T) {
	e, f := newTestServer()
	inv := createInvoice(t, f, uuid.New(), 60)

	rec := doJSON(t, e, http.MethodPost, "/payments",
		`{"invoice_id":"`+inv.ID.String()+`","amount":10,"payment_method":"Cheque"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerClaimApproval(t *testing.T) {
	e, f := newTestServer()
	patient := uuid.New()
	f.policies.byPatient[patient] = &insurance.Policy{
		CoveragePercentage: f64Ptr(40), Deductable: f64Ptr(0),
	}
	inv := createInvoice(t, f, patient, 100)

	rec := doJSON(t, e, http.MethodPost, "/insurance-claims",
		`{"invoice_id":"`+inv.ID.String()+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var claim Claim
	if err := json.Unmarshal(rec.Body.Bytes(), &claim); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claim.ClaimAmount != 40 {
		t.Errorf("claim amount should default to the insurance share, got %v", claim.ClaimAmount)
	}

	rec = doJSON(t, e, http.MethodPut, "/insurance-claims/"+claim.ID.String(),
		`{"claim_status":"Approved","reimbursement_amount":40}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	payments, _, err := f.svc.ListPayments(context.Background(), &inv.ID, 20, 0)
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(payments) != 1 || payments[0].Method != MethodInsurance {
		t.Fatalf("expected one synthesized Insurance payment, got %+v", payments)
	}
}

func TestHandlerListInvoices_FilterByStatus(t *testing.T) {
	e, f := newTestServer()
	patient := uuid.New()
	createInvoice(t, f, patient, 10)
	paid := createInvoice(t, f, patient, 20)
	f.invoices.invoices[paid.ID].Status = StatusPaid

	rec := doJSON(t, e, http.MethodGet, "/invoices?status=Paid", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Total != 1 {
		t.Errorf("expected 1 paid invoice, got %d", envelope.Total)
	}

	rec = doJSON(t, e, http.MethodGet, "/invoices?status=Bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status filter, got %d", rec.Code)
	}
}

func TestHandlerRecalculate(t *testing.T) {
	e, f := newTestServer()
	patient := uuid.New()
	inv := createInvoice(t, f, patient, 100)

	f.policies.byPatient[patient] = &insurance.Policy{
		CoveragePercentage: f64Ptr(50), Deductable: f64Ptr(0),
	}
	rec := doJSON(t, e, http.MethodPost, "/invoices/"+inv.ID.String()+"/recalculate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var after Invoice
	if err := json.Unmarshal(rec.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if after.InsuranceAmount != 50 {
		t.Errorf("expected insurance share 50 after recalculation, got %v", after.InsuranceAmount)
	}
}
