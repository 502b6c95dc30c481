package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	idemp "kasbon-backend/internal/adapter/middleware"
	"kasbon-backend/internal/adapter/repository/mysql"
	"kasbon-backend/internal/advisory"
	"kasbon-backend/internal/domain/loan"
	domainreport "kasbon-backend/internal/domain/report"
	"kasbon-backend/internal/infrastructure/cache"
	"kasbon-backend/internal/testutil/sqlitedb"
	"kasbon-backend/internal/usecase/employee"
	loanuc "kasbon-backend/internal/usecase/loan"
	"kasbon-backend/internal/usecase/reconcile"
	"kasbon-backend/internal/usecase/report"
	"kasbon-backend/pkg/keylock"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// newTestServer wires every route over a fresh in-memory database.
func newTestServer(t *testing.T, mw ...echo.MiddlewareFunc) *echo.Echo {
	t.Helper()
	gdb := sqlitedb.Open(t)
	emps := mysql.NewEmployeeRepository(gdb)
	loans := mysql.NewLoanRepository(gdb)
	txs := mysql.NewTransactionRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	dash := report.NewUsecase(emps, loans, txs, cache.NewMemoryCache(), time.Minute)
	locks := keylock.New()

	e := newEchoWithValidator()
	Register(e, Handlers{
		Health:    NewHandler(),
		Employees: NewEmployeeHandler(employee.NewUsecase(emps, loans, tx, employee.WithInvalidator(dash))),
		Loans:     NewLoanHandler(loanuc.NewUsecase(loans, emps, txs, tx, loanuc.WithInvalidator(dash), loanuc.WithLocker(locks))),
		Reports:   NewReportHandler(dash, reconcile.NewUsecase(loans, txs, tx, locks, dash)),
	}, mw...)
	return e
}

func do(e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	var req *stdhttp.Request
	if body != nil {
		req = httptest.NewRequest(method, path, mustJSON(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return v
}

func addEmployee(t *testing.T, e *echo.Echo, name string) employee.EmployeeDTO {
	t.Helper()
	rec := do(e, stdhttp.MethodPost, "/employees", map[string]any{
		"name":      name,
		"position":  "Sales Manager",
		"salary":    8500000,
		"join_date": "2022-01-15",
		"phone":     "081234567890",
	})
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("add employee status = %d body=%s", rec.Code, rec.Body.String())
	}
	return decode[employee.EmployeeDTO](t, rec)
}

func issueLoan(t *testing.T, e *echo.Echo, employeeID string, amount int64, term int) loanuc.LoanDTO {
	t.Helper()
	rec := do(e, stdhttp.MethodPost, "/loans", map[string]any{
		"employee_id": employeeID,
		"amount":      amount,
		"term_months": term,
		"reason":      "medical",
		"start_date":  "2024-01-12",
	})
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("issue status = %d body=%s", rec.Code, rec.Body.String())
	}
	return decode[loanuc.LoanDTO](t, rec)
}

// -------- tests --------

func TestEmployeeEndpoints(t *testing.T) {
	e := newTestServer(t)
	emp := addEmployee(t, e, "Budi Santoso")

	rec := do(e, stdhttp.MethodGet, "/employees", nil)
	if list := decode[[]employee.EmployeeDTO](t, rec); rec.Code != stdhttp.StatusOK || len(list) != 1 {
		t.Fatalf("list = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, stdhttp.MethodPut, "/employees/"+emp.EmployeeID, map[string]any{"position": "Regional Manager"})
	if got := decode[employee.EmployeeDTO](t, rec); rec.Code != stdhttp.StatusOK || got.Position != "Regional Manager" {
		t.Fatalf("update = %d %s", rec.Code, rec.Body.String())
	}

	issueLoan(t, e, emp.EmployeeID, 5_000_000, 5)

	rec = do(e, stdhttp.MethodGet, "/employees/"+emp.EmployeeID, nil)
	ov := decode[employee.OverviewDTO](t, rec)
	if rec.Code != stdhttp.StatusOK || !ov.Debt.Equal(decimal.NewFromInt(5_000_000)) || ov.ActiveLoans != 1 {
		t.Fatalf("overview = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, stdhttp.MethodDelete, "/employees/"+emp.EmployeeID, nil)
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("delete with loans = %d, want 409", rec.Code)
	}

	rec = do(e, stdhttp.MethodGet, "/employees/"+emp.EmployeeID+"/advice", nil)
	if adv := decode[employee.AdviceDTO](t, rec); adv.Advice != advisory.AdvicePlaceholderNoKey {
		t.Fatalf("advice = %+v", adv)
	}

	other := addEmployee(t, e, "Dewi Lestari")
	if rec := do(e, stdhttp.MethodDelete, "/employees/"+other.EmployeeID, nil); rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	if rec := do(e, stdhttp.MethodGet, "/employees/"+other.EmployeeID, nil); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("get deleted = %d", rec.Code)
	}
}

func TestCreateEmployee_Validation(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, stdhttp.MethodPost, "/employees", map[string]any{"name": "Budi", "salary": -1, "join_date": "15-01-2022"})
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := decode[ErrorResponse](t, rec)
	if body.Error != "failed to add employee" {
		t.Fatalf("error = %q", body.Error)
	}
	for _, f := range []string{"position", "phone", "salary", "join_date"} {
		if !containsFieldMsg(body.Details, f, "") {
			t.Errorf("missing detail for %s: %+v", f, body.Details)
		}
	}
}

func TestIssueLoan_Validation(t *testing.T) {
	e := newTestServer(t)
	emp := addEmployee(t, e, "Budi Santoso")

	cases := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"zero amount", map[string]any{"employee_id": emp.EmployeeID, "amount": 0, "term_months": 5, "reason": "x"}, "amount"},
		{"term too long", map[string]any{"employee_id": emp.EmployeeID, "amount": 1000, "term_months": 25, "reason": "x"}, "term_months"},
		{"missing reason", map[string]any{"employee_id": emp.EmployeeID, "amount": 1000, "term_months": 5}, "reason"},
		{"bad employee id", map[string]any{"employee_id": "E001", "amount": 1000, "term_months": 5, "reason": "x"}, "employee_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, stdhttp.MethodPost, "/loans", tc.body)
			if rec.Code != stdhttp.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422; body=%s", rec.Code, rec.Body.String())
			}
			body := decode[ErrorResponse](t, rec)
			if body.Error != "failed to issue loan" || !containsFieldMsg(body.Details, tc.field, "") {
				t.Fatalf("body = %+v", body)
			}
		})
	}

	// whitespace-only reason passes the validator and is caught by the domain
	rec := do(e, stdhttp.MethodPost, "/loans", map[string]any{"employee_id": emp.EmployeeID, "amount": 1000, "term_months": 5, "reason": "   "})
	if body := decode[ErrorResponse](t, rec); rec.Code != stdhttp.StatusUnprocessableEntity || body.Error != "failed to issue loan" {
		t.Fatalf("blank reason = %d %+v", rec.Code, body)
	}
}

func TestIssueLoan_UnknownEmployee(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, stdhttp.MethodPost, "/loans", map[string]any{
		"employee_id": strings.Repeat("b", 32), "amount": 1000, "term_months": 1, "reason": "x",
	})
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRepaymentEndpoints(t *testing.T) {
	e := newTestServer(t)
	emp := addEmployee(t, e, "Siti Aminah")
	l := issueLoan(t, e, emp.EmployeeID, 2_000_000, 2)
	path := "/loans/" + l.LoanID + "/repayments"

	if rec := do(e, stdhttp.MethodPost, path, map[string]any{"amount": 1_000_000, "date": "2024-02-12"}); rec.Code != stdhttp.StatusCreated {
		t.Fatalf("first repayment = %d %s", rec.Code, rec.Body.String())
	}

	rec := do(e, stdhttp.MethodPost, path, map[string]any{"amount": 1_500_000})
	body := decode[ErrorResponse](t, rec)
	if rec.Code != stdhttp.StatusUnprocessableEntity || body.Error != "failed to record repayment" ||
		!containsFieldMsg(body.Details, "amount", "exceeds remaining amount") {
		t.Fatalf("over-payment = %d %+v", rec.Code, body)
	}

	rec = do(e, stdhttp.MethodPost, path, map[string]any{"amount": 0})
	body = decode[ErrorResponse](t, rec)
	if rec.Code != stdhttp.StatusUnprocessableEntity || body.Error != "failed to record repayment" ||
		!containsFieldMsg(body.Details, "amount", "") {
		t.Fatalf("zero amount = %d %+v", rec.Code, body)
	}

	req := httptest.NewRequest(stdhttp.MethodPost, path, strings.NewReader(`{"amount":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	raw := httptest.NewRecorder()
	e.ServeHTTP(raw, req)
	if body := decode[ErrorResponse](t, raw); raw.Code != stdhttp.StatusBadRequest || body.Error != "failed to record repayment" {
		t.Fatalf("malformed body = %d %+v", raw.Code, body)
	}

	rec = do(e, stdhttp.MethodPost, path, map[string]any{"amount": "1000000.00", "date": "2024-03-12"})
	out := decode[loanuc.RepaymentDTO](t, rec)
	if rec.Code != stdhttp.StatusCreated || out.Loan.Status != string(loan.StatusPaid) || !out.Loan.RemainingAmount.IsZero() {
		t.Fatalf("final repayment = %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(e, stdhttp.MethodPost, path, map[string]any{"amount": 1}); rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("repay paid loan = %d", rec.Code)
	}

	rec = do(e, stdhttp.MethodGet, path, nil)
	history := decode[[]loanuc.TransactionDTO](t, rec)
	if len(history) != 2 || !history[0].Date.After(history[1].Date) {
		t.Fatalf("history = %+v", history)
	}

	rec = do(e, stdhttp.MethodGet, "/transactions", nil)
	if all := decode[[]loanuc.TransactionDTO](t, rec); len(all) != 3 {
		t.Fatalf("transactions = %+v", all)
	}

	rec = do(e, stdhttp.MethodGet, "/dashboard", nil)
	s := decode[domainreport.Summary](t, rec)
	if rec.Code != stdhttp.StatusOK || !s.Outstanding.IsZero() || !s.TotalRepaid.Equal(decimal.NewFromInt(2_000_000)) {
		t.Fatalf("dashboard = %d %s", rec.Code, rec.Body.String())
	}
	if s.StatusDistribution[loan.StatusPaid] != 1 || !s.RepaymentPercentage.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("dashboard = %+v", s)
	}
}

func TestLoanEndpoints_NotFound(t *testing.T) {
	e := newTestServer(t)
	missing := strings.Repeat("c", 32)

	for _, rec := range []*httptest.ResponseRecorder{
		do(e, stdhttp.MethodGet, "/loans/"+missing, nil),
		do(e, stdhttp.MethodGet, "/loans/"+missing+"/repayments", nil),
		do(e, stdhttp.MethodPost, "/loans/"+missing+"/repayments", map[string]any{"amount": 1}),
	} {
		if rec.Code != stdhttp.StatusNotFound {
			t.Fatalf("status = %d, want 404; body=%s", rec.Code, rec.Body.String())
		}
	}
}

func TestListLoans_FilterByEmployee(t *testing.T) {
	e := newTestServer(t)
	a := addEmployee(t, e, "Budi Santoso")
	b := addEmployee(t, e, "Rizky Pratama")
	issueLoan(t, e, a.EmployeeID, 1_000_000, 2)
	issueLoan(t, e, b.EmployeeID, 1_500_000, 3)

	rec := do(e, stdhttp.MethodGet, "/loans?employee_id="+b.EmployeeID, nil)
	got := decode[[]loanuc.LoanDTO](t, rec)
	if len(got) != 1 || got[0].EmployeeID != b.EmployeeID {
		t.Fatalf("filtered = %+v", got)
	}
	if all := decode[[]loanuc.LoanDTO](t, do(e, stdhttp.MethodGet, "/loans", nil)); len(all) != 2 {
		t.Fatalf("all = %+v", all)
	}
}

func TestReconcileEndpoint(t *testing.T) {
	e := newTestServer(t)
	emp := addEmployee(t, e, "Budi Santoso")
	issueLoan(t, e, emp.EmployeeID, 1_000_000, 2)

	rec := do(e, stdhttp.MethodPost, "/admin/reconcile?repair=true", nil)
	rep := decode[reconcile.Report](t, rec)
	if rec.Code != stdhttp.StatusOK || rep.CheckedLoans != 1 || len(rep.Divergences) != 0 {
		t.Fatalf("reconcile = %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(e, stdhttp.MethodPost, "/admin/reconcile?repair=maybe", nil); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("bad flag = %d", rec.Code)
	}
}

func TestRespondError_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(stdhttp.MethodGet, "/loans", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = respondError(c, "list loans", errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	if rec.Code != stdhttp.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Fatalf("storage detail leaked: %s", rec.Body.String())
	}
	if body := decode[ErrorResponse](t, rec); body.Error != "failed to list loans" || len(body.Details) != 0 {
		t.Fatalf("body = %+v", body)
	}
}

func TestRespondError_Kinds(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{loan.ErrExceedsRemaining, stdhttp.StatusUnprocessableEntity},
		{loan.ErrNotFound, stdhttp.StatusNotFound},
		{loan.ErrConcurrentUpdate, stdhttp.StatusConflict},
		{context.DeadlineExceeded, stdhttp.StatusInternalServerError},
	}
	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(stdhttp.MethodPost, "/", nil), rec)
		_ = respondError(c, "record repayment", tc.err)
		if rec.Code != tc.code {
			t.Errorf("%v -> %d, want %d", tc.err, rec.Code, tc.code)
		}
	}
}

func TestRepayment_DoubleSubmitIsReplayed(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	e := newTestServer(t, idemp.Idempotency(rdb, time.Minute))

	withKey := func(method, path, key string, body any) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, mustJSON(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(idemp.HeaderIdempotencyKey, key)
		req.Header.Set(idemp.HeaderRequestAt, time.Now().UTC().Format(time.RFC3339))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := withKey(stdhttp.MethodPost, "/employees", strings.Repeat("1", 32), map[string]any{
		"name": "Dewi Lestari", "position": "HR Specialist", "salary": 6200000,
		"join_date": "2020-08-20", "phone": "081987654321",
	})
	emp := decode[employee.EmployeeDTO](t, rec)
	rec = withKey(stdhttp.MethodPost, "/loans", strings.Repeat("2", 32), map[string]any{
		"employee_id": emp.EmployeeID, "amount": 3000000, "term_months": 3, "reason": "medical",
	})
	l := decode[loanuc.LoanDTO](t, rec)

	path := "/loans/" + l.LoanID + "/repayments"
	first := withKey(stdhttp.MethodPost, path, strings.Repeat("3", 32), map[string]any{"amount": 1000000})
	second := withKey(stdhttp.MethodPost, path, strings.Repeat("3", 32), map[string]any{"amount": 1000000})
	if first.Code != stdhttp.StatusCreated || second.Code != stdhttp.StatusCreated {
		t.Fatalf("statuses = %d, %d", first.Code, second.Code)
	}
	if second.Header().Get(idemp.HeaderReplayed) != "true" || second.Body.String() != first.Body.String() {
		t.Fatalf("second submit was not a replay: %s", second.Body.String())
	}

	got := decode[loanuc.LoanDTO](t, do(e, stdhttp.MethodGet, "/loans/"+l.LoanID, nil))
	if !got.RemainingAmount.Equal(decimal.NewFromInt(2_000_000)) {
		t.Fatalf("remaining = %s, want 2000000 (one repayment)", got.RemainingAmount)
	}
}
