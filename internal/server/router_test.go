package server_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pyggy/internal/logger"
	"pyggy/internal/realtime"
	"pyggy/internal/server"
	"pyggy/internal/testutil"
	"pyggy/internal/validator"
)

// testApp holds the full application stack over an isolated database.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	hub := realtime.NewHub()
	t.Cleanup(func() {
		_ = hub.Close()
		testutil.TeardownTestDB(t, db)
	})

	router := server.NewRouter(db, hub, server.Options{
		DefaultCurrency: "USD",
		DefaultLocale:   "en-US",
		AllowedOrigins:  []string{"http://localhost:3000"},
	})
	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// mustRequest fails the test unless the response has the wanted status.
func (app *testApp) mustRequest(t *testing.T, want int, method, path, body string) map[string]interface{} {
	t.Helper()
	rec := app.request(method, path, body)
	if rec.Code != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, path, want, rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := parseJSON(t, rec)
	detail, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected an error body, got %s", rec.Body.String())
	}
	return detail["code"].(string)
}

// amount reads a decimal serialized as a JSON string.
func amount(t *testing.T, v interface{}) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	if !ok {
		t.Fatalf("expected a decimal string, got %T %v", v, v)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func (app *testApp) createBudget(t *testing.T, start string, initial int) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Household","start_date":%q,"initial_amount":%d}`, start, initial)
	result := app.mustRequest(t, http.StatusCreated, "POST", "/api/v1/budgets", body)
	return result["budget"].(map[string]interface{})["id"].(string)
}

func (app *testApp) createExpense(t *testing.T, budgetID, body string) map[string]interface{} {
	t.Helper()
	result := app.mustRequest(t, http.StatusCreated, "POST", "/api/v1/budgets/"+budgetID+"/expenses", body)
	return result["expense"].(map[string]interface{})
}

func (app *testApp) processNext(t *testing.T, budgetID string) map[string]interface{} {
	t.Helper()
	result := app.mustRequest(t, http.StatusCreated, "POST", "/api/v1/budgets/"+budgetID+"/months/process", "")
	return result["month"].(map[string]interface{})
}

func (app *testApp) monthItems(t *testing.T, budgetID string, year, month int) []interface{} {
	t.Helper()
	path := fmt.Sprintf("/api/v1/budgets/%s/months/%d/%d", budgetID, year, month)
	result := app.mustRequest(t, http.StatusOK, "GET", path, "")
	return result["items"].([]interface{})
}

func itemID(v interface{}) string {
	return v.(map[string]interface{})["id"].(string)
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := parseJSON(t, rec)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	if body["websocket_clients"].(float64) != 0 {
		t.Errorf("expected no websocket clients, got %v", body["websocket_clients"])
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request ID header")
	}
}

func TestCORSPreflight(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest("OPTIONS", "/api/v1/budgets", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin, got %q", got)
	}
}

func TestSplitPaymentFlow(t *testing.T) {
	app := setupApp(t)
	budgetID := app.createBudget(t, "2024-01-01", 1000)

	expense := app.createExpense(t, budgetID, `{
		"title":"Laptop","expense_type":"split_payment","amount":100,
		"start_date":"2024-01-15","day_of_month":15,"total_parts":10,"skip_parts":8}`)
	expenseID := expense["id"].(string)

	jan := app.processNext(t, budgetID)
	if jan["year"].(float64) != 2024 || jan["month"].(float64) != 1 {
		t.Fatalf("expected January 2024, got %v-%v", jan["year"], jan["month"])
	}
	app.processNext(t, budgetID)

	var itemIDs []string
	for _, m := range []int{1, 2} {
		items := app.monthItems(t, budgetID, 2024, m)
		if len(items) != 1 {
			t.Fatalf("expected 1 item in 2024-%02d, got %d", m, len(items))
		}
		item := items[0].(map[string]interface{})
		if !amount(t, item["amount"]).Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected installment of 100, got %v", item["amount"])
		}
		itemIDs = append(itemIDs, item["id"].(string))
	}

	t.Run("first payment leaves the expense open", func(t *testing.T) {
		result := app.mustRequest(t, http.StatusCreated, "POST",
			"/api/v1/budgets/"+budgetID+"/items/"+itemIDs[0]+"/pay-in-full", "")
		if result["expense_closed"] != false {
			t.Errorf("expected expense to stay open, got %v", result["expense_closed"])
		}
	})

	t.Run("last payment closes the expense", func(t *testing.T) {
		result := app.mustRequest(t, http.StatusCreated, "POST",
			"/api/v1/budgets/"+budgetID+"/items/"+itemIDs[1]+"/payments", `{"amount":100}`)
		if result["expense_closed"] != true {
			t.Errorf("expected expense to close, got %v", result["expense_closed"])
		}

		got := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/budgets/"+budgetID+"/expenses/"+expenseID, "")
		if got["expense"].(map[string]interface{})["closed_at"] == nil {
			t.Error("expected closed_at to be set")
		}
	})

	t.Run("another month accrues nothing", func(t *testing.T) {
		app.processNext(t, budgetID)
		if items := app.monthItems(t, budgetID, 2024, 3); len(items) != 0 {
			t.Errorf("expected no items in March, got %d", len(items))
		}
	})

	t.Run("paying a paid item is rejected", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/budgets/"+budgetID+"/items/"+itemIDs[1]+"/pay-in-full", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "ITEM_ALREADY_PAID" {
			t.Errorf("expected ITEM_ALREADY_PAID, got %s", code)
		}
	})
}

func TestRecurringWithEndFlow(t *testing.T) {
	app := setupApp(t)
	budgetID := app.createBudget(t, "2024-01-01", 1000)

	app.createExpense(t, budgetID, `{
		"title":"Gym","expense_type":"recurring_with_end","amount":25,
		"start_date":"2024-01-15","day_of_month":15,"end_date":"2024-03-15"}`)

	want := map[int]int{1: 1, 2: 1, 3: 1, 4: 0}
	for m := 1; m <= 4; m++ {
		app.processNext(t, budgetID)
		if items := app.monthItems(t, budgetID, 2024, m); len(items) != want[m] {
			t.Errorf("2024-%02d: expected %d items, got %d", m, want[m], len(items))
		}
	}

	balance := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/budgets/"+budgetID+"/balance", "")
	if !amount(t, balance["balance"]).Equal(decimal.NewFromInt(925)) {
		t.Errorf("expected balance 925, got %v", balance["balance"])
	}

	months := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/budgets/"+budgetID+"/months", "")
	list := months["months"].([]interface{})
	if len(list) != 4 {
		t.Fatalf("expected 4 months, got %d", len(list))
	}
	newest := list[0].(map[string]interface{})
	if newest["month"].(float64) != 4 {
		t.Errorf("expected newest month first, got %v", newest["month"])
	}
	if !amount(t, list[1].(map[string]interface{})["balance"]).Equal(decimal.NewFromInt(-25)) {
		t.Errorf("expected March balance -25, got %v", list[1].(map[string]interface{})["balance"])
	}
}

func TestOneTimeFlow(t *testing.T) {
	app := setupApp(t)
	budgetID := app.createBudget(t, "2025-05-01", 500)

	app.createExpense(t, budgetID, `{
		"title":"Dentist","expense_type":"one_time","amount":50,"start_date":"2025-06-10"}`)

	app.mustRequest(t, http.StatusCreated, "POST", "/api/v1/budgets/"+budgetID+"/months", `{"year":2025,"month":5}`)

	items := app.monthItems(t, budgetID, 2025, 5)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0].(map[string]interface{})
	if due := item["due_date"].(string); !strings.HasPrefix(due, "2025-05-10") {
		t.Errorf("expected due date 2025-05-10, got %s", due)
	}
	if item["status"] != "pending" {
		t.Errorf("expected pending, got %v", item["status"])
	}

	result := app.mustRequest(t, http.StatusCreated, "POST",
		"/api/v1/budgets/"+budgetID+"/items/"+itemID(item)+"/pay-in-full", `{"transaction_id":"TX-1"}`)
	if result["expense_closed"] != true {
		t.Errorf("expected one-time expense to close, got %v", result["expense_closed"])
	}

	t.Run("month with paid items cannot be deleted", func(t *testing.T) {
		rec := app.request("DELETE", "/api/v1/budgets/"+budgetID+"/months/2025/5", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "MONTH_HAS_PAID_ITEMS" {
			t.Errorf("expected MONTH_HAS_PAID_ITEMS, got %s", code)
		}
	})

	t.Run("closed expenses are hidden by default", func(t *testing.T) {
		open := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/budgets/"+budgetID+"/expenses", "")
		if n := len(open["data"].([]interface{})); n != 0 {
			t.Errorf("expected no open expenses, got %d", n)
		}
		all := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/budgets/"+budgetID+"/expenses?include_closed=true", "")
		if n := len(all["data"].([]interface{})); n != 1 {
			t.Errorf("expected 1 expense, got %d", n)
		}
	})
}

func TestMonthDeletionFlow(t *testing.T) {
	app := setupApp(t)
	budgetID := app.createBudget(t, "2024-01-01", 1000)

	app.createExpense(t, budgetID, `{
		"title":"Rent","expense_type":"endless_recurring","amount":400,"start_date":"2024-01-01"}`)
	app.processNext(t, budgetID)
	app.processNext(t, budgetID)

	rec := app.request("DELETE", "/api/v1/budgets/"+budgetID+"/months/2024/1", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting an older month, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "MONTH_NOT_LATEST" {
		t.Errorf("expected MONTH_NOT_LATEST, got %s", code)
	}

	app.mustRequest(t, http.StatusOK, "DELETE", "/api/v1/budgets/"+budgetID+"/months/2024/2", "")

	next := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/budgets/"+budgetID+"/months/next", "")
	if next["year"].(float64) != 2024 || next["month"].(float64) != 2 {
		t.Errorf("expected February 2024 next, got %v-%v", next["year"], next["month"])
	}

	rec = app.request("GET", "/api/v1/budgets/"+budgetID+"/months/2024/2", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a deleted month, got %d", rec.Code)
	}

	balance := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/budgets/"+budgetID+"/balance", "")
	if !amount(t, balance["balance"]).Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected balance 600, got %v", balance["balance"])
	}

	t.Run("budget with months cannot be deleted", func(t *testing.T) {
		rec := app.request("DELETE", "/api/v1/budgets/"+budgetID, "")
		if code := errorCode(t, rec); code != "BUDGET_HAS_MONTHS" {
			t.Errorf("expected BUDGET_HAS_MONTHS, got %s", code)
		}
	})

	t.Run("explicit months follow the sequence", func(t *testing.T) {
		for _, body := range []string{`{"year":2024,"month":5}`, `{"year":2023,"month":12}`} {
			rec := app.request("POST", "/api/v1/budgets/"+budgetID+"/months", body)
			if rec.Code != http.StatusConflict {
				t.Fatalf("expected 409 for %s, got %d", body, rec.Code)
			}
			if code := errorCode(t, rec); code != "MONTH_NOT_NEXT" {
				t.Errorf("expected MONTH_NOT_NEXT, got %s", code)
			}
		}
		app.mustRequest(t, http.StatusOK, "POST", "/api/v1/budgets/"+budgetID+"/months", `{"year":2024,"month":1}`)
		months := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/budgets/"+budgetID+"/months", "")
		if n := len(months["months"].([]interface{})); n != 1 {
			t.Errorf("expected 1 month, got %d", n)
		}
	})

	t.Run("invalid month range", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/budgets/"+budgetID+"/months", `{"year":2024,"month":13}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "INVALID_MONTH_RANGE" {
			t.Errorf("expected INVALID_MONTH_RANGE, got %s", code)
		}
	})
}

func TestQuickExpenseFlow(t *testing.T) {
	app := setupApp(t)
	budgetID := app.createBudget(t, "2024-01-01", 200)

	rec := app.request("POST", "/api/v1/budgets/"+budgetID+"/expenses/quick", `{"title":"Coffee","amount":4.5}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 without a month, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "NO_PROCESSED_MONTH" {
		t.Errorf("expected NO_PROCESSED_MONTH, got %s", code)
	}

	app.processNext(t, budgetID)

	method := app.mustRequest(t, http.StatusCreated, "POST", "/api/v1/payment-methods", `{"name":"Card"}`)
	methodID := method["payment_method"].(map[string]interface{})["id"].(string)

	body := fmt.Sprintf(`{"title":"Coffee","amount":"4.50","mark_as_paid":true,"payment_method_id":%q}`, methodID)
	result := app.mustRequest(t, http.StatusCreated, "POST",
		"/api/v1/budgets/"+budgetID+"/expenses/quick?today=2024-01-20", body)
	expense := result["expense"].(map[string]interface{})
	if expense["expense_type"] != "one_time" {
		t.Errorf("expected one_time, got %v", expense["expense_type"])
	}
	if expense["closed_at"] == nil {
		t.Error("expected a paid quick expense to be closed")
	}

	dash := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/budgets/"+budgetID+"/dashboard?today=2024-01-20", "")
	summary := dash["summary"].(map[string]interface{})
	if summary["paid_count"].(float64) != 1 || summary["pending_count"].(float64) != 0 {
		t.Errorf("expected 1 paid and 0 pending, got %v/%v", summary["paid_count"], summary["pending_count"])
	}
	if !amount(t, dash["current_balance"]).Equal(decimal.RequireFromString("195.5")) {
		t.Errorf("expected balance 195.5, got %v", dash["current_balance"])
	}

	t.Run("payment method in use cannot be deleted", func(t *testing.T) {
		rec := app.request("DELETE", "/api/v1/payment-methods/"+methodID, "")
		if code := errorCode(t, rec); code != "PAYMENT_METHOD_IN_USE" {
			t.Errorf("expected PAYMENT_METHOD_IN_USE, got %s", code)
		}
	})
}

func TestPayeeFlow(t *testing.T) {
	app := setupApp(t)
	budgetID := app.createBudget(t, "2024-01-01", 1000)

	payee := app.mustRequest(t, http.StatusCreated, "POST", "/api/v1/payees", `{"name":"Landlord"}`)
	payeeID := payee["payee"].(map[string]interface{})["id"].(string)

	rec := app.request("POST", "/api/v1/payees", `{"name":"Landlord"}`)
	if code := errorCode(t, rec); code != "DUPLICATE_NAME" {
		t.Errorf("expected DUPLICATE_NAME, got %s", code)
	}

	app.mustRequest(t, http.StatusOK, "POST", "/api/v1/payees/"+payeeID+"/hide", "")

	listed := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/payees", "")
	if n := len(listed["payees"].([]interface{})); n != 0 {
		t.Errorf("expected hidden payee to be left out, got %d", n)
	}
	listed = app.mustRequest(t, http.StatusOK, "GET", "/api/v1/payees?include_hidden=true", "")
	if n := len(listed["payees"].([]interface{})); n != 1 {
		t.Errorf("expected 1 payee with include_hidden, got %d", n)
	}

	body := fmt.Sprintf(`{"title":"Rent","payee_id":%q,"expense_type":"one_time","amount":400,"start_date":"2024-01-01"}`, payeeID)
	rec = app.request("POST", "/api/v1/budgets/"+budgetID+"/expenses", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for a hidden payee, got %d: %s", rec.Code, rec.Body.String())
	}

	app.mustRequest(t, http.StatusOK, "POST", "/api/v1/payees/"+payeeID+"/unhide", "")
	expense := app.createExpense(t, budgetID, body)
	if expense["payee_id"] != payeeID {
		t.Errorf("expected payee %s, got %v", payeeID, expense["payee_id"])
	}

	rec = app.request("DELETE", "/api/v1/payees/"+payeeID, "")
	if code := errorCode(t, rec); code != "PAYEE_NOT_DELETABLE" {
		t.Errorf("expected PAYEE_NOT_DELETABLE, got %s", code)
	}
}

func TestSettingsFlow(t *testing.T) {
	app := setupApp(t)

	got := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/settings", "")
	if got["settings"].(map[string]interface{})["currency"] != "USD" {
		t.Errorf("expected default currency USD, got %v", got["settings"])
	}

	app.mustRequest(t, http.StatusOK, "PUT", "/api/v1/settings", `{"currency":"EUR","locale":"de-DE"}`)

	budgetID := app.createBudget(t, "2024-01-01", 1234)
	budget := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/budgets/"+budgetID, "")
	if budget["budget"].(map[string]interface{})["currency"] != "EUR" {
		t.Errorf("expected new budgets to take the EUR default, got %v", budget["budget"])
	}

	t.Run("mutations are audited", func(t *testing.T) {
		logs := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/audit-logs?resource_type=budget&resource_id="+budgetID, "")
		data := logs["data"].([]interface{})
		if len(data) != 1 || data[0].(map[string]interface{})["action"] != "CREATE_BUDGET" {
			t.Errorf("expected a single CREATE_BUDGET entry, got %v", data)
		}
		all := app.mustRequest(t, http.StatusOK, "GET", "/api/v1/audit-logs?action=UPDATE_SETTINGS", "")
		if all["total_items"].(float64) != 1 {
			t.Errorf("expected 1 settings update, got %v", all["total_items"])
		}
	})
}
