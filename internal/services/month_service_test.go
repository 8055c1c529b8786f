package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pyggy/internal/models"
	"pyggy/internal/schedule"
	"pyggy/internal/testutil"
)

func TestProcessNewMonth(t *testing.T) {
	t.Run("creates_month_and_accrues", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)
		budget := testutil.CreateTestBudget(t, db)
		expense := testutil.CreateTestExpenseWith(t, db, &models.Expense{
			BudgetID:    budget.ID,
			ExpenseType: schedule.TypeEndlessRecurring,
			Amount:      decimal.NewFromInt(25),
			StartDate:   testutil.Date(2025, time.January, 10),
		})

		month, err := svc.ProcessNewMonth(budget.ID, 2025, 1)
		testutil.AssertNoError(t, err)
		if month.Year != 2025 || month.Month != 1 {
			t.Errorf("expected 2025-01, got %s", month)
		}
		if n := countItems(t, db, expense.ID); n != 1 {
			t.Errorf("expected 1 item, got %d", n)
		}
	})

	t.Run("existing_month_returned_untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)
		budget := testutil.CreateTestBudget(t, db)

		first, err := svc.ProcessNewMonth(budget.ID, 2025, 1)
		testutil.AssertNoError(t, err)
		second, err := svc.ProcessNewMonth(budget.ID, 2025, 1)
		testutil.AssertNoError(t, err)
		if first.ID != second.ID {
			t.Errorf("expected the same month, got %s and %s", first.ID, second.ID)
		}

		var count int64
		db.Model(&models.BudgetMonth{}).Where("budget_id = ?", budget.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 month row, got %d", count)
		}
	})

	t.Run("range_checked_before_any_write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)
		budget := testutil.CreateTestBudget(t, db)

		for _, tc := range []struct{ year, month int }{{2019, 12}, {2100, 1}, {2025, 0}, {2025, 13}} {
			_, err := svc.ProcessNewMonth(budget.ID, tc.year, tc.month)
			testutil.AssertAppError(t, err, "INVALID_MONTH_RANGE")
		}
		// Range errors win over a missing budget.
		_, err := svc.ProcessNewMonth("not-a-budget", 2019, 1)
		testutil.AssertAppError(t, err, "INVALID_MONTH_RANGE")

		var count int64
		db.Model(&models.BudgetMonth{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no months, got %d", count)
		}
	})

	t.Run("unknown_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)

		_, err := svc.ProcessNewMonth("0192d5a4-0000-7000-8000-000000000000", 2025, 1)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("failure_rolls_back_everything", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)
		budget := testutil.CreateTestBudget(t, db)
		good := testutil.CreateTestExpense(t, db, budget.ID, decimal.NewFromInt(10), testutil.Date(2025, time.January, 5))
		// A split payment without parts cannot be parsed into a schedule.
		testutil.CreateTestExpenseWith(t, db, &models.Expense{
			BudgetID:    budget.ID,
			ExpenseType: schedule.TypeSplitPayment,
			Amount:      decimal.NewFromInt(10),
			StartDate:   testutil.Date(2025, time.January, 5),
		})

		_, err := svc.ProcessNewMonth(budget.ID, 2025, 1)
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")

		var months int64
		db.Model(&models.BudgetMonth{}).Count(&months)
		if months != 0 {
			t.Errorf("expected month creation to roll back, got %d months", months)
		}
		if n := countItems(t, db, good.ID); n != 0 {
			t.Errorf("expected item creation to roll back, got %d items", n)
		}
	})
}

func TestMonthProcessingScenarios(t *testing.T) {
	t.Run("split_payment_two_remaining_parts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		months := NewMonthService(db)
		payments := NewPaymentService(db)
		budget := testutil.CreateTestBudgetWithAmount(t, db, testutil.Date(2024, time.January, 1), decimal.NewFromInt(5000))
		expense := testutil.CreateTestExpenseWith(t, db, &models.Expense{
			BudgetID:    budget.ID,
			ExpenseType: schedule.TypeSplitPayment,
			Amount:      decimal.NewFromInt(100),
			StartDate:   testutil.Date(2024, time.January, 15),
			DayOfMonth:  15,
			TotalParts:  10,
			SkipParts:   8,
		})

		for m := 1; m <= 2; m++ {
			_, err := months.ProcessNewMonth(budget.ID, 2024, m)
			testutil.AssertNoError(t, err)
		}
		items, err := expenseItems(db, expense.ID)
		testutil.AssertNoError(t, err)
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}

		var last *PaymentResult
		for _, item := range items {
			if !item.Amount.Equal(decimal.NewFromInt(100)) {
				t.Errorf("expected item amount 100, got %s", item.Amount)
			}
			last, err = payments.PayInFull(budget.ID, item.ID, PaymentInput{})
			testutil.AssertNoError(t, err)
		}
		if !last.ExpenseClosed {
			t.Error("expected the second payment to close the expense")
		}

		_, err = months.ProcessNewMonth(budget.ID, 2024, 3)
		testutil.AssertNoError(t, err)
		if n := countItems(t, db, expense.ID); n != 2 {
			t.Errorf("expected no further items, got %d total", n)
		}
	})

	t.Run("recurring_with_end_stops_after_end_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		months := NewMonthService(db)
		budget := testutil.CreateTestBudgetWithAmount(t, db, testutil.Date(2024, time.January, 1), decimal.NewFromInt(5000))
		end := testutil.Date(2024, time.March, 15)
		expense := testutil.CreateTestExpenseWith(t, db, &models.Expense{
			BudgetID:    budget.ID,
			ExpenseType: schedule.TypeRecurringWithEnd,
			Amount:      decimal.NewFromInt(30),
			StartDate:   testutil.Date(2024, time.January, 15),
			DayOfMonth:  15,
			EndDate:     &end,
		})

		for m := 1; m <= 4; m++ {
			_, err := months.ProcessNewMonth(budget.ID, 2024, m)
			testutil.AssertNoError(t, err)
		}
		items, err := expenseItems(db, expense.ID)
		testutil.AssertNoError(t, err)
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		for i, item := range items {
			want := testutil.Date(2024, time.Month(i+1), 15)
			if !item.DueDate.Equal(want) {
				t.Errorf("item %d: expected due %s, got %s", i, want, item.DueDate)
			}
		}
	})
}

func TestProcessNextMonth(t *testing.T) {
	t.Run("starts_at_budget_start_then_advances", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)
		budget := testutil.CreateTestBudgetWithAmount(t, db, testutil.Date(2025, time.November, 20), decimal.Zero)

		next, err := svc.GetNextAllowedMonth(budget.ID)
		testutil.AssertNoError(t, err)
		if next.Year != 2025 || next.Month != 11 {
			t.Errorf("expected 2025-11, got %d-%d", next.Year, next.Month)
		}

		for _, want := range []string{"2025-11", "2025-12", "2026-01"} {
			m, err := svc.ProcessNextMonth(budget.ID)
			testutil.AssertNoError(t, err)
			if m.String() != want {
				t.Errorf("expected %s, got %s", want, m)
			}
		}

		latest, err := svc.GetLatestMonth(budget.ID)
		testutil.AssertNoError(t, err)
		if latest.String() != "2026-01" {
			t.Errorf("expected latest 2026-01, got %s", latest)
		}
	})

	t.Run("no_latest_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)
		budget := testutil.CreateTestBudget(t, db)

		_, err := svc.GetLatestMonth(budget.ID)
		testutil.AssertAppError(t, err, "NO_PROCESSED_MONTH")
	})
}

func TestProcessMonth(t *testing.T) {
	setup := func(t *testing.T) (MonthServicer, *models.Budget, func() int64) {
		db := testutil.SetupTestDB(t)
		t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
		budget := testutil.CreateTestBudget(t, db)
		testutil.CreateTestExpenseWith(t, db, &models.Expense{
			BudgetID:    budget.ID,
			ExpenseType: schedule.TypeEndlessRecurring,
			Amount:      decimal.NewFromInt(25),
			StartDate:   testutil.Date(2025, time.January, 10),
		})
		var months int64
		count := func() int64 {
			db.Model(&models.BudgetMonth{}).Where("budget_id = ?", budget.ID).Count(&months)
			return months
		}
		return NewMonthService(db), budget, count
	}

	t.Run("accepts_next_allowed_month", func(t *testing.T) {
		svc, budget, count := setup(t)

		m, created, err := svc.ProcessMonth(budget.ID, 2025, 1)
		testutil.AssertNoError(t, err)
		if !created || m.String() != "2025-01" {
			t.Errorf("expected new 2025-01, got %s created=%v", m, created)
		}
		m, created, err = svc.ProcessMonth(budget.ID, 2025, 2)
		testutil.AssertNoError(t, err)
		if !created || m.String() != "2025-02" {
			t.Errorf("expected new 2025-02, got %s created=%v", m, created)
		}
		if n := count(); n != 2 {
			t.Errorf("expected 2 months, got %d", n)
		}
	})

	t.Run("rejects_gap", func(t *testing.T) {
		svc, budget, count := setup(t)
		_, _, err := svc.ProcessMonth(budget.ID, 2025, 1)
		testutil.AssertNoError(t, err)

		_, _, err = svc.ProcessMonth(budget.ID, 2025, 6)
		testutil.AssertAppError(t, err, "MONTH_NOT_NEXT")
		if n := count(); n != 1 {
			t.Errorf("expected 1 month, got %d", n)
		}
	})

	t.Run("rejects_month_before_latest", func(t *testing.T) {
		svc, budget, count := setup(t)
		for m := 1; m <= 3; m++ {
			_, _, err := svc.ProcessMonth(budget.ID, 2025, m)
			testutil.AssertNoError(t, err)
		}

		_, _, err := svc.ProcessMonth(budget.ID, 2024, 12)
		testutil.AssertAppError(t, err, "MONTH_NOT_NEXT")
		if n := count(); n != 3 {
			t.Errorf("expected 3 months, got %d", n)
		}
	})

	t.Run("rejects_first_month_other_than_budget_start", func(t *testing.T) {
		svc, budget, count := setup(t)

		_, _, err := svc.ProcessMonth(budget.ID, 2025, 3)
		testutil.AssertAppError(t, err, "MONTH_NOT_NEXT")
		if n := count(); n != 0 {
			t.Errorf("expected no months, got %d", n)
		}
	})

	t.Run("existing_month_returned_unchanged", func(t *testing.T) {
		svc, budget, _ := setup(t)
		first, _, err := svc.ProcessMonth(budget.ID, 2025, 1)
		testutil.AssertNoError(t, err)
		_, _, err = svc.ProcessMonth(budget.ID, 2025, 2)
		testutil.AssertNoError(t, err)

		again, created, err := svc.ProcessMonth(budget.ID, 2025, 1)
		testutil.AssertNoError(t, err)
		if created || again.ID != first.ID {
			t.Errorf("expected existing month %s, got %s created=%v", first.ID, again.ID, created)
		}
	})

	t.Run("range_checked_first", func(t *testing.T) {
		svc, budget, _ := setup(t)

		_, _, err := svc.ProcessMonth(budget.ID, 2025, 13)
		testutil.AssertAppError(t, err, "INVALID_MONTH_RANGE")
	})
}

func TestListMonths(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewMonthService(db)
	budget := testutil.CreateTestBudget(t, db)
	jan := testutil.CreateTestMonth(t, db, budget.ID, 2025, 1)
	feb := testutil.CreateTestMonth(t, db, budget.ID, 2025, 2)
	a := testutil.CreateTestExpense(t, db, budget.ID, decimal.RequireFromString("10.50"), testutil.Date(2025, time.January, 1))
	b := testutil.CreateTestExpense(t, db, budget.ID, decimal.RequireFromString("4.50"), testutil.Date(2025, time.January, 2))
	testutil.CreateTestItem(t, db, a, jan, testutil.Date(2025, time.January, 1))
	testutil.CreateTestItem(t, db, b, jan, testutil.Date(2025, time.January, 2))

	summaries, err := svc.ListMonths(budget.ID)
	testutil.AssertNoError(t, err)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 months, got %d", len(summaries))
	}
	if summaries[0].ID != feb.ID {
		t.Errorf("expected newest month first")
	}
	if !summaries[0].Balance.IsZero() || summaries[0].ItemCount != 0 {
		t.Errorf("expected empty february, got %s over %d items", summaries[0].Balance, summaries[0].ItemCount)
	}
	if !summaries[1].Balance.Equal(decimal.NewFromInt(-15)) {
		t.Errorf("expected january balance -15, got %s", summaries[1].Balance)
	}
	if summaries[1].ItemCount != 2 {
		t.Errorf("expected 2 january items, got %d", summaries[1].ItemCount)
	}
}

func TestGetMonthDetail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewMonthService(db)
	budget := testutil.CreateTestBudget(t, db)
	month := testutil.CreateTestMonth(t, db, budget.ID, 2025, 3)
	a := testutil.CreateTestExpense(t, db, budget.ID, decimal.NewFromInt(100), testutil.Date(2025, time.March, 20))
	b := testutil.CreateTestExpense(t, db, budget.ID, decimal.NewFromInt(50), testutil.Date(2025, time.March, 5))
	partly := testutil.CreateTestItem(t, db, a, month, testutil.Date(2025, time.March, 20))
	paid := testutil.CreateTestItem(t, db, b, month, testutil.Date(2025, time.March, 5))
	testutil.CreateTestPayment(t, db, partly.ID, decimal.NewFromInt(40))
	testutil.CreateTestPayment(t, db, paid.ID, decimal.NewFromInt(50))

	detail, err := svc.GetMonthDetail(budget.ID, 2025, 3, testutil.Date(2025, time.March, 10))
	testutil.AssertNoError(t, err)

	if len(detail.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(detail.Items))
	}
	if detail.Items[0].ID != paid.ID {
		t.Error("expected items ordered by due date")
	}
	if detail.Items[0].Status != models.ItemStatusPaid || detail.Items[1].Status != models.ItemStatusPending {
		t.Errorf("unexpected statuses %s, %s", detail.Items[0].Status, detail.Items[1].Status)
	}
	if detail.Items[1].DaysUntil != 10 {
		t.Errorf("expected 10 days until due, got %d", detail.Items[1].DaysUntil)
	}
	testutil.AssertAmount(t, "total", detail.Totals.Total, "60")
	testutil.AssertAmount(t, "paid", detail.Totals.Paid, "90")
	testutil.AssertAmount(t, "pending", detail.Totals.Pending, "60")

	_, err = svc.GetMonthDetail(budget.ID, 2025, 4, time.Now())
	testutil.AssertAppError(t, err, "MONTH_NOT_FOUND")
}

func TestDeleteMonth(t *testing.T) {
	t.Run("only_latest", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)
		budget := testutil.CreateTestBudget(t, db)
		testutil.CreateTestMonth(t, db, budget.ID, 2025, 1)
		testutil.CreateTestMonth(t, db, budget.ID, 2025, 2)

		err := svc.DeleteMonth(budget.ID, 2025, 1)
		testutil.AssertAppError(t, err, "MONTH_NOT_LATEST")
	})

	t.Run("blocked_by_paid_item", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)
		budget := testutil.CreateTestBudget(t, db)
		month := testutil.CreateTestMonth(t, db, budget.ID, 2025, 1)
		e := testutil.CreateTestExpense(t, db, budget.ID, decimal.NewFromInt(10), testutil.Date(2025, time.January, 1))
		item := testutil.CreateTestItem(t, db, e, month, testutil.Date(2025, time.January, 1))
		testutil.CreateTestPayment(t, db, item.ID, decimal.NewFromInt(10))

		err := svc.DeleteMonth(budget.ID, 2025, 1)
		testutil.AssertAppError(t, err, "MONTH_HAS_PAID_ITEMS")
	})

	t.Run("removes_items_and_partial_payments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)
		budget := testutil.CreateTestBudget(t, db)
		month := testutil.CreateTestMonth(t, db, budget.ID, 2025, 1)
		e := testutil.CreateTestExpense(t, db, budget.ID, decimal.NewFromInt(10), testutil.Date(2025, time.January, 1))
		item := testutil.CreateTestItem(t, db, e, month, testutil.Date(2025, time.January, 1))
		testutil.CreateTestPayment(t, db, item.ID, decimal.NewFromInt(3))

		testutil.AssertNoError(t, svc.DeleteMonth(budget.ID, 2025, 1))

		var items, payments, months int64
		db.Model(&models.ExpenseItem{}).Count(&items)
		db.Model(&models.Payment{}).Count(&payments)
		db.Model(&models.BudgetMonth{}).Count(&months)
		if items != 0 || payments != 0 || months != 0 {
			t.Errorf("expected everything removed, got %d items, %d payments, %d months", items, payments, months)
		}
		if n := countItems(t, db, e.ID); n != 0 {
			t.Errorf("expected no items left, got %d", n)
		}
	})
}

func TestGetDashboard(t *testing.T) {
	t.Run("without_months", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)
		budget := testutil.CreateTestBudget(t, db)

		dash, err := svc.GetDashboard(budget.ID, time.Now())
		testutil.AssertNoError(t, err)
		if dash.CurrentMonth != nil {
			t.Error("expected no current month")
		}
		if !dash.CurrentBalance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected balance 1000, got %s", dash.CurrentBalance)
		}
	})

	t.Run("summary_and_overdue", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)
		budget := testutil.CreateTestBudget(t, db)
		feb := testutil.CreateTestMonth(t, db, budget.ID, 2025, 2)
		mar := testutil.CreateTestMonth(t, db, budget.ID, 2025, 3)
		old := testutil.CreateTestExpense(t, db, budget.ID, decimal.NewFromInt(20), testutil.Date(2025, time.February, 3))
		rent := testutil.CreateTestExpense(t, db, budget.ID, decimal.NewFromInt(500), testutil.Date(2025, time.March, 1))
		phone := testutil.CreateTestExpense(t, db, budget.ID, decimal.NewFromInt(30), testutil.Date(2025, time.March, 25))
		testutil.CreateTestItem(t, db, old, feb, testutil.Date(2025, time.February, 3))
		rentItem := testutil.CreateTestItem(t, db, rent, mar, testutil.Date(2025, time.March, 1))
		testutil.CreateTestItem(t, db, phone, mar, testutil.Date(2025, time.March, 25))
		testutil.CreateTestPayment(t, db, rentItem.ID, decimal.NewFromInt(500))

		dash, err := svc.GetDashboard(budget.ID, testutil.Date(2025, time.March, 10))
		testutil.AssertNoError(t, err)

		if dash.CurrentMonth == nil || dash.CurrentMonth.ID != mar.ID {
			t.Fatal("expected march as current month")
		}
		if dash.Summary.PaidCount != 1 || dash.Summary.PendingCount != 1 {
			t.Errorf("expected 1 paid and 1 pending, got %d and %d", dash.Summary.PaidCount, dash.Summary.PendingCount)
		}
		if !dash.Summary.Total.Equal(decimal.NewFromInt(530)) {
			t.Errorf("expected total 530, got %s", dash.Summary.Total)
		}
		if !dash.HasOverdue {
			t.Error("expected the unpaid february item to be overdue")
		}
		if len(dash.DueDays) != 2 || dash.DueDays[0] != 10 || dash.DueDays[1] != 25 {
			t.Errorf("expected due days [10 25], got %v", dash.DueDays)
		}
		if !dash.CurrentBalance.Equal(decimal.NewFromInt(450)) {
			t.Errorf("expected balance 450, got %s", dash.CurrentBalance)
		}
	})
}
