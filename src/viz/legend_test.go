package viz

import "testing"

func planItems(plan legendPlan) []int {
	var items []int
	for _, row := range plan.rows {
		for _, c := range row.cells {
			items = append(items, c.item)
		}
	}
	return items
}

func TestPlanLegendBand_PartitionsAllItemsInOrder(t *testing.T) {
	labels := []string{
		"Germany", "United States", "France", "Japan",
		"Brazil", "India", "South Africa", "United Kingdom",
	}
	plan := planLegendBand(labels, 120, 1000, false)
	items := planItems(plan)
	if len(items) != len(labels) {
		t.Fatalf("plan holds %d items, want %d", len(items), len(labels))
	}
	for i, item := range items {
		if item != i {
			t.Fatalf("item order broken at %d: got %d", i, item)
		}
	}
}

func TestEstimateMatchesPlanHeight(t *testing.T) {
	labels := []string{
		"GDP per capita (current US$)",
		"Life expectancy at birth, total (years)",
		"Population, total",
		"CO2 emissions (metric tons per capita)",
		"School enrollment, secondary (% gross)",
	}
	for _, width := range []int{400, 640, 1000, 1600} {
		plan := planLegendBand(labels, 110, width, false)
		est := EstimateLegendBandHeight(labels, 110, width, false)
		if est != plan.height {
			t.Errorf("width %d: estimate %d != plan height %d", width, est, plan.height)
		}
	}
}

func TestPlanLegendBand_TitleAddsHeight(t *testing.T) {
	labels := []string{"Germany", "France"}
	without := planLegendBand(labels, 100, 800, false)
	with := planLegendBand(labels, 100, 800, true)
	if with.height <= without.height {
		t.Errorf("title height %d not larger than %d", with.height, without.height)
	}
}

func TestPlanLegendBand_ColumnsMonotonic(t *testing.T) {
	labels := []string{"Germany", "United States", "France", "Japan"}
	plan := planLegendBand(labels, 120, 1200, false)
	for i := 1; i < len(plan.colX); i++ {
		if plan.colX[i] <= plan.colX[i-1] {
			t.Fatalf("column x not increasing: %v", plan.colX)
		}
	}
	if len(plan.colX) > 0 && plan.colX[0] != 120 {
		t.Errorf("first column x = %d, want startX 120", plan.colX[0])
	}
}

func TestPlanLegendBand_RowHeightTracksWrapping(t *testing.T) {
	// One very long label on a narrow canvas must wrap and raise its row.
	labels := []string{"Adjusted net national income per capita, PPP adjusted (constant 2017 international $)"}
	plan := planLegendBand(labels, 80, 420, false)
	if len(plan.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(plan.rows))
	}
	if plan.rows[0].height <= legendLineH {
		t.Errorf("wrapped label row height %d, want > %d", plan.rows[0].height, legendLineH)
	}
	if got := len(plan.rows[0].cells[0].lines); got < 2 {
		t.Errorf("label wrapped into %d lines, want >= 2", got)
	}
}

func TestPlanLegendBand_NarrowCanvasStillSingleColumnMinimum(t *testing.T) {
	labels := []string{"Germany", "United States", "France"}
	plan := planLegendBand(labels, 60, 220, false)
	items := planItems(plan)
	if len(items) != len(labels) {
		t.Fatalf("narrow canvas dropped items: %d of %d", len(items), len(labels))
	}
	if plan.height <= 0 {
		t.Fatalf("non-positive band height %d", plan.height)
	}
}

func TestPlanLegendBand_WideCanvasSingleRow(t *testing.T) {
	labels := []string{"Germany", "France", "Japan"}
	plan := planLegendBand(labels, 100, 2000, false)
	if len(plan.rows) != 1 {
		t.Errorf("wide canvas should pack one row, got %d", len(plan.rows))
	}
	if len(plan.rows[0].cells) != 3 {
		t.Errorf("row holds %d cells, want 3", len(plan.rows[0].cells))
	}
}
