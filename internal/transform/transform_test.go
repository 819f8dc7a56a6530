package transform

import (
	"reflect"
	"testing"
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/dataset"
	"github.com/cleberrangel/sprint-dashboard/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var baseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func num(v float64) *float64 {
	return &v
}

// scenarioA é o registro único dos cenários documentados
func scenarioA() model.Record {
	return model.Record{
		Sprint:         "S1",
		Module:         "M1",
		StartDate:      date("2024-01-01"),
		ActualFinished: date("2024-01-05"),
		Priority:       "High",
		AssignTo:       "Alice",
		TotalCost:      num(100),
		Estimates:      num(50),
	}
}

func TestScenarioSingleRow(t *testing.T) {
	ds := dataset.New([]model.Record{scenarioA()})

	timeline := Timeline(ds, "S1")
	wantTimeline := []model.TimelineRow{{
		Module:         "M1",
		StartDate:      *date("2024-01-01"),
		ActualFinished: *date("2024-01-05"),
		Priority:       "High",
	}}
	if diff := cmp.Diff(wantTimeline, timeline); diff != "" {
		t.Errorf("Timeline mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]model.PerformanceRow{{AssignTo: "Alice", SumCost: 100}}, Performance(ds, "S1")); diff != "" {
		t.Errorf("Performance mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]model.EfficiencyRow{{Sprint: "S1", Module: "M1", Efficiency: 2}}, Efficiency(ds, "S1", EfficiencyOptions{})); diff != "" {
		t.Errorf("Efficiency mismatch (-want +got):\n%s", diff)
	}
}

func TestScenarioInvalidDateStillCountsForPerformance(t *testing.T) {
	bad := scenarioA()
	bad.Module = "M2"
	bad.StartDate = dataset.ParseDate("not-a-date")
	bad.TotalCost = num(40)

	ds := dataset.New([]model.Record{scenarioA(), bad})

	timeline := Timeline(ds, "S1")
	if len(timeline) != 1 || timeline[0].Module != "M1" {
		t.Errorf("row with invalid StartDate should be excluded, got %+v", timeline)
	}

	perf := Performance(ds, "S1")
	if diff := cmp.Diff([]model.PerformanceRow{{AssignTo: "Alice", SumCost: 140}}, perf); diff != "" {
		t.Errorf("Performance mismatch (-want +got):\n%s", diff)
	}
}

func TestScenarioZeroEstimate(t *testing.T) {
	zero := scenarioA()
	zero.Module = "M3"
	zero.Estimates = num(0)

	ds := dataset.New([]model.Record{zero})

	if got := Efficiency(ds, "S1", EfficiencyOptions{}); len(got) != 0 {
		t.Errorf("zero estimate should be excluded from Efficiency, got %+v", got)
	}
	if got := Performance(ds, "S1"); len(got) != 1 || got[0].SumCost != 100 {
		t.Errorf("zero estimate row should still count for Performance, got %+v", got)
	}
	if got := Timeline(ds, "S1"); len(got) != 1 || got[0].Module != "M3" {
		t.Errorf("zero estimate row should still appear in Timeline, got %+v", got)
	}
}

func TestScenarioUnknownSprint(t *testing.T) {
	ds := dataset.New([]model.Record{scenarioA()})

	if got := Timeline(ds, "S404"); got == nil || len(got) != 0 {
		t.Errorf("Timeline should be an empty, non-nil slice, got %#v", got)
	}
	if got := Performance(ds, "S404"); got == nil || len(got) != 0 {
		t.Errorf("Performance should be an empty, non-nil slice, got %#v", got)
	}
	if got := Efficiency(ds, "S404", EfficiencyOptions{}); len(got) != 1 {
		t.Errorf("Efficiency is not filtered by Sprint and should keep the S1 row, got %+v", got)
	}
	if got := Efficiency(ds, "S404", EfficiencyOptions{FilterBySprint: true}); len(got) != 0 {
		t.Errorf("Efficiency with FilterBySprint should be empty, got %+v", got)
	}
}

func TestTimelineStableSort(t *testing.T) {
	a := scenarioA()
	a.Module = "first"
	b := scenarioA()
	b.Module = "second"
	c := scenarioA()
	c.Module = "earliest"
	c.StartDate = date("2023-12-25")
	// fim antes do início não é validado
	c.ActualFinished = date("2023-12-01")

	ds := dataset.New([]model.Record{a, b, c})

	var modules []string
	for _, row := range Timeline(ds, "S1") {
		modules = append(modules, row.Module)
	}
	if diff := cmp.Diff([]string{"earliest", "first", "second"}, modules); diff != "" {
		t.Errorf("Timeline order mismatch (-want +got):\n%s", diff)
	}
}

func TestPerformanceFirstEncounterOrder(t *testing.T) {
	var records []model.Record
	for _, who := range []string{"Zoe", "Alice", "Zoe", "", "Bob"} {
		r := scenarioA()
		r.AssignTo = who
		r.TotalCost = num(10)
		records = append(records, r)
	}
	nullCost := scenarioA()
	nullCost.AssignTo = "Carl"
	nullCost.TotalCost = nil
	records = append(records, nullCost)

	got := Performance(dataset.New(records), "S1")
	want := []model.PerformanceRow{
		{AssignTo: "Zoe", SumCost: 20},
		{AssignTo: "Alice", SumCost: 10},
		{AssignTo: "Bob", SumCost: 10},
		{AssignTo: "Carl", SumCost: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Performance mismatch (-want +got):\n%s", diff)
	}
}

func TestEfficiencyDropsNulls(t *testing.T) {
	noModule := scenarioA()
	noModule.Module = ""
	noSprint := scenarioA()
	noSprint.Sprint = ""
	noCost := scenarioA()
	noCost.TotalCost = nil
	noEstimate := scenarioA()
	noEstimate.Estimates = nil

	ds := dataset.New([]model.Record{noModule, noSprint, noCost, noEstimate, scenarioA()})
	got := Efficiency(ds, "S1", EfficiencyOptions{})
	if len(got) != 1 {
		t.Errorf("only the complete row should remain, got %+v", got)
	}
}

// **Property: transforms honour the selected Sprint and their ordering rules**
func TestTransformProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.MaxSize = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("timeline rows match the sprint and are sorted by start date", prop.ForAll(
		func(records []model.Record, sprint string) bool {
			ds := dataset.New(records)
			rows := Timeline(ds, sprint)

			expected := 0
			for _, r := range records {
				if r.Sprint == sprint && r.StartDate != nil && r.ActualFinished != nil {
					expected++
				}
			}
			if len(rows) != expected {
				return false
			}
			for i := 1; i < len(rows); i++ {
				if rows[i].StartDate.Before(rows[i-1].StartDate) {
					return false
				}
			}
			return true
		},
		genRecords(), genSprint(),
	))

	properties.Property("performance groups equal distinct assignees and sums match", prop.ForAll(
		func(records []model.Record, sprint string) bool {
			rows := Performance(dataset.New(records), sprint)

			sums := make(map[string]float64)
			var order []string
			for _, r := range records {
				if r.Sprint != sprint || r.AssignTo == "" {
					continue
				}
				if _, ok := sums[r.AssignTo]; !ok {
					order = append(order, r.AssignTo)
					sums[r.AssignTo] = 0
				}
				if r.TotalCost != nil {
					sums[r.AssignTo] += *r.TotalCost
				}
			}

			if len(rows) != len(order) {
				return false
			}
			for i, row := range rows {
				if row.AssignTo != order[i] || row.SumCost != sums[row.AssignTo] {
					return false
				}
			}
			return true
		},
		genRecords(), genSprint(),
	))

	properties.Property("efficiency never contains null values", prop.ForAll(
		func(records []model.Record, sprint string) bool {
			for _, row := range Efficiency(dataset.New(records), sprint, EfficiencyOptions{}) {
				if row.Sprint == "" || row.Module == "" {
					return false
				}
			}
			return true
		},
		genRecords(), genSprint(),
	))

	properties.Property("transforms are idempotent", prop.ForAll(
		func(records []model.Record, sprint string) bool {
			ds := dataset.New(records)
			return reflect.DeepEqual(Timeline(ds, sprint), Timeline(ds, sprint)) &&
				reflect.DeepEqual(Performance(ds, sprint), Performance(ds, sprint)) &&
				reflect.DeepEqual(Efficiency(ds, sprint, EfficiencyOptions{}), Efficiency(ds, sprint, EfficiencyOptions{}))
		},
		genRecords(), genSprint(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func genSprint() gopter.Gen {
	return gen.OneConstOf("S1", "S2", "S3")
}

func genRecords() gopter.Gen {
	return gen.SliceOf(genRecord(), reflect.TypeOf(model.Record{}))
}

// genRecord gera registros com nulos; -1 representa valor ausente
func genRecord() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("S1", "S2", "S3", ""),
		gen.OneConstOf("M1", "M2", "M3", ""),
		gen.IntRange(-1, 60),
		gen.IntRange(-1, 60),
		gen.OneConstOf("High", "Medium", "Low", ""),
		gen.OneConstOf("Alice", "Bob", "Carol", ""),
		gen.IntRange(-1, 1000),
		gen.IntRange(-1, 100),
	).Map(func(values []interface{}) model.Record {
		return model.Record{
			Sprint:         values[0].(string),
			Module:         values[1].(string),
			StartDate:      dayOffset(values[2].(int)),
			ActualFinished: dayOffset(values[3].(int)),
			Priority:       values[4].(string),
			AssignTo:       values[5].(string),
			TotalCost:      optional(values[6].(int)),
			Estimates:      optional(values[7].(int)),
		}
	})
}

func dayOffset(days int) *time.Time {
	if days < 0 {
		return nil
	}
	t := baseDate.AddDate(0, 0, days)
	return &t
}

func optional(v int) *float64 {
	if v < 0 {
		return nil
	}
	f := float64(v)
	return &f
}
