package figure

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/model"
	"github.com/google/go-cmp/cmp"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestTimelineGroupsByPriority(t *testing.T) {
	fig := Timeline([]model.TimelineRow{
		{Module: "M1", StartDate: day(1), ActualFinished: day(5), Priority: "High"},
		{Module: "M2", StartDate: day(2), ActualFinished: day(3), Priority: "Low"},
		{Module: "M3", StartDate: day(4), ActualFinished: day(6), Priority: "High"},
	})

	if len(fig.Data) != 2 {
		t.Fatalf("expected one trace per priority, got %d", len(fig.Data))
	}

	high := fig.Data[0]
	if high.Name != "High" || high.Orientation != "h" || high.Type != "bar" {
		t.Errorf("unexpected trace: %+v", high)
	}
	if diff := cmp.Diff([]interface{}{"M1", "M3"}, high.Y); diff != "" {
		t.Errorf("Y mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]interface{}{"2024-01-01 00:00:00", "2024-01-04 00:00:00"}, high.Base); diff != "" {
		t.Errorf("Base mismatch (-want +got):\n%s", diff)
	}
	if high.X[0] != float64(4*24*time.Hour/time.Millisecond) {
		t.Errorf("duration = %v, want 4 days in ms", high.X[0])
	}
	if fig.Data[1].Marker.Color == high.Marker.Color {
		t.Error("each priority should get its own color")
	}
	if fig.Layout.Title.Text != TitleTimeline || fig.Layout.XAxis.Type != "date" {
		t.Errorf("unexpected layout: %+v", fig.Layout)
	}
}

func TestTimelineBaseIsUTC(t *testing.T) {
	east := time.FixedZone("UTC+3", 3*60*60)
	west := time.FixedZone("UTC-2", -2*60*60)
	rows := []model.TimelineRow{
		{Module: "M1", StartDate: time.Date(2024, 1, 1, 10, 0, 0, 0, east), ActualFinished: time.Date(2024, 1, 1, 14, 0, 0, 0, east), Priority: "High"},
		{Module: "M2", StartDate: time.Date(2024, 1, 1, 9, 0, 0, 0, west), ActualFinished: time.Date(2024, 1, 1, 13, 0, 0, 0, west), Priority: "High"},
	}

	base := Timeline(rows).Data[0].Base
	if diff := cmp.Diff([]interface{}{"2024-01-01 07:00:00", "2024-01-01 11:00:00"}, base); diff != "" {
		t.Errorf("Base mismatch (-want +got):\n%s", diff)
	}

	// base + duração precisa cair no instante real de término
	x := Timeline(rows).Data[0].X
	for i, row := range rows {
		start, err := time.Parse(dateFormat, base[i].(string))
		if err != nil {
			t.Fatal(err)
		}
		end := start.Add(time.Duration(x[i].(float64)) * time.Millisecond)
		if !end.Equal(row.ActualFinished) {
			t.Errorf("row %d ends at %v, want %v", i, end, row.ActualFinished.UTC())
		}
	}
}

func TestEmptyFiguresSerializeAsArrays(t *testing.T) {
	for name, fig := range map[string]Figure{
		"timeline":    Timeline(nil),
		"performance": Performance(nil),
		"efficiency":  Efficiency(nil),
	} {
		t.Run(name, func(t *testing.T) {
			raw, err := json.Marshal(fig)
			if err != nil {
				t.Fatal(err)
			}
			var decoded map[string]interface{}
			if err := json.Unmarshal(raw, &decoded); err != nil {
				t.Fatal(err)
			}
			if _, ok := decoded["data"].([]interface{}); !ok {
				t.Errorf("data should be a JSON array, got %s", raw)
			}
			if fig.Points() != 0 {
				t.Errorf("Points() = %d, want 0", fig.Points())
			}
		})
	}
}

func TestPerformanceFigure(t *testing.T) {
	fig := Performance([]model.PerformanceRow{{AssignTo: "Alice", SumCost: 100}, {AssignTo: "Bob", SumCost: 50}})

	if len(fig.Data) != 1 {
		t.Fatalf("expected a single bar trace, got %d", len(fig.Data))
	}
	if diff := cmp.Diff([]interface{}{"Alice", "Bob"}, fig.Data[0].X); diff != "" {
		t.Errorf("X mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]interface{}{100.0, 50.0}, fig.Data[0].Y); diff != "" {
		t.Errorf("Y mismatch (-want +got):\n%s", diff)
	}
	if fig.Layout.YAxis.Title.Text != "Total Cost" {
		t.Errorf("y axis title = %q", fig.Layout.YAxis.Title.Text)
	}
}

func TestEfficiencyFigureColorsBySprint(t *testing.T) {
	fig := Efficiency([]model.EfficiencyRow{
		{Sprint: "S1", Module: "M1", Efficiency: 2},
		{Sprint: "S2", Module: "M1", Efficiency: 0.5},
		{Sprint: "S1", Module: "M2", Efficiency: 1},
	})

	if len(fig.Data) != 2 || fig.Data[0].Name != "S1" || fig.Data[1].Name != "S2" {
		t.Fatalf("expected traces S1, S2 in first-encounter order, got %+v", fig.Data)
	}
	if fig.Data[0].Mode != "markers" || len(fig.Data[0].X) != 2 {
		t.Errorf("unexpected S1 trace: %+v", fig.Data[0])
	}
}

func TestRenderPNG(t *testing.T) {
	figures := map[string]Figure{
		"timeline": Timeline([]model.TimelineRow{
			{Module: "M1", StartDate: day(1), ActualFinished: day(5), Priority: "High"},
			{Module: "M2", StartDate: day(1), ActualFinished: day(1), Priority: ""},
		}),
		"performance": Performance([]model.PerformanceRow{{AssignTo: "Alice", SumCost: 100}}),
		"efficiency":  Efficiency([]model.EfficiencyRow{{Sprint: "S1", Module: "M1", Efficiency: 2}}),
	}

	for name, fig := range figures {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderPNG(fig, &buf); err != nil {
				t.Fatalf("RenderPNG() error: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
				t.Error("output is not a PNG")
			}
		})
	}
}

func TestRenderPNGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPNG(Performance(nil), &buf); !errors.Is(err, model.ErrEmptyChart) {
		t.Errorf("RenderPNG() error = %v, want ErrEmptyChart", err)
	}
}
