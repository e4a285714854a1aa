package logconv

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

// rowLimit keeps runaway exports from producing absurd workbooks.
const rowLimit = 100000

func excelPos(x, y uint) string {
	pos, err := excelize.CoordinatesToCellName(int(x+1), int(y+1))
	if err != nil {
		panic(err)
	}
	return pos
}

// ToXlsx writes observations as a workbook with status-colored rows.
func ToXlsx(w io.Writer, obs []api.Observation, createdAt time.Time) error {
	xlsx := excelize.NewFile()
	defer xlsx.Close()
	xlsx.SetSheetName("Sheet1", "log")

	xlsx.SetAppProps(&excelize.AppProperties{
		Application: "Kener",
	})
	xlsx.SetDocProps(&excelize.DocProperties{
		Created:        createdAt.Format(time.RFC3339),
		Modified:       createdAt.Format(time.RFC3339),
		Creator:        "Kener",
		LastModifiedBy: "Kener",
	})

	zone, _ := createdAt.Zone()
	xlsx.SetCellStr("log", "A1", fmt.Sprintf("time (%s)", zone))
	xlsx.SetCellStr("log", "B1", "status")
	xlsx.SetCellStr("log", "C1", "latency")

	colors := map[api.Status]string{
		api.StatusUp:       "89C923",
		api.StatusDegraded: "DDA100",
		api.StatusDown:     "FF2D00",
		api.StatusNoData:   "C0C0C0",
	}

	setValue := func(x, y uint, value any, color string, style int, format *string) {
		xlsx.SetCellValue("log", excelPos(x, y), value)
		sid, _ := xlsx.NewStyle(&excelize.Style{
			CustomNumFmt: format,
			Border:       []excelize.Border{{Type: "bottom", Style: style, Color: color}},
		})
		pos := excelPos(x, y)
		xlsx.SetCellStyle("log", pos, pos, sid)
	}
	datefmt := "yyyy-mm-dd hh:mm:ss"
	latencyfmt := "#,##0.000 \"ms\""

	var row uint
	for _, o := range obs {
		row++
		if row > rowLimit {
			break
		}

		color := colors[o.Status]
		style, _ := xlsx.NewStyle(&excelize.Style{Border: []excelize.Border{{Type: "bottom", Style: 1, Color: color}}})
		xlsx.SetRowStyle("log", int(row+1), int(row+1), style)

		setValue(0, row, time.Unix(o.Timestamp, 0).In(createdAt.Location()), color, 1, &datefmt)
		setValue(1, row, o.Status.String(), color, 5, nil)
		setValue(2, row, o.Latency, color, 1, &latencyfmt)
	}

	cols := []float64{20, 12, 14}
	for i, width := range cols {
		name, _ := excelize.ColumnNumberToName(i + 1)
		xlsx.SetColWidth("log", name, name, width)
	}

	return xlsx.Write(w)
}
