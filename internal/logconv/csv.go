// Package logconv converts a monitor's event log to formats ops
// tooling can chew on.
package logconv

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

// ToCSV writes observations, one row per minute, oldest first.
func ToCSV(w io.Writer, obs []api.Observation) error {
	c := csv.NewWriter(w)

	if err := c.Write([]string{"time", "status", "latency"}); err != nil {
		return err
	}

	for _, o := range obs {
		err := c.Write([]string{
			time.Unix(o.Timestamp, 0).UTC().Format(time.RFC3339),
			o.Status.String(),
			strconv.FormatFloat(o.Latency, 'f', 3, 64),
		})
		if err != nil {
			return err
		}
	}

	c.Flush()

	return c.Error()
}
