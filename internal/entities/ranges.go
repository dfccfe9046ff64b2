package entities

import "fmt"

// CellSpan is the inclusive range of cell numbers covered by one temperature
// sensor.
type CellSpan struct {
	Start int
	End   int
}

// Key formats the span the way integrations embed it in entity ids.
func (s CellSpan) Key() string {
	return fmt.Sprintf("%d_%d", s.Start, s.End)
}

// Label formats the span for display.
func (s CellSpan) Label() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// PartitionSpans splits cellCount cells into sensorCount contiguous spans of
// ceil(cellCount/sensorCount) cells. The last span is truncated to cellCount
// and may be empty when there are fewer cells than sensors.
func PartitionSpans(cellCount, sensorCount int) []CellSpan {
	if sensorCount <= 0 {
		return nil
	}
	perSensor := (cellCount + sensorCount - 1) / sensorCount

	spans := make([]CellSpan, 0, sensorCount)
	for i := 0; i < sensorCount; i++ {
		end := (i + 1) * perSensor
		if end > cellCount {
			end = cellCount
		}
		spans = append(spans, CellSpan{Start: i*perSensor + 1, End: end})
	}
	return spans
}

// PartitionRanges returns the span keys of PartitionSpans, e.g. "1_4".
func PartitionRanges(cellCount, sensorCount int) []string {
	spans := PartitionSpans(cellCount, sensorCount)
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = s.Key()
	}
	return out
}
